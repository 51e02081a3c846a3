//go:build debug

package validator

import "fmt"

// DebugEnabled reports whether consistency checks are compiled in.
const DebugEnabled = true

type transaction struct {
	label    string
	consumed map[Tag]struct{}
}

var transactions []*transaction

func beginTransaction(label string) {
	transactions = append(transactions, &transaction{label: label, consumed: make(map[Tag]struct{})})
}

func endTransaction() {
	if len(transactions) == 0 {
		panic("validator: transaction ended without a matching begin")
	}
	transactions = transactions[:len(transactions)-1]
}

func markConsumed(tag Tag) {
	if len(transactions) == 0 || IsConstant(tag) {
		return
	}
	transactions[len(transactions)-1].consumed[tag] = struct{}{}
}

func assertTagNotConsumed(tag Tag) {
	for _, tx := range transactions {
		if _, ok := tx.consumed[tag]; ok {
			panic(fmt.Sprintf("validator: a tag was dirtied after it was consumed during %q", tx.label))
		}
	}
}
