// Package wire defines the array-encoded template format consumed by the
// compiler.
//
// Statements and expressions are arrays whose first element is an opcode
// number. Literals are bare strings, numbers, booleans or null. The
// remaining compound shapes are positional:
//
//	block   [[statements], [parameter symbols]]
//	hash    [[keys], [values]]
//	blocks  [[names], [blocks]]
//
// A template is an object {id, symbols, hasEval, block, moduleName}.
// Symbol 0 is always self; symbols[i] names slot i+1.
package wire

// StatementOp identifies a statement form.
type StatementOp int

const (
	OpText                 StatementOp = 1  // [1, text]
	OpComment              StatementOp = 2  // [2, text]
	OpAppend               StatementOp = 3  // [3, expr]
	OpTrustingAppend       StatementOp = 4  // [4, expr]
	OpOpenElement          StatementOp = 5  // [5, tag]
	OpOpenElementWithSplat StatementOp = 6  // [6, tag]
	OpFlushElement         StatementOp = 7  // [7]
	OpCloseElement         StatementOp = 8  // [8]
	OpStaticAttr           StatementOp = 9  // [9, name, value]
	OpDynamicAttr          StatementOp = 10 // [10, name, expr]
	OpTrustingDynamicAttr  StatementOp = 11 // [11, name, expr]
	OpComponent            StatementOp = 12 // [12, tag|expr, attrs, hash, blocks]
	OpYield                StatementOp = 13 // [13, symbol, params]
	OpBlock                StatementOp = 14 // [14, name, params, hash, blocks]
	OpDynamicComponent     StatementOp = 15 // [15, expr, params, hash, blocks]
	OpInElement            StatementOp = 16 // [16, destination, block, insertBefore?]
	OpWithDynamicVars      StatementOp = 17 // [17, hash, block]
	OpIf                   StatementOp = 18 // [18, cond, block, inverse]
	OpEach                 StatementOp = 19 // [19, list, key, block, inverse]
	OpLet                  StatementOp = 20 // [20, params, block]
	OpAttrSplat            StatementOp = 21 // [21, symbol]
	OpUnless               StatementOp = 22 // [22, cond, block, inverse]
)

// ExpressionOp identifies an expression form.
type ExpressionOp int

const (
	OpGetSymbol      ExpressionOp = 30 // [30, symbol, path]
	OpGetFree        ExpressionOp = 31 // [31, name, path]
	OpCall           ExpressionOp = 32 // [32, name, params, hash]
	OpConcat         ExpressionOp = 33 // [33, parts]
	OpHasBlock       ExpressionOp = 34 // [34, symbol]
	OpHasBlockParams ExpressionOp = 35 // [35, symbol]
	OpCurryComponent ExpressionOp = 36 // [36, expr, params, hash]
	OpGetDynamicVar  ExpressionOp = 37 // [37, expr]
	OpUndefined      ExpressionOp = 38 // [38]
)

// Statement is one template statement.
type Statement interface {
	statementOp() StatementOp
}

// Expression is one template expression.
type Expression interface {
	expressionOp() ExpressionOp
}

// Block is a list of statements with the symbols its parameters bind to.
type Block struct {
	Statements []Statement
	Parameters []int
}

// Hash is an ordered list of named expressions.
type Hash struct {
	Keys   []string
	Values []Expression
}

// Len returns the number of entries; a nil hash is empty.
func (h *Hash) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Keys)
}

// Get returns the value named key.
func (h *Hash) Get(key string) (Expression, bool) {
	if h == nil {
		return nil, false
	}
	for i, k := range h.Keys {
		if k == key {
			return h.Values[i], true
		}
	}
	return nil, false
}

// NamedBlocks is an ordered list of named blocks.
type NamedBlocks struct {
	Names  []string
	Blocks []*Block
}

// Get returns the block named name.
func (b *NamedBlocks) Get(name string) (*Block, bool) {
	if b == nil {
		return nil, false
	}
	for i, n := range b.Names {
		if n == name {
			return b.Blocks[i], true
		}
	}
	return nil, false
}

// Has reports whether a block named name exists.
func (b *NamedBlocks) Has(name string) bool {
	_, ok := b.Get(name)
	return ok
}

// Template is a compiled template as delivered by the parser.
type Template struct {
	ID         string
	ModuleName string
	Symbols    []string
	HasEval    bool
	Block      *Block
}

// Statements.
type (
	Text struct{ Value string }

	Comment struct{ Value string }

	Append struct{ Value Expression }

	TrustingAppend struct{ Value Expression }

	OpenElement struct{ Tag string }

	OpenElementWithSplat struct{ Tag string }

	FlushElement struct{}

	CloseElement struct{}

	StaticAttr struct{ Name, Value string }

	DynamicAttr struct {
		Name  string
		Value Expression
	}

	TrustingDynamicAttr struct {
		Name  string
		Value Expression
	}

	AttrSplat struct{ Symbol int }

	// Component is an angle-bracket invocation. Exactly one of Tag and
	// Dynamic is set.
	Component struct {
		Tag     string
		Dynamic Expression
		Attrs   []Statement
		Args    *Hash
		Blocks  *NamedBlocks
	}

	Yield struct {
		Symbol int
		Params []Expression
	}

	// InvokeBlock is a curly block invocation of a named component.
	InvokeBlock struct {
		Name   string
		Params []Expression
		Hash   *Hash
		Blocks *NamedBlocks
	}

	DynamicComponent struct {
		Definition Expression
		Params     []Expression
		Hash       *Hash
		Blocks     *NamedBlocks
	}

	// InElement renders Block into Destination. A nil InsertBefore clears
	// the destination first.
	InElement struct {
		Destination  Expression
		InsertBefore Expression
		Block        *Block
	}

	WithDynamicVars struct {
		Vars  *Hash
		Block *Block
	}

	If struct {
		Condition Expression
		Block     *Block
		Inverse   *Block
		Unless    bool
	}

	Each struct {
		List    Expression
		Key     Expression
		Block   *Block
		Inverse *Block
	}

	Let struct {
		Params []Expression
		Block  *Block
	}
)

func (*Text) statementOp() StatementOp                 { return OpText }
func (*Comment) statementOp() StatementOp              { return OpComment }
func (*Append) statementOp() StatementOp               { return OpAppend }
func (*TrustingAppend) statementOp() StatementOp       { return OpTrustingAppend }
func (*OpenElement) statementOp() StatementOp          { return OpOpenElement }
func (*OpenElementWithSplat) statementOp() StatementOp { return OpOpenElementWithSplat }
func (*FlushElement) statementOp() StatementOp         { return OpFlushElement }
func (*CloseElement) statementOp() StatementOp         { return OpCloseElement }
func (*StaticAttr) statementOp() StatementOp           { return OpStaticAttr }
func (*DynamicAttr) statementOp() StatementOp          { return OpDynamicAttr }
func (*TrustingDynamicAttr) statementOp() StatementOp  { return OpTrustingDynamicAttr }
func (*AttrSplat) statementOp() StatementOp            { return OpAttrSplat }
func (*Component) statementOp() StatementOp            { return OpComponent }
func (*Yield) statementOp() StatementOp                { return OpYield }
func (*InvokeBlock) statementOp() StatementOp          { return OpBlock }
func (*DynamicComponent) statementOp() StatementOp     { return OpDynamicComponent }
func (*InElement) statementOp() StatementOp            { return OpInElement }
func (*WithDynamicVars) statementOp() StatementOp      { return OpWithDynamicVars }
func (*Each) statementOp() StatementOp                 { return OpEach }
func (*Let) statementOp() StatementOp                  { return OpLet }

func (s *If) statementOp() StatementOp {
	if s.Unless {
		return OpUnless
	}
	return OpIf
}

// Expressions.
type (
	// Literal is a string, int, float64, bool or nil.
	Literal struct{ Value any }

	GetSymbol struct {
		Symbol int
		Path   []string
	}

	// GetFree reads Name and then Path off self.
	GetFree struct {
		Name string
		Path []string
	}

	Call struct {
		Name   string
		Params []Expression
		Hash   *Hash
	}

	Concat struct{ Parts []Expression }

	HasBlock struct{ Symbol int }

	HasBlockParams struct{ Symbol int }

	CurryComponent struct {
		Definition Expression
		Params     []Expression
		Hash       *Hash
	}

	GetDynamicVar struct{ Name Expression }

	Undefined struct{}
)

// Literal expressions carry no opcode on the wire; -1 marks them.
func (*Literal) expressionOp() ExpressionOp        { return -1 }
func (*GetSymbol) expressionOp() ExpressionOp      { return OpGetSymbol }
func (*GetFree) expressionOp() ExpressionOp        { return OpGetFree }
func (*Call) expressionOp() ExpressionOp           { return OpCall }
func (*Concat) expressionOp() ExpressionOp         { return OpConcat }
func (*HasBlock) expressionOp() ExpressionOp       { return OpHasBlock }
func (*HasBlockParams) expressionOp() ExpressionOp { return OpHasBlockParams }
func (*CurryComponent) expressionOp() ExpressionOp { return OpCurryComponent }
func (*GetDynamicVar) expressionOp() ExpressionOp  { return OpGetDynamicVar }
func (*Undefined) expressionOp() ExpressionOp      { return OpUndefined }

// IsLiteral reports whether e is a literal.
func IsLiteral(e Expression) bool {
	_, ok := e.(*Literal)
	return ok
}
