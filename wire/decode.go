package wire

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ShapeError reports a wire value that does not have the expected shape.
type ShapeError struct {
	Path     string
	Expected string
	Actual   any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("wire: %s: expected %s, got %T(%v)", e.Path, e.Expected, e.Actual, e.Actual)
}

func shape(path, expected string, actual any) error {
	return &ShapeError{Path: path, Expected: expected, Actual: actual}
}

// toInt accepts every integer representation produced by the JSON (with
// UseNumber) and CBOR decoders.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case json.Number:
		i, err := n.Int64()
		if err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func literal(v any, path string) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int, float64:
		return x, nil
	case int64, uint64:
		if i, ok := toInt(x); ok {
			return i, nil
		}
	case float32:
		return float64(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i), nil
		}
		if f, err := x.Float64(); err == nil {
			return f, nil
		}
	}
	return nil, shape(path, "literal", v)
}

// DecodeBlock decodes a [[statements], [parameters]] block.
func DecodeBlock(v any) (*Block, error) {
	return decodeBlock(v, "block")
}

// DecodeStatement decodes one statement.
func DecodeStatement(v any) (Statement, error) {
	return decodeStatement(v, "statement")
}

// DecodeExpression decodes one expression.
func DecodeExpression(v any) (Expression, error) {
	return decodeExpression(v, "expression")
}

// reader decodes the positional arguments of one statement or expression,
// keeping the first error.
type reader struct {
	path string
	args []any
	err  error
}

func (r *reader) at(i int) string {
	return r.path + "[" + strconv.Itoa(i+1) + "]"
}

func (r *reader) arity(min, max int, name string) bool {
	if n := len(r.args); n < min || n > max {
		r.err = shape(r.path, fmt.Sprintf("%s with %d-%d operands", name, min, max), r.args)
		return false
	}
	return true
}

func (r *reader) has(i int) bool {
	return i < len(r.args)
}

func (r *reader) str(i int) string {
	if r.err != nil {
		return ""
	}
	s, ok := r.args[i].(string)
	if !ok {
		r.err = shape(r.at(i), "string", r.args[i])
	}
	return s
}

func (r *reader) int(i int) int {
	if r.err != nil {
		return 0
	}
	n, ok := toInt(r.args[i])
	if !ok {
		r.err = shape(r.at(i), "integer", r.args[i])
	}
	return n
}

func (r *reader) expr(i int) Expression {
	if r.err != nil {
		return nil
	}
	e, err := decodeExpression(r.args[i], r.at(i))
	r.err = err
	return e
}

func (r *reader) params(i int) []Expression {
	if r.err != nil || !r.has(i) || r.args[i] == nil {
		return nil
	}
	var out []Expression
	out, r.err = decodeParams(r.args[i], r.at(i))
	return out
}

func (r *reader) strs(i int) []string {
	if r.err != nil || r.args[i] == nil {
		return nil
	}
	var out []string
	out, r.err = decodeStrings(r.args[i], r.at(i))
	return out
}

func (r *reader) hash(i int) *Hash {
	if r.err != nil || !r.has(i) {
		return nil
	}
	var h *Hash
	h, r.err = decodeHash(r.args[i], r.at(i))
	return h
}

func (r *reader) blocks(i int) *NamedBlocks {
	if r.err != nil || !r.has(i) {
		return nil
	}
	var b *NamedBlocks
	b, r.err = decodeNamedBlocks(r.args[i], r.at(i))
	return b
}

func (r *reader) block(i int) *Block {
	if r.err != nil || !r.has(i) {
		return nil
	}
	var b *Block
	b, r.err = decodeBlock(r.args[i], r.at(i))
	return b
}

func (r *reader) statements(i int) []Statement {
	if r.err != nil || r.args[i] == nil {
		return nil
	}
	var out []Statement
	out, r.err = decodeStatements(r.args[i], r.at(i))
	return out
}

func opcode(v any, path, kind string) ([]any, int, error) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil, 0, shape(path, kind+" array", v)
	}
	op, ok := toInt(arr[0])
	if !ok {
		return nil, 0, shape(path+"[0]", kind+" opcode", arr[0])
	}
	return arr[1:], op, nil
}

func decodeStatements(v any, path string) ([]Statement, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, shape(path, "statement list", v)
	}
	out := make([]Statement, 0, len(arr))
	for i, item := range arr {
		s, err := decodeStatement(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeStatement(v any, path string) (Statement, error) {
	args, op, err := opcode(v, path, "statement")
	if err != nil {
		return nil, err
	}
	r := &reader{path: path, args: args}
	var s Statement

	switch StatementOp(op) {
	case OpText:
		if r.arity(1, 1, "text") {
			s = &Text{Value: r.str(0)}
		}
	case OpComment:
		if r.arity(1, 1, "comment") {
			s = &Comment{Value: r.str(0)}
		}
	case OpAppend:
		if r.arity(1, 1, "append") {
			s = &Append{Value: r.expr(0)}
		}
	case OpTrustingAppend:
		if r.arity(1, 1, "trusting append") {
			s = &TrustingAppend{Value: r.expr(0)}
		}
	case OpOpenElement:
		if r.arity(1, 1, "open element") {
			s = &OpenElement{Tag: r.str(0)}
		}
	case OpOpenElementWithSplat:
		if r.arity(1, 1, "open element") {
			s = &OpenElementWithSplat{Tag: r.str(0)}
		}
	case OpFlushElement:
		if r.arity(0, 0, "flush element") {
			s = &FlushElement{}
		}
	case OpCloseElement:
		if r.arity(0, 0, "close element") {
			s = &CloseElement{}
		}
	case OpStaticAttr:
		if r.arity(2, 2, "static attribute") {
			s = &StaticAttr{Name: r.str(0), Value: r.str(1)}
		}
	case OpDynamicAttr:
		if r.arity(2, 2, "dynamic attribute") {
			s = &DynamicAttr{Name: r.str(0), Value: r.expr(1)}
		}
	case OpTrustingDynamicAttr:
		if r.arity(2, 2, "trusting attribute") {
			s = &TrustingDynamicAttr{Name: r.str(0), Value: r.expr(1)}
		}
	case OpAttrSplat:
		if r.arity(1, 1, "attribute splat") {
			s = &AttrSplat{Symbol: r.int(0)}
		}
	case OpComponent:
		if r.arity(1, 4, "component") {
			c := &Component{}
			if name, ok := args[0].(string); ok {
				c.Tag = name
			} else {
				c.Dynamic = r.expr(0)
			}
			if r.has(1) {
				c.Attrs = r.statements(1)
			}
			c.Args = r.hash(2)
			c.Blocks = r.blocks(3)
			s = c
		}
	case OpYield:
		if r.arity(1, 2, "yield") {
			s = &Yield{Symbol: r.int(0), Params: r.params(1)}
		}
	case OpBlock:
		if r.arity(1, 4, "block") {
			s = &InvokeBlock{Name: r.str(0), Params: r.params(1), Hash: r.hash(2), Blocks: r.blocks(3)}
		}
	case OpDynamicComponent:
		if r.arity(1, 4, "dynamic component") {
			s = &DynamicComponent{Definition: r.expr(0), Params: r.params(1), Hash: r.hash(2), Blocks: r.blocks(3)}
		}
	case OpInElement:
		if r.arity(2, 3, "in-element") {
			in := &InElement{Destination: r.expr(0), Block: r.block(1)}
			if r.has(2) {
				in.InsertBefore = r.expr(2)
			}
			s = in
		}
	case OpWithDynamicVars:
		if r.arity(2, 2, "with-dynamic-vars") {
			s = &WithDynamicVars{Vars: r.hash(0), Block: r.block(1)}
		}
	case OpIf, OpUnless:
		if r.arity(2, 3, "if") {
			s = &If{Condition: r.expr(0), Block: r.block(1), Inverse: r.block(2), Unless: StatementOp(op) == OpUnless}
		}
	case OpEach:
		if r.arity(3, 4, "each") {
			e := &Each{List: r.expr(0), Block: r.block(2), Inverse: r.block(3)}
			if args[1] != nil {
				e.Key = r.expr(1)
			}
			s = e
		}
	case OpLet:
		if r.arity(2, 2, "let") {
			s = &Let{Params: r.params(0), Block: r.block(1)}
		}
	default:
		return nil, shape(path+"[0]", "statement opcode", op)
	}

	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}

func decodeExpression(v any, path string) (Expression, error) {
	if _, isArray := v.([]any); !isArray {
		lit, err := literal(v, path)
		if err != nil {
			return nil, err
		}
		return &Literal{Value: lit}, nil
	}
	args, op, err := opcode(v, path, "expression")
	if err != nil {
		return nil, err
	}
	r := &reader{path: path, args: args}
	var e Expression

	switch ExpressionOp(op) {
	case OpGetSymbol:
		if r.arity(1, 2, "get symbol") {
			g := &GetSymbol{Symbol: r.int(0)}
			if r.has(1) {
				g.Path = r.strs(1)
			}
			e = g
		}
	case OpGetFree:
		if r.arity(1, 2, "get free") {
			g := &GetFree{Name: r.str(0)}
			if r.has(1) {
				g.Path = r.strs(1)
			}
			e = g
		}
	case OpCall:
		if r.arity(1, 3, "call") {
			e = &Call{Name: r.str(0), Params: r.params(1), Hash: r.hash(2)}
		}
	case OpConcat:
		if r.arity(1, 1, "concat") {
			e = &Concat{Parts: r.params(0)}
		}
	case OpHasBlock:
		if r.arity(1, 1, "has-block") {
			e = &HasBlock{Symbol: r.int(0)}
		}
	case OpHasBlockParams:
		if r.arity(1, 1, "has-block-params") {
			e = &HasBlockParams{Symbol: r.int(0)}
		}
	case OpCurryComponent:
		if r.arity(1, 3, "curry component") {
			e = &CurryComponent{Definition: r.expr(0), Params: r.params(1), Hash: r.hash(2)}
		}
	case OpGetDynamicVar:
		if r.arity(1, 1, "get dynamic var") {
			e = &GetDynamicVar{Name: r.expr(0)}
		}
	case OpUndefined:
		if r.arity(0, 0, "undefined") {
			e = &Undefined{}
		}
	default:
		return nil, shape(path+"[0]", "expression opcode", op)
	}

	if r.err != nil {
		return nil, r.err
	}
	return e, nil
}

func decodeParams(v any, path string) ([]Expression, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, shape(path, "parameter list", v)
	}
	out := make([]Expression, 0, len(arr))
	for i, item := range arr {
		e, err := decodeExpression(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeStrings(v any, path string) ([]string, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, shape(path, "string list", v)
	}
	out := make([]string, len(arr))
	for i, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, shape(fmt.Sprintf("%s[%d]", path, i), "string", item)
		}
		out[i] = s
	}
	return out, nil
}

func decodeInts(v any, path string) ([]int, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, shape(path, "symbol list", v)
	}
	out := make([]int, len(arr))
	for i, item := range arr {
		n, ok := toInt(item)
		if !ok {
			return nil, shape(fmt.Sprintf("%s[%d]", path, i), "integer", item)
		}
		out[i] = n
	}
	return out, nil
}

func pair(v any) ([]any, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return nil, false
	}
	return arr, true
}

func decodeHash(v any, path string) (*Hash, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := pair(v)
	if !ok {
		return nil, shape(path, "[[keys], [values]]", v)
	}
	keys, err := decodeStrings(arr[0], path+"[0]")
	if err != nil {
		return nil, err
	}
	values, err := decodeParams(arr[1], path+"[1]")
	if err != nil {
		return nil, err
	}
	if len(keys) != len(values) {
		return nil, shape(path, fmt.Sprintf("%d values", len(keys)), arr[1])
	}
	return &Hash{Keys: keys, Values: values}, nil
}

func decodeNamedBlocks(v any, path string) (*NamedBlocks, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := pair(v)
	if !ok {
		return nil, shape(path, "[[names], [blocks]]", v)
	}
	names, err := decodeStrings(arr[0], path+"[0]")
	if err != nil {
		return nil, err
	}
	list, ok := arr[1].([]any)
	if !ok || len(list) != len(names) {
		return nil, shape(path+"[1]", fmt.Sprintf("%d blocks", len(names)), arr[1])
	}
	out := &NamedBlocks{Names: names, Blocks: make([]*Block, len(list))}
	for i, item := range list {
		b, err := decodeBlock(item, fmt.Sprintf("%s[1][%d]", path, i))
		if err != nil {
			return nil, err
		}
		out.Blocks[i] = b
	}
	return out, nil
}

func decodeBlock(v any, path string) (*Block, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 || len(arr) > 2 {
		return nil, shape(path, "[[statements], [parameters]]", v)
	}
	stmts, err := decodeStatements(arr[0], path+"[0]")
	if err != nil {
		return nil, err
	}
	b := &Block{Statements: stmts}
	if len(arr) == 2 {
		if b.Parameters, err = decodeInts(arr[1], path+"[1]"); err != nil {
			return nil, err
		}
	}
	return b, nil
}
