package wire

// EncodeBlock returns the wire form of b, or nil for a nil block.
func EncodeBlock(b *Block) any {
	if b == nil {
		return nil
	}
	params := make([]any, len(b.Parameters))
	for i, p := range b.Parameters {
		params[i] = p
	}
	return []any{encodeStatements(b.Statements), params}
}

func encodeStatements(stmts []Statement) []any {
	out := make([]any, len(stmts))
	for i, s := range stmts {
		out[i] = EncodeStatement(s)
	}
	return out
}

func encodeParams(params []Expression) any {
	if params == nil {
		return nil
	}
	out := make([]any, len(params))
	for i, p := range params {
		out[i] = EncodeExpression(p)
	}
	return out
}

func encodeStrings(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func encodeHash(h *Hash) any {
	if h == nil {
		return nil
	}
	return []any{encodeStrings(h.Keys), encodeParams(h.Values)}
}

func encodeNamedBlocks(b *NamedBlocks) any {
	if b == nil {
		return nil
	}
	blocks := make([]any, len(b.Blocks))
	for i, block := range b.Blocks {
		blocks[i] = EncodeBlock(block)
	}
	return []any{encodeStrings(b.Names), blocks}
}

// EncodeStatement returns the wire form of s.
func EncodeStatement(s Statement) any {
	op := int(s.statementOp())
	switch x := s.(type) {
	case *Text:
		return []any{op, x.Value}
	case *Comment:
		return []any{op, x.Value}
	case *Append:
		return []any{op, EncodeExpression(x.Value)}
	case *TrustingAppend:
		return []any{op, EncodeExpression(x.Value)}
	case *OpenElement:
		return []any{op, x.Tag}
	case *OpenElementWithSplat:
		return []any{op, x.Tag}
	case *FlushElement, *CloseElement:
		return []any{op}
	case *StaticAttr:
		return []any{op, x.Name, x.Value}
	case *DynamicAttr:
		return []any{op, x.Name, EncodeExpression(x.Value)}
	case *TrustingDynamicAttr:
		return []any{op, x.Name, EncodeExpression(x.Value)}
	case *AttrSplat:
		return []any{op, x.Symbol}
	case *Component:
		var tag any = x.Tag
		if x.Dynamic != nil {
			tag = EncodeExpression(x.Dynamic)
		}
		return []any{op, tag, encodeStatements(x.Attrs), encodeHash(x.Args), encodeNamedBlocks(x.Blocks)}
	case *Yield:
		return []any{op, x.Symbol, encodeParams(x.Params)}
	case *InvokeBlock:
		return []any{op, x.Name, encodeParams(x.Params), encodeHash(x.Hash), encodeNamedBlocks(x.Blocks)}
	case *DynamicComponent:
		return []any{op, EncodeExpression(x.Definition), encodeParams(x.Params), encodeHash(x.Hash), encodeNamedBlocks(x.Blocks)}
	case *InElement:
		out := []any{op, EncodeExpression(x.Destination), EncodeBlock(x.Block)}
		if x.InsertBefore != nil {
			out = append(out, EncodeExpression(x.InsertBefore))
		}
		return out
	case *WithDynamicVars:
		return []any{op, encodeHash(x.Vars), EncodeBlock(x.Block)}
	case *If:
		return []any{op, EncodeExpression(x.Condition), EncodeBlock(x.Block), EncodeBlock(x.Inverse)}
	case *Each:
		var key any
		if x.Key != nil {
			key = EncodeExpression(x.Key)
		}
		return []any{op, EncodeExpression(x.List), key, EncodeBlock(x.Block), EncodeBlock(x.Inverse)}
	case *Let:
		return []any{op, encodeParams(x.Params), EncodeBlock(x.Block)}
	}
	return nil
}

// EncodeExpression returns the wire form of e.
func EncodeExpression(e Expression) any {
	op := int(e.expressionOp())
	switch x := e.(type) {
	case *Literal:
		return x.Value
	case *GetSymbol:
		if len(x.Path) == 0 {
			return []any{op, x.Symbol}
		}
		return []any{op, x.Symbol, encodeStrings(x.Path)}
	case *GetFree:
		if len(x.Path) == 0 {
			return []any{op, x.Name}
		}
		return []any{op, x.Name, encodeStrings(x.Path)}
	case *Call:
		return []any{op, x.Name, encodeParams(x.Params), encodeHash(x.Hash)}
	case *Concat:
		return []any{op, encodeParams(x.Parts)}
	case *HasBlock:
		return []any{op, x.Symbol}
	case *HasBlockParams:
		return []any{op, x.Symbol}
	case *CurryComponent:
		return []any{op, EncodeExpression(x.Definition), encodeParams(x.Params), encodeHash(x.Hash)}
	case *GetDynamicVar:
		return []any{op, EncodeExpression(x.Name)}
	case *Undefined:
		return []any{op}
	}
	return nil
}
