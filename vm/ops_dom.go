package vm

import (
	"github.com/chazu/trellis/dom"
	"github.com/chazu/trellis/pkg/bytecode"
	"github.com/chazu/trellis/reference"
)

func (vm *VM) opText(op bytecode.Op) error {
	text, err := vm.constantString(op, op.Op1)
	if err != nil {
		return err
	}
	vm.elements.appendText(text)
	return nil
}

func (vm *VM) opComment(op bytecode.Op) error {
	text, err := vm.constantString(op, op.Op1)
	if err != nil {
		return err
	}
	vm.elements.appendComment(text)
	return nil
}

func contentType(v any) bytecode.ContentType {
	if isComponentValue(v) {
		return bytecode.ContentComponent
	}
	if _, ok := v.(dom.SafeString); ok {
		return bytecode.ContentSafeString
	}
	return bytecode.ContentString
}

func contentTypeFilter(v any) any {
	return contentType(v)
}

func (vm *VM) opContentType(op bytecode.Op) error {
	ref, err := peekAs[reference.Reference](vm, op, "reference")
	if err != nil {
		return err
	}
	v := ref.Value()
	vm.assert(ref, v, contentTypeFilter)
	vm.push(contentType(v))
	return nil
}

func (vm *VM) opAppendText(op bytecode.Op) error {
	ref, err := vm.popRef(op)
	if err != nil {
		return err
	}
	text := dom.NormalizeString(ref.Value())
	node := vm.elements.appendText(text)
	if !ref.IsConst() {
		vm.updateWith(&updateTextOp{node: node, ref: ref, last: text})
	}
	return nil
}

func (vm *VM) appendMarkup(op bytecode.Op, safe bool) error {
	ref, err := vm.popRef(op)
	if err != nil {
		return err
	}
	v := ref.Value()
	var markup string
	if safe {
		s, ok := v.(dom.SafeString)
		if !ok {
			return internal(op.Code, "safe string", v)
		}
		markup = s.ToHTML()
	} else {
		markup = dom.NormalizeString(v)
	}
	_, err = vm.elements.appendHTML(markup)
	return err
}

func (vm *VM) opAppendHTML(op bytecode.Op) error {
	return vm.appendMarkup(op, false)
}

func (vm *VM) opAppendSafeHTML(op bytecode.Op) error {
	return vm.appendMarkup(op, true)
}

func (vm *VM) opOpenElement(op bytecode.Op) error {
	tag, err := vm.constantString(op, op.Op1)
	if err != nil {
		return err
	}
	vm.elements.openElement(tag)
	return nil
}

func (vm *VM) opFlushElement(bytecode.Op) error {
	return vm.elements.flushElement()
}

func (vm *VM) opCloseElement(bytecode.Op) error {
	return vm.elements.closeElement()
}

func (vm *VM) constructing(op bytecode.Op) (dom.Node, error) {
	el := vm.elements.constructing
	if el == nil {
		return nil, internal(op.Code, "element under construction", nil)
	}
	return el, nil
}

func (vm *VM) opStaticAttr(op bytecode.Op) error {
	el, err := vm.constructing(op)
	if err != nil {
		return err
	}
	name, err := vm.constantString(op, op.Op1)
	if err != nil {
		return err
	}
	value, err := vm.constantString(op, op.Op2)
	if err != nil {
		return err
	}
	vm.elements.dom.SetAttribute(el, name, value)
	return nil
}

// attributeValue converts v to the text written to an attribute. null,
// undefined and false remove the attribute; true sets it empty.
func attributeValue(tag, name string, v any, trusting bool) (string, bool) {
	switch x := v.(type) {
	case nil, reference.UndefinedValue:
		return "", false
	case bool:
		return "", x
	}
	if !trusting {
		v = dom.SanitizeAttributeValue(tag, name, v)
	}
	return dom.NormalizeString(v), true
}

func (vm *VM) opDynamicAttr(op bytecode.Op) error {
	el, err := vm.constructing(op)
	if err != nil {
		return err
	}
	name, err := vm.constantString(op, op.Op1)
	if err != nil {
		return err
	}
	ref, err := vm.popRef(op)
	if err != nil {
		return err
	}
	attr := &updateAttributeOp{
		element:  el,
		tag:      vm.elements.dom.TagName(el),
		name:     name,
		ref:      ref,
		trusting: op.Op2 != 0,
	}
	attr.last, attr.present = attributeValue(attr.tag, name, ref.Value(), attr.trusting)
	if attr.present {
		vm.elements.dom.SetAttribute(el, name, attr.last)
	}
	if !ref.IsConst() {
		vm.updateWith(attr)
	}
	return nil
}

func (vm *VM) opPushRemoteElement(op bytecode.Op) error {
	destRef, err := vm.popRef(op)
	if err != nil {
		return err
	}
	beforeRef, err := vm.popRef(op)
	if err != nil {
		return err
	}
	dest := destRef.Value()
	insertBefore := beforeRef.Value()
	vm.assert(destRef, dest, nil)
	vm.assert(beforeRef, insertBefore, nil)

	block := vm.elements.pushRemoteElement(dest, insertBefore)
	tb := vm.elements.dom
	vm.owner().register(func() {
		clearBounds(tb, block)
	})
	return nil
}

func (vm *VM) opPopRemoteElement(bytecode.Op) error {
	return vm.elements.popRemoteElement()
}
