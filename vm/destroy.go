package vm

// owner collects the destructors registered while one region rendered.
// Destroying an owner destroys its children in creation order before
// running its own destructors, so inner work is torn down before outer.
type owner struct {
	children    []*owner
	destructors []func()
}

func (o *owner) child() *owner {
	c := &owner{}
	o.children = append(o.children, c)
	return c
}

func (o *owner) register(fn func()) {
	o.destructors = append(o.destructors, fn)
}

// destroy tears the owner down and leaves it empty for reuse.
func (o *owner) destroy() {
	children, destructors := o.children, o.destructors
	o.children, o.destructors = nil, nil
	for _, c := range children {
		c.destroy()
	}
	for _, fn := range destructors {
		fn()
	}
}
