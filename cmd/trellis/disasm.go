package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/store"
	"github.com/chazu/trellis/wire"
)

func runDisasm(afs afero.Fs, args []string, out io.Writer) error {
	fs, dir := newFlagSet("disasm", "[flags] [template]")
	stored := fs.Bool("stored", false, "Read the template from the store instead of the sources")
	component := fs.BoolP("component", "c", false, "Disassemble a component layout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := loadProject(afs, *dir)
	if err != nil {
		return err
	}

	var unit *compiler.CompilableTemplate
	name := fs.Arg(0)
	switch {
	case *component:
		def, ok := p.Registry.LookupComponent(name, nil)
		if !ok || def.Layout == nil {
			return errors.Errorf("no component named %q", name)
		}
		unit = def.Layout
	case *stored:
		if name == "" {
			name = p.Manifest.Templates.Entry
		}
		var t *wire.Template
		t, err = storedTemplate(p, name)
		if err != nil {
			return err
		}
		unit = compiler.NewTemplate(t, name)
	default:
		var t *wire.Template
		name, t, err = p.template(name)
		if err != nil {
			return err
		}
		unit = compiler.NewTemplate(t, name)
	}

	ctx := p.newContext()
	h, err := unit.Compile(ctx)
	if err != nil {
		return errors.Wrapf(err, "compiling %s", name)
	}
	_, err = fmt.Fprint(out, ctx.Program.DisassembleWithName(h, name))
	return err
}

func storedTemplate(p *project, name string) (*wire.Template, error) {
	s, err := store.Open(p.Manifest.StorePath())
	if err != nil {
		return nil, err
	}
	defer s.Close()
	t, entry, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded %s %s (%s) from the store", entry.Kind, entry.Name, entry.Hash)
	return t, nil
}
