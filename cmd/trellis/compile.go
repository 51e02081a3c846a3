package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/store"
)

func runCompile(afs afero.Fs, args []string, out io.Writer) error {
	fs, dir := newFlagSet("compile", "[flags]")
	storePath := fs.String("store", "", "Template store to write (overrides store.path)")
	list := fs.BoolP("list", "l", false, "List the store after compiling")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := loadProject(afs, *dir)
	if err != nil {
		return err
	}

	// Everything is compiled before anything is stored, so a broken
	// project leaves the store untouched.
	ctx := p.newContext()
	for _, u := range p.Units {
		c := compiler.NewTemplate(u.Template, u.Name)
		if u.Definition != nil {
			c = u.Definition.Layout
		}
		if _, err := c.Compile(ctx); err != nil {
			return errors.Wrapf(err, "compiling %s", u.Path)
		}
	}
	log.Infof("compiled %d units into %d instructions", len(p.Units), ctx.Program.Heap.Len())

	if *storePath == "" {
		*storePath = p.Manifest.StorePath()
	}
	s, err := store.Open(*storePath)
	if err != nil {
		return err
	}
	defer s.Close()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, u := range p.Units {
		kind := store.KindTemplate
		if u.Component {
			kind = store.KindComponent
		}
		sum, changed, err := s.Put(u.Name, kind, u.Template)
		if err != nil {
			return err
		}
		status := "unchanged"
		if changed {
			status = "stored"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Name, kind, sum[:12], status)
	}

	if *list {
		entries, err := s.List()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\n")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.Hash[:12], e.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
	}
	return w.Flush()
}
