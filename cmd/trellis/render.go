package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/chazu/trellis/compiler"
	"github.com/chazu/trellis/dom"
	"github.com/chazu/trellis/reference"
	"github.com/chazu/trellis/tracked"
	"github.com/chazu/trellis/vm"
)

func runRender(afs afero.Fs, args []string, out io.Writer) error {
	fs, dir := newFlagSet("render", "[flags] [template]")
	selfPath := fs.StringP("self", "s", "", "JSON file used as the template's self (overrides render.self)")
	vars := fs.StringToStringP("var", "d", nil, "Dynamic variable as key=value (repeatable)")
	revalidate := fs.Bool("always-revalidate", false, "Re-run every region on rerender")
	rerender := fs.Bool("rerender", false, "Rerender once and report the DOM mutations it made")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return errors.New("render takes at most one template name")
	}

	p, err := loadProject(afs, *dir)
	if err != nil {
		return err
	}
	name, t, err := p.template(fs.Arg(0))
	if err != nil {
		return err
	}

	if *selfPath == "" {
		*selfPath = p.Manifest.SelfPath()
	}
	self, err := readSelf(afs, *selfPath)
	if err != nil {
		return err
	}

	dynamicVars := make(map[string]reference.Reference)
	values := maps.Clone(p.Manifest.Render.DynamicVars)
	if values == nil {
		values = make(map[string]string)
	}
	maps.Copy(values, *vars)
	for k, v := range values {
		dynamicVars[k] = reference.Const(v)
	}

	opts := []vm.RenderOption{vm.WithDynamicVars(dynamicVars)}
	if *revalidate || p.Manifest.Render.AlwaysRevalidate {
		opts = append(opts, vm.WithAlwaysRevalidate())
	}

	doc := dom.NewDocument()
	rt := vm.NewRuntime(p.newContext(), doc, nil)
	res, err := rt.Render(compiler.NewTemplate(t, name), doc.Body(), reference.Const(self), opts...)
	if err != nil {
		return errors.Wrapf(err, "rendering %s", name)
	}
	defer res.Destroy()
	log.Debugf("rendered %s with %d mutations", name, doc.Mutations())

	if *rerender {
		doc.ResetMutations()
		if err := res.Rerender(); err != nil {
			return errors.Wrapf(err, "rerendering %s", name)
		}
		log.Noticef("rerender of %s made %d mutations", name, doc.Mutations())
	}
	_, err = fmt.Fprintln(out, dom.InnerHTML(doc.Body()))
	return err
}

// readSelf decodes a JSON object into a tracked map. An empty path yields
// an empty self.
func readSelf(afs afero.Fs, path string) (*tracked.Map, error) {
	values := make(map[string]any)
	if path == "" {
		return tracked.NewMap(values), nil
	}
	data, err := afero.ReadFile(afs, path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "decoding self %s", path)
	}
	return tracked.NewMap(values), nil
}
