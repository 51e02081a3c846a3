package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/chazu/trellis/compiler/hash"
)

// runHash prints the structural hash of the given wire files, or of every
// source of the project when none are given.
func runHash(afs afero.Fs, args []string, out io.Writer) error {
	fs, dir := newFlagSet("hash", "[flags] [files...]")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() > 0 {
		for _, path := range fs.Args() {
			t, err := readTemplate(afs, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s  %s\n", hash.Hex(t), path)
		}
		return nil
	}

	p, err := loadProject(afs, *dir)
	if err != nil {
		return err
	}
	for _, u := range p.Units {
		fmt.Fprintf(out, "%s  %s\n", hash.Hex(u.Template), u.Name)
	}
	return nil
}
