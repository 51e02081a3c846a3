// Trellis CLI - renders, compiles and inspects template projects
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("trellis.cli")

var usage = `Usage: trellis [-v] <command> [flags] [args...]

Commands:
  render    Render a template of the project to HTML
  compile   Compile every template and component and store them
  disasm    Print the bytecode of a template
  hash      Print the structural hash of templates

Run 'trellis <command> --help' for the flags of a command.

Examples:
  trellis render                     # Render the manifest's entry template
  trellis render pages/about --var theme=dark
  trellis compile --list             # Store templates, then list the store
  trellis disasm main
  trellis hash ./templates/main.json
`

type command struct {
	name string
	run  func(afs afero.Fs, args []string, out io.Writer) error
}

var commands = []command{
	{"render", runRender},
	{"compile", runCompile},
	{"disasm", runDisasm},
	{"hash", runHash},
}

func main() {
	global := flag.NewFlagSet("trellis", flag.ContinueOnError)
	verbosity := global.CountP("verbose", "v", "Increase log verbosity (repeatable)")
	global.SetInterspersed(false)
	global.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fmt.Fprintf(os.Stderr, "\nGlobal flags:\n")
		global.PrintDefaults()
	}
	if err := global.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	commonlog.Configure(*verbosity, nil)

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		if err := c.run(afero.NewOsFs(), args[1:], os.Stdout); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			log.Errorf("%s: %v", c.name, err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", args[0])
	global.Usage()
	os.Exit(2)
}

// newFlagSet creates the flag set of a subcommand. Every subcommand
// accepts -C to pick the directory the project is searched from.
func newFlagSet(name, synopsis string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	dir := fs.StringP("dir", "C", ".", "Directory to search for "+manifestName+" from")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: trellis %s %s\n\nFlags:\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs, dir
}
