package manifest

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schema constrains the decoded trellis.toml. Unknown top-level tables
// and keys are rejected.
const schema = `
project?: close({
	name?:      string & =~"^[A-Za-z][A-Za-z0-9_-]*$"
	namespace?: string & =~"^[A-Za-z][A-Za-z0-9_-]*$"
	version?:   string
})
templates?: close({
	dirs?:       [...string]
	components?: string
	entry?:      string & !=""
})
dependencies?: [string]: close({
	path:       string & !=""
	namespace?: string
})
render?: close({
	self?:                string
	"always-revalidate"?: bool
	"dynamic-vars"?:      [string]: string
})
store?: close({
	path?: string & !=""
})
`

func validate(raw map[string]any) error {
	ctx := cuecontext.New()
	s := ctx.CompileString("close({" + schema + "})")
	if err := s.Err(); err != nil {
		return err
	}
	v := ctx.Encode(raw)
	if err := v.Err(); err != nil {
		return err
	}
	return s.Unify(v).Validate(cue.Concrete(true))
}
