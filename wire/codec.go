package wire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// rawTemplate is the object form shared by the JSON and CBOR codecs.
type rawTemplate struct {
	ID         string   `json:"id" cbor:"id"`
	Symbols    []string `json:"symbols" cbor:"symbols"`
	HasEval    bool     `json:"hasEval" cbor:"hasEval"`
	Block      any      `json:"block" cbor:"block"`
	ModuleName string   `json:"moduleName,omitempty" cbor:"moduleName,omitempty"`
}

func (t *Template) raw() *rawTemplate {
	return &rawTemplate{
		ID:         t.ID,
		Symbols:    t.Symbols,
		HasEval:    t.HasEval,
		Block:      EncodeBlock(t.Block),
		ModuleName: t.ModuleName,
	}
}

func fromRaw(r *rawTemplate) (*Template, error) {
	block, err := decodeBlock(r.Block, "template.block")
	if err != nil {
		return nil, err
	}
	if block == nil {
		block = &Block{}
	}
	return &Template{
		ID:         r.ID,
		ModuleName: r.ModuleName,
		Symbols:    r.Symbols,
		HasEval:    r.HasEval,
		Block:      block,
	}, nil
}

// ParseJSON decodes a template object from JSON.
func ParseJSON(data []byte) (*Template, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var r rawTemplate
	if err := dec.Decode(&r); err != nil {
		return nil, errors.Wrap(err, "wire: parse template")
	}
	return fromRaw(&r)
}

// MarshalJSON implements json.Marshaler.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.raw())
}

// cborEncMode uses canonical encoding so equal templates produce equal
// bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalTemplate serializes a template to canonical CBOR.
func MarshalTemplate(t *Template) ([]byte, error) {
	return cborEncMode.Marshal(t.raw())
}

// UnmarshalTemplate deserializes a template from CBOR bytes.
func UnmarshalTemplate(data []byte) (*Template, error) {
	var r rawTemplate
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "wire: unmarshal template")
	}
	return fromRaw(&r)
}
