package profile

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// MaxDocumentBytes bounds the size of a profile document.
const MaxDocumentBytes = 1 << 20

// Parse decodes a YAML profile. Unknown fields are rejected so typos in the
// document fail loudly instead of silently dropping content.
func Parse(data []byte) (*Profile, error) {
	if len(data) > MaxDocumentBytes {
		return nil, xerrors.Newf("profile document is %d bytes, limit is %d", len(data), MaxDocumentBytes)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, xerrors.New("profile document is empty")
		}
		return nil, xerrors.Wrap(err, "decode profile yaml")
	}

	// a second document in the same stream is almost always a mistake
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, xerrors.New("profile document contains more than one yaml document")
	}
	return &p, nil
}

// Marshal encodes p as YAML.
func Marshal(p *Profile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, xerrors.Wrap(err, "encode profile yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, xerrors.Wrap(err, "encode profile yaml")
	}
	return buf.Bytes(), nil
}
