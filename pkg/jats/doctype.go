package jats

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"emperror.dev/errors"
	"github.com/jacoelho/xsd/pkg/xmltext"
)

type Doctype struct {
	Name     string `json:"name" yaml:"name"`
	PublicID string `json:"publicId,omitempty" yaml:"publicId,omitempty"`
	SystemID string `json:"systemId,omitempty" yaml:"systemId,omitempty"`
}

func (d *Doctype) String() string {
	str := "<!DOCTYPE " + d.Name
	switch {
	case d.PublicID != "":
		str += ` PUBLIC "` + d.PublicID + `" "` + d.SystemID + `"`
	case d.SystemID != "":
		str += ` SYSTEM "` + d.SystemID + `"`
	}
	return str + ">"
}

var doctypeRegexp = regexp.MustCompile(`(?s)^DOCTYPE\s+([^\s\[>]+)(?:\s+(?:PUBLIC\s+(?:"([^"]*)"|'([^']*)')\s*(?:"([^"]*)"|'([^']*)')?|SYSTEM\s+(?:"([^"]*)"|'([^']*)')))?`)

func parseDoctype(directive string) (*Doctype, bool) {
	m := doctypeRegexp.FindStringSubmatch(directive)
	if m == nil {
		return nil, false
	}
	return &Doctype{
		Name:     m[1],
		PublicID: strings.TrimSpace(m[2] + m[3]),
		SystemID: strings.TrimSpace(m[4] + m[5] + m[6] + m[7]),
	}, true
}

// ReadDoctype returns the DOCTYPE declaration in the prolog of r.
// ErrNoDoctype is returned if the root element starts without one.
func ReadDoctype(r io.Reader) (*Doctype, error) {
	dec := xmltext.NewDecoder(r, xmltext.EmitDirectives(true))
	for {
		tok, err := dec.ReadToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoDoctype
			}
			return nil, errors.Wrap(err, "cannot read xml prolog")
		}
		switch tok.Kind() {
		case xmltext.KindDirective:
			if doctype, ok := parseDoctype(string(dec.SpanBytes(tok.TextSpan()))); ok {
				return doctype, nil
			}
		case xmltext.KindStartElement:
			return nil, ErrNoDoctype
		}
	}
}

// DropDoctype removes the DOCTYPE declaration from data, like xmllint --dropdtd.
// Data without DOCTYPE is returned unchanged.
func DropDoctype(data []byte) ([]byte, error) {
	dec := xmltext.NewDecoder(
		bytes.NewReader(data),
		xmltext.EmitDirectives(true),
		xmltext.EmitComments(true),
		xmltext.EmitPI(true),
	)
	for {
		start := dec.InputOffset()
		tok, err := dec.ReadToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return data, nil
			}
			return nil, errors.Wrap(err, "cannot read xml prolog")
		}
		switch tok.Kind() {
		case xmltext.KindDirective:
			if _, ok := parseDoctype(string(dec.SpanBytes(tok.TextSpan()))); !ok {
				continue
			}
			end := dec.InputOffset()
			result := make([]byte, 0, len(data)-int(end-start))
			result = append(result, data[:start]...)
			return append(result, data[end:]...), nil
		case xmltext.KindStartElement:
			return data, nil
		}
	}
}
