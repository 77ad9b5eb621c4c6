package report

import (
	"encoding/json"
	"io"
	"text/template"
	"time"

	"emperror.dev/errors"
	"github.com/Masterminds/sprig/v3"
	"github.com/dustin/go-humanize"
	"github.com/ocfl-archive/gomeca/pkg/validation"
	"gopkg.in/yaml.v2"
)

// Meta describes the validation run a report belongs to.
type Meta struct {
	File     string            `json:"file" yaml:"file"`
	Size     uint64            `json:"size" yaml:"size"`
	Session  string            `json:"session" yaml:"session"`
	Started  time.Time         `json:"started" yaml:"started"`
	Duration time.Duration     `json:"duration" yaml:"duration"`
	Digests  map[string]string `json:"digests,omitempty" yaml:"digests,omitempty"`
}

type document struct {
	Meta     *Meta               `json:"meta" yaml:"meta"`
	Valid    bool                `json:"valid" yaml:"valid"`
	Errors   []*validation.Error `json:"errors" yaml:"errors"`
	Warnings []*validation.Error `json:"warnings" yaml:"warnings"`
}

const textTemplate = `{{ .Meta.File }}{{ if .Meta.Size }} [{{ bytes .Meta.Size }}]{{ end }}
{{- range $alg, $sum := .Meta.Digests }}
  {{ $alg }}: {{ $sum }}
{{- end }}
{{- $context := "" }}
{{- range .Errors }}
{{- if ne .Context $context }}{{ $context = .Context }}
[{{ .Context }}]{{ end }}
  #{{ .Code }} - {{ .Description }}{{ with .Description2 }} [{{ trunc 200 . }}]{{ end }}
{{- end }}
{{- $context = "" }}
{{- range .Warnings }}
{{- if ne .Context $context }}{{ $context = .Context }}
[{{ .Context }}]{{ end }}
  #{{ .Code }} - {{ .Description }}{{ with .Description2 }} [{{ trunc 200 . }}]{{ end }}
{{- end }}
{{ if .Valid }}valid{{ else }}{{ len .Errors }} {{ plural "error" "errors" (len .Errors) }}{{ end }}, {{ len .Warnings }} {{ plural "warning" "warnings" (len .Warnings) }}{{ if .Meta.Duration }} ({{ .Meta.Duration }}){{ end }}
`

var textReport = template.Must(template.New("report").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{"bytes": humanize.Bytes}).
	Parse(textTemplate))

// Render writes the compacted status in format (text, json or yaml).
func Render(w io.Writer, format string, status *validation.Status, meta *Meta) error {
	if status == nil {
		return errors.New("no validation status")
	}
	if meta == nil {
		meta = &Meta{}
	}
	status.Compact()
	doc := &document{
		Meta:     meta,
		Valid:    status.Valid(),
		Errors:   status.Errors,
		Warnings: status.Warnings,
	}
	switch format {
	case "text", "":
		if err := textReport.Execute(w, doc); err != nil {
			return errors.Wrap(err, "cannot execute report template")
		}
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return errors.Wrap(err, "cannot marshal report")
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return errors.Wrap(err, "cannot write report")
		}
	case "yaml":
		data, err := yaml.Marshal(doc)
		if err != nil {
			return errors.Wrap(err, "cannot marshal report")
		}
		if _, err := w.Write(data); err != nil {
			return errors.Wrap(err, "cannot write report")
		}
	default:
		return errors.Errorf("unknown report format '%s'", format)
	}
	return nil
}
