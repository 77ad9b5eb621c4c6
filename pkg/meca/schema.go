package meca

import (
	"bytes"
	"io/fs"
	"sync"

	"emperror.dev/errors"
	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"
	"github.com/ocfl-archive/gomeca/data/specs"
	"github.com/ocfl-archive/gomeca/pkg/jats"
)

func compileManifestSchema(fsys fs.FS, location string) (*xsd.Schema, error) {
	schema, err := xsd.Load(fsys, location)
	if err != nil {
		return nil, errors.Wrapf(ErrSchemaUnavailable, "cannot load '%s': %v", location, err)
	}
	return schema, nil
}

var loadManifestSchema = sync.OnceValues(func() (*xsd.Schema, error) {
	return compileManifestSchema(specs.MECASchemaFS, specs.ManifestSchema)
})

// ValidateManifestSchema checks manifest data against the MECA manifest schema
// and returns the violations. A DOCTYPE in data is ignored. If the schema
// itself cannot be loaded, the error wraps ErrSchemaUnavailable.
func ValidateManifestSchema(data []byte) ([]string, error) {
	schema, err := loadManifestSchema()
	if err != nil {
		return nil, err
	}
	data, err = jats.DropDoctype(data)
	if err != nil {
		return nil, errors.Wrap(err, "cannot drop doctype from manifest")
	}
	if err := schema.Validate(bytes.NewReader(data)); err != nil {
		if violations, ok := xsderrors.AsValidations(err); ok {
			result := make([]string, 0, len(violations))
			for _, v := range violations {
				result = append(result, v.Error())
			}
			return result, nil
		}
		return nil, errors.Wrap(err, "cannot validate manifest against schema")
	}
	return nil, nil
}
