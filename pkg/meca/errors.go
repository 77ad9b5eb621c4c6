package meca

import "emperror.dev/errors"

var ErrValidationFailed = errors.New("MECA validation failed")
var ErrNoManifest = errors.New("manifest.xml not found")
var ErrSchemaUnavailable = errors.New("MECA manifest schema not available")
