package specs

import (
	"embed"
)

// MECASchemaFS holds the MECA manifest schema and the xlink schema it imports.
//
//go:embed manifest.xsd
//go:embed xlink.xsd
var MECASchemaFS embed.FS

const ManifestSchema = "manifest.xsd"
