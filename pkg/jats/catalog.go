package jats

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"emperror.dev/errors"
)

// Catalog maps DOCTYPE declarations to DTD files in a local folder.
type Catalog struct {
	folder  string
	entries map[string]string
}

// NewCatalog creates a catalog for folder. Entries map public identifiers to
// paths relative to folder. Absolute paths are used as they are.
func NewCatalog(folder string, entries map[string]string) *Catalog {
	c := &Catalog{
		folder:  folder,
		entries: map[string]string{},
	}
	for publicID, file := range entries {
		c.entries[normalizePublicID(publicID)] = file
	}
	return c
}

func normalizePublicID(publicID string) string {
	return strings.Join(strings.Fields(publicID), " ")
}

func (c *Catalog) Folder() string {
	return c.folder
}

func (c *Catalog) abs(file string) string {
	if filepath.IsAbs(file) || c.folder == "" {
		return file
	}
	return filepath.Join(c.folder, filepath.FromSlash(file))
}

func exists(file string) bool {
	fi, err := os.Stat(file)
	return err == nil && !fi.IsDir()
}

// Resolve returns the local DTD for doctype. The public identifier is looked up
// first, then the base name of the system identifier inside the catalog folder.
func (c *Catalog) Resolve(doctype *Doctype) (string, error) {
	if c == nil || doctype == nil {
		return "", ErrNoDTD
	}
	if doctype.PublicID != "" {
		if file, ok := c.entries[normalizePublicID(doctype.PublicID)]; ok {
			file = c.abs(file)
			if !exists(file) {
				return "", errors.Errorf("dtd '%s' for '%s' does not exist", file, doctype.PublicID)
			}
			return file, nil
		}
	}
	if doctype.SystemID != "" && c.folder != "" {
		// system identifiers are usually urls
		file := c.abs(path.Base(doctype.SystemID))
		if exists(file) {
			return file, nil
		}
	}
	return "", errors.Wrapf(ErrNoDTD, "%s", doctype.String())
}

// ResolveFile reads the DOCTYPE of file and resolves it.
func (c *Catalog) ResolveFile(file string) (string, *Doctype, error) {
	fp, err := os.Open(file)
	if err != nil {
		return "", nil, errors.Wrapf(err, "cannot open '%s'", file)
	}
	defer fp.Close()
	doctype, err := ReadDoctype(fp)
	if err != nil {
		return "", nil, errors.Wrapf(err, "cannot read doctype of '%s'", file)
	}
	dtd, err := c.Resolve(doctype)
	if err != nil {
		return "", doctype, err
	}
	return dtd, doctype, nil
}
