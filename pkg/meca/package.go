package meca

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"emperror.dev/errors"
)

// Package is an opened MECA zip container.
type Package struct {
	name   string
	reader *zip.ReadCloser
	files  map[string]*zip.File
}

func OpenPackage(name string) (*Package, error) {
	r, err := zip.OpenReader(name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open zip file '%s'", name)
	}
	p := &Package{
		name:   name,
		reader: r,
		files:  map[string]*zip.File{},
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		p.files[strings.TrimPrefix(filepath.ToSlash(f.Name), "./")] = f
	}
	return p, nil
}

func (p *Package) Close() error {
	return errors.Wrapf(p.reader.Close(), "cannot close '%s'", p.name)
}

func (p *Package) Has(name string) bool {
	_, ok := p.files[name]
	return ok
}

// Files returns the sorted names of all file entries.
func (p *Package) Files() []string {
	names := make([]string, 0, len(p.files))
	for name := range p.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Package) Size(name string) uint64 {
	if f, ok := p.files[name]; ok {
		return f.UncompressedSize64
	}
	return 0
}

func (p *Package) open(name string) (io.ReadCloser, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, errors.Wrapf(os.ErrNotExist, "'%s' not in '%s'", name, p.name)
	}
	r, err := f.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open '%s' in '%s'", name, p.name)
	}
	return r, nil
}

func (p *Package) ReadFile(name string) ([]byte, error) {
	r, err := p.open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read '%s' in '%s'", name, p.name)
	}
	return data, nil
}

// Extract copies name into dir and returns the path of the new file.
func (p *Package) Extract(name, dir string) (string, error) {
	r, err := p.open(name)
	if err != nil {
		return "", err
	}
	defer r.Close()
	target := filepath.Join(dir, filepath.Base(filepath.FromSlash(name)))
	fp, err := os.Create(target)
	if err != nil {
		return "", errors.Wrapf(err, "cannot create file '%s'", target)
	}
	if _, err := io.Copy(fp, r); err != nil {
		_ = fp.Close()
		return "", errors.Wrapf(err, "cannot copy '%s' to '%s'", name, target)
	}
	if err := fp.Close(); err != nil {
		return "", errors.Wrapf(err, "cannot close file '%s'", target)
	}
	return target, nil
}
