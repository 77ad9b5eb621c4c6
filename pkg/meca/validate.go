package meca

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"emperror.dev/errors"
	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"github.com/ocfl-archive/gomeca/pkg/jats"
	"github.com/ocfl-archive/gomeca/pkg/validation"
)

// Session extends the JATS session with DTD lookup and scratch space.
type Session interface {
	jats.Session
	ID() string
	Catalog() *jats.Catalog
	TempDir() string
}

type Options struct {
	// local DTDs; resolved from the DOCTYPE through the catalog if empty
	ArticleDTD  string
	ManifestDTD string
	TransferDTD string
	// check manifest.xml against the embedded MECA manifest schema
	Schema bool
	// report unreferenced files and schema violations as errors
	Strict bool
}

type validator struct {
	s           Session
	opts        Options
	pkg         *Package
	tempDir     string
	toolMissing bool
}

func (v *validator) add(ctx context.Context, code validation.ErrorCode, contextString string, format string, a ...any) error {
	v.s.Logger().Debug().Msgf("[%s] %s: %s", contextString, code, fmt.Sprintf(format, a...))
	return errors.WithStack(validation.Add(ctx, code, contextString, format, a...))
}

// Validate checks the MECA package file. Findings are recorded in the
// validation status of ctx (see validation.NewContextValidation). The
// returned error is reserved for problems of the validator itself.
func Validate(ctx context.Context, s Session, file string, opts Options) (bool, error) {
	status, err := validation.GetValidationStatus(ctx)
	if err != nil {
		return false, errors.Wrap(err, "cannot get validation status")
	}
	v := &validator{s: s, opts: opts}
	if err := v.validate(ctx, file); err != nil {
		return false, err
	}
	return status.Valid(), nil
}

// ValidateOrError logs a confirmation if file is a valid MECA package.
// Otherwise ErrValidationFailed is returned.
func ValidateOrError(ctx context.Context, s Session, file string, opts Options) error {
	if _, err := validation.GetValidationStatus(ctx); err != nil {
		ctx = validation.NewContextValidation(ctx)
	}
	valid, err := Validate(ctx, s, file, opts)
	if err != nil {
		return errors.Wrapf(err, "cannot validate '%s'", file)
	}
	if !valid {
		return errors.WithStack(ErrValidationFailed)
	}
	s.Logger().Info().Msg("MECA validation passed!")
	return nil
}

func (v *validator) validate(ctx context.Context, file string) error {
	logger := v.s.Logger()
	pkgContext := filepath.Base(file)

	fi, err := os.Stat(file)
	if err != nil {
		return v.add(ctx, validation.E001, pkgContext, "%v", err)
	}
	if fi.IsDir() {
		return v.add(ctx, validation.E001, pkgContext, "'%s' is a directory", file)
	}
	logger.Info().Msgf("validating MECA package '%s' [%s]", file, humanize.Bytes(uint64(fi.Size())))

	v.pkg, err = OpenPackage(file)
	if err != nil {
		return v.add(ctx, validation.E002, pkgContext, "%v", err)
	}
	defer func() {
		if err := v.pkg.Close(); err != nil {
			logger.Error().Stack().Err(err).Msg("cannot close package")
		}
	}()

	if !v.pkg.Has(ManifestName) {
		return v.add(ctx, validation.E003, pkgContext, "%v", ErrNoManifest)
	}
	data, err := v.pkg.ReadFile(ManifestName)
	if err != nil {
		return v.add(ctx, validation.E004, ManifestName, "%v", err)
	}
	manifest, err := ParseManifest(bytes.NewReader(data))
	if err != nil {
		return v.add(ctx, validation.E004, ManifestName, "%v", errors.Cause(err))
	}
	logger.Debug().Msgf("manifest version %s with %d items", manifest.Version, len(manifest.Items))

	if v.opts.Schema {
		// the embedded schema is a structural approximation, violations only warn unless strict
		code := validation.W003
		if v.opts.Strict {
			code = validation.E005
		}
		violations, err := ValidateManifestSchema(data)
		if err != nil {
			if errors.Is(err, ErrSchemaUnavailable) {
				return err
			}
			if err := v.add(ctx, code, ManifestName, "%v", errors.Cause(err)); err != nil {
				return err
			}
		}
		for _, violation := range violations {
			if err := v.add(ctx, code, ManifestName, "%s", violation); err != nil {
				return err
			}
		}
	}

	if err := v.checkReferences(ctx, manifest); err != nil {
		return err
	}

	article := manifest.Article()
	if article == nil {
		if err := v.add(ctx, validation.E007, ManifestName, "%d items", len(manifest.Items)); err != nil {
			return err
		}
	}

	v.tempDir, err = os.MkdirTemp(v.s.TempDir(), fmt.Sprintf("gomeca_%s_%s_*", slug.Make(pkgContext), v.s.ID()))
	if err != nil {
		return errors.Wrap(err, "cannot create temp folder")
	}
	defer func() {
		if err := os.RemoveAll(v.tempDir); err != nil {
			logger.Error().Stack().Err(err).Msgf("cannot remove temp folder '%s'", v.tempDir)
		}
	}()

	if err := v.checkDTD(ctx, ManifestName, v.opts.ManifestDTD, validation.E009, false); err != nil {
		return err
	}
	if v.pkg.Has(TransferName) {
		if err := v.checkDTD(ctx, TransferName, v.opts.TransferDTD, validation.E010, false); err != nil {
			return err
		}
	}
	if article != nil && v.pkg.Has(article.Path()) {
		if err := v.checkDTD(ctx, article.Path(), v.opts.ArticleDTD, validation.E008, true); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) checkReferences(ctx context.Context, manifest *Manifest) error {
	referenced := map[string]bool{
		ManifestName: true,
		TransferName: true,
	}
	for _, item := range manifest.Items {
		for _, inst := range item.Instances {
			name := inst.Path()
			if name == "" {
				v.s.Logger().Debug().Msgf("external instance '%s' in item '%s'", inst.Href, item.ID)
				continue
			}
			referenced[name] = true
			if !v.pkg.Has(name) {
				if err := v.add(ctx, validation.E006, ManifestName, "item '%s': '%s'", item.ID, inst.Href); err != nil {
					return err
				}
			} else {
				v.s.Logger().Debug().Msgf("item '%s' [%s]: '%s' [%s]", item.ID, item.Type, name, humanize.Bytes(v.pkg.Size(name)))
			}
			if inst.MediaType == "" {
				if err := v.add(ctx, validation.W002, ManifestName, "item '%s': '%s'", item.ID, inst.Href); err != nil {
					return err
				}
			}
		}
	}
	code := validation.W001
	if v.opts.Strict {
		code = validation.E013
	}
	for _, name := range v.pkg.Files() {
		if !referenced[name] {
			if err := v.add(ctx, code, filepath.Base(v.pkg.name), "'%s'", name); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkDTD validates the package entry name against dtd. If dtd is empty it is
// resolved from the DOCTYPE of the entry. An unresolvable DTD is an error only
// if required is set.
func (v *validator) checkDTD(ctx context.Context, name, dtd string, code validation.ErrorCode, required bool) error {
	if v.toolMissing {
		return nil
	}
	if !jats.ToolAvailable(v.s) {
		v.toolMissing = true
		return v.add(ctx, validation.E011, name, "%s", v.s.XMLLint().Command())
	}
	logger := v.s.Logger()
	file, err := v.pkg.Extract(name, v.tempDir)
	if err != nil {
		return errors.Wrapf(err, "cannot extract '%s'", name)
	}
	if dtd == "" {
		var doctype *jats.Doctype
		dtd, doctype, err = v.s.Catalog().ResolveFile(file)
		if err != nil {
			if !required {
				logger.Debug().Msgf("no DTD validation for '%s': %v", name, err)
				return nil
			}
			return v.add(ctx, validation.E012, name, "%v", errors.Cause(err))
		}
		logger.Debug().Msgf("'%s': %s -> '%s'", name, doctype, dtd)
	}
	switch jats.ValidateAgainstDTD(ctx, v.s, file, dtd) {
	case jats.ResultPassed:
		logger.Info().Msgf("'%s' valid against '%s'", name, filepath.Base(dtd))
	case jats.ResultToolUnavailable:
		v.toolMissing = true
		return v.add(ctx, validation.E011, name, "%s", v.s.XMLLint().Command())
	default:
		return v.add(ctx, code, name, "'%s'", filepath.Base(dtd))
	}
	return nil
}
