package meca

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"emperror.dev/errors"
	"github.com/jacoelho/xsd"
	"github.com/ocfl-archive/gomeca/config"
	"github.com/ocfl-archive/gomeca/internal/fakexmllint"
	"github.com/ocfl-archive/gomeca/pkg/session"
	"github.com/ocfl-archive/gomeca/pkg/validation"
	"github.com/rs/zerolog"
)

const articlePublicID = "-//NLM//DTD JATS (Z39.96) Journal Publishing DTD v1.2 20190208//EN"

const testManifest = `<?xml version="1.0" encoding="UTF-8"?>
<manifest xmlns="https://manuscriptexchange.org/schema/manifest" xmlns:xlink="http://www.w3.org/1999/xlink" manifest-version="1">
  <item id="a1" item-type="article-metadata">
    <instance media-type="application/xml" xlink:href="article.xml"/>
  </item>
  <item id="m1" item-type="manuscript">
    <instance media-type="application/pdf" xlink:href="content/manuscript.pdf"/>
  </item>
</manifest>
`

const testArticle = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE article PUBLIC "` + articlePublicID + `" "JATS-journalpublishing1.dtd">
<article><front/></article>
`

func testFiles() map[string]string {
	return map[string]string{
		ManifestName:             testManifest,
		"article.xml":            testArticle,
		"content/manuscript.pdf": "%PDF-1.4",
	}
}

func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "test.meca")
	fp, err := os.Create(name)
	if err != nil {
		t.Fatalf("cannot create %s: %v", name, err)
	}
	zw := zip.NewWriter(fp)
	for path, content := range files {
		w, err := zw.Create(path)
		if err != nil {
			t.Fatalf("cannot create zip entry %s: %v", path, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("cannot write zip entry %s: %v", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("cannot close zip: %v", err)
	}
	if err := fp.Close(); err != nil {
		t.Fatalf("cannot close %s: %v", name, err)
	}
	return name
}

type testEnv struct {
	session *session.Session
	buf     *bytes.Buffer
	dtd     string
}

func newTestEnv(t *testing.T, command string) *testEnv {
	t.Helper()
	conf, err := config.LoadGOMECAConfig(string(config.DefaultConfig))
	if err != nil {
		t.Fatalf("cannot load config: %v", err)
	}
	dtdDir := t.TempDir()
	dtd := filepath.Join(dtdDir, "journalpublishing.dtd")
	if err := os.WriteFile(dtd, []byte("<!ELEMENT article ANY>"), 0644); err != nil {
		t.Fatalf("cannot write dtd: %v", err)
	}
	conf.XMLLint.Command = command
	conf.DTD.Folder = dtdDir
	conf.DTD.Catalog = map[string]string{articlePublicID: "journalpublishing.dtd"}
	conf.TempDir = t.TempDir()

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel)
	s, err := session.New(conf, &logger)
	if err != nil {
		t.Fatalf("cannot create session: %v", err)
	}
	return &testEnv{session: s, buf: buf, dtd: dtd}
}

func (env *testEnv) validate(t *testing.T, file string, opts Options) (bool, *validation.Status) {
	t.Helper()
	ctx := validation.NewContextValidation(context.Background())
	valid, err := Validate(ctx, env.session, file, opts)
	if err != nil {
		t.Fatalf("cannot validate '%s': %v", file, err)
	}
	status, err := validation.GetValidationStatus(ctx)
	if err != nil {
		t.Fatalf("no status: %v", err)
	}
	return valid, status
}

func codes(errs []*validation.Error) []validation.ErrorCode {
	var result []validation.ErrorCode
	for _, e := range errs {
		result = append(result, e.Code)
	}
	return result
}

func expectCodes(t *testing.T, name string, errs []*validation.Error, expected ...validation.ErrorCode) {
	t.Helper()
	got := codes(errs)
	if len(got) != len(expected) {
		t.Errorf("%s: expected %v, got %v", name, expected, got)
		return
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("%s: expected %v, got %v", name, expected, got)
			return
		}
	}
}

func TestEmptyPathIsInvalid(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	valid, status := env.validate(t, "", Options{})
	if valid {
		t.Error("empty path should not be valid")
	}
	expectCodes(t, "errors", status.Errors, validation.E001)

	err := ValidateOrError(context.Background(), env.session, "", Options{})
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestValidateRequiresStatus(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	if _, err := Validate(context.Background(), env.session, "", Options{}); err == nil {
		t.Error("validation without status should fail")
	}
}

func TestValidPackage(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	file := writePackage(t, testFiles())

	valid, status := env.validate(t, file, Options{ArticleDTD: env.dtd, Schema: true})
	if !valid {
		t.Errorf("package should be valid: %v", status.Errors)
	}
	expectCodes(t, "warnings", status.Warnings)

	env.buf.Reset()
	if err := ValidateOrError(context.Background(), env.session, file, Options{ArticleDTD: env.dtd}); err != nil {
		t.Fatalf("package should be valid: %v", err)
	}
	if !strings.Contains(env.buf.String(), "MECA validation passed!") {
		t.Error("missing confirmation in log")
	}
}

func TestDTDFromCatalog(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	file := writePackage(t, testFiles())
	valid, status := env.validate(t, file, Options{})
	if !valid {
		t.Errorf("package should be valid: %v", status.Errors)
	}

	files := testFiles()
	files["article.xml"] = `<!DOCTYPE article PUBLIC "-//unknown//EN" "unknown.dtd"><article/>`
	file = writePackage(t, files)
	valid, status = env.validate(t, file, Options{})
	if valid {
		t.Error("unknown doctype should not be valid")
	}
	expectCodes(t, "errors", status.Errors, validation.E012)
}

func TestNotAZip(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	for name, content := range map[string]string{"empty": "", "text": "this is not a zip file"} {
		file := filepath.Join(t.TempDir(), name+".meca")
		if err := os.WriteFile(file, []byte(content), 0644); err != nil {
			t.Fatalf("cannot write %s: %v", file, err)
		}
		valid, status := env.validate(t, file, Options{})
		if valid {
			t.Errorf("%s: should not be valid", name)
		}
		expectCodes(t, name, status.Errors, validation.E002)
	}
}

func TestDirectory(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	valid, status := env.validate(t, t.TempDir(), Options{})
	if valid {
		t.Error("directory should not be valid")
	}
	expectCodes(t, "errors", status.Errors, validation.E001)
}

func TestManifestProblems(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")

	files := testFiles()
	delete(files, ManifestName)
	files["other.xml"] = testManifest
	valid, status := env.validate(t, writePackage(t, files), Options{ArticleDTD: env.dtd})
	if valid {
		t.Error("missing manifest should not be valid")
	}
	expectCodes(t, "missing manifest", status.Errors, validation.E003)

	files = testFiles()
	files[ManifestName] = "<manifest><item>"
	valid, status = env.validate(t, writePackage(t, files), Options{ArticleDTD: env.dtd})
	if valid {
		t.Error("broken manifest should not be valid")
	}
	expectCodes(t, "broken manifest", status.Errors, validation.E004)
}

func TestManifestSchemaViolation(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	files := testFiles()
	files[ManifestName] = strings.Replace(testManifest, ` manifest-version="1"`, "", 1)
	file := writePackage(t, files)

	valid, status := env.validate(t, file, Options{ArticleDTD: env.dtd, Schema: true})
	if !valid {
		t.Errorf("schema violations should only warn: %v", status.Errors)
	}
	if len(status.Warnings) == 0 || status.Warnings[0].Code != validation.W003 {
		t.Errorf("expected %s, got %v", validation.W003, codes(status.Warnings))
	}

	valid, status = env.validate(t, file, Options{ArticleDTD: env.dtd, Schema: true, Strict: true})
	if valid {
		t.Error("manifest without version should not be valid in strict mode")
	}
	if len(status.Errors) == 0 || status.Errors[0].Code != validation.E005 {
		t.Errorf("expected %s, got %v", validation.E005, codes(status.Errors))
	}

	valid, status = env.validate(t, file, Options{ArticleDTD: env.dtd})
	if !valid || len(status.Warnings) != 0 {
		t.Errorf("without schema check package should be valid: %v %v", status.Errors, status.Warnings)
	}
}

func TestManifestSchemaItemContent(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	files := testFiles()
	files[ManifestName] = strings.Replace(testManifest, `  <item id="a1" item-type="article-metadata">
`, `  <item id="a1" item-type="article-metadata" item-version="1">
    <item-title>Article metadata</item-title>
    <item-description>JATS XML of the submitted article</item-description>
    <file-order>1</file-order>
    <item-metadata><metadata-entry><meta-name>source</meta-name><meta-value>test</meta-value></metadata-entry></item-metadata>
`, 1)
	if !strings.Contains(files[ManifestName], "<item-title>") {
		t.Fatal("test manifest not modified")
	}
	valid, status := env.validate(t, writePackage(t, files), Options{ArticleDTD: env.dtd, Schema: true, Strict: true})
	if !valid {
		t.Errorf("full item content should be valid: %v", status.Errors)
	}
	expectCodes(t, "warnings", status.Warnings)
}

func TestSchemaUnavailable(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	load := loadManifestSchema
	defer func() { loadManifestSchema = load }()
	loadManifestSchema = func() (*xsd.Schema, error) {
		return compileManifestSchema(fstest.MapFS{}, "manifest.xsd")
	}

	ctx := validation.NewContextValidation(context.Background())
	_, err := Validate(ctx, env.session, writePackage(t, testFiles()), Options{ArticleDTD: env.dtd, Schema: true})
	if !errors.Is(err, ErrSchemaUnavailable) {
		t.Errorf("expected ErrSchemaUnavailable, got %v", err)
	}
	status, err := validation.GetValidationStatus(ctx)
	if err != nil {
		t.Fatalf("no status: %v", err)
	}
	expectCodes(t, "errors", status.Errors)
	expectCodes(t, "warnings", status.Warnings)
}

func TestReferences(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")

	files := testFiles()
	delete(files, "content/manuscript.pdf")
	valid, status := env.validate(t, writePackage(t, files), Options{ArticleDTD: env.dtd})
	if valid {
		t.Error("missing file should not be valid")
	}
	expectCodes(t, "missing file", status.Errors, validation.E006)

	files = testFiles()
	files["content/figure1.png"] = "png"
	file := writePackage(t, files)
	valid, status = env.validate(t, file, Options{ArticleDTD: env.dtd})
	if !valid {
		t.Errorf("unreferenced file should only warn: %v", status.Errors)
	}
	expectCodes(t, "unreferenced", status.Warnings, validation.W001)

	valid, status = env.validate(t, file, Options{ArticleDTD: env.dtd, Strict: true})
	if valid {
		t.Error("unreferenced file should not be valid in strict mode")
	}
	expectCodes(t, "strict", status.Errors, validation.E013)

	files = testFiles()
	files[ManifestName] = strings.Replace(testManifest, `media-type="application/pdf" `, "", 1)
	valid, status = env.validate(t, writePackage(t, files), Options{ArticleDTD: env.dtd})
	if !valid {
		t.Errorf("missing media-type should only warn: %v", status.Errors)
	}
	expectCodes(t, "media-type", status.Warnings, validation.W002)
}

func TestNoArticle(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	files := testFiles()
	files[ManifestName] = strings.Replace(testManifest, `item-type="article-metadata"`, `item-type="cover-letter"`, 1)
	valid, status := env.validate(t, writePackage(t, files), Options{ArticleDTD: env.dtd})
	if valid {
		t.Error("package without article should not be valid")
	}
	expectCodes(t, "errors", status.Errors, validation.E007)
}

func TestInvalidArticle(t *testing.T) {
	fakexmllint.Install(t)
	env := newTestEnv(t, "")
	files := testFiles()
	files["article.xml"] = strings.Replace(testArticle, "<front/>", "<invalid/>", 1)
	valid, status := env.validate(t, writePackage(t, files), Options{ArticleDTD: env.dtd})
	if valid {
		t.Error("invalid article should not be valid")
	}
	expectCodes(t, "errors", status.Errors, validation.E008)

	err := ValidateOrError(context.Background(), env.session, writePackage(t, files), Options{ArticleDTD: env.dtd})
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestToolUnavailable(t *testing.T) {
	env := newTestEnv(t, filepath.Join(t.TempDir(), "no-xmllint"))
	files := testFiles()
	files["transfer.xml"] = `<transfer/>`
	file := writePackage(t, files)
	valid, status := env.validate(t, file, Options{ArticleDTD: env.dtd, ManifestDTD: env.dtd, TransferDTD: env.dtd})
	if valid {
		t.Error("package should not be valid without xmllint")
	}
	expectCodes(t, "errors", status.Errors, validation.E011)
	if n := strings.Count(env.buf.String(), "To install:"); n != 1 {
		t.Errorf("expected one install hint, got %d", n)
	}
}

func TestToolUnavailableUnknownDoctype(t *testing.T) {
	env := newTestEnv(t, filepath.Join(t.TempDir(), "no-xmllint"))
	files := testFiles()
	files["article.xml"] = `<!DOCTYPE article PUBLIC "-//unknown//EN" "unknown.dtd"><article/>`
	valid, status := env.validate(t, writePackage(t, files), Options{})
	if valid {
		t.Error("package should not be valid without xmllint")
	}
	expectCodes(t, "errors", status.Errors, validation.E011)
}
