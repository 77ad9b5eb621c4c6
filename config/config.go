package config

import (
	"os"
	"strings"

	"emperror.dev/errors"
	"github.com/BurntSushi/toml"
	configutil "github.com/je4/utils/v2/pkg/config"
	"github.com/je4/utils/v2/pkg/stashconfig"
	"github.com/ocfl-archive/gomeca/pkg/checksum"
	"golang.org/x/exp/slices"
)

type XMLLintConfig struct {
	Command string              `toml:"command"`
	Timeout configutil.Duration `toml:"timeout"`
	NoNet   bool                `toml:"nonet"`
}

type DTDConfig struct {
	Folder  string            `toml:"folder"`
	Catalog map[string]string `toml:"Catalog"`
}

type MECAConfig struct {
	ManifestDTD string `toml:"manifestdtd"`
	TransferDTD string `toml:"transferdtd"`
	Schema      bool   `toml:"schema"`
	Strict      bool   `toml:"strict"`
}

type JATSConfig struct {
	DTD string `toml:"dtd"`
}

type ValidateConfig struct {
	Format string                     `toml:"format"`
	Output string                     `toml:"output"`
	Digest []checksum.DigestAlgorithm `toml:"digest"`
}

type GOMECAConfig struct {
	XMLLint  *XMLLintConfig     `toml:"XMLLint"`
	DTD      *DTDConfig         `toml:"DTD"`
	MECA     *MECAConfig        `toml:"MECA"`
	JATS     *JATSConfig        `toml:"JATS"`
	Validate *ValidateConfig    `toml:"Validate"`
	Log      stashconfig.Config `toml:"Log"`
	TempDir  string             `toml:"tempdir"`
}

var Formats = map[string]string{
	"text": "plain text",
	"json": "json document",
	"yaml": "yaml document",
}

func FormatNames() []string {
	keys := make([]string, 0, len(Formats))
	for key := range Formats {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func LoadGOMECAConfig(data string) (*GOMECAConfig, error) {
	var conf = &GOMECAConfig{
		Log: stashconfig.Config{
			Level: "ERROR",
		},
		XMLLint: &XMLLintConfig{
			Command: "xmllint",
		},
		DTD: &DTDConfig{
			Catalog: map[string]string{},
		},
		MECA: &MECAConfig{},
		JATS: &JATSConfig{},
		Validate: &ValidateConfig{
			Format: "text",
		},
		TempDir: os.TempDir(),
	}

	if _, err := toml.Decode(data, conf); err != nil {
		return nil, errors.Wrap(err, "Error on loading config")
	}
	if err := conf.Check(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Check normalizes values which may come from config file or command line.
func (conf *GOMECAConfig) Check() error {
	conf.Validate.Format = strings.ToLower(strings.TrimSpace(conf.Validate.Format))
	if conf.Validate.Format == "" {
		conf.Validate.Format = "text"
	}
	if keys := FormatNames(); !slices.Contains(keys, conf.Validate.Format) {
		return errors.Errorf("unknown format '%s' please use %v", conf.Validate.Format, keys)
	}
	for i, alg := range conf.Validate.Digest {
		alg = checksum.DigestAlgorithm(strings.ToLower(strings.TrimSpace(string(alg))))
		if !checksum.HashExists(alg) {
			return errors.Errorf("unknown digest '%s' please use %v", alg, checksum.Names())
		}
		conf.Validate.Digest[i] = alg
	}
	if conf.TempDir == "" {
		conf.TempDir = os.TempDir()
	}
	if conf.DTD.Catalog == nil {
		conf.DTD.Catalog = map[string]string{}
	}
	return nil
}
