package session

import (
	"time"

	"emperror.dev/errors"
	"github.com/google/uuid"
	"github.com/je4/utils/v2/pkg/zLogger"
	"github.com/ocfl-archive/gomeca/config"
	"github.com/ocfl-archive/gomeca/pkg/jats"
	"github.com/ocfl-archive/gomeca/pkg/xmllint"
)

// Session bundles logger and configured tools for one run. It is created by
// the caller and passed explicitly to every validation function.
type Session struct {
	id      string
	logger  zLogger.ZLogger
	xmllint *xmllint.Tool
	catalog *jats.Catalog
	tempDir string
}

func New(conf *config.GOMECAConfig, logger zLogger.ZLogger) (*Session, error) {
	if conf == nil {
		return nil, errors.New("no configuration")
	}
	if logger == nil {
		return nil, errors.New("no logger")
	}
	tool, err := xmllint.NewTool(conf.XMLLint.Command, time.Duration(conf.XMLLint.Timeout), conf.XMLLint.NoNet)
	if err != nil {
		return nil, errors.Wrap(err, "cannot configure xmllint")
	}
	s := &Session{
		id:      uuid.NewString(),
		logger:  logger,
		xmllint: tool,
		catalog: jats.NewCatalog(conf.DTD.Folder, conf.DTD.Catalog),
		tempDir: conf.TempDir,
	}
	logger.Debug().Msgf("session %s: xmllint '%s', dtd folder '%s'", s.id, tool.Command(), conf.DTD.Folder)
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Logger() zLogger.ZLogger {
	return s.logger
}

func (s *Session) XMLLint() *xmllint.Tool {
	return s.xmllint
}

func (s *Session) Catalog() *jats.Catalog {
	return s.catalog
}

func (s *Session) TempDir() string {
	return s.tempDir
}
