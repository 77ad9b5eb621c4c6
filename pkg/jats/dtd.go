package jats

import (
	"context"

	"emperror.dev/errors"
	"github.com/je4/utils/v2/pkg/zLogger"
	"github.com/ocfl-archive/gomeca/pkg/xmllint"
)

// Session provides logging and the configured xmllint executable.
type Session interface {
	Logger() zLogger.ZLogger
	XMLLint() *xmllint.Tool
}

// ValidateAgainstDTD checks file against the local DTD with xmllint. Any
// embedded DOCTYPE is dropped first so that localDTD takes precedence.
//
// If xmllint cannot be found, an error with installation instructions is
// logged and ResultToolUnavailable is returned. Every other failure results
// in ResultFailed.
func ValidateAgainstDTD(ctx context.Context, s Session, file, localDTD string) Result {
	if !ToolAvailable(s) {
		return ResultToolUnavailable
	}
	logger := s.Logger()
	tool := s.XMLLint()

	result, err := tool.DropDTDValidate(ctx, file, localDTD)
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot validate '%s' against '%s'", file, localDTD)
		return ResultFailed
	}
	for _, line := range result.Diagnostics() {
		logger.Debug().Msg(line)
	}
	if !result.Success() {
		for _, stage := range result.Stages {
			logger.Debug().Msgf("'%s' exited with %d", stage.String(), stage.ExitCode)
		}
		return ResultFailed
	}
	logger.Debug().Msgf("'%s' valid against '%s' [%s]", file, localDTD, result.Duration)
	return ResultPassed
}

// ToolAvailable reports whether the configured xmllint can be found. If not,
// an error with installation instructions is logged.
func ToolAvailable(s Session) bool {
	tool := s.XMLLint()
	if _, ok := tool.Available(); !ok {
		s.Logger().Error().Str("command", tool.Command()).Msgf("MECA validation against DTD requires %s\n\n%s", xmllint.DefaultCommand, xmllint.InstallHint())
		return false
	}
	return true
}

// ValidateAgainstDTDOrError logs a confirmation if file is valid. Otherwise,
// including when xmllint is not available, it returns ErrValidationFailed.
func ValidateAgainstDTDOrError(ctx context.Context, s Session, file, localDTD string) error {
	result := ValidateAgainstDTD(ctx, s, file, localDTD)
	if result.Passed() {
		s.Logger().Info().Msg("JATS validation passed!")
		return nil
	}
	s.Logger().Debug().Msgf("JATS validation of '%s': %s", file, result)
	return errors.WithStack(ErrValidationFailed)
}
