package cmd

import (
	"context"
	"crypto/tls"
	"io"
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/je4/utils/v2/pkg/zLogger"
	"github.com/ocfl-archive/gomeca/pkg/validation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	ublogger "gitlab.switch.ch/ub-unibas/go-ublogger/v2"
	"go.ub.unibas.ch/cloud/certloader/v2/pkg/loader"
)

func startTimer() *timer {
	t := &timer{}
	t.Start()
	return t
}

type timer struct {
	start time.Time
}

func (t *timer) Start() {
	t.start = time.Now()
}

func (t *timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

func (t *timer) String() string {
	return t.Elapsed().String()
}

// createLogger builds the logger from the Log section of the configuration.
// The returned function releases logfile, logstash and TLS loader.
func createLogger() (zLogger.ZLogger, func(), error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot get hostname")
	}

	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var loggerTLSConfig *tls.Config
	var loggerLoader io.Closer
	if conf.Log.Stash.TLS != nil {
		loggerTLSConfig, loggerLoader, err = loader.CreateClientLoader(conf.Log.Stash.TLS, nil)
		if err != nil {
			return nil, nil, errors.Wrap(err, "cannot create client loader")
		}
		closers = append(closers, func() { _ = loggerLoader.Close() })
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	_logger, _logstash, _logfile, err := ublogger.CreateUbMultiLoggerTLS(conf.Log.Level, conf.Log.File,
		ublogger.SetDataset(conf.Log.Stash.Dataset),
		ublogger.SetLogStash(conf.Log.Stash.LogstashHost, conf.Log.Stash.LogstashPort, conf.Log.Stash.Namespace, conf.Log.Stash.LogstashTraceLevel),
		ublogger.SetTLS(conf.Log.Stash.TLS != nil),
		ublogger.SetTLSConfig(loggerTLSConfig),
	)
	if err != nil {
		closeAll()
		return nil, nil, errors.Wrap(err, "cannot create logger")
	}
	if _logstash != nil {
		closers = append(closers, func() { _logstash.Close() })
	}
	if _logfile != nil {
		closers = append(closers, func() { _logfile.Close() })
	}

	l2 := _logger.With().Timestamp().Str("host", hostname).Logger()
	var logger zLogger.ZLogger = &l2
	return logger, closeAll, nil
}

func showStatus(ctx context.Context, logger zLogger.ZLogger) error {
	status, err := validation.GetValidationStatus(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot get status of validation")
	}
	status.Compact()
	contextString := ""
	for _, err := range status.Errors {
		if err.Context != contextString {
			logger.Info().Msgf("[%s]", err.Context)
			contextString = err.Context
		}
		logger.Info().Msgf("#%s - %s [%s]", err.Code, err.Description, err.Description2)
	}
	for _, err := range status.Warnings {
		if err.Context != contextString {
			logger.Info().Msgf("[%s]", err.Context)
			contextString = err.Context
		}
		logger.Info().Msgf("#%s - %s [%s]", err.Code, err.Description, err.Description2)
	}
	if len(status.Errors) > 0 {
		logger.Error().Msgf("%d errors found", len(status.Errors))
	} else {
		logger.Info().Msg("no errors found")
	}
	return nil
}
