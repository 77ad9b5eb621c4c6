package cmd

import (
	"emperror.dev/emperror"
	"emperror.dev/errors"
	"github.com/ocfl-archive/gomeca/pkg/jats"
	"github.com/ocfl-archive/gomeca/pkg/session"
	"github.com/spf13/cobra"
)

var jatsCmd = &cobra.Command{
	Use:     "jats [path to jats xml]",
	Short:   "validates a JATS article against a local DTD",
	Example: "gomeca jats --dtd ./dtd/JATS-journalpublishing1.dtd ./article.xml",
	Args:    cobra.ExactArgs(1),
	Run:     doJATS,
}

func initJATS() {
	jatsCmd.Flags().String("dtd", "", "local DTD (default is resolved from the DOCTYPE through the DTD catalog)")
	emperror.Panic(jatsCmd.MarkFlagFilename("dtd", "dtd"))
}

func doJATSConf(cmd *cobra.Command) {
	if str := getFlagString(cmd, "dtd"); str != "" {
		conf.JATS.DTD = str
	}
}

func doJATS(cmd *cobra.Command, args []string) {
	doJATSConf(cmd)
	cobra.CheckErr(validateJATS(cmd, args[0]))
}

func validateJATS(cmd *cobra.Command, file string) error {
	logger, closeLogger, err := createLogger()
	if err != nil {
		return err
	}
	defer closeLogger()

	t := startTimer()
	defer func() { logger.Info().Msgf("Duration: %s", t.String()) }()

	s, err := session.New(conf, logger)
	if err != nil {
		logger.Error().Stack().Err(err).Msg("cannot create session")
		return err
	}

	dtd := conf.JATS.DTD
	if dtd == "" {
		var doctype *jats.Doctype
		dtd, doctype, err = s.Catalog().ResolveFile(file)
		if err != nil {
			logger.Error().Stack().Err(err).Msgf("cannot find local DTD for '%s'", file)
			return errors.Wrapf(err, "no local DTD for '%s', please use --dtd", file)
		}
		logger.Info().Msgf("%s -> '%s'", doctype, dtd)
	}
	logger.Info().Msgf("validating '%s' against '%s'", file, dtd)
	return jats.ValidateAgainstDTDOrError(cmd.Context(), s, file, dtd)
}
