package cmd

import (
	"io"
	"os"
	"strings"

	"emperror.dev/emperror"
	"emperror.dev/errors"
	"github.com/ocfl-archive/gomeca/config"
	"github.com/ocfl-archive/gomeca/pkg/checksum"
	"github.com/ocfl-archive/gomeca/pkg/meca"
	"github.com/ocfl-archive/gomeca/pkg/report"
	"github.com/ocfl-archive/gomeca/pkg/session"
	"github.com/ocfl-archive/gomeca/pkg/validation"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:     "validate [path to meca package]",
	Aliases: []string{"check"},
	Short:   "validates a MECA package",
	Example: "gomeca validate --format json ./submission.meca",
	Args:    cobra.ExactArgs(1),
	Run:     doValidate,
}

func initValidate() {
	validateCmd.Flags().StringP("format", "f", "", "report format ["+strings.Join(config.FormatNames(), "|")+"]")
	validateCmd.Flags().StringP("output", "o", "", "report file (default is stdout)")
	validateCmd.Flags().String("article-dtd", "", "local JATS DTD (default is resolved from the DOCTYPE)")
	validateCmd.Flags().String("manifest-dtd", "", "local MECA manifest DTD")
	validateCmd.Flags().String("transfer-dtd", "", "local MECA transfer DTD")
	validateCmd.Flags().Bool("strict", false, "unreferenced files and schema violations are errors")
	validateCmd.Flags().Bool("schema", false, "check manifest.xml against the embedded structural manifest schema")
	validateCmd.Flags().String("digest", "", "comma separated list of package checksums for the report ["+strings.Join(checksum.Names(), ",")+"]")
	emperror.Panic(validateCmd.MarkFlagFilename("article-dtd", "dtd"))
	emperror.Panic(validateCmd.MarkFlagFilename("manifest-dtd", "dtd"))
	emperror.Panic(validateCmd.MarkFlagFilename("transfer-dtd", "dtd"))
}

func doValidateConf(cmd *cobra.Command) error {
	if str := getFlagString(cmd, "format"); str != "" {
		conf.Validate.Format = str
	}
	if str := getFlagString(cmd, "output"); str != "" {
		conf.Validate.Output = str
	}
	if str := getFlagString(cmd, "article-dtd"); str != "" {
		conf.JATS.DTD = str
	}
	if str := getFlagString(cmd, "manifest-dtd"); str != "" {
		conf.MECA.ManifestDTD = str
	}
	if str := getFlagString(cmd, "transfer-dtd"); str != "" {
		conf.MECA.TransferDTD = str
	}
	if getFlagBool(cmd, "strict") {
		conf.MECA.Strict = true
	}
	if getFlagBool(cmd, "schema") {
		conf.MECA.Schema = true
	}
	if str := getFlagString(cmd, "digest"); str != "" {
		conf.Validate.Digest = []checksum.DigestAlgorithm{}
		for _, alg := range strings.Split(str, ",") {
			conf.Validate.Digest = append(conf.Validate.Digest, checksum.DigestAlgorithm(alg))
		}
	}
	return conf.Check()
}

func doValidate(cmd *cobra.Command, args []string) {
	if err := doValidateConf(cmd); err != nil {
		_ = cmd.Help()
		cobra.CheckErr(err)
	}
	cobra.CheckErr(validateMECA(cmd, args[0]))
}

func validateMECA(cmd *cobra.Command, file string) error {
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

	ctx := validation.NewContextValidation(cmd.Context())
	valid, err := meca.Validate(ctx, s, file, meca.Options{
		ArticleDTD:  conf.JATS.DTD,
		ManifestDTD: conf.MECA.ManifestDTD,
		TransferDTD: conf.MECA.TransferDTD,
		Schema:      conf.MECA.Schema,
		Strict:      conf.MECA.Strict,
	})
	if err != nil {
		logger.Error().Stack().Err(err).Msgf("cannot validate '%s'", file)
		return errors.Wrapf(err, "cannot validate '%s'", file)
	}
	if err := showStatus(ctx, logger); err != nil {
		return err
	}
	status, err := validation.GetValidationStatus(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot get status of validation")
	}

	meta := &report.Meta{
		File:     file,
		Session:  s.ID(),
		Started:  t.start,
		Duration: t.Elapsed(),
	}
	if fi, err := os.Stat(file); err == nil && !fi.IsDir() {
		meta.Size = uint64(fi.Size())
		if len(conf.Validate.Digest) > 0 {
			digests, err := checksum.SumFile(file, conf.Validate.Digest...)
			if err != nil {
				logger.Error().Stack().Err(err).Msgf("cannot create checksums of '%s'", file)
			} else {
				meta.Digests = map[string]string{}
				for alg, sum := range digests {
					meta.Digests[string(alg)] = sum
				}
			}
		}
	}
	var w io.Writer = cmd.OutOrStdout()
	if conf.Validate.Output != "" {
		fp, err := os.Create(conf.Validate.Output)
		if err != nil {
			return errors.Wrapf(err, "cannot create report file '%s'", conf.Validate.Output)
		}
		defer fp.Close()
		w = fp
	}
	if err := report.Render(w, conf.Validate.Format, status, meta); err != nil {
		return errors.Wrap(err, "cannot write report")
	}

	if !valid {
		return errors.WithStack(meca.ErrValidationFailed)
	}
	logger.Info().Msg("MECA validation passed!")
	return nil
}
