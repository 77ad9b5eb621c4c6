package cmd

import (
	"fmt"

	"github.com/ocfl-archive/gomeca/pkg/session"
	"github.com/ocfl-archive/gomeca/pkg/xmllint"
	"github.com/ocfl-archive/gomeca/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "shows version of gomeca and xmllint",
	Args:  cobra.NoArgs,
	Run:   doVersion,
}

func doVersion(cmd *cobra.Command, args []string) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, version.String())

	logger, closeLogger, err := createLogger()
	cobra.CheckErr(err)
	defer closeLogger()
	s, err := session.New(conf, logger)
	cobra.CheckErr(err)
	tool := s.XMLLint()
	path, ok := tool.Available()
	if !ok {
		_, _ = fmt.Fprintf(out, "xmllint: '%s' not found\n\n%s\n", tool.Command(), xmllint.InstallHint())
		return
	}
	v, err := tool.Version(cmd.Context())
	if err != nil {
		_, _ = fmt.Fprintf(out, "xmllint: %s (unknown version: %v)\n", path, err)
		return
	}
	_, _ = fmt.Fprintf(out, "xmllint: %s (libxml %s)\n", path, v)
}
