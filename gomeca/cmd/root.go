package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"emperror.dev/errors"
	"github.com/ocfl-archive/gomeca/config"
	"github.com/ocfl-archive/gomeca/version"
	"github.com/spf13/cobra"
)

// all possible flags of all modules go here
var persistentFlagConfigFile string

var persistentFlagLogfile string
var persistentFlagLoglevel string

var persistentFlagXMLLint string
var persistentFlagDTDFolder string

var conf *config.GOMECAConfig

var rootCmd = &cobra.Command{
	Use:   "gomeca",
	Short: "gomeca validates MECA packages and JATS articles",
	Long: fmt.Sprintf(`A validator for MECA (Manuscript Exchange Common Approach) packages
and the JATS articles inside. DTD validation is done with xmllint.
https://github.com/ocfl-archive/gomeca
Version %s`, version.Version),
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func getFlagString(cmd *cobra.Command, flag string) string {
	str, err := cmd.Flags().GetString(flag)
	if err != nil {
		_ = cmd.Help()
		cobra.CheckErr(errors.Errorf("cannot get flag %s: %v", flag, err))
	}
	return str
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	b, err := cmd.Flags().GetBool(flag)
	if err != nil {
		_ = cmd.Help()
		cobra.CheckErr(errors.Errorf("cannot get flag %s: %v", flag, err))
	}
	return b
}

func initConfig() {
	var err error

	// load config file
	if persistentFlagConfigFile != "" {
		data, err := os.ReadFile(persistentFlagConfigFile)
		if err != nil {
			_ = rootCmd.Help()
			_, _ = fmt.Fprintf(os.Stderr, "error reading config file %s: %v\n", persistentFlagConfigFile, err)
			os.Exit(1)
		}
		conf, err = config.LoadGOMECAConfig(string(data))
		if err != nil {
			_ = rootCmd.Help()
			_, _ = fmt.Fprintf(os.Stderr, "error loading config file %s: %v\n", persistentFlagConfigFile, err)
			os.Exit(1)
		}
	} else {
		conf, err = config.LoadGOMECAConfig(string(config.DefaultConfig))
		if err != nil {
			_ = rootCmd.Help()
			_, _ = fmt.Fprintf(os.Stderr, "error loading default config: %v\n", err)
			os.Exit(1)
		}
	}

	// overwrite config file with command line data
	if persistentFlagLogfile != "" {
		conf.Log.File = persistentFlagLogfile
	}
	if persistentFlagLoglevel != "" {
		conf.Log.Level = persistentFlagLoglevel
	}
	if persistentFlagXMLLint != "" {
		conf.XMLLint.Command = persistentFlagXMLLint
	}
	if persistentFlagDTDFolder != "" {
		conf.DTD.Folder = persistentFlagDTDFolder
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&persistentFlagConfigFile, "config", "", "config file (default is embedded gomeca.toml)")
	rootCmd.PersistentFlags().StringVar(&persistentFlagLogfile, "log-file", "", "log output file (default is console)")
	rootCmd.PersistentFlags().StringVar(&persistentFlagLoglevel, "log-level", "", "log level (CRITICAL|ERROR|WARNING|NOTICE|INFO|DEBUG)")
	rootCmd.PersistentFlags().StringVar(&persistentFlagXMLLint, "xmllint", "", "xmllint command line (default is 'xmllint' from PATH)")
	rootCmd.PersistentFlags().StringVar(&persistentFlagDTDFolder, "dtd-folder", "", "folder with local DTD files")

	initJATS()
	initValidate()

	rootCmd.AddCommand(jatsCmd, validateCmd, versionCmd)
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
