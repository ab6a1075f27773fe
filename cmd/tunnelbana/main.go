package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/randomairborne/tunnelbana/core/config"
)

var version = "dev"

var (
	flagSPA       bool
	flagAddr      string
	flagLogLevel  string
	flagLogFormat string
	flagEnvFile   string
)

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "tunnelbana <directory>",
	Short:   "Static site server with _headers, _redirects, and content ETags",
	Long: `Tunnelbana serves a static site directory with Cloudflare Pages style
_headers and _redirects config files, content-fingerprint ETags with
precompressed variant support, and path hiding for the config files.`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(flagLogLevel, flagLogFormat)
		if flagEnvFile != "" {
			return config.LoadEnvFiles(flagEnvFile)
		}
		return nil
	},
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.Flags().BoolVar(&flagSPA, "spa", false, "serve index.html with 200 for unknown paths instead of 404.html")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides SERVER_ADDR)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format: text, json")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "dotenv file to load before reading configuration")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
