// Command smartmart is the SmartMart admin console: it serves the HTTP
// console for the SPA and offers the same CSV, report and dashboard
// operations from the command line.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/smartmart/internal/api"
	"github.com/JonMunkholm/smartmart/internal/config"
	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/logging"
	"github.com/JonMunkholm/smartmart/internal/pages"
)

// app is shared by the subcommands once the root pre-run has loaded it.
type app struct {
	envFile  string
	apiURL   string
	locale   string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
	client *api.Client
}

// errRejectedFiles makes validate exit non-zero when any file was refused.
var errRejectedFiles = errors.New("one or more files were rejected")

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "smartmart",
		Short:         "SmartMart admin console",
		Long:          `Serves the SmartMart console and runs its CSV, report and dashboard operations against the SmartMart API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file to load if present")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "SmartMart API base URL (or set SMARTMART_API_URL)")
	root.PersistentFlags().StringVar(&a.locale, "locale", "", "Message locale: pt-BR or en (or set CSV_LOCALE)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (or set LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(a),
		newKindsCmd(a),
		newValidateCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newReportCmd(a),
		newCollectionCmd(a),
		newStatsCmd(a),
	)
	return root
}

// load reads .env, the environment and the flag overrides, then builds the
// logger and the API client.
func (a *app) load(cmd *cobra.Command) error {
	overrides := map[string]string{
		"SMARTMART_API_URL": a.apiURL,
		"LOG_LEVEL":         a.logLevel,
	}
	if a.locale != "" {
		overrides["CSV_LOCALE"] = core.CanonicalLocale(a.locale)
	}

	cfg, err := config.LoadFrom(config.Sources{EnvFile: a.envFile, Overrides: overrides})
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Logs go to stderr so CSV written to stdout stays clean.
	a.logger = logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	a.client, err = api.New(cfg.API)
	if err != nil {
		return err
	}
	a.logger.Debug("configuration loaded", "config", cfg.String())
	return nil
}

// deps are the page dependencies for a CLI run.
func (a *app) deps() pages.Deps {
	return pages.Deps{
		Backend:    a.client,
		Classifier: a.classifier(),
		Locale:     a.cfg.CSV.Locale,
		Quote:      a.cfg.CSV.QuoteExports,
		DocsURL:    a.cfg.API.DocsURL,
		Logger:     a.logger,
	}
}

func (a *app) classifier() *core.Classifier {
	c := core.NewClassifier(a.cfg.CSV.MatchThreshold, a.cfg.Import.MaxFileSize)
	c.Logger = a.logger
	return c
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(1)
	}
}
