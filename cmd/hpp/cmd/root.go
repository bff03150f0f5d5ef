// SPDX-License-Identifier: MIT

// Package cmd defines the hpp command line.
package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gitlab.com/fisherprime/hpp"
	"gitlab.com/fisherprime/hpp/config"
	"gitlab.com/fisherprime/hpp/outline"
	"gitlab.com/fisherprime/hpp/scan"
	"gitlab.com/fisherprime/hpp/types"
)

type (
	// flags holds the command line overrides of a config.Config.
	flags struct {
		cfgFile    string
		format     string
		logLevel   string
		extensions []string
		exclude    []string
		workers    int
		debug      bool
		strict     bool
	}
)

// Execute runs the hpp command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd instantiates the hpp command tree.
func NewRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "hpp [root]",
		Short: "Report the declarations of C++ headers",
		Long: `hpp walks a directory tree, parsing every header it finds & reporting the
includes, classes, typedefs, members & function declarations of each.

A file that fails to parse is logged & skipped; --strict makes the run fail.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, f)
		},
	}

	rootCmd.PersistentFlags().StringVar(&f.cfgFile, "config", "", "TOML config file")
	rootCmd.PersistentFlags().BoolVar(&f.debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "Log level (default: info)")

	rootCmd.Flags().StringVarP(&f.format, "format", "f", "", "Report format: text, json, log or outline")
	rootCmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Files parsed concurrently (default: CPU count)")
	rootCmd.Flags().StringSliceVar(&f.extensions, "ext", nil, "Header extensions (default: .h)")
	rootCmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Directory names to skip")
	rootCmd.Flags().BoolVar(&f.strict, "strict", false, "Fail when any file fails to parse")

	rootCmd.AddCommand(newTokensCmd(f))

	return rootCmd
}

func runRoot(cmd *cobra.Command, args []string, f *flags) (err error) {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return
	}
	if len(args) > 0 {
		cfg.Root = args[0]
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)

	runner, err := scan.New(cfg, scan.WithLogger(logger))
	if err != nil {
		return
	}

	results, err := runner.Run(cmd.Context(), cfg.Root)
	if err != nil {
		return
	}

	summary, err := scan.Report(results, newReporter(cmd, cfg, logger))
	if err != nil {
		return
	}

	logger.WithFields(logrus.Fields{
		"files":  summary.Files,
		"failed": summary.Failed,
		"events": summary.Events,
	}).Info("scan complete")

	if cfg.Strict && summary.Failed > 0 {
		for _, failure := range scan.Failures(results) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", failure.Path, failure.Err)
		}

		return fmt.Errorf("%w: %d of %d", scan.ErrFilesFailed, summary.Failed, summary.Files)
	}

	return
}

// loadConfig reads the config file, if any, & applies the flags set on the command line.
func loadConfig(cmd *cobra.Command, f *flags) (cfg *config.Config, err error) {
	cfg = config.DefConfig()
	if f.cfgFile != "" {
		if cfg, err = config.Load(f.cfgFile); err != nil {
			return
		}
	}

	set := cmd.Flags().Changed
	if set("format") {
		cfg.Format = f.format
	}
	if set("workers") {
		cfg.Workers = f.workers
	}
	if set("ext") {
		cfg.Extensions = types.StringSlice(f.extensions)
	}
	if set("exclude") {
		cfg.Exclude = types.StringSlice(f.exclude)
	}
	if set("strict") {
		cfg.Strict = f.strict
	}
	if set("debug") {
		cfg.Debug = f.debug
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}

	err = cfg.Validate()

	return
}

func newLogger(w io.Writer, cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(cfg.Level())

	return logger
}

func newReporter(cmd *cobra.Command, cfg *config.Config, logger logrus.FieldLogger) hpp.Reporter {
	switch cfg.Format {
	case config.FormatJSON:
		return hpp.NewJSONSink(cmd.OutOrStdout())
	case config.FormatLog:
		return hpp.NewLogSink(logger)
	case config.FormatOutline:
		return outline.NewReporter(cmd.Context(), cmd.OutOrStdout(), &outline.Config{
			Logger: logger,
			Debug:  cfg.Debug,
			Indent: "  ",
		})
	default:
		return hpp.NewTextSink(cmd.OutOrStdout())
	}
}
