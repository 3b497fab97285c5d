// Package cmd implements the spadeSocketBridge command line.
package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"spadesocketbridge/internal/bridgeerr"
	"spadesocketbridge/internal/config"
	"spadesocketbridge/internal/engine"
	"spadesocketbridge/internal/ioreader"
	"spadesocketbridge/internal/logging"
	"spadesocketbridge/internal/metrics"
)

var opts = &config.Options{
	ReorderWindow: 10000,
	LogFormat:     "text",
	LogLevel:      "info",
}

// sentinel exit code meaning "RunE never ran" - cobra rejected the
// command line itself (an unknown or malformed flag).
const exitCodeNotRun = -999

var lastExitCode = exitCodeNotRun

var rootCmd = &cobra.Command{
	Use:   "spadeSocketBridge",
	Short: "Reorder, reassemble, and analyze a kernel audit event stream",
	Long: `spadeSocketBridge ingests the raw kernel audit record stream
(from a Unix-domain audispd socket or standard input), reorders it by
event id, reassembles multi-line records, recognizes UBSI unit markers,
and emits a clean per-thread provenance stream to standard output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&opts.Unit, "unit", "u", false,
		"enable UBSI unit analysis (default off: SYSCALL records pass through unmodified)")
	rootCmd.Flags().StringVarP(&opts.Socket, "socket", "s", "",
		"read from a Unix-domain stream socket at PATH instead of standard input")
	rootCmd.Flags().BoolVarP(&opts.WaitForEnd, "wait-for-end", "w", false,
		"ignore termination signals; process until EOF")
	rootCmd.Flags().StringVar(&opts.Config, "config", "",
		"read additional options from a TOML config file")
	rootCmd.Flags().IntVar(&opts.ReorderWindow, "reorder-window", 10000,
		"reordering window: records tolerated in flight before the oldest is forced out")
	rootCmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on ADDR (disabled if unset)")
	rootCmd.Flags().StringVar(&opts.LogFormat, "log-format", "text",
		"diagnostic log format: text or json")
	rootCmd.Flags().StringVar(&opts.LogLevel, "log-level", "info",
		"diagnostic log level: debug, info, warn, or error")
}

// Execute runs the command line and returns the process exit code,
// preserving the historic -2 "unknown option" code for flag-parsing
// failures that never reach RunE (spec.md §6.1). A returned error whose
// Kind is KindOption (e.g. an unreadable or malformed --config file) gets
// the same -2 treatment as a flag rejected by cobra itself: both are
// "bad invocation", not "bad input stream".
func Execute() int {
	lastExitCode = exitCodeNotRun
	err := rootCmd.Execute()
	if err == nil {
		if lastExitCode == exitCodeNotRun {
			return 0
		}
		return lastExitCode
	}

	if lastExitCode == exitCodeNotRun || bridgeerr.IsKind(err, bridgeerr.KindOption) {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, rootCmd.UsageString())
		return -2
	}

	fmt.Fprintln(os.Stderr, err)
	return 1
}

func run(cmd *cobra.Command) error {
	if err := config.Load(opts, cmd); err != nil {
		return bridgeerr.Wrap(err, bridgeerr.KindOption, "load config")
	}

	logger := logging.NewLogger(logging.Config{
		Level:  logging.ParseLevel(opts.LogLevel),
		Format: opts.LogFormat,
		Output: os.Stderr,
	})
	logging.SetDefault(logger)

	var m *metrics.Metrics
	if opts.MetricsAddr != "" {
		m = metrics.New()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(opts.MetricsAddr, mux); err != nil {
				logging.Error("metrics server stopped", "error", err)
			}
		}()
	}

	var reader *ioreader.Reader
	if opts.Socket != "" {
		r, err := ioreader.NewSocket(opts.Socket)
		if err != nil {
			logging.Error("unable to connect input socket", "error", err, "path", opts.Socket)
			lastExitCode = 1
			return nil
		}
		reader = r
	} else {
		reader = ioreader.NewStdin()
	}
	defer reader.Close()

	e := engine.New(engine.Config{
		UnitAnalysis:  opts.Unit,
		WaitForEnd:    opts.WaitForEnd,
		ReorderWindow: opts.ReorderWindow,
	}, reader, os.Stdout, logger, m)

	lastExitCode = e.Run()
	return nil
}
