package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/imishinist/go-csp/config"
)

// app carries the state shared by all subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath  string
	verbose     bool
	lineLength  int
	capacity    int
	blankTail   bool
	mode        string
	policy      string
	parallelism uint

	cfg     *config.Config
	metrics *http.Server
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:               "cspipe",
		Short:             "Reformat records through communicating sequential processes",
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.shutdown()
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Set a custom config file path")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose log output")
	flags.IntVarP(&a.lineLength, "line-length", "l", 0, "Runes per output line")
	flags.IntVar(&a.capacity, "capacity", 0, "Capacity of the channels between stages (-1 for unbounded)")
	flags.BoolVar(&a.blankTail, "blank-tail", false, "Emit a final blank line when the input ends on a line boundary")
	flags.StringVar(&a.mode, "mode", "", "Reformat mode: direct, concurrent or emulated")
	flags.StringVar(&a.policy, "policy", "", "Squash policy for a trailing marker: strict or tolerant")
	flags.UintVarP(&a.parallelism, "parallelism", "p", 0, "Number of input files processed at once")

	cmd.AddCommand(
		a.copyCmd(),
		a.squashCmd(),
		a.disassembleCmd(),
		a.assembleCmd(),
		a.reformatCmd(),
		a.conwayCmd(),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("line-length") {
		cfg.Pipeline.LineLength = a.lineLength
	}
	if flags.Changed("capacity") {
		cfg.Pipeline.Capacity = a.capacity
	}
	if flags.Changed("blank-tail") {
		cfg.Pipeline.BlankTail = a.blankTail
	}
	if flags.Changed("mode") {
		cfg.Pipeline.Mode = a.mode
	}
	if flags.Changed("policy") {
		cfg.Pipeline.Policy = a.policy
	}
	if flags.Changed("parallelism") {
		cfg.Workers.Parallelism = a.parallelism
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.initLogger()
	log.WithFields(log.Fields{
		"config":      a.configPath,
		"line_length": cfg.Pipeline.LineLength,
		"mode":        cfg.Pipeline.Mode,
	}).Debug("configuration loaded")

	if cfg.Metrics.Listen != "" {
		a.serveMetrics(cfg.Metrics.Listen)
	}
	return nil
}

func (a *app) initLogger() {
	switch a.cfg.Logging.Format {
	case "json":
		log.SetHandler(json.New(a.stderr))
	default:
		log.SetHandler(cli.New(a.stderr))
	}

	level, err := log.ParseLevel(a.cfg.Logging.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metrics = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("serving metrics on %s", addr)
		if err := a.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
}

func (a *app) shutdown() {
	if a.metrics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.metrics.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("metrics server forced to shutdown")
	}
}
