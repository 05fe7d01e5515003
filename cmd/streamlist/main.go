// Command streamlist runs a query over JSON, JSON Lines, YAML or CSV records.
//
//	streamlist --where 'age>=18' --distinct city --select name,city people.json
//	cat events.jsonl | streamlist -i jsonl -m count -w type=click
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ohrlando/stream-list/bootstrap"
	"github.com/ohrlando/stream-list/config"
	"github.com/ohrlando/stream-list/errors"
	"github.com/ohrlando/stream-list/logger"
	"github.com/ohrlando/stream-list/observability"
	"github.com/ohrlando/stream-list/pipeline"
	"github.com/ohrlando/stream-list/query"
	"github.com/ohrlando/stream-list/util"
	"github.com/ohrlando/stream-list/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type flags struct {
	where        []string
	sel          []string
	distinct     string
	mode         string
	match        string
	limit        int
	configFile   string
	envFile      string
	printVersion bool
}

// configFlags maps config keys to the flags that override them.
var configFlags = map[string]string{
	"input.format":      "input-format",
	"output.format":     "output-format",
	"logging.level":     "log-level",
	"logging.format":    "log-format",
	"telemetry.enabled": "telemetry",
}

func newFlagSet(stderr io.Writer) (*pflag.FlagSet, *flags) {
	f := &flags{}
	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.StringArrayVarP(&f.where, "where", "w", nil, "keep records matching `field<op>value` (repeatable; ops: = != > >= < <= ~)")
	fs.StringSliceVarP(&f.sel, "select", "s", nil, "keep only these fields")
	fs.StringVarP(&f.distinct, "distinct", "d", "", "keep the first record for every value of `field`")
	fs.StringVarP(&f.mode, "mode", "m", string(query.ModeList), "result mode: "+strings.Join(query.ModeNames, ", "))
	fs.StringVar(&f.match, "match", "", "predicate for first and any modes")
	fs.IntVar(&f.limit, "limit", 0, "return at most n records in list mode")
	fs.StringP("input-format", "i", "", "input format: "+strings.Join(query.FormatNames, ", "))
	fs.StringP("output-format", "o", "", "output format (default json)")
	fs.StringVar(&f.configFile, "config", "", "config file path")
	fs.StringVar(&f.envFile, "env-file", "", ".env file path")
	fs.String("log-level", "", "log level: trace, debug, info, warn, error, disabled")
	fs.String("log-format", "", "log format: json, console, pretty")
	fs.Bool("telemetry", false, "export traces and metrics over OTLP HTTP")
	fs.BoolVar(&f.printVersion, "version", false, "print version and exit")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: %s [flags] [file]\n\nQueries records read from file or stdin.\n\nFlags:\n", serviceName)
		fs.PrintDefaults()
	}
	return fs, f
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs, f := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "streamlist: %v\n", err)
		fs.Usage()
		return 2
	}
	if f.printVersion {
		_, _ = fmt.Fprintln(stdout, version.Get().String())
		return 0
	}
	if fs.NArg() > 1 {
		_, _ = fmt.Fprintln(stderr, "streamlist: at most one input file is accepted")
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(fs, f)
	if err != nil {
		return report(stderr, false, err)
	}
	if fs.NArg() == 1 {
		cfg.Input.Path = fs.Arg(0)
	}
	cfg.Logging.Writer = stderr
	jsonErrors := cfg.Logging.Format == logger.FormatJSON

	q, err := f.query()
	if err != nil {
		return report(stderr, jsonErrors, err)
	}

	app, err := bootstrap.NewApp(cfg, bootstrap.WithGracefulTimeout(cfg.Telemetry.ShutdownTimeout))
	if err != nil {
		return report(stderr, jsonErrors, err)
	}
	registerLoggers(cfg)

	opts, err := pipelineOptions(ctx, app)
	if err != nil {
		return report(stderr, jsonErrors, err)
	}

	err = app.RunTask(ctx, func(ctx context.Context) error {
		records, err := readRecords(stdin, cfg.Input)
		if err != nil {
			return err
		}
		res, err := query.Run(ctx, pipeline.New(records, opts...), q)
		if err != nil {
			return err
		}
		return query.EncodeResult(stdout, query.Format(cfg.Output.Format), res, q.Select...)
	})
	if err != nil {
		return report(stderr, jsonErrors, err)
	}
	return 0
}

// loadConfig layers defaults, config file, environment and flags.
func loadConfig(fs *pflag.FlagSet, f *flags) (*Config, error) {
	v := viper.New()
	for key, name := range configFlags {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, err
		}
	}

	cfg := defaultConfig()
	if err := config.LoadConfig(serviceName, &cfg,
		config.WithViper(v),
		config.WithConfigFile(f.configFile),
		config.WithEnvFile(f.envFile),
	); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (f *flags) query() (query.Query, error) {
	where, err := query.ParseConditions(f.where)
	if err != nil {
		return query.Query{}, err
	}
	q := query.Query{
		Where:    where,
		Select:   f.sel,
		Distinct: f.distinct,
		Mode:     query.Mode(strings.ToLower(f.mode)),
		Limit:    f.limit,
	}
	if f.match != "" {
		c, err := query.ParseCondition(f.match)
		if err != nil {
			return query.Query{}, err
		}
		q.Match = util.Ptr(c)
	}
	return q, q.Validate()
}

// registerLoggers tags the pipeline and query loggers with the service name.
func registerLoggers(cfg *Config) {
	base := logger.New(&cfg.Logging, cfg.Name)
	for _, name := range []string{"pipeline", "query"} {
		logger.Register(name, base.WithComponent(name))
	}
}

// pipelineOptions wires logging, and tracing and metrics when telemetry is
// enabled. Provider shutdowns run as stop hooks so buffered data is flushed.
func pipelineOptions(ctx context.Context, app *bootstrap.App[*Config]) ([]pipeline.Option, error) {
	opts := []pipeline.Option{pipeline.WithLogging(logger.Get("pipeline"))}
	if !app.Cfg.Telemetry.Enabled {
		return opts, nil
	}

	tp, err := observability.InitTracer(ctx, app.Cfg.tracerConfig())
	if err != nil {
		return nil, errors.Internal(err)
	}
	app.OnStop(tp.Shutdown)

	mp, err := observability.InitMeter(ctx, app.Cfg.meterConfig())
	if err != nil {
		return nil, errors.Internal(err)
	}
	app.OnStop(mp.Shutdown)

	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return nil, errors.Internal(err)
	}
	return append(opts,
		pipeline.WithTracing(observability.SpanPipelinePrefix),
		pipeline.WithMetrics(metrics),
	), nil
}

// readRecords decodes the input. The format comes from config, then the file
// extension, then defaults to json.
func readRecords(stdin io.Reader, in InputConfig) ([]query.Record, error) {
	format := query.FormatJSON
	if in.Format != "" {
		parsed, err := query.ParseFormat(in.Format)
		if err != nil {
			return nil, err
		}
		format = parsed
	} else if guessed, ok := query.FormatFromPath(in.Path); ok {
		format = guessed
	}

	if in.Path == "" || in.Path == "-" {
		return query.Decode(stdin, format)
	}
	file, err := os.Open(in.Path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot open input").
			WithCause(err).
			WithDetail("path", in.Path)
	}
	defer file.Close()
	return query.Decode(file, format)
}

// report writes err to stderr and returns the exit status for it.
func report(stderr io.Writer, asJSON bool, err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Internal(err)
	}
	if asJSON {
		_ = gojson.NewEncoder(stderr).Encode(appErr.ToResponse())
	} else {
		_, _ = fmt.Fprintf(stderr, "streamlist: %v\n", err)
	}
	return errors.ExitCode(appErr.Code)
}
