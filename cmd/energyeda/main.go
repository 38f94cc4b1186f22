package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"energyeda/internal/config"
	"energyeda/internal/logger"
	"energyeda/internal/metrics"
	"energyeda/internal/metrics/datadog"
	"energyeda/internal/metrics/prompush"
	"energyeda/internal/pipeline"
	"energyeda/internal/report"
	"energyeda/internal/storage"
)

// flags holds the command line. Empty or zero values defer to env, the
// config file and finally config.Default.
type flags struct {
	configPath     string
	europe         string
	asia           string
	top            int
	xlsx           string
	query          string
	metricsBackend string
	pushgatewayURL string
	datadogAddr    string
	validate       bool
	debug          bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	set := pflag.NewFlagSet("energyeda", pflag.ContinueOnError)
	set.StringVar(&f.configPath, "config", "", "pipeline config path (.json, .yaml or .yml)")
	set.StringVar(&f.europe, "europe", "", "Europe export: file path or http(s) URL")
	set.StringVar(&f.asia, "asia", "", "Asia export: file path or http(s) URL")
	set.IntVar(&f.top, "top", 0, "countries shown per continent (default 10)")
	set.StringVar(&f.xlsx, "xlsx", "", "write the dataset and rankings to this workbook")
	set.StringVar(&f.query, "query", "", "SQL SELECT run against the cleaned dataset")
	set.StringVar(&f.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog")
	set.StringVar(&f.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	set.StringVar(&f.datadogAddr, "datadog-addr", "", "DogStatsD address")
	set.BoolVar(&f.validate, "validate", false, "validate the configuration and exit")
	set.BoolVar(&f.debug, "debug", false, "enable debug logging")
	if err := set.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

// buildConfig resolves the pipeline: flag > env > config file > defaults.
func buildConfig(f flags, env config.Env) (config.Pipeline, error) {
	p := config.Default()
	if f.configPath != "" {
		var err error
		if p, err = config.Load(f.configPath); err != nil {
			return config.Pipeline{}, err
		}
	}
	env.Apply(&p)

	if f.europe != "" {
		p.SetSource("europe", f.europe)
	}
	if f.asia != "" {
		p.SetSource("asia", f.asia)
	}
	if f.top > 0 {
		p.Report.TopN = f.top
	}
	if f.xlsx != "" {
		p.Report.XLSXPath = f.xlsx
	}
	if f.query != "" {
		p.Explore.Query = f.query
	}
	if f.metricsBackend != "" {
		p.Metrics.Backend = f.metricsBackend
	}
	if f.pushgatewayURL != "" {
		p.Metrics.PushgatewayURL = f.pushgatewayURL
	}
	if f.datadogAddr != "" {
		p.Metrics.DatadogAddr = f.datadogAddr
	}
	return p, nil
}

// setupMetrics installs the configured backend. The returned func flushes
// it and is always safe to call.
func setupMetrics(p config.Pipeline, runID string, log zerolog.Logger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "pushgateway":
		url := p.Metrics.PushgatewayURL
		if url == "" {
			url = "http://localhost:9091"
		}
		var pb *prompush.Backend
		if pb, err = prompush.NewBackend(p.Job, url); err == nil {
			b = pb.WithInstance(runID)
		}
	case "datadog":
		ns := p.Metrics.Namespace
		if ns == "" {
			ns = "energyeda."
		}
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			Namespace:  ns,
			GlobalTags: []string{"run_id:" + runID},
		})
	case "", "none":
		log.Debug().Msg("metrics disabled")
		return func() {}
	default:
		log.Warn().Str("backend", p.Metrics.Backend).Msg("unknown metrics backend; metrics disabled")
		return func() {}
	}
	if err != nil {
		log.Warn().Err(err).Str("backend", p.Metrics.Backend).Msg("metrics backend unavailable; using nop")
		return func() {}
	}

	log.Info().Str("backend", p.Metrics.Backend).Str("job", p.Job).Msg("metrics enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics flush")
		}
	}
}

// present prints the dataset and every ranking, writes the optional
// workbook and runs the optional explorer query.
func present(ctx context.Context, w io.Writer, p config.Pipeline, res pipeline.Result) error {
	theme := report.Theme{
		TitlePrefix:  p.Report.Theme.TitlePrefix,
		NumberFormat: p.Report.Theme.NumberFormat,
		HeaderFill:   p.Report.Theme.HeaderFill,
	}

	if err := report.WriteText(w, "Dataset", res.Dataset, p.Report.PreviewRows, theme); err != nil {
		return err
	}
	sheets := []report.Sheet{{Name: "Dataset", Table: res.Dataset}}
	for _, rk := range res.Rankings {
		title := fmt.Sprintf("\nTop %d %s by %s", p.Report.TopN, rk.Continent, p.Report.RankBy)
		if err := report.WriteText(w, title, rk.Top, 0, theme); err != nil {
			return err
		}
		sheets = append(sheets, report.Sheet{Name: string(rk.Continent), Table: rk.Top})
	}
	for _, sel := range res.Unselected {
		fmt.Fprintf(w, "\n%q: no selection\n", sel)
	}

	if p.Report.XLSXPath != "" {
		f, err := os.Create(p.Report.XLSXPath)
		if err != nil {
			return fmt.Errorf("create workbook: %w", err)
		}
		if err := report.XLSX(f, theme, sheets...); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close workbook: %w", err)
		}
	}

	if p.Explore.Query != "" {
		out, err := storage.Explore(ctx, res.Dataset, p.Explore.Query, storage.ExploreOptions{
			Job:       p.Job,
			Table:     p.Explore.Table,
			BatchSize: p.Runtime.BatchSize,
		})
		if err != nil {
			return err
		}
		if err := report.WriteText(w, "\nQuery", out, 0, theme); err != nil {
			return err
		}
	}
	return nil
}

// main wires flags, .env and the config file into a pipeline run and prints
// the results to stdout. Logs go to stderr.
func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	log := logger.GetLogger()
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("read .env")
	}
	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("environment")
	}
	level := env.LogLevel
	if f.debug {
		level = "debug"
	}
	log = logger.WithLevel(log, level)

	p, err := buildConfig(f, env)
	if err != nil {
		log.Fatal().Err(err).Str("config", f.configPath).Msg("load config")
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Error().Str("config", f.configPath).Msg("configuration is invalid")
		os.Exit(1)
	}
	if f.validate {
		log.Info().Str("config", f.configPath).Msg("configuration is valid")
		return
	}

	runID := uuid.NewString()
	log = log.With().Str("run_id", runID).Str("job", p.Job).Logger()
	ctx := log.WithContext(context.Background())

	flush := setupMetrics(p, runID, log)
	defer flush()

	start := time.Now()
	res, err := pipeline.Run(ctx, p, log)
	if err != nil {
		flush()
		log.Fatal().Err(err).Msg("pipeline failed")
	}
	if err := present(ctx, os.Stdout, p, res); err != nil {
		flush()
		log.Fatal().Err(err).Msg("present results")
	}
	log.Info().
		Int("loaded", res.Loaded).
		Int("rows", res.Dataset.Len()).
		Dur("took", time.Since(start).Truncate(time.Millisecond)).
		Msg("completed")
}
