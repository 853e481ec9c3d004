package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/dinecluster"
	"github.com/hupe1980/dinecluster/internal/logging"
	"github.com/hupe1980/dinecluster/internal/metrics"
	"github.com/hupe1980/dinecluster/internal/server"
	"github.com/hupe1980/dinecluster/internal/supervisor"
	"github.com/hupe1980/dinecluster/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func runServe(ctx context.Context, args []string, _, stderr io.Writer) error {
	var common commonFlags
	fs := newFlagSet("serve", stderr)
	common.register(fs)
	addr := fs.String("addr", "", "listen address (overrides server.addr)")
	if err := common.parse(fs, args); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mc := metrics.New(reg)

	cache := newCache(cfg)
	mc.WatchCache(cache)

	rec, err := buildRecommender(ctx, cfg, cache, dinecluster.WithMetricsCollector(mc))
	if err != nil {
		return err
	}

	srv := server.New(rec,
		server.WithServerConfig(cfg.Server),
		server.WithQueryConfig(cfg.Query),
		server.WithMetrics(mc, reg),
		server.WithLogger(logging.Logger()),
	)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(supervisor.NewHTTPServerService(srv.HTTPServer(), cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", cfg.Server.Addr).Str("session", rec.ID()).Msg("serving")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if report, _ := tree.UnstoppedServiceReport(); len(report) > 0 {
		logging.Warn().Int("services", len(report)).Msg("services did not stop in time")
	}
	logging.Info().Msg("shutdown complete")
	return nil
}

func runTop(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var common commonFlags
	fs := newFlagSet("top", stderr)
	common.register(fs)
	city := fs.String("city", "", "city to rank (required)")
	n := fs.Int("n", 0, "number of rows (default query.top_n)")
	if err := common.parse(fs, args); err != nil {
		return err
	}
	if *city == "" {
		fmt.Fprintln(stderr, "-city is required")
		return errUsage
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	if !common.set["n"] {
		*n = cfg.Query.TopN
	}
	if *n < 1 || *n > cfg.Query.MaxTopN {
		return fmt.Errorf("-n must be in [1, %d]", cfg.Query.MaxTopN)
	}

	rec, err := buildRecommender(ctx, cfg, nil)
	if err != nil {
		return err
	}

	res := rec.TopNByCity(*city, *n)
	if common.output == "json" {
		return writeJSON(stdout, res)
	}
	return writeTop(stdout, *city, res)
}

func runFilter(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var common commonFlags
	fs := newFlagSet("filter", stderr)
	common.register(fs)

	d := query.DefaultFilter("", "")
	city := fs.String("city", "", "city to match exactly (required)")
	cuisine := fs.String("cuisine", "", "case-insensitive cuisine substring")
	fs.Float64Var(&d.Rating.Min, "rating-min", d.Rating.Min, "minimum rating")
	fs.Float64Var(&d.Rating.Max, "rating-max", d.Rating.Max, "maximum rating")
	fs.Float64Var(&d.Cost.Min, "cost-min", d.Cost.Min, "minimum cost")
	fs.Float64Var(&d.Cost.Max, "cost-max", d.Cost.Max, "maximum cost")
	fs.Int64Var(&d.RatingCount.Min, "count-min", d.RatingCount.Min, "minimum rating count")
	fs.Int64Var(&d.RatingCount.Max, "count-max", d.RatingCount.Max, "maximum rating count")
	if err := common.parse(fs, args); err != nil {
		return err
	}
	if *city == "" {
		fmt.Fprintln(stderr, "-city is required")
		return errUsage
	}
	d.City, d.Cuisine = *city, *cuisine

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	rec, err := buildRecommender(ctx, cfg, nil)
	if err != nil {
		return err
	}

	rows := rec.FilterRecords(d)
	if common.output == "json" {
		return writeJSON(stdout, rows)
	}
	return writeRows(stdout, rows)
}

func runClusters(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var common commonFlags
	fs := newFlagSet("clusters", stderr)
	common.register(fs)
	if err := common.parse(fs, args); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	rec, err := buildRecommender(ctx, cfg, nil)
	if err != nil {
		return err
	}

	if common.output == "json" {
		return writeJSON(stdout, clusterSummary{
			Session: rec.ID(),
			Params:  rec.Params(),
			Model:   rec.Model(),
			Join:    rec.JoinReport(),
		})
	}
	return writeClusters(stdout, rec)
}
