package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/hupe1980/dinecluster"
	"github.com/hupe1980/dinecluster/blobstore"
	"github.com/hupe1980/dinecluster/blobstore/minio"
	"github.com/hupe1980/dinecluster/blobstore/s3"
	"github.com/hupe1980/dinecluster/dataset"
	"github.com/hupe1980/dinecluster/internal/config"
	"github.com/hupe1980/dinecluster/internal/logging"
	"github.com/hupe1980/dinecluster/resource"
	gobreaker "github.com/sony/gobreaker/v2"
)

// commonFlags are shared by every subcommand.
type commonFlags struct {
	config string
	output string
	k      int
	seed   uint64

	set map[string]bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "YAML configuration file")
	fs.StringVar(&c.output, "output", "text", "output format: text or json")
	fs.IntVar(&c.k, "k", 0, "number of clusters (overrides cluster.k)")
	fs.Uint64Var(&c.seed, "seed", 0, "k-means seed (overrides cluster.seed)")
}

func (c *commonFlags) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected argument %q\n", fs.Arg(0))
		return errUsage
	}

	c.set = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { c.set[f.Name] = true })

	if c.output != "text" && c.output != "json" {
		fmt.Fprintf(fs.Output(), "invalid -output %q: want text or json\n", c.output)
		return errUsage
	}
	return nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("dinecluster "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// loadConfig reads the configuration and applies flag overrides.
func (c *commonFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.config)
	if err != nil {
		return nil, err
	}
	if c.set["k"] {
		cfg.Cluster.K = c.k
	}
	if c.set["seed"] {
		cfg.Cluster.Seed = c.seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}

// openStore builds the blob store named by cfg.Source. Remote stores sit
// behind a circuit breaker.
func openStore(ctx context.Context, cfg config.DataConfig) (blobstore.BlobStore, error) {
	switch cfg.Source {
	case "local":
		return blobstore.NewLocalStore(cfg.Root), nil
	case "s3":
		opts := []s3.Option{s3.WithPrefix(cfg.Prefix)}
		if cfg.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.Endpoint))
		}
		if cfg.AccessKey != "" {
			opts = append(opts, s3.WithStaticCredentials(cfg.AccessKey, cfg.SecretKey))
		}
		store, err := s3.NewFromConfig(ctx, cfg.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		return blobstore.NewBreakerStore(store, breakerSettings("s3")), nil
	case "minio":
		store, err := minio.Dial(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return blobstore.NewBreakerStore(store, breakerSettings("minio")), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}
}

func breakerSettings(name string) blobstore.BreakerSettings {
	s := blobstore.DefaultBreakerSettings(name)
	s.OnStateChange = func(name string, from, to gobreaker.State) {
		logging.Warn().
			Str("store", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("blob store breaker state changed")
	}
	return s
}

// recommenderOptions maps configuration onto library options.
func recommenderOptions(cfg *config.Config) []dinecluster.Option {
	opts := []dinecluster.Option{
		dinecluster.WithK(cfg.Cluster.K),
		dinecluster.WithSeed(cfg.Cluster.Seed),
		dinecluster.WithMaxIter(cfg.Cluster.MaxIter),
		dinecluster.WithTolerance(cfg.Cluster.Tolerance),
		dinecluster.WithNInit(cfg.Cluster.NInit),
		dinecluster.WithWorkers(cfg.Cluster.Workers),
		dinecluster.WithTopN(cfg.Query.TopN),
		dinecluster.WithLogger(dinecluster.FromZerolog(logging.Logger())),
	}
	if len(cfg.Cluster.Exclude) > 0 {
		opts = append(opts, dinecluster.WithExcludeColumns(cfg.Cluster.Exclude...))
	}
	if cfg.Cluster.Degenerate == "fail" {
		opts = append(opts, dinecluster.WithFailOnDegenerate())
	}
	if cfg.Join.Policy == "strict" {
		opts = append(opts, dinecluster.WithStrictJoin())
	}
	return opts
}

// newCache returns the configured memo cache, or nil when disabled.
func newCache(cfg *config.Config) *dinecluster.Cache {
	if cfg.Cache.Entries <= 0 {
		return nil
	}
	return dinecluster.NewCache(cfg.Cache.Entries)
}

// buildRecommender loads both datasets and runs one clustering session.
// cache may be nil.
func buildRecommender(ctx context.Context, cfg *config.Config, cache *dinecluster.Cache, extra ...dinecluster.Option) (*dinecluster.Recommender, error) {
	store, err := openStore(ctx, cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	loader := dataset.NewLoader(store,
		dataset.WithController(resource.NewController(cfg.Data.Resources())),
		dataset.WithLogger(logging.Logger()),
	)
	tables, err := loader.Load(ctx, cfg.Data.Canonical, cfg.Data.Features)
	if err != nil {
		return nil, err
	}

	opts := append(recommenderOptions(cfg), dinecluster.WithCache(cache))
	rec, err := dinecluster.New(ctx, tables.Canonical, tables.Features, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("session", rec.ID()).
		Int("rows", rec.Len()).
		Int("k", cfg.Cluster.K).
		Uint64("seed", cfg.Cluster.Seed).
		Msg("session ready")
	return rec, nil
}
