package docpipe

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cloudpeak/docpipe/internal/config"
	"github.com/cloudpeak/docpipe/internal/executor"
	mongoexec "github.com/cloudpeak/docpipe/internal/executor/mongo"
	remoteexec "github.com/cloudpeak/docpipe/internal/executor/remote"
	"github.com/cloudpeak/docpipe/internal/logger"
)

// Client is the docpipe entry point. It is safe for concurrent use:
// compilation is pure, and each execution is one independent call.
type Client struct {
	bridge *executor.Bridge
	direct *mongoexec.Executor
	logger *zap.Logger
	obs    *observer
}

// New creates a Client. At least one executor must be configured (use
// WithServer and/or WithMongo); a configured store is connected and
// checked for reachability before New returns.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.serverURL == "" && cfg.mongoURI == "" && cfg.mongoDB == nil {
		return nil, errors.New("docpipe: an executor is required (use WithServer or WithMongo)")
	}
	log := cfg.logger
	if log == nil {
		log = zap.NewNop()
	}

	var remote executor.Runner
	if cfg.serverURL != "" {
		r, err := remoteexec.New(remoteexec.Config{
			BaseURL:    cfg.serverURL,
			AppID:      cfg.appID,
			MasterKey:  cfg.masterKey,
			HTTPClient: cfg.httpClient,
			Logger:     log,
		})
		if err != nil {
			return nil, fmt.Errorf("docpipe: %w", err)
		}
		remote = r
	}

	var (
		direct executor.Runner
		owned  *mongoexec.Executor
	)
	switch {
	case cfg.mongoDB != nil:
		direct = mongoexec.NewWithDatabase(cfg.mongoDB, log)
	case cfg.mongoURI != "":
		m, err := mongoexec.New(ctx, mongoexec.Config{
			URI:            cfg.mongoURI,
			Database:       cfg.mongoDatabase,
			ConnectTimeout: cfg.connectTimeout,
			Logger:         log,
		})
		if err != nil {
			return nil, fmt.Errorf("docpipe: %w", err)
		}
		direct = m
		owned = m
	}

	obs, err := newObserver(log, cfg.metricsReg)
	if err != nil {
		if owned != nil {
			_ = owned.Close(context.Background())
		}
		return nil, err
	}

	return &Client{
		bridge: executor.NewBridge(remote, direct, cfg.preferDirect, log),
		direct: owned,
		logger: log,
		obs:    obs,
	}, nil
}

// NewFromConfig creates a Client from the YAML config for the given
// environment (empty means the ENV variable, defaulting to "local").
func NewFromConfig(ctx context.Context, env string) (*Client, error) {
	if env == "" {
		env = config.GetEnv()
	}
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("docpipe: %w", err)
	}

	log, err := logger.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("docpipe: %w", err)
	}

	opts := []Option{WithLogger(log)}
	if cfg.Server.URL != "" {
		opts = append(opts, WithServer(cfg.Server.URL, cfg.Server.AppID, cfg.Server.MasterKey))
	}
	if cfg.Store.URI != "" {
		opts = append(opts, WithMongo(cfg.Store.URI, cfg.Store.Database))
		if cfg.Store.Preferred {
			opts = append(opts, WithDirectPreferred())
		}
	}
	return New(ctx, opts...)
}

// Close releases the store connection if this client opened one.
func (c *Client) Close(ctx context.Context) error {
	if c.direct == nil {
		return nil
	}
	return c.direct.Close(ctx)
}

// HasDirect reports whether direct execution is configured.
func (c *Client) HasDirect() bool { return c.bridge.HasDirect() }

// Query starts a query against a class.
func (c *Client) Query(className string) *Query {
	return &Query{client: c, className: className, set: newSet()}
}
