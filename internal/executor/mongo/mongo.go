package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/cloudpeak/docpipe/internal/logger"
	"github.com/cloudpeak/docpipe/internal/pipeline"
)

const defaultConnectTimeout = 10 * time.Second

// Config holds direct-store settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	Logger         *zap.Logger
}

// Executor runs pipelines against the document store's native
// aggregation interface, bypassing the remote API.
type Executor struct {
	client *mongodrv.Client
	db     *mongodrv.Database
	owned  bool
	logger *zap.Logger
}

// New connects to the store and verifies reachability before returning.
// An unreachable store is a configuration error surfaced here, not at
// first use.
func New(ctx context.Context, cfg Config) (*Executor, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo: uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("mongo: database name is required")
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongodrv.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: store not reachable: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		client: client,
		db:     client.Database(cfg.Database),
		owned:  true,
		logger: log,
	}, nil
}

// NewWithDatabase wraps an existing database handle. The caller keeps
// ownership of the underlying client.
func NewWithDatabase(db *mongodrv.Database, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{client: db.Client(), db: db, logger: log}
}

// Close disconnects the client if this executor opened it.
func (e *Executor) Close(ctx context.Context) error {
	if !e.owned {
		return nil
	}
	return e.client.Disconnect(ctx)
}

// Aggregate converts every stage literal to storage form, runs the
// native aggregation, and converts each returned document back to wire
// form, re-materializing nested pointers and dates.
func (e *Executor) Aggregate(ctx context.Context, className string, stages []pipeline.Stage) ([]map[string]any, error) {
	pipe, err := ToNative(stages)
	if err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, e.logger).Debug("running native aggregation",
		zap.String("collection", className),
		zap.Int("stages", len(pipe)),
	)

	cursor, err := e.db.Collection(className).Aggregate(ctx, pipe)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", className, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read cursor: %w", err)
	}

	out := make([]map[string]any, len(docs))
	for i, doc := range docs {
		out[i] = ToWireDocument(doc)
	}
	return out, nil
}
