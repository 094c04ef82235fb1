package docpipe

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	serverURL string
	appID     string
	masterKey string

	mongoURI       string
	mongoDatabase  string
	mongoDB        *mongodrv.Database
	connectTimeout time.Duration
	preferDirect   bool

	httpClient *http.Client
	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithServer configures the remote aggregation endpoint.
func WithServer(url, appID, masterKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.serverURL = url
		c.appID = appID
		c.masterKey = masterKey
	})
}

// WithMongo configures direct execution against the underlying store.
func WithMongo(uri, database string) Option {
	return optionFunc(func(c *clientConfig) {
		c.mongoURI = uri
		c.mongoDatabase = database
	})
}

// WithMongoDatabase configures direct execution on an existing database
// handle; the caller keeps ownership of the client.
func WithMongoDatabase(db *mongodrv.Database) Option {
	return optionFunc(func(c *clientConfig) {
		c.mongoDB = db
	})
}

// WithDirectPreferred makes general queries use the direct store when it
// is configured, instead of the remote API.
func WithDirectPreferred() Option {
	return optionFunc(func(c *clientConfig) {
		c.preferDirect = true
	})
}

// WithConnectTimeout bounds the initial store connection check.
func WithConnectTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.connectTimeout = d
	})
}

// WithHTTPClient supplies the HTTP client used for remote requests;
// timeouts and retry middleware belong to it, not to the compiler.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLogger supplies a logger; zap.NewNop() is used when absent.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers client metrics on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
