package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloudpeak/docpipe/internal/domain"
	"github.com/cloudpeak/docpipe/internal/logger"
	"github.com/cloudpeak/docpipe/internal/pipeline"
)

const defaultTimeout = 30 * time.Second

// Request headers understood by Parse-compatible servers.
const (
	headerAppID     = "X-Parse-Application-Id"
	headerMasterKey = "X-Parse-Master-Key"
	headerRequestID = "X-Request-Id"
)

// Config holds remote executor settings.
type Config struct {
	BaseURL    string
	AppID      string
	MasterKey  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Executor runs pipelines through the remote aggregation endpoint.
type Executor struct {
	baseURL   string
	appID     string
	masterKey string
	client    *http.Client
	logger    *zap.Logger
}

// New validates the config and creates a remote executor.
func New(cfg Config) (*Executor, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("remote: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("remote: invalid base url %q: %w", cfg.BaseURL, err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		appID:     cfg.AppID,
		masterKey: cfg.MasterKey,
		client:    client,
		logger:    log,
	}, nil
}

type aggregateRequest struct {
	Pipeline []pipeline.Stage `json:"pipeline"`
}

type aggregateResponse struct {
	Results []map[string]any `json:"results"`
}

type errorResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// Aggregate serializes the pipeline, posts it to the aggregation
// endpoint and decodes the result documents. Error responses propagate
// unchanged; nothing is retried here.
func (e *Executor) Aggregate(ctx context.Context, className string, stages []pipeline.Stage) ([]map[string]any, error) {
	body, err := json.Marshal(aggregateRequest{Pipeline: stages})
	if err != nil {
		return nil, fmt.Errorf("encode pipeline: %w", err)
	}

	endpoint := fmt.Sprintf("%s/aggregate/%s", e.baseURL, url.PathEscape(className))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAppID, e.appID)
	req.Header.Set(headerMasterKey, e.masterKey)
	req.Header.Set(headerRequestID, uuid.NewString())

	log := logger.FromContextOr(ctx, e.logger)
	log.Debug("posting aggregation",
		zap.String("class", className),
		zap.String("endpoint", endpoint),
		zap.Int("bytes", len(body)),
	)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
			return nil, &domain.APIError{Code: apiErr.Code, Message: apiErr.Error}
		}
		return nil, &domain.APIError{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var decoded aggregateResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return decoded.Results, nil
}
