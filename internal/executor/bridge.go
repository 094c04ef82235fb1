package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cloudpeak/docpipe/internal/domain"
	"github.com/cloudpeak/docpipe/internal/pipeline"
)

// Bridge dispatches compiled pipelines to the remote API or the direct
// store. Either runner may be nil; availability is checked before any
// call goes out.
type Bridge struct {
	remote       Runner
	direct       Runner
	preferDirect bool
	logger       *zap.Logger
}

// NewBridge creates a bridge. preferDirect makes ModeAuto calls use the
// direct store when it is configured.
func NewBridge(remote, direct Runner, preferDirect bool, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{remote: remote, direct: direct, preferDirect: preferDirect, logger: logger}
}

// HasDirect reports whether a direct store is configured.
func (b *Bridge) HasDirect() bool { return b.direct != nil }

// Run executes the pipeline on the runner mode selects. ModeDirect with
// no configured store is a configuration error raised before any I/O;
// ModeAuto falls back to the remote API instead.
func (b *Bridge) Run(ctx context.Context, className string, stages []pipeline.Stage, mode Mode) ([]map[string]any, error) {
	runner, name, err := b.pick(mode)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("executing pipeline",
		zap.String("class", className),
		zap.String("executor", name),
		zap.Int("stages", len(stages)),
	)
	results, err := runner.Aggregate(ctx, className, stages)
	if err != nil {
		return nil, fmt.Errorf("%s aggregate %s: %w", name, className, err)
	}
	return results, nil
}

func (b *Bridge) pick(mode Mode) (Runner, string, error) {
	switch mode {
	case ModeDirect:
		if b.direct == nil {
			return nil, "", domain.ErrDirectUnavailable
		}
		return b.direct, "direct", nil
	case ModeRemote:
		if b.remote == nil {
			return nil, "", domain.ErrRemoteUnavailable
		}
		return b.remote, "remote", nil
	default:
		if b.preferDirect && b.direct != nil {
			return b.direct, "direct", nil
		}
		if b.remote == nil {
			if b.direct != nil {
				return b.direct, "direct", nil
			}
			return nil, "", domain.ErrRemoteUnavailable
		}
		return b.remote, "remote", nil
	}
}
