package executor

import (
	"context"

	"github.com/cloudpeak/docpipe/internal/pipeline"
)

// Runner executes one compiled pipeline against a class and returns the
// raw result documents in wire form.
type Runner interface {
	Aggregate(ctx context.Context, className string, stages []pipeline.Stage) ([]map[string]any, error)
}

// Mode selects the executor for one call.
type Mode int

const (
	// ModeAuto uses the direct store when preferred and configured,
	// falling back to the remote API otherwise.
	ModeAuto Mode = iota
	// ModeRemote always uses the remote API.
	ModeRemote
	// ModeDirect requires the direct store; it never falls back.
	ModeDirect
)

func (m Mode) String() string {
	switch m {
	case ModeRemote:
		return "remote"
	case ModeDirect:
		return "direct"
	default:
		return "auto"
	}
}
