package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudpeak/docpipe/internal/domain"
	"github.com/cloudpeak/docpipe/internal/pipeline"
)

// mockRunner records calls and returns canned results.
type mockRunner struct {
	calls   int
	lastCls string
	results []map[string]any
	err     error
}

func (m *mockRunner) Aggregate(_ context.Context, className string, _ []pipeline.Stage) ([]map[string]any, error) {
	m.calls++
	m.lastCls = className
	return m.results, m.err
}

func TestRun_RemoteByDefault(t *testing.T) {
	remote := &mockRunner{results: []map[string]any{{"objectId": "a"}}}
	direct := &mockRunner{}
	b := NewBridge(remote, direct, false, nil)

	got, err := b.Run(context.Background(), "Song", nil, ModeAuto)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, 0, direct.calls)
	assert.Equal(t, "Song", remote.lastCls)
}

func TestRun_PreferDirect(t *testing.T) {
	remote := &mockRunner{}
	direct := &mockRunner{}
	b := NewBridge(remote, direct, true, nil)

	_, err := b.Run(context.Background(), "Song", nil, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, 0, remote.calls)
	assert.Equal(t, 1, direct.calls)
}

func TestRun_AutoFallsBackWithoutDirect(t *testing.T) {
	remote := &mockRunner{}
	b := NewBridge(remote, nil, true, nil)

	_, err := b.Run(context.Background(), "Song", nil, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, 1, remote.calls)
}

func TestRun_DirectOnlyWithoutStore(t *testing.T) {
	// Explicit direct-only execution never falls back; the error is
	// raised before any call goes out.
	remote := &mockRunner{}
	b := NewBridge(remote, nil, false, nil)

	_, err := b.Run(context.Background(), "Song", nil, ModeDirect)
	require.ErrorIs(t, err, domain.ErrDirectUnavailable)
	assert.Equal(t, 0, remote.calls)
}

func TestRun_RemoteOnlyWithoutServer(t *testing.T) {
	direct := &mockRunner{}
	b := NewBridge(nil, direct, false, nil)

	_, err := b.Run(context.Background(), "Song", nil, ModeRemote)
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Equal(t, 0, direct.calls)
}

func TestRun_AutoUsesDirectWhenOnlyStore(t *testing.T) {
	direct := &mockRunner{}
	b := NewBridge(nil, direct, false, nil)

	_, err := b.Run(context.Background(), "Song", nil, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, 1, direct.calls)
}

func TestRun_NothingConfigured(t *testing.T) {
	b := NewBridge(nil, nil, false, nil)
	_, err := b.Run(context.Background(), "Song", nil, ModeAuto)
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestRun_ErrorsPropagateUnchanged(t *testing.T) {
	wantErr := errors.New("boom")
	remote := &mockRunner{err: wantErr}
	b := NewBridge(remote, nil, false, nil)

	_, err := b.Run(context.Background(), "Song", nil, ModeRemote)
	require.ErrorIs(t, err, wantErr)
	// One attempt only: the bridge never retries.
	assert.Equal(t, 1, remote.calls)
}

func TestHasDirect(t *testing.T) {
	assert.False(t, NewBridge(&mockRunner{}, nil, false, nil).HasDirect())
	assert.True(t, NewBridge(&mockRunner{}, &mockRunner{}, false, nil).HasDirect())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "auto", ModeAuto.String())
	assert.Equal(t, "remote", ModeRemote.String())
	assert.Equal(t, "direct", ModeDirect.String())
}
