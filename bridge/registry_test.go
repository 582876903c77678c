package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIDsStrictlyIncreasing(t *testing.T) {
	reg := newRegistry()
	var last int64
	for i := 0; i < 1000; i++ {
		call, err := reg.register()
		require.NoError(t, err)
		require.Greater(t, call.id, last)
		last = call.id
		// completing a request never frees its id for reuse
		require.True(t, reg.resolve(call.id, nil))
	}
	assert.Equal(t, int64(1000), last)
}

func TestRegistryFirstIDIsOne(t *testing.T) {
	reg := newRegistry()
	call, err := reg.register()
	require.NoError(t, err)
	assert.Equal(t, int64(1), call.id)
}

func TestRegistryResolveAndReject(t *testing.T) {
	reg := newRegistry()

	a, err := reg.register()
	require.NoError(t, err)
	b, err := reg.register()
	require.NoError(t, err)
	assert.Equal(t, 2, reg.inflight())

	require.True(t, reg.resolve(a.id, json.RawMessage(`"ok"`)))
	res := <-a.ch
	require.NoError(t, res.err)
	assert.Equal(t, `"ok"`, string(res.result))

	require.True(t, reg.reject(b.id, &RemoteError{Code: -32603, Message: "boom"}))
	res = <-b.ch
	require.Error(t, res.err)
	var remote *RemoteError
	require.ErrorAs(t, res.err, &remote)
	assert.Equal(t, -32603, remote.Code)

	assert.Equal(t, 0, reg.inflight())
}

func TestRegistryCompletesAtMostOnce(t *testing.T) {
	reg := newRegistry()
	call, err := reg.register()
	require.NoError(t, err)

	require.True(t, reg.resolve(call.id, nil))
	assert.False(t, reg.resolve(call.id, nil))
	assert.False(t, reg.reject(call.id, assert.AnError))
}

func TestRegistryUnknownIDDropped(t *testing.T) {
	reg := newRegistry()
	assert.False(t, reg.resolve(42, nil))
	assert.False(t, reg.reject(42, assert.AnError))
}

func TestRegistryFailAll(t *testing.T) {
	reg := newRegistry()
	a, err := reg.register()
	require.NoError(t, err)
	b, err := reg.register()
	require.NoError(t, err)

	exitErr := &ProcessExitError{ExitCode: 1}
	reg.failAll(exitErr)

	for _, call := range []*pendingCall{a, b} {
		res := <-call.ch
		var perr *ProcessExitError
		require.ErrorAs(t, res.err, &perr)
		assert.Equal(t, 1, perr.ExitCode)
	}
	assert.Equal(t, 0, reg.inflight())

	// the registry is terminal: nothing can be registered against a dead worker
	_, err = reg.register()
	require.ErrorAs(t, err, new(*ProcessExitError))

	// and repeated failAll does not complete anything twice
	reg.failAll(&ProcessExitError{ExitCode: 2})
	select {
	case res, ok := <-a.ch:
		if ok {
			t.Fatalf("pending call completed twice: %+v", res)
		}
	default:
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := newRegistry()
	call, err := reg.register()
	require.NoError(t, err)
	reg.remove(call.id)

	assert.Equal(t, 0, reg.inflight())
	assert.False(t, reg.resolve(call.id, nil))
}
