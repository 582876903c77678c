package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omniagentpay/omniagentpay-go/internal/install"
)

func writeFakeExecutable(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
}

func TestLocateExplicitPathWins(t *testing.T) {
	t.Setenv(WorkerPathEnvVar, "")

	explicit := filepath.Join(t.TempDir(), "worker")
	writeFakeExecutable(t, explicit)

	b, err := New(WithLogger(zap.NewNop()), WithWorkerPath(explicit))
	require.NoError(t, err)

	path, err := b.locateWorker()
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
}

func TestLocateEnvOverride(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "worker")
	writeFakeExecutable(t, envPath)
	t.Setenv(WorkerPathEnvVar, envPath)

	b, err := New(WithLogger(zap.NewNop()))
	require.NoError(t, err)

	path, err := b.locateWorker()
	require.NoError(t, err)
	assert.Equal(t, envPath, path)
}

func TestLocateExplicitBeatsEnv(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "explicit-worker")
	writeFakeExecutable(t, explicit)
	envPath := filepath.Join(t.TempDir(), "env-worker")
	writeFakeExecutable(t, envPath)
	t.Setenv(WorkerPathEnvVar, envPath)

	b, err := New(WithLogger(zap.NewNop()), WithWorkerPath(explicit))
	require.NoError(t, err)

	path, err := b.locateWorker()
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
}

func TestLocateDevBuildInAncestor(t *testing.T) {
	t.Setenv(WorkerPathEnvVar, "")

	root := t.TempDir()
	devWorker := filepath.Join(root, "bin", install.WorkerName)
	writeFakeExecutable(t, devWorker)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	b, err := New(WithLogger(zap.NewNop()))
	require.NoError(t, err)

	path, err := b.locateWorker()
	require.NoError(t, err)
	// the tempdir path may traverse symlinks, compare the resolved forms
	want, err := filepath.EvalSymlinks(devWorker)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocateFailureListsCandidates(t *testing.T) {
	t.Setenv(WorkerPathEnvVar, "")

	missing := filepath.Join(t.TempDir(), "nope")
	b, err := New(WithLogger(zap.NewNop()), WithWorkerPath(missing))
	require.NoError(t, err)

	_, err = b.locateWorker()
	var lerr *LaunchError
	require.ErrorAs(t, err, &lerr)
	assert.Contains(t, lerr.Candidates, missing)
	assert.Contains(t, lerr.Error(), missing)
}
