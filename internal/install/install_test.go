package install

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	return zap.NewNop().Sugar()
}

func TestArtifactURL(t *testing.T) {
	i := &Installer{Logger: testLogger(t)}
	url := i.ArtifactURL("1.2.3")
	assert.Equal(t, fmt.Sprintf("%s/v1.2.3/%s-%s-%s", DefaultBaseURL, WorkerName, runtime.GOOS, runtime.GOARCH), url)

	i.BaseURL = "https://mirror.example.com/releases"
	assert.Equal(t, fmt.Sprintf("https://mirror.example.com/releases/v1.2.3/%s-%s-%s", WorkerName, runtime.GOOS, runtime.GOARCH), i.ArtifactURL("1.2.3"))
}

func TestInstallDownloadsExecutable(t *testing.T) {
	payload := []byte("#!/bin/sh\necho fake worker\n")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "v0.0.1")
		assert.Contains(t, r.URL.Path, WorkerName)
		w.Write(payload)
	}))
	t.Cleanup(server.Close)

	dest := filepath.Join(t.TempDir(), "bin", WorkerName)
	i := &Installer{
		Logger:  testLogger(t),
		BaseURL: server.URL,
		Dest:    dest,
	}

	got, err := i.Install(context.Background(), "0.0.1")
	require.NoError(t, err)
	assert.Equal(t, dest, got)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, b)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0111, "installed worker must be executable")
}

func TestInstallRejectsMissingRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	i := &Installer{
		Logger:  testLogger(t),
		BaseURL: server.URL,
		Dest:    filepath.Join(t.TempDir(), WorkerName),
	}

	_, err := i.Install(context.Background(), "9.9.9")
	require.Error(t, err)
	assert.NoFileExists(t, i.Dest)
}

func TestWorkerPathUnderUserDir(t *testing.T) {
	p, err := WorkerPath()
	require.NoError(t, err)
	assert.Contains(t, p, ".omniagentpay")
	assert.Equal(t, WorkerName, filepath.Base(p))
}
