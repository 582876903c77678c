// Package install manages the per-user installation of the omniagentpay
// worker executable, which the bridge probes as its last-resort launch path.
package install

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// WorkerName is the file name of the installed worker executable.
const WorkerName = "omniagentpay-server"

// DefaultBaseURL is where release bundles are downloaded from. The full
// artifact URL is derived from the requested version and the host platform.
const DefaultBaseURL = "https://github.com/omniagentpay/omniagentpay/releases/download"

// Dir returns the per-user installation directory, creating nothing.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".omniagentpay"), nil
}

// WorkerPath returns the path the worker executable is installed to.
func WorkerPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bin", WorkerName), nil
}

type logAdapter struct {
	*zap.SugaredLogger
}

func (a *logAdapter) Printf(msg string, args ...interface{}) { a.Debugf(msg, args...) }

// Installer downloads worker release bundles.
type Installer struct {
	Logger *zap.SugaredLogger

	// BaseURL overrides DefaultBaseURL, for mirrors and tests.
	BaseURL string
	// Dest overrides the path returned by WorkerPath.
	Dest string
}

// ArtifactURL returns the download URL for the given version on the current
// platform.
func (i *Installer) ArtifactURL(version string) string {
	base := i.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/v%s/%s-%s-%s", base, version, WorkerName, runtime.GOOS, runtime.GOARCH)
}

// Install downloads the worker executable for the given version and writes it
// to the destination path atomically, returning the installed path.
func (i *Installer) Install(ctx context.Context, version string) (string, error) {
	dest := i.Dest
	if dest == "" {
		var err error
		dest, err = WorkerPath()
		if err != nil {
			return "", err
		}
	}

	url := i.ArtifactURL(version)
	i.Logger.Debugw("downloading worker", "URL", url, "Dest", dest)

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = &logAdapter{SugaredLogger: i.Logger}

	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}
	req = req.WithContext(ctx)

	resp, err := retryClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading worker: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d downloading %s", resp.StatusCode, url)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("making install dir: %w", err)
	}

	// Write next to the destination, then rename, so a concurrent launch
	// never sees a half-written executable.
	tmp, err := os.CreateTemp(filepath.Dir(dest), WorkerName+".*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing worker: %w", err)
	}
	if err := tmp.Chmod(0755); err != nil {
		tmp.Close()
		return "", fmt.Errorf("marking worker executable: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing worker file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("installing worker: %w", err)
	}

	i.Logger.Infow("installed worker", "Version", version, "Path", dest)
	return dest, nil
}
