package bridge

import (
	"os"
	"path/filepath"

	"github.com/omniagentpay/omniagentpay-go/internal/files"
	"github.com/omniagentpay/omniagentpay-go/internal/install"
)

// WorkerPathEnvVar overrides worker executable resolution when set.
const WorkerPathEnvVar = "OMNIAGENTPAY_WORKER"

// devBuildPath is the local development build location, searched for by
// walking up from the working directory.
var devBuildPath = filepath.Join("bin", install.WorkerName)

// locateWorker resolves the worker executable by probing, in order: the
// explicit path option, the environment override, a local development build
// in any ancestor of the working directory, and the per-user installed path.
// It returns a LaunchError listing every probed candidate when none exist.
func (b *Bridge) locateWorker() (string, error) {
	var candidates []string

	if b.workerPath != "" {
		candidates = append(candidates, b.workerPath)
	}
	if p := os.Getenv(WorkerPathEnvVar); p != "" {
		candidates = append(candidates, p)
	}
	if wd, err := os.Getwd(); err == nil {
		if p := files.FindUp(devBuildPath, wd); p != "" {
			candidates = append(candidates, p)
		}
	}
	if p, err := install.WorkerPath(); err == nil {
		candidates = append(candidates, p)
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", &LaunchError{Candidates: candidates}
}
