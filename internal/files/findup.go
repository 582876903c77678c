package files

import (
	"os"
	"path/filepath"
)

// FindUp walks from dir toward the filesystem root looking for rel, which may
// be a bare name or a relative path such as "bin/worker". It returns the
// first absolute path that exists, or "" if no ancestor contains it.
func FindUp(rel, dir string) string {
	curDir := dir
	for {
		candidate := filepath.Join(curDir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		newDir := filepath.Dir(curDir)
		if newDir == curDir {
			return ""
		}
		curDir = newDir
	}
}
