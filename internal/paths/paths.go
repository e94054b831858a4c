package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "costwatch"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for cached build state.
//
//	Linux:   ~/.cache/costwatch
//	macOS:   ~/Library/Caches/costwatch
func Cache() string {
	return filepath.Join(xdg.CacheHome, appName)
}

// Path to the build cache manifest.
//
// The file records the image digest produced for each build-context digest,
// letting an unchanged context skip the build entirely.
func BuildCacheFile() string {
	return filepath.Join(Cache(), "buildcache.json")
}

// Path to the directory for runtime files (locks, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/costwatch or /run/user/<uid>/costwatch
//	macOS:   ~/Library/Caches/costwatch/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, appName)
	}
	return filepath.Join(xdg.CacheHome, appName, "run")
}

// Path to the publish lock file for a branch.
//
// One lock per branch serializes concurrent publishes, so the pushed tag
// always reflects the run that held the lock rather than whichever run
// happened to finish last.
func LockFile(branch string) string {
	return filepath.Join(Runtime(), "publish-"+sanitize(branch)+".lock")
}

// Replaces path separators in a branch name so it is safe as a file name.
func sanitize(branch string) string {
	s := make([]byte, len(branch))
	for i := 0; i < len(branch); i++ {
		c := branch[i]
		if c == '/' || c == os.PathSeparator {
			c = '-'
		}
		s[i] = c
	}
	return string(s)
}
