package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/costwatch/costwatch/internal/paths"
)

// Acquires an exclusive publish lock at the given path.
//
// The lock file holds the owning PID. A lock left behind by a process that
// no longer exists is treated as stale and replaced. Returns the release
// function, or ErrLocked when another live process holds the lock.
func AcquireLock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLock, err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		release, err := tryLock(path)
		if err == nil {
			return release, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("%w: %w", ErrLock, err)
		}

		if !lockIsStale(path) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		os.Remove(path)
	}

	return nil, fmt.Errorf("%w: %s", ErrLocked, path)
}

// Creates the lock file exclusively and writes the owning PID.
func tryLock(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, paths.DefaultFileMode)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return func() { os.Remove(path) }, nil
}

// Reports whether the lock file's owning process is gone.
//
// An unreadable or malformed lock file counts as stale.
func lockIsStale(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return true
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}

	// Signal 0 probes for existence without delivering anything.
	return proc.Signal(syscall.Signal(0)) != nil
}
