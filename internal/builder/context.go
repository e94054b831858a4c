package builder

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/opencontainers/go-digest"

	"github.com/costwatch/costwatch/internal/manifest"
)

// Directory entries excluded from the build context and fingerprint.
//
// Repository metadata changes on every fetch without affecting the build
// inputs, so including it would defeat the cache.
var excluded = map[string]bool{
	".git": true,
}

// Streams the context directory and the rendered Dockerfile as a tar archive.
//
// The archive is produced on a pipe so large contexts are never buffered in
// memory. Any write error is delivered to the reader via CloseWithError.
func tarContext(dir string, dockerfile []byte) io.ReadCloser {
	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)

		err := writeTree(tw, dir)
		if err == nil {
			err = writeBytes(tw, dockerfileName, dockerfile)
		}
		if err == nil {
			err = tw.Close()
		}

		pw.CloseWithError(err)
	}()

	return pr
}

// Writes a directory tree to a tar writer with paths relative to the root.
func writeTree(tw *tar.Writer, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if d.IsDir() && excluded[relPath] {
			return filepath.SkipDir
		}

		return writeTarEntry(tw, path, filepath.ToSlash(relPath), d)
	})
}

// Writes a single file or directory entry to a tar writer.
func writeTarEntry(tw *tar.Writer, hostPath, archivePath string, d os.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = archivePath

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	}

	return nil
}

// Writes an in-memory file to a tar writer.
func writeBytes(tw *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name: name,
		Mode: 0644,
		Size: int64(len(data)),
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

// Computes a content digest over the build inputs.
//
// The digest covers every file in the context directory (path, mode, and
// content, in sorted path order) plus the rendered Dockerfile. Identical
// inputs always produce the same digest; any content, rename, or manifest
// change produces a different one. Tar headers are deliberately not part of
// the digest so timestamps cannot break cache hits.
func (b *Builder) Fingerprint(dir string, m *manifest.Manifest) (digest.Digest, error) {
	files, err := contextFiles(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContext, err)
	}

	digester := digest.Canonical.Digester()
	h := digester.Hash()

	for _, relPath := range files {
		path := filepath.Join(dir, relPath)

		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrContext, err)
		}

		fmt.Fprintf(h, "%s\x00%o\x00", filepath.ToSlash(relPath), info.Mode().Perm())

		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrContext, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrContext, err)
		}

		h.Write([]byte{0})
	}

	fmt.Fprintf(h, "%s\x00", dockerfileName)
	h.Write(m.Dockerfile())

	return digester.Digest(), nil
}

// Lists the regular files in the context directory, sorted by relative path.
func contextFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if excluded[relPath] {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
