// Package local stores redaction artifacts in a directory on disk.
package local

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/tabular"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// ArtifactStore writes artifacts as files under Dir.
type ArtifactStore struct {
	dir    string
	logger logging.Logger
}

// NewArtifactStore returns a store rooted at dir. The directory is created
// on first write.
func NewArtifactStore(dir string, logger logging.Logger) *ArtifactStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ArtifactStore{dir: dir, logger: logger.Named("artifact_store")}
}

func (s *ArtifactStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errors.InvalidParam("invalid artifact name").WithDetail("name=" + name)
	}
	return filepath.Join(s.dir, name), nil
}

// Put writes data to <dir>/<name>, replacing any previous file, and returns
// the file path.
func (s *ArtifactStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := tabular.WriteFileAtomic(p, data); err != nil {
		return "", err
	}
	s.logger.Debug("Artifact written", logging.String("path", p), logging.Int("size", len(data)))
	return p, nil
}

// Exists reports whether name has been written.
func (s *ArtifactStore) Exists(_ context.Context, name string) (bool, error) {
	p, err := s.path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.Wrap(err, errors.CodeStorageError, "failed to stat artifact")
	}
}

// Delete removes name. Deleting a missing file is not an error.
func (s *ArtifactStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.CodeStorageError, "failed to delete artifact")
	}
	return nil
}

// List returns the names of the stored artifacts, sorted. Temporary files
// of in-flight writes are skipped.
func (s *ArtifactStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to list artifacts")
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Location returns the output directory.
func (s *ArtifactStore) Location() string { return s.dir }

//Personal.AI order the ending
