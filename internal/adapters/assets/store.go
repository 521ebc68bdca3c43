package assets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"eventplanner/internal/domain"
)

// NewStore returns an asset store for the given provider. Unknown providers
// fall back to the noop store so local development never needs object storage.
func NewStore(provider, baseDir string, logger *slog.Logger) domain.AssetStore {
	if provider == "local" && baseDir != "" {
		return &localStore{baseDir: baseDir}
	}
	return &noopStore{logger: logger}
}

// localStore keeps uploaded assets on the local filesystem.
type localStore struct {
	baseDir string
}

func (s *localStore) Delete(_ context.Context, ref string) error {
	ref = filepath.Clean(strings.TrimPrefix(ref, "/"))
	if ref == "." || strings.HasPrefix(ref, "..") {
		return fmt.Errorf("invalid asset ref %q", ref)
	}
	if err := os.Remove(filepath.Join(s.baseDir, ref)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}

type noopStore struct {
	logger *slog.Logger
}

func (s *noopStore) Delete(_ context.Context, ref string) error {
	s.logger.Debug("asset release skipped, no store configured", "ref", ref)
	return nil
}
