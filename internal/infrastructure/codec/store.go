package codec

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/reglet-dev/xrdsim/internal/application/errors"
	"github.com/reglet-dev/xrdsim/internal/application/ports"
	"github.com/reglet-dev/xrdsim/internal/domain/entities"
)

// Store implements ports.ProfileStore on the local filesystem.
type Store struct {
	factory ports.CodecFactory
	logger  *slog.Logger
}

// NewStore creates a new file store.
func NewStore(factory ports.CodecFactory, logger *slog.Logger) *Store {
	if factory == nil {
		factory = NewFactory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{factory: factory, logger: logger}
}

// FormatFromPath maps a file extension to a format name.
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case FormatCSV, FormatJSON, FormatParquet:
		return ext, nil
	default:
		return "", apperrors.NewUnsupportedFormatError(ext, path)
	}
}

// ResolveFormat uses override when non-empty, else the extension of path.
func (s *Store) ResolveFormat(path, override string) (string, error) {
	if override == "" {
		return FormatFromPath(path)
	}
	format := strings.ToLower(strings.TrimSpace(override))
	for _, f := range s.factory.SupportedFormats() {
		if f == format {
			return format, nil
		}
	}
	return "", apperrors.NewUnsupportedFormatError(override, path)
}

// Save encodes the collection in memory, then writes it to a temporary file
// in the destination directory and renames it into place. A failed save
// leaves no file behind.
func (s *Store) Save(ctx context.Context, coll *entities.ProfileCollection, path, format string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	codec, err := s.factory.Create(format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, coll); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // output files are meant to be shared
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}

	s.logger.Debug("profile file written", "output", path, "format", format, "bytes", buf.Len())
	return nil
}

// Load decodes a collection from path.
func (s *Store) Load(ctx context.Context, path, format string) (*entities.ProfileCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	codec, err := s.factory.Create(format)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // G304: path is a user-provided profile file
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile file: %w", err)
	}
	defer func() { _ = f.Close() }()

	coll, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return coll, nil
}
