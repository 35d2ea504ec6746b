// Package artifacts fetches the fitted scaler and classifier blobs from
// their storage. It never writes them.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrUnknownFormat    = errors.New("unknown artifact format")
	ErrUnknownSource    = errors.New("unknown artifact source")
)

// Format is the serialisation of an artifact blob.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Blob is an undecoded artifact together with where it came from.
type Blob struct {
	Name   string
	Format Format
	Source string
	Data   []byte
}

// Store returns artifact blobs by name.
type Store interface {
	Fetch(ctx context.Context, name string) (Blob, error)
}

// ParseFormat accepts a format name as stored next to a blob.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// FileStore reads artifacts from files, one path per artifact name.
type FileStore struct {
	paths map[string]string
}

func NewFileStore(paths map[string]string) *FileStore {
	copied := make(map[string]string, len(paths))
	for name, path := range paths {
		copied[name] = path
	}
	return &FileStore{paths: copied}
}

func (s *FileStore) Fetch(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}
	path, ok := s.paths[name]
	if !ok {
		return Blob{}, fmt.Errorf("%w: no path configured for %q", ErrArtifactNotFound, name)
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return Blob{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Blob{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return Blob{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Blob{Name: name, Format: format, Source: path, Data: data}, nil
}

// ResolvePath finds a relative artifact path from the working directory or
// up to two parents, so binaries run from cmd/<name> still find models/.
func ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	startDir, err := os.Getwd()
	if err != nil {
		return path
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}
	for _, dir := range candidates {
		full := filepath.Join(dir, path)
		if fileExists(full) {
			return full
		}
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
