package manifest

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha256"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/release-merger/internal/domain/release"
)

// Filename is the release manifest name inside a build directory.
const Filename = "release.json"

// DefaultFileMode is the permission of a written manifest.
const DefaultFileMode os.FileMode = 0o644

// Repository defines persistence operations for the release manifest.
type Repository interface {
	Path() string
	Load(ctx context.Context) (*release.Manifest, error)
	Save(ctx context.Context, manifest *release.Manifest) error
}

// FileRepository persists the release manifest as a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the manifest.
	path string
	// mu serializes access to the manifest file.
	mu sync.Mutex
}

// ErrNotFound is returned when the manifest file does not exist yet.
var ErrNotFound = errors.New("release manifest not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the manifest location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the manifest from disk.
func (r *FileRepository) Load(_ context.Context) (*release.Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, errors.Wrap(err, "read release manifest")
	}

	manifest := release.NewManifest()
	if err = json.Unmarshal(contents, manifest); err != nil {
		return nil, errors.Wrapf(err, "decode release manifest %q", r.path)
	}

	return manifest, nil
}

// Save replaces the manifest on disk. The new content is written next to the
// target and renamed over it, so readers never observe a partial file.
func (r *FileRepository) Save(_ context.Context, manifest *release.Manifest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(manifest)
	if err != nil {
		return errors.Wrap(err, "encode release manifest")
	}

	// go-update moves the current target aside before renaming, so it must exist.
	created := false

	if _, err = os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(r.path, nil, DefaultFileMode); err != nil {
			return errors.Wrap(err, "create release manifest")
		}

		created = true
	} else if err != nil {
		return errors.Wrap(err, "stat release manifest")
	}

	checksum := sha256.Sum256(data)
	options := goupdate.Options{
		TargetPath: r.path,
		TargetMode: DefaultFileMode,
		Checksum:   checksum[:],
		Hash:       crypto.SHA256,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		if created {
			_ = os.Remove(r.path)
		}

		return errors.Wrapf(err, "write release manifest %q", r.path)
	}

	return nil
}
