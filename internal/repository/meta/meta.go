package meta

import (
	"encoding/json"
	"os"
	"path"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/oshokin/release-merger/internal/domain/release"
)

// Filename is the per-architecture metadata document name inside a build directory.
const Filename = "meta.json"

// ErrNoInputs is returned when a build directory has no architecture with metadata.
var ErrNoInputs = errors.New("no architecture metadata found")

// BuildDir returns the directory holding the architecture subdirectories of a build,
// relative to the working directory.
func BuildDir(buildID string) string {
	return path.Join("builds", buildID)
}

// Discover lists the metadata documents of every architecture directory under buildDir.
// Directories without a metadata document are skipped. Paths are returned sorted.
func Discover(fs billy.Filesystem, buildDir string) ([]string, error) {
	entries, err := fs.ReadDir(buildDir)
	if err != nil {
		return nil, errors.Wrapf(err, "list build directory %q", buildDir)
	}

	files := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		candidate := fs.Join(buildDir, entry.Name(), Filename)

		info, err := fs.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, errors.Wrapf(err, "stat %q", candidate)
		}

		if info.IsDir() {
			continue
		}

		files = append(files, candidate)
	}

	if len(files) == 0 {
		return nil, errors.Wrapf(ErrNoInputs, "build directory %q", buildDir)
	}

	sort.Strings(files)

	return files, nil
}

// Load reads and decodes one metadata document.
func Load(fs billy.Filesystem, name string) (*release.Meta, error) {
	contents, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, errors.Wrapf(err, "read metadata %q", name)
	}

	doc := new(release.Meta)
	if err = json.Unmarshal(contents, doc); err != nil {
		return nil, errors.Wrapf(err, "decode metadata %q", name)
	}

	return doc, nil
}
