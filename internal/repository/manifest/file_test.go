package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-merger/internal/domain/release"
)

func sampleManifest() *release.Manifest {
	location := "https://example.com/prod/streams/stable/builds/38.1/x86_64/foo.iso"

	return &release.Manifest{
		Release: "38.1",
		Stream:  "stable",
		Architectures: map[string]*release.Architecture{
			"x86_64": {
				Commit: "abc",
				Media: map[string]release.Media{
					release.MediaMetal: {
						Artifacts: map[string]release.ArtifactFormat{
							release.ArtifactInstallerISO: {
								Disk: &release.Artifact{
									Location:  location,
									Signature: release.Signature(location),
									Sha256:    "123",
								},
							},
						},
					},
				},
			},
		},
	}
}

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), Filename))

	m, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, m)
}

// TestFileRepository_SaveLoad writes a new manifest and reads it back.
func TestFileRepository_SaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, Filename)
	repo := NewFileRepository(filepath.Join(dir, ".", Filename))
	require.Equal(t, file, repo.Path())

	want := sampleManifest()

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestFileRepository_Replace overwrites an existing manifest and leaves no side files behind.
func TestFileRepository_Replace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, Filename)
	require.NoError(t, os.WriteFile(file, []byte(`{"release": "old"}`), DefaultFileMode))

	repo := NewFileRepository(file)
	require.NoError(t, repo.Save(context.Background(), sampleManifest()))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "38.1", got.Release)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, Filename, entries[0].Name())
}

// TestFileRepository_Malformed reports a decode error for broken JSON.
func TestFileRepository_Malformed(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), Filename)
	require.NoError(t, os.WriteFile(file, []byte(`{"architectures": [`), DefaultFileMode))

	_, err := NewFileRepository(file).Load(context.Background())
	require.ErrorContains(t, err, "decode release manifest")
}
