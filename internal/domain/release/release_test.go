package release

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExtension covers the trailing segment derivation.
func TestExtension(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path     string
		segments int
		want     string
	}{
		{path: "foo/disk.qcow2.gz", segments: 2, want: "qcow2.gz"},
		{path: "foo/disk.qcow2.gz", segments: 1, want: "gz"},
		{path: "foo/disk.img", segments: 1, want: "img"},
		{path: "disk.img", segments: 2, want: "disk.img"},
		{path: "kernel", segments: 1, want: "kernel"},
		{path: "a.b", segments: 0, want: "a.b"},
	}

	for _, c := range cases {
		require.Equal(t, c.want, Extension(c.path, c.segments), "path %s, segments %d", c.path, c.segments)
	}
}

// TestURLBuilder checks the location template and the signature suffix.
func TestURLBuilder(t *testing.T) {
	t.Parallel()

	b := URLBuilder{BaseURL: "https://example.com/prod/"}
	loc := b.Location("next", "39.1", "aarch64", "x/y.iso")

	require.Equal(t, "https://example.com/prod/streams/next/builds/39.1/aarch64/x/y.iso", loc)
	require.Equal(t, loc+".sig", Signature(loc))

	require.Equal(t,
		DefaultBaseURL+"/streams/s/builds/v/a/p",
		URLBuilder{}.Location("s", "v", "a", "p"))
}

// TestEnsureSame covers set, equal and mismatch outcomes.
func TestEnsureSame(t *testing.T) {
	t.Parallel()

	var dst string

	require.NoError(t, EnsureSame("release", &dst, "1"))
	require.Equal(t, "1", dst)

	require.NoError(t, EnsureSame("release", &dst, "1"))

	err := EnsureSame("release", &dst, "2")
	require.ErrorIs(t, err, ErrInconsistentRelease)
	require.Equal(t, "1", dst)
}

// TestMetaArch prefers basearch and falls back to the ref.
func TestMetaArch(t *testing.T) {
	t.Parallel()

	require.Equal(t, "s390x", (&Meta{BaseArch: "s390x", Ref: "fedora/x86_64/coreos/stable"}).Arch())
	require.Equal(t, "x86_64", (&Meta{Ref: "fedora/x86_64/coreos/stable"}).Arch())
	require.Empty(t, (&Meta{Ref: "stable"}).Arch())
}

// TestMetaDecode reads a document with the producer's field names.
func TestMetaDecode(t *testing.T) {
	t.Parallel()

	raw := `{
		"buildid": "38.20230101.1",
		"coreos-assembler.basearch": "x86_64",
		"ostree-commit": "abc",
		"coreos-assembler.container-config-git": {"branch": "stable", "commit": "def"},
		"images": {"qemu": {"path": "foo-qemu.qcow2.gz", "sha256": "123", "size": 10}},
		"amis": [{"name": "us-east-1", "hvm": "ami-1", "snapshot": "snap-1"}]
	}`

	var meta Meta
	require.NoError(t, json.Unmarshal([]byte(raw), &meta))

	require.Equal(t, "38.20230101.1", meta.BuildID)
	require.Equal(t, "x86_64", meta.Arch())
	require.Equal(t, "stable", meta.Stream())
	require.Equal(t, "abc", meta.OSTreeCommit)
	require.Equal(t, Image{Path: "foo-qemu.qcow2.gz", Sha256: "123"}, meta.Images["qemu"])
	require.Equal(t, []AMI{{Name: "us-east-1", HVM: "ami-1"}}, meta.AMIs)
}

// TestMediaJSON keeps empty artifact maps and drops absent ones.
func TestMediaJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Media{Artifacts: map[string]ArtifactFormat{}})
	require.NoError(t, err)
	require.JSONEq(t, `{"artifacts": {}}`, string(data))

	data, err = json.Marshal(Media{Images: map[string]CloudImage{"us-east-1": {Image: "ami-1"}}})
	require.NoError(t, err)
	require.JSONEq(t, `{"images": {"us-east-1": {"image": "ami-1"}}}`, string(data))

	var media Media
	require.NoError(t, json.Unmarshal([]byte(`{"artifacts": {}}`), &media))
	require.NotNil(t, media.Artifacts)
	require.Nil(t, media.Images)
}
