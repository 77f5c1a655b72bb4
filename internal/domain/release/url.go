package release

import (
	"fmt"
	"strings"
)

const (
	// DefaultBaseURL is the object storage prefix artifacts are published under.
	DefaultBaseURL = "https://fcos-builds.s3.amazonaws.com/prod"

	// SignatureSuffix is appended to an artifact location to get its detached signature.
	SignatureSuffix = ".sig"
)

// URLBuilder composes download locations. It never touches the network.
type URLBuilder struct {
	// BaseURL is the object storage prefix, without the streams/ segment.
	BaseURL string
}

// Location returns the URL of an artifact of the given build.
func (b URLBuilder) Location(stream, version, arch, path string) string {
	base := b.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	return fmt.Sprintf("%s/streams/%s/builds/%s/%s/%s", strings.TrimRight(base, "/"), stream, version, arch, path)
}

// Signature returns the signature URL for an artifact location.
func Signature(location string) string {
	return location + SignatureSuffix
}

// Extension returns the last segments dot-separated parts of path,
// so "foo/disk.qcow2.gz" with 2 segments gives "qcow2.gz".
// The whole path is returned when it has no more parts than requested.
func Extension(path string, segments int) string {
	parts := strings.Split(path, ".")
	if segments <= 0 || segments >= len(parts) {
		return path
	}

	return strings.Join(parts[len(parts)-segments:], ".")
}
