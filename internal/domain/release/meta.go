package release

import "strings"

// Installer image names that are folded into the metal media instead of the platform table.
const (
	ImageISO       = "iso"
	ImageKernel    = "kernel"
	ImageInitramfs = "initramfs"
)

// Meta is the per-architecture build metadata document produced by the build pipeline.
// Field names are fixed by the producer and must not change.
type Meta struct {
	// BuildID is the release identifier shared by every architecture of one build.
	BuildID string `json:"buildid"`
	// BaseArch is the architecture the build was produced for.
	BaseArch string `json:"coreos-assembler.basearch,omitempty"`
	// Ref is the ostree ref, used to derive the architecture when BaseArch is missing.
	Ref string `json:"ref,omitempty"`
	// OSTreeCommit is the commit hash of the ostree content for this architecture.
	OSTreeCommit string `json:"ostree-commit,omitempty"`
	// ConfigGit describes the config repository the build came from.
	ConfigGit *ConfigGit `json:"coreos-assembler.container-config-git,omitempty"`
	// Images maps image kinds (qemu, metal, iso...) to the produced files.
	Images map[string]Image `json:"images,omitempty"`
	// AMIs lists the cloud image registrations for this build.
	AMIs []AMI `json:"amis,omitempty"`
}

// ConfigGit holds the source branch of the build configuration.
type ConfigGit struct {
	// Branch is the stream name.
	Branch string `json:"branch"`
}

// Image is one file produced by the build.
type Image struct {
	// Path is relative to the architecture build directory.
	Path string `json:"path"`
	// Sha256 is the hex digest of the file.
	Sha256 string `json:"sha256"`
}

// AMI is a cloud image registration in one region.
type AMI struct {
	// Name is the region the image was registered in.
	Name string `json:"name"`
	// HVM is the image id.
	HVM string `json:"hvm"`
}

// Image returns the named image. Entries that are missing, null or have no path
// are reported as absent.
func (m *Meta) Image(name string) (Image, bool) {
	image, ok := m.Images[name]

	return image, ok && image.Path != ""
}

// Stream returns the stream name or an empty string when the config git block is absent.
func (m *Meta) Stream() string {
	if m.ConfigGit == nil {
		return ""
	}

	return m.ConfigGit.Branch
}

// Arch returns the architecture of the document.
// BaseArch wins; otherwise the second segment of a ref like "fedora/x86_64/coreos/stable" is used.
func (m *Meta) Arch() string {
	if m.BaseArch != "" {
		return m.BaseArch
	}

	parts := strings.Split(m.Ref, "/")
	if len(parts) < refMinSegments {
		return ""
	}

	return parts[1]
}

// refMinSegments is the shortest ref that still carries an architecture segment.
const refMinSegments = 3
