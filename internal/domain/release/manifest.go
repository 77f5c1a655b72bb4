package release

import "encoding/json"

// Media type names with special handling.
const (
	MediaAWS   = "aws"
	MediaMetal = "metal"
)

// Artifact keys used inside the metal media.
const (
	ArtifactInstallerISO = "installer.iso"
	ArtifactInstallerPXE = "installer-pxe"
)

// Manifest is the consolidated release document covering every architecture.
type Manifest struct {
	// Release is the build identifier of the release.
	Release string `json:"release,omitempty"`
	// Stream is the release channel.
	Stream string `json:"stream,omitempty"`
	// Architectures maps an architecture name to its record.
	Architectures map[string]*Architecture `json:"architectures,omitempty"`
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return new(Manifest)
}

// Architecture is the per-architecture section of the manifest.
type Architecture struct {
	// Commit is the ostree commit of this architecture.
	Commit string `json:"commit,omitempty"`
	// Media maps a platform or distribution channel to its artifacts.
	Media map[string]Media `json:"media"`
}

// Media is the artifact set of one media type.
// A nil map is omitted from JSON, an empty one is kept.
type Media struct {
	// Artifacts is keyed by the file extension derived kind, e.g. "qcow2.gz" or "installer.iso".
	Artifacts map[string]ArtifactFormat
	// Images holds cloud image registrations keyed by region.
	Images map[string]CloudImage
}

// mediaJSON mirrors Media with pointers so that only nil maps are dropped.
type mediaJSON struct {
	Artifacts *map[string]ArtifactFormat `json:"artifacts,omitempty"`
	Images    *map[string]CloudImage     `json:"images,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (m Media) MarshalJSON() ([]byte, error) {
	var wire mediaJSON

	if m.Artifacts != nil {
		wire.Artifacts = &m.Artifacts
	}

	if m.Images != nil {
		wire.Images = &m.Images
	}

	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Media) UnmarshalJSON(data []byte) error {
	var wire mediaJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*m = Media{}

	if wire.Artifacts != nil {
		m.Artifacts = *wire.Artifacts
	}

	if wire.Images != nil {
		m.Images = *wire.Images
	}

	return nil
}

// ArtifactFormat groups the files making up one downloadable kind.
type ArtifactFormat struct {
	Disk      *Artifact `json:"disk,omitempty"`
	Kernel    *Artifact `json:"kernel,omitempty"`
	Initramfs *Artifact `json:"initramfs,omitempty"`
}

// Artifact is a single downloadable file.
type Artifact struct {
	// Location is the download URL.
	Location string `json:"location"`
	// Signature is Location with ".sig" appended.
	Signature string `json:"signature"`
	// Sha256 is the checksum reported by the build.
	Sha256 string `json:"sha256"`
}

// CloudImage is a cloud provider image reference.
type CloudImage struct {
	Image string `json:"image"`
}
