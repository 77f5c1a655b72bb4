package release

import (
	"maps"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
)

// Platform is a generic media type whose image is recorded as a single disk artifact.
type Platform struct {
	// Name is both the image key in the metadata and the media type in the manifest.
	Name string `yaml:"name"`
	// ExtensionSegments is how many trailing dot-separated parts of the path form the artifact key.
	ExtensionSegments int `yaml:"extension_segments"`
}

// DefaultPlatforms returns the built-in platform table.
func DefaultPlatforms() []Platform {
	return []Platform{
		{Name: "aws", ExtensionSegments: 2},
		{Name: "qemu", ExtensionSegments: 2},
		{Name: "metal", ExtensionSegments: 2},
		{Name: "openstack", ExtensionSegments: 2},
		{Name: "vmware", ExtensionSegments: 1},
	}
}

// Merger folds metadata documents into a release manifest.
type Merger struct {
	platforms []Platform
	urls      URLBuilder
}

// NewMerger creates a merger for the given platform table.
// A nil table falls back to DefaultPlatforms.
func NewMerger(urls URLBuilder, platforms []Platform) *Merger {
	if platforms == nil {
		platforms = DefaultPlatforms()
	}

	return &Merger{
		platforms: slices.Clone(platforms),
		urls:      urls,
	}
}

// Merge takes ownership of manifest, folds meta into it and returns the result.
// On error the returned manifest is nil and the passed one must be discarded.
// Source names the input in diagnostics.
func (m *Merger) Merge(manifest *Manifest, meta *Meta, source string) (*Manifest, error) {
	if manifest == nil {
		manifest = NewManifest()
	}

	if err := validateMeta(meta); err != nil {
		return nil, errors.Wrapf(err, "input file %q", source)
	}

	if err := EnsureSame("release", &manifest.Release, meta.BuildID); err != nil {
		return nil, errors.Wrapf(err, "input file %q", source)
	}

	if err := EnsureSame("stream", &manifest.Stream, meta.Stream()); err != nil {
		return nil, errors.Wrapf(err, "input file %q", source)
	}

	arch := meta.Arch()

	candidate, err := m.buildArchitecture(manifest, meta, arch)
	if err != nil {
		return nil, errors.Wrapf(err, "input file %q", source)
	}

	if err = mergeArchitecture(manifest, arch, candidate); err != nil {
		return nil, errors.Wrapf(err, "input file %q", source)
	}

	return manifest, nil
}

// buildArchitecture computes the record a single metadata document contributes.
func (m *Merger) buildArchitecture(manifest *Manifest, meta *Meta, arch string) (*Architecture, error) {
	candidate := &Architecture{
		Media: make(map[string]Media, len(m.platforms)+1),
	}

	if err := EnsureSame("commit", &candidate.Commit, meta.OSTreeCommit); err != nil {
		return nil, err
	}

	for _, platform := range m.platforms {
		image, ok := meta.Image(platform.Name)
		if !ok {
			continue
		}

		key := Extension(image.Path, platform.ExtensionSegments)
		candidate.Media[platform.Name] = Media{
			Artifacts: map[string]ArtifactFormat{
				key: {Disk: m.artifact(manifest, arch, image)},
			},
		}
	}

	if meta.AMIs != nil {
		aws := candidate.Media[MediaAWS]
		if aws.Images == nil {
			aws.Images = make(map[string]CloudImage, len(meta.AMIs))
		}

		for _, ami := range meta.AMIs {
			aws.Images[ami.Name] = CloudImage{Image: ami.HVM}
		}

		candidate.Media[MediaAWS] = aws
	}

	// Metal is always present, even without installer assets.
	metal := candidate.Media[MediaMetal]
	if metal.Artifacts == nil {
		metal.Artifacts = make(map[string]ArtifactFormat)
	}

	if image, ok := meta.Image(ImageISO); ok {
		metal.Artifacts[ArtifactInstallerISO] = ArtifactFormat{Disk: m.artifact(manifest, arch, image)}
	}

	if image, ok := meta.Image(ImageKernel); ok {
		pxe := metal.Artifacts[ArtifactInstallerPXE]
		pxe.Kernel = m.artifact(manifest, arch, image)
		metal.Artifacts[ArtifactInstallerPXE] = pxe
	}

	if image, ok := meta.Image(ImageInitramfs); ok {
		pxe := metal.Artifacts[ArtifactInstallerPXE]
		pxe.Initramfs = m.artifact(manifest, arch, image)
		metal.Artifacts[ArtifactInstallerPXE] = pxe
	}

	candidate.Media[MediaMetal] = metal

	return candidate, nil
}

func (m *Merger) artifact(manifest *Manifest, arch string, image Image) *Artifact {
	location := m.urls.Location(manifest.Stream, manifest.Release, arch, image.Path)

	return &Artifact{
		Location:  location,
		Signature: Signature(location),
		Sha256:    image.Sha256,
	}
}

// mergeArchitecture installs candidate under arch or extends the existing record media by media.
func mergeArchitecture(manifest *Manifest, arch string, candidate *Architecture) error {
	if manifest.Architectures == nil {
		manifest.Architectures = make(map[string]*Architecture)
	}

	existing, ok := manifest.Architectures[arch]
	if !ok || existing == nil {
		manifest.Architectures[arch] = candidate

		return nil
	}

	if existing.Media == nil {
		existing.Media = make(map[string]Media, len(candidate.Media))
	}

	// Sorted so that the reported conflict does not depend on map order.
	for _, mediaType := range slices.Sorted(maps.Keys(candidate.Media)) {
		media := candidate.Media[mediaType]

		current, found := existing.Media[mediaType]
		switch {
		case !found:
			existing.Media[mediaType] = media
		case cmp.Equal(current, media):
			continue
		default:
			err := errors.Wrapf(ErrMediaConflict, "architecture %q, media type %q", arch, mediaType)

			return errors.WithDetail(err, cmp.Diff(current, media))
		}
	}

	return nil
}

func validateMeta(meta *Meta) error {
	switch {
	case meta == nil:
		return errors.Wrap(ErrMissingField, "metadata document")
	case meta.BuildID == "":
		return errors.Wrap(ErrMissingField, "buildid")
	case meta.Arch() == "":
		return errors.Wrap(ErrMissingField, "coreos-assembler.basearch")
	case meta.Stream() == "":
		return errors.Wrap(ErrMissingField, "coreos-assembler.container-config-git.branch")
	}

	return nil
}
