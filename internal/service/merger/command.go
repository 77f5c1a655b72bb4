package merger

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/oshokin/release-merger/internal/config"
	"github.com/oshokin/release-merger/internal/domain/release"
	"github.com/oshokin/release-merger/internal/logger"
	"github.com/oshokin/release-merger/internal/repository/manifest"
	"github.com/oshokin/release-merger/internal/repository/meta"
)

// Options contains inputs for the merger entry point.
type Options struct {
	// ConfigPath is an optional path to the settings file (defaults to release-merger.yaml).
	ConfigPath string
	// LogLevel overrides the level from the settings when not empty.
	LogLevel string
	// Workdir is the build working directory holding builds/<build-id>/<arch>/meta.json.
	Workdir string
	// BuildID selects the build directory inside Workdir.
	BuildID string
	// Inputs are explicit metadata documents, used instead of Workdir and BuildID.
	Inputs []string
	// Output is the manifest path for explicit inputs.
	Output string
}

// ErrInvalidInvocation is returned when neither or both input modes are requested.
var ErrInvalidInvocation = errors.New("invalid invocation")

// runner holds everything a single merge run needs.
// It is unexported: callers should use Run.
type runner struct {
	// fs is the filesystem the metadata documents are read from.
	fs billy.Filesystem
	// inputs are the metadata documents in processing order.
	inputs []string
	// repo persists the manifest.
	repo manifest.Repository
	// merger folds documents into the manifest.
	merger *release.Merger
}

// Run merges the metadata documents selected by opts into the release manifest.
// Nothing is written unless every document merges cleanly.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "release-merger")

	if err := validateOptions(opts); err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "load settings")
	}

	if err = applyLogLevel(cfg, opts.LogLevel); err != nil {
		return err
	}

	r, err := newRunner(ctx, opts, cfg)
	if err != nil {
		return err
	}

	return r.Run(ctx)
}

func validateOptions(opts *Options) error {
	if opts == nil {
		return errors.Wrap(ErrInvalidInvocation, "options are not set")
	}

	workdirMode := opts.Workdir != "" || opts.BuildID != ""
	explicitMode := len(opts.Inputs) > 0 || opts.Output != ""

	switch {
	case workdirMode && explicitMode:
		return errors.WithHint(
			errors.Wrap(ErrInvalidInvocation, "workdir mode and explicit input files are mutually exclusive"),
			"use either --workdir with --build-id, or input files with --output")
	case workdirMode && (opts.Workdir == "" || opts.BuildID == ""):
		return errors.WithHint(
			errors.Wrap(ErrInvalidInvocation, "--workdir and --build-id must be given together"),
			"pass both flags to merge a build directory")
	case explicitMode && (len(opts.Inputs) == 0 || opts.Output == ""):
		return errors.WithHint(
			errors.Wrap(ErrInvalidInvocation, "input files and --output must be given together"),
			"pass at least one meta.json and the manifest path")
	case !workdirMode && !explicitMode:
		return errors.WithHint(
			errors.Wrap(ErrInvalidInvocation, "no inputs"),
			"use either --workdir with --build-id, or input files with --output")
	}

	return nil
}

func applyLogLevel(cfg *config.Config, override string) error {
	name := cfg.LogLevel
	if override != "" {
		name = override
	}

	level, ok := logger.ParseLogLevel(name)
	if !ok {
		return errors.Newf("unknown log level %q", name)
	}

	logger.SetLevel(level)

	return nil
}

// newRunner resolves the input documents and the manifest location for the requested mode.
func newRunner(ctx context.Context, opts *Options, cfg *config.Config) (*runner, error) {
	var output string

	r := &runner{
		merger: release.NewMerger(release.URLBuilder{BaseURL: cfg.BaseURL}, cfg.Platforms),
	}

	if opts.Workdir != "" {
		r.fs = osfs.New(opts.Workdir)
		buildDir := meta.BuildDir(opts.BuildID)

		inputs, err := meta.Discover(r.fs, buildDir)
		if err != nil {
			return nil, err
		}

		r.inputs = inputs
		output = filepath.Join(opts.Workdir, filepath.FromSlash(buildDir), manifest.Filename)
	} else {
		// Explicit paths may be relative to the current directory, the filesystem is rooted at /.
		r.fs = osfs.New(string(filepath.Separator))
		r.inputs = make([]string, 0, len(opts.Inputs))

		for _, input := range opts.Inputs {
			abs, err := filepath.Abs(input)
			if err != nil {
				return nil, errors.Wrapf(err, "resolve input %q", input)
			}

			r.inputs = append(r.inputs, abs)
		}

		output = opts.Output
	}

	r.repo = manifest.NewFileRepository(output)

	logger.DebugKV(ctx, "Resolved inputs", "inputs", r.inputs, "output", r.repo.Path())

	return r, nil
}

// Run folds every input into the manifest, in order, and saves it once at the end.
func (r *runner) Run(ctx context.Context) error {
	current, err := r.loadManifest(ctx)
	if err != nil {
		return err
	}

	for _, input := range r.inputs {
		if err = ctx.Err(); err != nil {
			return errors.Wrap(err, "merge interrupted")
		}

		var doc *release.Meta

		doc, err = meta.Load(r.fs, input)
		if err != nil {
			return err
		}

		current, err = r.merger.Merge(current, doc, input)
		if err != nil {
			return err
		}

		logger.InfoKV(ctx, "Merged metadata", "path", input, "arch", doc.Arch())
	}

	if err = r.repo.Save(ctx, current); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Release manifest written",
		"path", r.repo.Path(),
		"release", current.Release,
		"stream", current.Stream,
		"architectures", len(current.Architectures))

	return nil
}

// loadManifest returns the existing manifest or an empty one when there is none yet.
func (r *runner) loadManifest(ctx context.Context) (*release.Manifest, error) {
	current, err := r.repo.Load(ctx)

	switch {
	case errors.Is(err, manifest.ErrNotFound):
		logger.InfoKV(ctx, "Starting a new release manifest", "path", r.repo.Path())

		return release.NewManifest(), nil
	case err != nil:
		return nil, err
	}

	logger.InfoKV(ctx, "Loaded existing release manifest",
		"path", r.repo.Path(),
		"release", current.Release,
		"architectures", len(current.Architectures))

	return current, nil
}
