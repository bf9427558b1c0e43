// Package pipeline builds one Service Image through an ordered list of stages.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
)

// Request is everything one image build needs. Manifest and Lockfile are shared
// read-only between concurrent builds.
type Request struct {
	Project   *domain.Project
	Spec      domain.ImageSpec
	Manifest  domain.Manifest
	Lockfile  domain.Lockfile
	Installer ports.Installer

	// NoCache forces install-dependencies to run even when a verified layer exists.
	NoCache bool
	// ExportOCI writes the committed image as an OCI archive.
	ExportOCI bool
}

// Pipeline runs the build stages for one image at a time. It is safe for concurrent use
// by builds of different roles.
type Pipeline struct {
	hasher    ports.Hasher
	copier    ports.TreeCopier
	store     ports.BuildInfoStore
	images    ports.ImageStore
	exporter  ports.ImageExporter
	telemetry ports.Telemetry
	tracer    ports.Tracer
	logger    ports.Logger

	now func() time.Time
}

// New creates a Pipeline.
func New(
	hasher ports.Hasher,
	copier ports.TreeCopier,
	store ports.BuildInfoStore,
	images ports.ImageStore,
	exporter ports.ImageExporter,
	telemetry ports.Telemetry,
	tracer ports.Tracer,
	logger ports.Logger,
) *Pipeline {
	return &Pipeline{
		hasher:    hasher,
		copier:    copier,
		store:     store,
		images:    images,
		exporter:  exporter,
		telemetry: telemetry,
		tracer:    tracer,
		logger:    logger,
		now:       time.Now,
	}
}

// build is the state of one pipeline run.
type build struct {
	req     Request
	id      string
	staging string
	results []domain.StageResult

	installKey string
	env        *domain.DependencyEnvironment
	sourceHash string
	image      *domain.ServiceImage
	committed  bool
}

func (b *build) role() domain.Role {
	return b.req.Spec.Role
}

func (b *build) envPath() string {
	return filepath.Join(b.staging, domain.EnvDirName)
}

func (b *build) appPath() string {
	return filepath.Join(b.staging, domain.AppDirName)
}

// Run executes every stage in order. Each stage checks its pre-condition, runs, then
// checks its post-condition. The first failure marks the remaining stages skipped. The
// staging directory is removed on any failure or cancellation, so only a fully built
// image is ever committed.
func (p *Pipeline) Run(ctx context.Context, req Request) (result *domain.BuildResult, err error) {
	b := &build{req: req, id: uuid.NewString()}
	b.staging = req.Project.Path(filepath.Join(domain.DefaultStagingPath(), string(b.role())+"-"+b.id))

	ctx, span := p.tracer.Start(ctx, "build "+string(b.role()))
	span.SetAttribute("image.role", string(b.role()))
	span.SetAttribute("build.id", b.id)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	defer func() {
		if !b.committed {
			_ = os.RemoveAll(b.staging)
		}
	}()

	stages := p.stages()
	for i, s := range stages {
		if cerr := ctx.Err(); cerr != nil {
			err = zerr.With(zerr.With(zerr.Wrap(domain.ErrBuildCancelled, "build aborted before "+string(s.name)), "image", b.role()), "reason", cerr.Error())
			b.skip(stages[i:])
			break
		}
		if err = p.runStage(ctx, b, s); err != nil {
			b.skip(stages[i+1:])
			break
		}
	}

	return &domain.BuildResult{Role: b.role(), Image: b.image, Stages: b.results}, err
}

func (p *Pipeline) runStage(ctx context.Context, b *build, s stage) (err error) {
	ctx, span := p.tracer.Start(ctx, string(s.name))
	defer span.End()
	ctx, vertex := p.telemetry.Record(ctx, string(s.name), ports.WithGroup(string(b.role())))

	start := p.now()
	res := domain.StageResult{Stage: s.name}
	defer func() {
		res.Duration = p.now().Sub(start)
		if err != nil {
			res.Status = domain.VertexStatusFailed
			res.Err = err
			span.RecordError(err)
		}
		b.results = append(b.results, res)
		vertex.Complete(err)
	}()

	if err := s.pre(ctx, b); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "pre-condition of "+string(s.name)+" failed"), "stage", s.name), "image", b.role())
	}

	out, err := s.run(ctx, b)
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, string(s.name)+" failed"), "stage", s.name), "image", b.role())
	}
	res.Key = out.key
	res.Status = domain.VertexStatusCompleted
	if out.cached {
		res.Status = domain.VertexStatusCached
		vertex.Cached()
	}

	if err := s.post(ctx, b); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "post-condition of "+string(s.name)+" failed"), "stage", s.name), "image", b.role())
	}
	return nil
}

func (b *build) skip(stages []stage) {
	for _, s := range stages {
		b.results = append(b.results, domain.StageResult{Stage: s.name, Status: domain.VertexStatusSkipped})
	}
}

// precondition returns a pre-condition failure for checks with no more specific class.
func precondition(format string, args ...any) error {
	return zerr.Wrap(domain.ErrPreconditionFailed, fmt.Sprintf(format, args...))
}

// postcondition returns a post-condition failure for checks with no more specific class.
func postcondition(format string, args ...any) error {
	return zerr.Wrap(domain.ErrPostconditionFailed, fmt.Sprintf(format, args...))
}
