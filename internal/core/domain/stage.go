package domain

import "time"

// StageName names a build pipeline stage.
type StageName string

// Stages in pipeline order.
const (
	StageBaseRuntime         StageName = "base-runtime"
	StageInstallDependencies StageName = "install-dependencies"
	StageCopySource          StageName = "copy-source"
	StageDefineEntryPoint    StageName = "define-entrypoint"
	StageExport              StageName = "export"
)

// PipelineOrder returns the stage names in execution order.
func PipelineOrder() []StageName {
	return []StageName{
		StageBaseRuntime,
		StageInstallDependencies,
		StageCopySource,
		StageDefineEntryPoint,
		StageExport,
	}
}

// StageResult is the outcome of one stage in one build.
type StageResult struct {
	Stage    StageName
	Status   VertexStatus
	Key      string
	Duration time.Duration
	Err      error
}

// BuildResult is the outcome of building one image.
type BuildResult struct {
	Role   Role
	Image  *ServiceImage
	Stages []StageResult
}

// Stage returns the result for name.
func (r BuildResult) Stage(name StageName) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageResult{}, false
}
