package domain

// VertexStatus is the outcome of one recorded unit of work, such as a pipeline stage.
type VertexStatus string

const (
	// VertexStatusCompleted indicates the stage executed successfully.
	VertexStatusCompleted VertexStatus = "completed"
	// VertexStatusFailed indicates the stage failed.
	VertexStatusFailed VertexStatus = "failed"
	// VertexStatusCached indicates the stage reused a verified cached result.
	VertexStatusCached VertexStatus = "cached"
	// VertexStatusSkipped indicates the stage never ran because an earlier one failed.
	VertexStatusSkipped VertexStatus = "skipped"
)

// LogLevel is the severity of a message recorded on a vertex. Values match slog levels.
type LogLevel int

const (
	// LogLevelInfo is progress detail, kept on the vertex's output stream.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn is shown to the user under the stage line.
	LogLevelWarn LogLevel = 4
)

// String returns the uppercase level name.
func (l LogLevel) String() string {
	if l >= LogLevelWarn {
		return "WARN"
	}
	return "INFO"
}
