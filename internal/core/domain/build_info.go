package domain

import "time"

// BuildInfo is the cache record of one pipeline stage of one image.
type BuildInfo struct {
	Image      Role      `json:"image,omitzero"`
	Stage      StageName `json:"stage,omitzero"`
	InputHash  string    `json:"input_hash,omitzero"`
	OutputHash string    `json:"output_hash,omitzero"`
	BuildID    string    `json:"build_id,omitzero"`
	Timestamp  time.Time `json:"timestamp,omitzero"`
}

// Key returns the store key of the record.
func (b BuildInfo) Key() string {
	return BuildInfoKey(b.Image, b.Stage)
}

// BuildInfoKey returns the store key for a role and stage.
func BuildInfoKey(role Role, stage StageName) string {
	return string(role) + "/" + string(stage)
}
