package config

// Tandemfile represents the structure of the tandem.yaml configuration file.
type Tandemfile struct {
	Version       string               `yaml:"version"`
	Runtime       string               `yaml:"runtime"`
	Manifest      string               `yaml:"manifest"`
	Lockfile      string               `yaml:"lockfile"`
	RequireHashes bool                 `yaml:"require_hashes"`
	Index         IndexDTO             `yaml:"index"`
	Images        map[string]*ImageDTO `yaml:"images"`
}

// IndexDTO represents the package index section.
type IndexDTO struct {
	Path  string  `yaml:"path"`
	URL   string  `yaml:"url"`
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// ImageDTO represents one image definition. Pointer fields distinguish unset from zero.
type ImageDTO struct {
	Source   string `yaml:"source"`
	Port     *int   `yaml:"port"`
	Headless *bool  `yaml:"headless"`
}

const (
	// SupportedVersion is the only tandem.yaml schema version.
	SupportedVersion = "1"
	// DefaultRuntime is the base runtime reference used when none is configured.
	DefaultRuntime = "python:3.12-slim"
	// DefaultManifest is the manifest file used when none is configured.
	DefaultManifest = "requirements.in"
	// DefaultLockfile is the lockfile file used when none is configured.
	DefaultLockfile = "requirements.txt"
	// DefaultIndexPath is the local package index used when no index is configured.
	DefaultIndexPath = "index"
	// DefaultIndexRate is the request rate limit against a remote index.
	DefaultIndexRate = 10
)
