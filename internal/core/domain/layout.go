package domain

import "path/filepath"

const (
	// TandemDirName is the name of the internal workspace directory.
	TandemDirName = ".tandem"

	// StoreDirName is the name of the build info store directory.
	StoreDirName = "store"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// ArtifactsDirName is the name of the downloaded artifact cache directory.
	ArtifactsDirName = "artifacts"

	// LayersDirName is the name of the dependency layer cache directory.
	LayersDirName = "layers"

	// ImagesDirName is the name of the built images directory.
	ImagesDirName = "images"

	// StagingDirName is the name of the directory holding in-progress builds.
	StagingDirName = "staging"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "tandem.yaml"

	// EnvDirName is the dependency environment directory inside an image.
	EnvDirName = "env"

	// AppDirName is the application source directory inside an image.
	AppDirName = "app"

	// PackagesDirName is the directory inside an environment holding extracted packages.
	PackagesDirName = "packages"

	// ReceiptFileName is the environment receipt written by the installer.
	ReceiptFileName = "receipt.cbor"

	// ImageConfigFileName is the image config written by the define-entrypoint stage.
	ImageConfigFileName = "image.json"

	// ArtifactMetadataFile is the metadata file every package artifact carries at its top level.
	ArtifactMetadataFile = "METADATA"

	// OCIArchiveSuffix is appended to the role name for the exported OCI archive.
	OCIArchiveSuffix = ".tar"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultTandemPath returns the default root directory for tandem metadata.
func DefaultTandemPath() string {
	return TandemDirName
}

// DefaultStorePath returns the default path for the build info store.
// It joins .tandem and store.
func DefaultStorePath() string {
	return filepath.Join(TandemDirName, StoreDirName)
}

// DefaultCachePath returns the default path for all caches.
func DefaultCachePath() string {
	return filepath.Join(TandemDirName, CacheDirName)
}

// DefaultArtifactCachePath returns the default path for downloaded package artifacts.
// It joins .tandem, cache, and artifacts.
func DefaultArtifactCachePath() string {
	return filepath.Join(TandemDirName, CacheDirName, ArtifactsDirName)
}

// DefaultLayerCachePath returns the default path for cached dependency layers.
// It joins .tandem, cache, and layers.
func DefaultLayerCachePath() string {
	return filepath.Join(TandemDirName, CacheDirName, LayersDirName)
}

// DefaultImagesPath returns the default path for built images.
func DefaultImagesPath() string {
	return filepath.Join(TandemDirName, ImagesDirName)
}

// DefaultStagingPath returns the default path for in-progress builds.
func DefaultStagingPath() string {
	return filepath.Join(TandemDirName, StagingDirName)
}

// ImagePath returns the relative path of the committed image for role.
func ImagePath(role Role) string {
	return filepath.Join(TandemDirName, ImagesDirName, string(role))
}

// OCIArchivePath returns the relative path of the exported OCI archive for role.
func OCIArchivePath(role Role) string {
	return filepath.Join(TandemDirName, ImagesDirName, string(role)+OCIArchiveSuffix)
}

// LayerPath returns the relative path of a cached dependency layer.
func LayerPath(role Role, key string) string {
	return filepath.Join(TandemDirName, CacheDirName, LayersDirName, string(role), key)
}
