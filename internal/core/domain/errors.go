// Package domain contains the core models of tandem: images, requirements, lockfiles and
// the build pipeline vocabulary.
package domain

import "go.trai.ch/zerr"

// Error classes. Call sites wrap these with zerr.Wrap so errors.Is keeps working
// after metadata is attached.
var (
	// ErrResolution is returned when the manifest and lockfile are inconsistent or a
	// fetched artifact cannot be verified against the lockfile.
	ErrResolution = zerr.New("dependency resolution failed")

	// ErrNetworkBind is returned when an entry point cannot bind its address.
	ErrNetworkBind = zerr.New("failed to bind network address")

	// ErrMissingArtifact is returned when an image, dependency environment or source tree
	// is absent or unreadable.
	ErrMissingArtifact = zerr.New("missing artifact")
)

var (
	// ErrBuildFailed is returned when one or more image builds fail.
	ErrBuildFailed = zerr.New("image build failed")

	// ErrServeFailed is returned when a running entry point stops with an error.
	ErrServeFailed = zerr.New("entry point stopped unexpectedly")

	// ErrPreconditionFailed is returned when a pipeline stage pre-condition does not hold.
	ErrPreconditionFailed = zerr.New("stage pre-condition failed")

	// ErrPostconditionFailed is returned when a pipeline stage post-condition does not hold.
	ErrPostconditionFailed = zerr.New("stage post-condition failed")

	// ErrBuildCancelled is returned when a build is aborted between stages.
	ErrBuildCancelled = zerr.New("build cancelled")

	// ErrUnknownRole is returned for a role other than backend or frontend.
	ErrUnknownRole = zerr.New("unknown image role, expected 'backend' or 'frontend'")

	// ErrInvalidVersion is returned when a version string cannot be parsed.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrInvalidSpecifier is returned when a version specifier cannot be parsed.
	ErrInvalidSpecifier = zerr.New("invalid version specifier")

	// ErrInvalidRequirement is returned when a requirement line cannot be parsed.
	ErrInvalidRequirement = zerr.New("invalid requirement")

	// ErrInvalidDigest is returned when a digest is not in algorithm:hex form.
	ErrInvalidDigest = zerr.New("invalid digest")

	// ErrUnsupportedHash is returned for a digest algorithm other than sha256 or blake3.
	ErrUnsupportedHash = zerr.New("unsupported hash algorithm")

	// ErrManifestParse is returned when the manifest file is malformed.
	ErrManifestParse = zerr.New("invalid manifest")

	// ErrLockfileParse is returned when the lockfile file is malformed.
	ErrLockfileParse = zerr.New("invalid lockfile")

	// ErrDuplicatePackage is returned when a lockfile pins the same package twice.
	ErrDuplicatePackage = zerr.New("package pinned more than once")

	// ErrConfigNotFound is returned when no tandem.yaml can be found.
	ErrConfigNotFound = zerr.New("could not find tandem.yaml")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when the config file parses but fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrArtifactNotFound is returned when the package index has no artifact for a pin.
	ErrArtifactNotFound = zerr.New("artifact not found in package index")

	// ErrArtifactFetchFailed is returned when downloading an artifact fails.
	ErrArtifactFetchFailed = zerr.New("failed to fetch artifact")

	// ErrArtifactInvalid is returned when an artifact archive is malformed.
	ErrArtifactInvalid = zerr.New("invalid artifact archive")

	// ErrDigestMismatch is returned when an artifact does not match its lockfile hash.
	ErrDigestMismatch = zerr.New("artifact digest mismatch")

	// ErrReceiptReadFailed is returned when an environment receipt cannot be read.
	ErrReceiptReadFailed = zerr.New("failed to read environment receipt")

	// ErrReceiptWriteFailed is returned when an environment receipt cannot be written.
	ErrReceiptWriteFailed = zerr.New("failed to write environment receipt")

	// ErrStoreCreateFailed is returned when the build info store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create build info store directory")

	// ErrStoreReadFailed is returned when the build info cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build info")

	// ErrStoreUnmarshalFailed is returned when the build info cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build info")

	// ErrStoreMarshalFailed is returned when the build info cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build info")

	// ErrStoreWriteFailed is returned when the build info cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build info")

	// ErrImageReadFailed is returned when an image config cannot be read.
	ErrImageReadFailed = zerr.New("failed to read image config")

	// ErrImageWriteFailed is returned when an image config cannot be written.
	ErrImageWriteFailed = zerr.New("failed to write image config")

	// ErrExportFailed is returned when writing the OCI archive fails.
	ErrExportFailed = zerr.New("failed to export image archive")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrCopyFailed is returned when copying a tree fails.
	ErrCopyFailed = zerr.New("failed to copy tree")

	// ErrWatchFailed is returned when the source watcher cannot start.
	ErrWatchFailed = zerr.New("failed to watch sources")
)
