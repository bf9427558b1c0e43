package installer

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/zerr"
)

// digestFile computes the sha256 and blake3 digests of the file at path in one pass.
func digestFile(path string) (map[domain.HashAlgorithm]string, error) {
	//nolint:gosec // Path is inside the artifact cache
	f, err := os.Open(path)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrFileOpenFailed, "cannot open artifact"),
			"path", path), "reason", err.Error())
	}
	defer f.Close() //nolint:errcheck // Read-only file

	hashers := map[domain.HashAlgorithm]hash.Hash{
		domain.SHA256: sha256.New(),
		domain.BLAKE3: blake3.New(),
	}
	writers := make([]io.Writer, 0, len(hashers))
	for _, h := range hashers {
		writers = append(writers, h)
	}
	if _, err := io.Copy(io.MultiWriter(writers...), f); err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrFileHashFailed, "cannot read artifact"),
			"path", path), "reason", err.Error())
	}

	sums := make(map[domain.HashAlgorithm]string, len(hashers))
	for algo, h := range hashers {
		sums[algo] = hex.EncodeToString(h.Sum(nil))
	}
	return sums, nil
}

// verifyArtifact checks the artifact at path against pkg and returns the digest to record.
// A pin with hashes must match one of them. Every artifact must declare pkg's name and
// version in its METADATA.
func verifyArtifact(path string, pkg domain.PinnedPackage) (domain.Digest, error) {
	sums, err := digestFile(path)
	if err != nil {
		return domain.Digest{}, err
	}

	recorded := domain.Digest{Algorithm: domain.SHA256, Hex: sums[domain.SHA256]}
	if pkg.Verifiable() {
		matched := false
		for _, want := range pkg.Hashes {
			if sums[want.Algorithm] == want.Hex {
				recorded = want
				matched = true
				break
			}
		}
		if !matched {
			return domain.Digest{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrDigestMismatch, "no lockfile hash matches"),
				"package", pkg.String()), "sha256", sums[domain.SHA256])
		}
	}

	md, err := readMetadata(path)
	if err != nil {
		return domain.Digest{}, err
	}
	if domain.NormalizeName(md.Name) != pkg.Name {
		return domain.Digest{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "artifact declares another package"),
			"package", pkg.String()), "declared", md.Name)
	}
	v, err := domain.ParseVersion(md.Version)
	if err != nil || !v.Equal(pkg.Version) {
		return domain.Digest{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "artifact declares another version"),
			"package", pkg.String()), "declared", md.Version)
	}

	return recorded, nil
}
