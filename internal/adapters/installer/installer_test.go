package installer_test

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tandem/internal/adapters/installer"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type entry struct {
	name string
	body string
	link string
}

func archive(t *testing.T, suffix string, entries ...entry) []byte {
	t.Helper()

	var raw bytes.Buffer
	tw := tar.NewWriter(&raw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if e.link != "" {
			hdr = &tar.Header{Name: e.name, Linkname: e.link, Typeflag: tar.TypeSymlink}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if e.link == "" {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())

	var out bytes.Buffer
	switch suffix {
	case ".tar.gz":
		gz := gzip.NewWriter(&out)
		_, err := gz.Write(raw.Bytes())
		require.NoError(t, err)
		require.NoError(t, gz.Close())
	case ".tar.zst":
		enc, err := zstd.NewWriter(&out)
		require.NoError(t, err)
		_, err = enc.Write(raw.Bytes())
		require.NoError(t, err)
		require.NoError(t, enc.Close())
	default:
		t.Fatalf("unknown suffix %s", suffix)
	}
	return out.Bytes()
}

func pkgArchive(t *testing.T, suffix, name, version string) []byte {
	t.Helper()
	return archive(t, suffix,
		entry{name: "METADATA", body: "Metadata-Version: 2.1\nName: " + name + "\nVersion: " + version + "\n"},
		entry{name: name + "/__init__.py", body: "__version__ = \"" + version + "\"\n"},
	)
}

func sha(data []byte) domain.Digest {
	sum := sha256.Sum256(data)
	return domain.Digest{Algorithm: domain.SHA256, Hex: hex.EncodeToString(sum[:])}
}

type artifact struct {
	file string
	data []byte
}

// fakeIndex serves in-memory artifacts and counts fetches per pin.
type fakeIndex struct {
	mu        sync.Mutex
	artifacts map[string]artifact
	fetches   map[string]int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{artifacts: map[string]artifact{}, fetches: map[string]int{}}
}

func (f *fakeIndex) add(name, version, suffix string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts[name+"=="+version] = artifact{file: name + "-" + version + suffix, data: data}
}

func (f *fakeIndex) count(pin string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[pin]
}

func (f *fakeIndex) Fetch(_ context.Context, pkg domain.PinnedPackage, w io.Writer) (string, error) {
	f.mu.Lock()
	a, ok := f.artifacts[pkg.String()]
	f.fetches[pkg.String()]++
	f.mu.Unlock()
	if !ok {
		return "", domain.ErrArtifactNotFound
	}
	_, err := w.Write(a.data)
	return a.file, err
}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

func manifest(t *testing.T, lines ...string) domain.Manifest {
	t.Helper()
	reqs := make([]domain.Requirement, 0, len(lines))
	for _, l := range lines {
		r, err := domain.ParseRequirement(l)
		require.NoError(t, err)
		reqs = append(reqs, r)
	}
	return domain.NewManifest(reqs...)
}

func lockfile(t *testing.T, pkgs ...domain.PinnedPackage) domain.Lockfile {
	t.Helper()
	l, err := domain.NewLockfile(pkgs...)
	require.NoError(t, err)
	return l
}

func pin(name, version string, hashes ...domain.Digest) domain.PinnedPackage {
	return domain.PinnedPackage{Name: name, Version: domain.MustParseVersion(version), Hashes: hashes}
}

func newInstaller(t *testing.T, src *fakeIndex, cacheDir string) *installer.Installer {
	t.Helper()
	ctrl := gomock.NewController(t)
	return installer.New(src, quietLogger(ctrl), installer.Options{CacheDir: cacheDir, Runtime: "python:3.12-slim"})
}

func TestInstall_ExactLockfileSet(t *testing.T) {
	apilib := pkgArchive(t, ".tar.gz", "apilib", "1.2.3")
	src := newFakeIndex()
	src.add("apilib", "1.2.3", ".tar.gz", apilib)
	src.add("helper", "0.4", ".tar.zst", pkgArchive(t, ".tar.zst", "helper", "0.4"))

	root := t.TempDir()
	dest := filepath.Join(root, "backend", "env")
	inst := newInstaller(t, src, filepath.Join(root, "cache"))

	env, err := inst.Install(context.Background(),
		manifest(t, "apilib>=1.0"),
		lockfile(t, pin("apilib", "1.2.3", sha(apilib)), pin("helper", "0.4")),
		dest)
	require.NoError(t, err)

	assert.Equal(t, []string{"apilib", "helper"}, env.Names())
	got, ok := env.Lookup("apilib")
	require.True(t, ok)
	assert.Equal(t, "1.2.3", got.Version)
	assert.Equal(t, sha(apilib).String(), got.Digest)
	assert.FileExists(t, filepath.Join(dest, "packages", "apilib", "apilib", "__init__.py"))
	assert.FileExists(t, filepath.Join(dest, "packages", "helper", "METADATA"))

	again, err := inst.ReadEnvironment(dest)
	require.NoError(t, err)
	assert.Equal(t, env.Packages, again.Packages)
	assert.Equal(t, "python:3.12-slim", again.Runtime)

	// Nothing else is left next to the environment.
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "env", entries[0].Name())
}

func TestInstall_InconsistentInputsFailBeforeFetching(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockArtifactSource(ctrl)

	dest := filepath.Join(t.TempDir(), "env")
	inst := installer.New(src, mocks.NewMockLogger(ctrl), installer.Options{CacheDir: t.TempDir()})

	m := manifest(t, "apilib>=1.0", "uilib>=3")
	l := lockfile(t, pin("apilib", "0.9"))

	_, first := inst.Install(context.Background(), m, l, dest)
	require.Error(t, first)
	assert.ErrorIs(t, first, domain.ErrResolution)
	assert.NoDirExists(t, dest)

	_, second := inst.Install(context.Background(), m, l, dest)
	require.Error(t, second)
	assert.Equal(t, first.Error(), second.Error())
}

func TestInstall_ReverifiesCachedArtifacts(t *testing.T) {
	data := pkgArchive(t, ".tar.gz", "apilib", "1.2.3")
	src := newFakeIndex()
	src.add("apilib", "1.2.3", ".tar.gz", data)

	root := t.TempDir()
	cacheDir := filepath.Join(root, "cache")
	inst := newInstaller(t, src, cacheDir)
	m := manifest(t, "apilib")
	l := lockfile(t, pin("apilib", "1.2.3", sha(data)))

	_, err := inst.Install(context.Background(), m, l, filepath.Join(root, "a"))
	require.NoError(t, err)
	assert.Equal(t, 1, src.count("apilib==1.2.3"))

	_, err = inst.Install(context.Background(), m, l, filepath.Join(root, "b"))
	require.NoError(t, err)
	assert.Equal(t, 1, src.count("apilib==1.2.3"), "verified cache entry is reused")

	cached := filepath.Join(cacheDir, "apilib", "1.2.3", "apilib-1.2.3.tar.gz")
	require.NoError(t, os.WriteFile(cached, []byte("tampered"), domain.FilePerm))

	_, err = inst.Install(context.Background(), m, l, filepath.Join(root, "c"))
	require.NoError(t, err)
	assert.Equal(t, 2, src.count("apilib==1.2.3"), "tampered entry is evicted and fetched again")
}

func TestInstall_VerificationFailures(t *testing.T) {
	good := pkgArchive(t, ".tar.gz", "apilib", "1.2.3")

	tests := []struct {
		name    string
		served  []byte
		pin     domain.PinnedPackage
		fetches int
		want    error
	}{
		{
			name:    "hash mismatch",
			served:  archive(t, ".tar.gz", entry{name: "METADATA", body: "Name: apilib\nVersion: 1.2.3\n"}, entry{name: "apilib/evil.py", body: "x"}),
			pin:     pin("apilib", "1.2.3", sha(good)),
			fetches: 2,
			want:    domain.ErrResolution,
		},
		{
			name:    "metadata names another version",
			served:  pkgArchive(t, ".tar.gz", "apilib", "1.2.4"),
			pin:     pin("apilib", "1.2.3"),
			fetches: 2,
			want:    domain.ErrResolution,
		},
		{
			name:    "path traversal",
			served:  archive(t, ".tar.gz", entry{name: "METADATA", body: "Name: apilib\nVersion: 1.2.3\n"}, entry{name: "../escape.py", body: "x"}),
			pin:     pin("apilib", "1.2.3"),
			fetches: 1,
			want:    domain.ErrArtifactInvalid,
		},
		{
			name:    "symlink escape",
			served:  archive(t, ".tar.zst", entry{name: "METADATA", body: "Name: apilib\nVersion: 1.2.3\n"}, entry{name: "lib/passwd", link: "../../../etc/passwd"}),
			pin:     pin("apilib", "1.2.3"),
			fetches: 1,
			want:    domain.ErrArtifactInvalid,
		},
		{
			name: "symlink chain escape",
			served: archive(t, ".tar.gz",
				entry{name: "METADATA", body: "Name: apilib\nVersion: 1.2.3\n"},
				entry{name: "x", link: "."},
				entry{name: "y", link: "x/.."},
				entry{name: "y/escaped.txt", body: "x"},
			),
			pin:     pin("apilib", "1.2.3"),
			fetches: 1,
			want:    domain.ErrArtifactInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suffix := ".tar.gz"
			if tt.name == "symlink escape" {
				suffix = ".tar.zst"
			}
			src := newFakeIndex()
			src.add("apilib", "1.2.3", suffix, tt.served)

			root := t.TempDir()
			dest := filepath.Join(root, "env")
			inst := newInstaller(t, src, filepath.Join(root, "cache"))

			_, err := inst.Install(context.Background(), manifest(t, "apilib>=1.0"), lockfile(t, tt.pin), dest)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.fetches, src.count("apilib==1.2.3"))
			assert.NoDirExists(t, dest)
			assert.NoFileExists(t, filepath.Join(root, "escape.py"))
		})
	}
}

func TestInstall_ArtifactNotFound(t *testing.T) {
	root := t.TempDir()
	inst := newInstaller(t, newFakeIndex(), filepath.Join(root, "cache"))

	_, err := inst.Install(context.Background(), manifest(t, "apilib"), lockfile(t, pin("apilib", "1.2.3")), filepath.Join(root, "env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	assert.NoDirExists(t, filepath.Join(root, "env"))
}

func TestInstall_ReceiptIsDeterministic(t *testing.T) {
	src := newFakeIndex()
	names := []string{"zeta", "alpha", "mid"}
	pins := make([]domain.PinnedPackage, 0, len(names))
	for _, n := range names {
		src.add(n, "1.0", ".tar.gz", pkgArchive(t, ".tar.gz", n, "1.0"))
		pins = append(pins, pin(n, "1.0"))
	}

	root := t.TempDir()
	inst := newInstaller(t, src, filepath.Join(root, "cache"))
	m := manifest(t, "alpha")
	l := lockfile(t, pins...)

	var receipts []string
	for _, dir := range []string{"a", "b"} {
		env, err := inst.Install(context.Background(), m, l, filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, sort.StringsAreSorted(env.Names()))

		data, err := os.ReadFile(filepath.Join(root, dir, domain.ReceiptFileName))
		require.NoError(t, err)
		receipts = append(receipts, string(data))
	}
	assert.Equal(t, receipts[0], receipts[1])
}

func TestReadEnvironment_Missing(t *testing.T) {
	inst := newInstaller(t, newFakeIndex(), t.TempDir())

	_, err := inst.ReadEnvironment(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingArtifact)
}

func TestReadEnvironment_CorruptReceipt(t *testing.T) {
	for _, data := range []string{"", "\xff\xff", "\xa1\x67runtime"} {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ReceiptFileName), []byte(data), domain.FilePerm))

		_, err := newInstaller(t, newFakeIndex(), t.TempDir()).ReadEnvironment(dir)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingArtifact, "receipt %q", data)
	}
}

func TestReadEnvironment_PackageRemoved(t *testing.T) {
	src := newFakeIndex()
	src.add("apilib", "1.2.3", ".tar.gz", pkgArchive(t, ".tar.gz", "apilib", "1.2.3"))

	root := t.TempDir()
	dest := filepath.Join(root, "env")
	inst := newInstaller(t, src, filepath.Join(root, "cache"))
	_, err := inst.Install(context.Background(), manifest(t, "apilib"), lockfile(t, pin("apilib", "1.2.3")), dest)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(dest, "packages", "apilib")))
	_, err = inst.ReadEnvironment(dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingArtifact)
	assert.True(t, strings.Contains(err.Error(), "installed package is missing"))
}
