package requirements_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tandem/internal/adapters/requirements"
	"go.trai.ch/tandem/internal/core/domain"
)

var (
	sha = strings.Repeat("ab", 32)
	b3  = strings.Repeat("0f", 32)
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "requirements.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
	return path
}

func TestReadManifest(t *testing.T) {
	path := writeFile(t, `# service dependencies
apilib>=1.0   # the API framework

uilib[charts] ~= 3.1
Requests
tomli>=2; python_version < "3.11"
`)

	m, err := requirements.NewReader().ReadManifest(path)
	require.NoError(t, err)
	require.Equal(t, 4, m.Len())

	req, ok := m.Lookup("uilib")
	require.True(t, ok)
	assert.Equal(t, "uilib[charts]~=3.1", req.String())

	_, ok = m.Lookup("requests")
	assert.True(t, ok)
}

func TestReadManifest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "include option", content: "-r base.txt\n", want: domain.ErrManifestParse},
		{name: "bad specifier", content: "apilib=>1.0\n", want: domain.ErrInvalidSpecifier},
		{name: "url requirement", content: "apilib @ https://x/apilib.tar.gz\n", want: domain.ErrInvalidRequirement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := requirements.NewReader().ReadManifest(writeFile(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := requirements.NewReader().ReadManifest(filepath.Join(t.TempDir(), "nope.in"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingArtifact)
}

func TestReadLockfile(t *testing.T) {
	path := writeFile(t, `#
# This file is autogenerated by pip-compile
#
apilib==1.2.3 \
    --hash=sha256:`+sha+` \
    --hash=blake3:`+b3+`
    # via -r requirements.in
helper==0.1
    # via apilib
UILib == 3.1.4
`)

	l, err := requirements.NewReader().ReadLockfile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"apilib", "helper", "uilib"}, l.Names())

	apilib, ok := l.Lookup("apilib")
	require.True(t, ok)
	assert.Equal(t, "1.2.3", apilib.Version.String())
	require.Len(t, apilib.Hashes, 2)
	assert.Equal(t, domain.SHA256, apilib.Hashes[0].Algorithm)
	assert.Equal(t, domain.BLAKE3, apilib.Hashes[1].Algorithm)

	helper, _ := l.Lookup("helper")
	assert.False(t, helper.Verifiable())
}

func TestReadLockfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{name: "range instead of pin", content: "apilib>=1.0\n", want: domain.ErrLockfileParse},
		{name: "wildcard pin", content: "apilib==1.2.*\n", want: domain.ErrLockfileParse},
		{name: "two specifiers", content: "apilib==1.2.3,<2\n", want: domain.ErrLockfileParse},
		{name: "duplicate", content: "apilib==1.2.3\nApiLib==1.2.4\n", want: domain.ErrDuplicatePackage},
		{name: "unknown option", content: "apilib==1.2.3 --no-binary=:all:\n", want: domain.ErrLockfileParse},
		{name: "unsupported hash", content: "apilib==1.2.3 --hash=md5:" + sha + "\n", want: domain.ErrUnsupportedHash},
		{name: "dangling hash", content: "apilib==1.2.3 --hash\n", want: domain.ErrLockfileParse},
		{name: "index option", content: "--index-url https://pypi.org/simple\napilib==1.2.3\n", want: domain.ErrLockfileParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := requirements.NewReader().ReadLockfile(writeFile(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestScanLines(t *testing.T) {
	lines, err := requirements.ScanLines(strings.NewReader("a==1 \\\n  --hash=x \\\n\n# c\nb==2 # trailing\nc#d==3\n"))
	require.NoError(t, err)
	assert.Equal(t, []requirements.Line{
		{Number: 1, Text: "a==1 --hash=x"},
		{Number: 5, Text: "b==2"},
		{Number: 6, Text: "c#d==3"},
	}, lines)
}

func TestRenderLockfile(t *testing.T) {
	path := writeFile(t, "uilib==3.1.4\nhelper==0.1\napilib==1.2.3 --hash=sha256:"+sha+" --hash blake3:"+b3+"\n")
	l, err := requirements.NewReader().ReadLockfile(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, requirements.RenderLockfile(&buf, l))
	goldie.New(t).Assert(t, "lockfile_render", buf.Bytes())

	again, err := requirements.NewReader().ReadLockfile(writeFile(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, l.Names(), again.Names())
	apilib, _ := again.Lookup("apilib")
	assert.Len(t, apilib.Hashes, 2)
}

func TestRenderManifest(t *testing.T) {
	m, err := requirements.NewReader().ReadManifest(writeFile(t, "apilib >= 1.0\nuilib[charts]~=3.1\nrequests\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, requirements.RenderManifest(&buf, m))
	goldie.New(t).Assert(t, "manifest_render", buf.Bytes())
}
