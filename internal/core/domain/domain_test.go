package domain_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tandem/internal/core/domain"
)

func TestServiceState_Transitions(t *testing.T) {
	assert.True(t, domain.ServiceStarting.CanTransition(domain.ServiceServing))
	assert.True(t, domain.ServiceStarting.CanTransition(domain.ServiceStopped))
	assert.True(t, domain.ServiceServing.CanTransition(domain.ServiceStopped))
	assert.False(t, domain.ServiceServing.CanTransition(domain.ServiceStarting))
	assert.False(t, domain.ServiceStopped.CanTransition(domain.ServiceServing))
	assert.Equal(t, "serving", domain.ServiceServing.String())
}

func TestNewEntryPoint(t *testing.T) {
	backend := domain.NewEntryPoint(domain.DefaultImageSpec(domain.RoleBackend))
	assert.Equal(t, "0.0.0.0:8000", backend.Address())
	assert.Equal(t, []string{"tandem", "serve", "backend"}, backend.Command)
	assert.False(t, backend.Headless)

	frontend := domain.NewEntryPoint(domain.DefaultImageSpec(domain.RoleFrontend))
	assert.Equal(t, "0.0.0.0:8501", frontend.Address())
	assert.Equal(t, []string{"tandem", "serve", "frontend", "--headless"}, frontend.Command)
	assert.True(t, frontend.Headless)
}

func TestParseRole(t *testing.T) {
	r, err := domain.ParseRole("frontend")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFrontend, r)

	_, err = domain.ParseRole("database")
	assert.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestParseDigest(t *testing.T) {
	hex := strings.Repeat("ab", 32)

	d, err := domain.ParseDigest("SHA256:" + strings.ToUpper(hex))
	require.NoError(t, err)
	assert.Equal(t, domain.SHA256, d.Algorithm)
	assert.Equal(t, "sha256:"+hex, d.String())

	_, err = domain.ParseDigest("md5:" + hex)
	assert.ErrorIs(t, err, domain.ErrUnsupportedHash)

	_, err = domain.ParseDigest("blake3:abc")
	assert.ErrorIs(t, err, domain.ErrInvalidDigest)

	_, err = domain.ParseDigest(hex)
	assert.ErrorIs(t, err, domain.ErrInvalidDigest)
}

func TestLayoutPaths(t *testing.T) {
	assert.Equal(t, filepath.Join(".tandem", "store"), domain.DefaultStorePath())
	assert.Equal(t, filepath.Join(".tandem", "cache", "artifacts"), domain.DefaultArtifactCachePath())
	assert.Equal(t, filepath.Join(".tandem", "images", "backend"), domain.ImagePath(domain.RoleBackend))
	assert.Equal(t, filepath.Join(".tandem", "images", "frontend.tar"), domain.OCIArchivePath(domain.RoleFrontend))
	assert.Equal(t, filepath.Join(".tandem", "cache", "layers", "backend", "k"), domain.LayerPath(domain.RoleBackend, "k"))
}

func TestServiceImage_Paths(t *testing.T) {
	img := domain.ServiceImage{Root: "/img"}
	assert.Equal(t, filepath.Join("/img", "env"), img.EnvPath())
	assert.Equal(t, filepath.Join("/img", "app"), img.AppPath())
	assert.Equal(t, filepath.Join("/img", "env", "receipt.cbor"), img.ReceiptPath())
	assert.Equal(t, filepath.Join("/img", "image.json"), img.ConfigPath())
}
