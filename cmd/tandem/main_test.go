package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tandem/internal/adapters/config"
	"go.trai.ch/tandem/internal/adapters/requirements"
	"go.trai.ch/tandem/internal/app"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func provide(t *testing.T, log *mocks.MockLogger) ComponentProvider {
	t.Helper()
	ctrl := gomock.NewController(t)
	telemetry := mocks.NewMockTelemetry(ctrl)
	telemetry.EXPECT().Close().Return(nil)

	a := app.New(config.NewLoader(log), requirements.NewReader(), nil, nil, nil, nil, nil, nil, log)
	return func(context.Context) (*app.Components, error) {
		return &app.Components{App: a, Logger: log, Telemetry: telemetry}, nil
	}
}

func TestRun_Verify(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte("runtime: python:3.12-slim\n"), domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultManifest), []byte("apilib>=1.0\n"), domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultLockfile), []byte("apilib==1.2.3\n"), domain.FilePerm))

	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-C", dir, "verify"}, &stdout, &stderr, provide(t, log))
	assert.Equal(t, 0, code)
	assert.Equal(t, "apilib==1.2.3\n", stdout.String())
}

func TestRun_MissingConfigExitsNonZero(t *testing.T) {
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-C", t.TempDir(), "serve", "backend"}, &stdout, &stderr, provide(t, log))
	assert.Equal(t, 1, code)
}

func TestRun_ProviderError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"version"}, &stdout, &stderr, func(context.Context) (*app.Components, error) {
		return nil, errors.New("graft failed")
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: graft failed")
}

func TestRun_Version(t *testing.T) {
	log := mocks.NewMockLogger(gomock.NewController(t))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"version"}, &stdout, &stderr, provide(t, log))
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "tandem version")
}
