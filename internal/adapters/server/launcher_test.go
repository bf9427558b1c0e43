package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tandem/internal/adapters/server"
	"go.trai.ch/tandem/internal/adapters/telemetry"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const waitTimeout = 5 * time.Second

type recorder struct {
	mu     sync.Mutex
	events []server.Event
	ch     chan server.Event
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan server.Event, 16)}
}

func (r *recorder) observe(ev server.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.ch <- ev
}

func (r *recorder) states() []domain.ServiceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ServiceState, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.State)
	}
	return out
}

func (r *recorder) waitFor(t *testing.T, state domain.ServiceState) server.Event {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case ev := <-r.ch:
			if ev.State == state {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", state)
		}
	}
}

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	return log
}

func testImage(role domain.Role, port int, root string) domain.ServiceImage {
	spec := domain.DefaultImageSpec(role)
	spec.Port = port
	ep := domain.NewEntryPoint(spec)
	ep.Host = "127.0.0.1"
	return domain.ServiceImage{ID: "img-" + string(role), Role: role, EntryPoint: ep, Root: root}
}

type running struct {
	cancel context.CancelFunc
	done   chan error
	rec    *recorder
	base   string
}

func launch(t *testing.T, img domain.ServiceImage, env domain.DependencyEnvironment, opts server.Options) *running {
	t.Helper()
	rec := newRecorder()
	opts.Observer = rec.observe
	l := server.NewLauncher(quietLogger(t), telemetry.NewNoOpTracer(), opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Launch(ctx, img, env) }()
	t.Cleanup(cancel)

	ev := rec.waitFor(t, domain.ServiceServing)
	return &running{cancel: cancel, done: done, rec: rec, base: "http://" + ev.Addr}
}

func (r *running) stop(t *testing.T) error {
	t.Helper()
	r.cancel()
	select {
	case err := <-r.done:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("launcher did not stop")
		return nil
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestLaunch_BackendRoutes(t *testing.T) {
	env := domain.DependencyEnvironment{
		Runtime:  "python:3.12-slim",
		Packages: []domain.InstalledPackage{{Name: "apilib", Version: "1.2.3", Path: "packages/apilib"}},
	}
	r := launch(t, testImage(domain.RoleBackend, 0, t.TempDir()), env, server.Options{})

	code, body := get(t, r.base+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, server.WelcomeMessage)

	code, body = get(t, r.base+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	var health server.Health
	require.NoError(t, json.Unmarshal([]byte(body), &health))
	assert.Equal(t, "serving", health.State)
	assert.Equal(t, domain.RoleBackend, health.Role)

	code, body = get(t, r.base+"/packages")
	assert.Equal(t, http.StatusOK, code)
	var pkgs server.Packages
	require.NoError(t, json.Unmarshal([]byte(body), &pkgs))
	require.Len(t, pkgs.Packages, 1)
	assert.Equal(t, "apilib", pkgs.Packages[0].Name)
	assert.Equal(t, "1.2.3", pkgs.Packages[0].Version)

	code, _ = get(t, r.base+"/missing")
	assert.Equal(t, http.StatusNotFound, code)

	// Requests are counted after the response is written.
	assert.Eventually(t, func() bool {
		_, body := get(t, r.base+"/metrics")
		return strings.Contains(body, `tandem_service_state{role="backend"} 1`) &&
			strings.Contains(body, `tandem_installed_packages{role="backend"} 1`) &&
			strings.Contains(body, `tandem_http_requests_total{code="200",method="GET",role="backend",route="/packages"} 1`) &&
			strings.Contains(body, `code="404"`)
	}, waitTimeout, 20*time.Millisecond)

	require.NoError(t, r.stop(t))
	assert.Equal(t, []domain.ServiceState{
		domain.ServiceStarting, domain.ServiceServing, domain.ServiceStopped,
	}, r.rec.states())
}

func TestLaunch_PortOccupied(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	port := ln.Addr().(*net.TCPAddr).Port

	rec := newRecorder()
	l := server.NewLauncher(quietLogger(t), telemetry.NewNoOpTracer(), server.Options{Observer: rec.observe})

	err = l.Launch(context.Background(), testImage(domain.RoleBackend, port, t.TempDir()), domain.DependencyEnvironment{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetworkBind)
	assert.Contains(t, err.Error(), "backend entry point failed to start")
	assert.Equal(t, []domain.ServiceState{domain.ServiceStarting, domain.ServiceStopped}, rec.states())
}

func TestLaunch_ServicesAreIndependent(t *testing.T) {
	frontendRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(frontendRoot, domain.AppDirName), domain.DirPerm))

	backend := launch(t, testImage(domain.RoleBackend, 0, t.TempDir()), domain.DependencyEnvironment{}, server.Options{})
	frontend := launch(t, testImage(domain.RoleFrontend, 0, frontendRoot), domain.DependencyEnvironment{}, server.Options{})

	conn, err := net.DialTimeout("tcp", strings.TrimPrefix(backend.base, "http://"), waitTimeout)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.NoError(t, backend.stop(t))

	code, body := get(t, frontend.base+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"state":"serving"`)

	_, err = net.DialTimeout("tcp", strings.TrimPrefix(backend.base, "http://"), time.Second)
	assert.Error(t, err)

	require.NoError(t, frontend.stop(t))
}

func TestLaunch_FrontendStaticUI(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, domain.AppDirName)
	require.NoError(t, os.MkdirAll(filepath.Join(app, "assets"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(app, "index.html"), []byte("<h1>tandem</h1>"), domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(app, "assets", "app.js"), []byte("console.log(1)"), domain.FilePerm))

	img := testImage(domain.RoleFrontend, 0, root)
	img.EntryPoint.Headless = false

	opened := make(chan string, 1)
	r := launch(t, img, domain.DependencyEnvironment{}, server.Options{
		OpenBrowser: func(url string) error {
			opened <- url
			return nil
		},
	})

	select {
	case url := <-opened:
		assert.Equal(t, r.base+"/", url)
	case <-time.After(waitTimeout):
		t.Fatal("browser was not opened")
	}

	_, body := get(t, r.base+"/")
	assert.Equal(t, "<h1>tandem</h1>", body)

	_, body = get(t, r.base+"/assets/app.js")
	assert.Equal(t, "console.log(1)", body)

	code, body := get(t, r.base+"/chat/history")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "<h1>tandem</h1>", body)

	code, _ = get(t, r.base+"/healthz")
	assert.Equal(t, http.StatusOK, code)

	require.NoError(t, r.stop(t))
}

func TestLaunch_HeadlessFrontendNeverOpensBrowser(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, domain.AppDirName), domain.DirPerm))

	r := launch(t, testImage(domain.RoleFrontend, 0, root), domain.DependencyEnvironment{}, server.Options{
		OpenBrowser: func(string) error {
			t.Error("headless frontend opened a browser")
			return nil
		},
	})
	require.NoError(t, r.stop(t))
}
