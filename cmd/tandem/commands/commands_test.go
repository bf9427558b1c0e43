package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tandem/cmd/tandem/commands"
	"go.trai.ch/tandem/internal/app"
	"go.trai.ch/tandem/internal/build"
	"go.trai.ch/tandem/internal/core/domain"
)

type mockApp struct {
	buildFunc  func(roles []domain.Role, opts app.BuildOptions) error
	watchFunc  func(roles []domain.Role, opts app.WatchOptions) error
	serveFunc  func(role domain.Role, opts app.ServeOptions) error
	verifyFunc func() error
	cleanFunc  func(opts app.CleanOptions) error
}

func (m *mockApp) Build(_ context.Context, roles []domain.Role, opts app.BuildOptions) error {
	if m.buildFunc != nil {
		return m.buildFunc(roles, opts)
	}
	return nil
}

func (m *mockApp) Watch(_ context.Context, roles []domain.Role, opts app.WatchOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(roles, opts)
	}
	return nil
}

func (m *mockApp) Serve(_ context.Context, role domain.Role, opts app.ServeOptions) error {
	if m.serveFunc != nil {
		return m.serveFunc(role, opts)
	}
	return nil
}

func (m *mockApp) Verify(_ context.Context) error {
	if m.verifyFunc != nil {
		return m.verifyFunc()
	}
	return nil
}

func (m *mockApp) Clean(_ context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(opts)
	}
	return nil
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var gotRoles []domain.Role
		var gotOpts app.BuildOptions
		mock := &mockApp{buildFunc: func(roles []domain.Role, opts app.BuildOptions) error {
			gotRoles, gotOpts = roles, opts
			return nil
		}}

		_, err := execute(t, mock, "build", "backend", "--no-cache", "--export")
		require.NoError(t, err)
		assert.Equal(t, []domain.Role{domain.RoleBackend}, gotRoles)
		assert.Equal(t, app.BuildOptions{NoCache: true, Export: true}, gotOpts)
	})

	t.Run("no roles builds everything", func(t *testing.T) {
		called := false
		mock := &mockApp{buildFunc: func(roles []domain.Role, _ app.BuildOptions) error {
			called = true
			assert.Empty(t, roles)
			return nil
		}}

		_, err := execute(t, mock, "build")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("watch delegates to Watch", func(t *testing.T) {
		var gotOpts app.WatchOptions
		mock := &mockApp{
			buildFunc: func([]domain.Role, app.BuildOptions) error {
				panic("should not be called")
			},
			watchFunc: func(roles []domain.Role, opts app.WatchOptions) error {
				assert.Equal(t, []domain.Role{domain.RoleFrontend}, roles)
				gotOpts = opts
				return nil
			},
		}

		_, err := execute(t, mock, "build", "-w", "-n", "frontend")
		require.NoError(t, err)
		assert.True(t, gotOpts.Build.NoCache)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		mock := &mockApp{buildFunc: func([]domain.Role, app.BuildOptions) error {
			panic("should not be called")
		}}

		_, err := execute(t, mock, "build", "database")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database")
	})

	t.Run("returns error on build failure", func(t *testing.T) {
		mock := &mockApp{buildFunc: func([]domain.Role, app.BuildOptions) error {
			return errors.New("simulated error")
		}}

		_, err := execute(t, mock, "build")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Serve(t *testing.T) {
	t.Run("headless defaults to the image", func(t *testing.T) {
		mock := &mockApp{serveFunc: func(role domain.Role, opts app.ServeOptions) error {
			assert.Equal(t, domain.RoleFrontend, role)
			assert.Nil(t, opts.Headless)
			return nil
		}}

		_, err := execute(t, mock, "serve", "frontend")
		require.NoError(t, err)
	})

	t.Run("headless flag overrides", func(t *testing.T) {
		mock := &mockApp{serveFunc: func(_ domain.Role, opts app.ServeOptions) error {
			require.NotNil(t, opts.Headless)
			assert.True(t, *opts.Headless)
			return nil
		}}

		_, err := execute(t, mock, "serve", "frontend", "--headless")
		require.NoError(t, err)
	})

	t.Run("requires exactly one role", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "serve")
		require.Error(t, err)

		_, err = execute(t, &mockApp{}, "serve", "backend", "frontend")
		require.Error(t, err)
	})

	t.Run("bind failure is returned", func(t *testing.T) {
		mock := &mockApp{serveFunc: func(domain.Role, app.ServeOptions) error {
			return domain.ErrNetworkBind
		}}

		_, err := execute(t, mock, "serve", "backend")
		require.ErrorIs(t, err, domain.ErrNetworkBind)
	})
}

func TestCommands_Clean(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.CleanOptions
	}{
		{name: "default", args: []string{"clean"}, want: app.CleanOptions{Images: true}},
		{name: "cache", args: []string{"clean", "--cache"}, want: app.CleanOptions{Cache: true}},
		{name: "all", args: []string{"clean", "-a"}, want: app.CleanOptions{Images: true, Cache: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got app.CleanOptions
			mock := &mockApp{cleanFunc: func(opts app.CleanOptions) error {
				got = opts
				return nil
			}}

			_, err := execute(t, mock, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommands_Verify(t *testing.T) {
	mock := &mockApp{verifyFunc: func() error { return domain.ErrResolution }}

	_, err := execute(t, mock, "verify")
	require.ErrorIs(t, err, domain.ErrResolution)
}

func TestCommands_GlobalsHook(t *testing.T) {
	cli := commands.New(&mockApp{})
	var got commands.Globals
	cli.SetGlobalsHook(func(g commands.Globals) error {
		got = g
		return nil
	})
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"-C", "/srv/project", "--json-logs", "verify"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, commands.Globals{Dir: "/srv/project", JSONLogs: true}, got)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
	assert.Contains(t, out, "tandem version")
}
