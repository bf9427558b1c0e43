// Package server runs the backend and frontend entry points of a Service Image.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/browser"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultShutdownTimeout bounds graceful shutdown after the context is cancelled.
const DefaultShutdownTimeout = 15 * time.Second

// Options configures a Launcher.
type Options struct {
	// ShutdownTimeout bounds graceful shutdown. Zero means DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
	// Observer receives every state change.
	Observer func(Event)
	// OpenBrowser opens the frontend URL when the image is not headless.
	// Nil means the system browser.
	OpenBrowser func(url string) error
}

// Launcher implements ports.Launcher with an echo server per entry point.
type Launcher struct {
	logger ports.Logger
	tracer ports.Tracer
	opts   Options
}

// NewLauncher creates a Launcher.
func NewLauncher(logger ports.Logger, tracer ports.Tracer, opts Options) *Launcher {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = browser.OpenURL
	}
	return &Launcher{logger: logger, tracer: tracer, opts: opts}
}

// Launch binds the entry point address of img and serves until ctx is cancelled.
// A bind failure returns domain.ErrNetworkBind and the service never reaches serving.
func (l *Launcher) Launch(ctx context.Context, img domain.ServiceImage, env domain.DependencyEnvironment) (err error) {
	ctx, span := l.tracer.Start(ctx, "serve "+string(img.Role))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()
	span.SetAttribute("image.id", img.ID)
	span.SetAttribute("image.role", string(img.Role))

	m := newMetrics(img.Role)
	m.packages.Set(float64(len(env.Packages)))
	svc := newService(img.Role, m.state.Set, l.opts.Observer)

	addr := img.EntryPoint.Address()
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		svc.transition(domain.ServiceStopped, "")
		return zerr.With(zerr.With(
			zerr.Wrap(domain.ErrNetworkBind, string(img.Role)+" entry point failed to start"),
			"addr", addr),
			"reason", err.Error())
	}

	e := l.newEcho(img, env, svc, m)
	e.Listener = ln

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- e.Start("")
	}()

	bound := ln.Addr().String()
	svc.transition(domain.ServiceServing, bound)
	l.logger.Info(fmt.Sprintf("%s serving on %s", img.Role, bound))

	if img.Role == domain.RoleFrontend && !img.EntryPoint.Headless {
		url := browserURL(ln.Addr())
		if berr := l.opts.OpenBrowser(url); berr != nil {
			l.logger.Warn(fmt.Sprintf("could not open browser at %s: %v", url, berr))
		}
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.ShutdownTimeout)
		defer cancel()
		shutdownErr := e.Shutdown(shutdownCtx)
		svc.transition(domain.ServiceStopped, "")
		if shutdownErr != nil {
			return zerr.With(zerr.Wrap(domain.ErrServeFailed, "graceful shutdown failed"), "reason", shutdownErr.Error())
		}
		if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return zerr.With(zerr.Wrap(domain.ErrServeFailed, string(img.Role)+" server failed"), "reason", err.Error())
		}
		l.logger.Info(fmt.Sprintf("%s stopped", img.Role))
		return nil
	case err := <-serveErr:
		svc.transition(domain.ServiceStopped, "")
		return zerr.With(zerr.Wrap(domain.ErrServeFailed, string(img.Role)+" server failed"), "reason", err.Error())
	}
}

func (l *Launcher) newEcho(img domain.ServiceImage, env domain.DependencyEnvironment, svc *service, m *metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		e.DefaultHTTPErrorHandler(err, c)
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
			return
		}
		l.logger.Error(zerr.With(zerr.Wrap(err, "request failed"), "path", c.Request().URL.Path))
	}

	e.Use(middleware.Recover())
	e.Use(m.middleware)

	healthRoute(e, img, svc)
	e.GET("/metrics", m.handler())

	switch img.Role {
	case domain.RoleBackend:
		backendRoutes(e, env)
	case domain.RoleFrontend:
		frontendRoutes(e, img)
	}
	return e
}

// browserURL turns a wildcard listen address into one a local browser can open.
func browserURL(addr net.Addr) string {
	host := "localhost"
	port := 0
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = tcp.Port
		if !tcp.IP.IsUnspecified() {
			host = tcp.IP.String()
		}
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/"
}
