package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.trai.ch/tandem/internal/core/domain"
)

// WelcomeMessage is returned by the backend root route.
const WelcomeMessage = "Welcome to the tandem backend. Docs available at /docs"

// Health is the body of GET /healthz.
type Health struct {
	Role    domain.Role `json:"role"`
	State   string      `json:"state"`
	Image   string      `json:"image"`
	Address string      `json:"address,omitempty"`
}

// Packages is the body of GET /packages.
type Packages struct {
	Runtime  string                    `json:"runtime"`
	Packages []domain.InstalledPackage `json:"packages"`
}

func healthRoute(e *echo.Echo, img domain.ServiceImage, svc *service) {
	e.GET("/healthz", func(c echo.Context) error {
		state, addr := svc.snapshot()
		code := http.StatusOK
		if state != domain.ServiceServing {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, Health{
			Role:    img.Role,
			State:   state.String(),
			Image:   img.ID,
			Address: addr,
		})
	})
}

func backendRoutes(e *echo.Echo, env domain.DependencyEnvironment) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": WelcomeMessage})
	})

	pkgs := Packages{Runtime: env.Runtime, Packages: env.Packages}
	if pkgs.Packages == nil {
		pkgs.Packages = []domain.InstalledPackage{}
	}
	e.GET("/packages", func(c echo.Context) error {
		return c.JSON(http.StatusOK, pkgs)
	})
}

// frontendRoutes serves the application tree as a single page UI. Paths that match
// neither a file nor a route fall back to index.html.
func frontendRoutes(e *echo.Echo, img domain.ServiceImage) {
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Filesystem: http.Dir(img.AppPath()),
		Index:      "index.html",
		HTML5:      true,
	}))
}
