package domain

import (
	"net"
	"path/filepath"
	"strconv"
	"time"

	"go.trai.ch/zerr"
)

// Role identifies one of the two Service Images.
type Role string

const (
	// RoleBackend is the API image.
	RoleBackend Role = "backend"
	// RoleFrontend is the UI image.
	RoleFrontend Role = "frontend"
)

const (
	// DefaultHost binds entry points on all interfaces.
	DefaultHost = "0.0.0.0"
	// DefaultBackendPort is the backend entry point port.
	DefaultBackendPort = 8000
	// DefaultFrontendPort is the frontend entry point port.
	DefaultFrontendPort = 8501
	// MaxPort is the highest valid TCP port.
	MaxPort = 65535
)

// Roles returns both roles in build order.
func Roles() []Role {
	return []Role{RoleBackend, RoleFrontend}
}

// ParseRole validates s as a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBackend, RoleFrontend:
		return Role(s), nil
	default:
		return "", zerr.With(zerr.Wrap(ErrUnknownRole, "cannot parse role"), "role", s)
	}
}

// ImageSpec is the build-time description of one image.
type ImageSpec struct {
	Role     Role
	Source   string
	Port     int
	Headless bool
}

// DefaultImageSpec returns the canonical spec for role with its source dir named after it.
func DefaultImageSpec(role Role) ImageSpec {
	spec := ImageSpec{Role: role, Source: string(role)}
	switch role {
	case RoleBackend:
		spec.Port = DefaultBackendPort
	case RoleFrontend:
		spec.Port = DefaultFrontendPort
		spec.Headless = true
	}
	return spec
}

// EntryPoint is the runtime contract of an image: what to bind and how to start.
type EntryPoint struct {
	Role     Role     `json:"role"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Headless bool     `json:"headless,omitzero"`
	Command  []string `json:"command"`
}

// NewEntryPoint derives the entry point of spec.
func NewEntryPoint(spec ImageSpec) EntryPoint {
	cmd := []string{"tandem", "serve", string(spec.Role)}
	if spec.Role == RoleFrontend && spec.Headless {
		cmd = append(cmd, "--headless")
	}
	return EntryPoint{
		Role:     spec.Role,
		Host:     DefaultHost,
		Port:     spec.Port,
		Headless: spec.Headless,
		Command:  cmd,
	}
}

// Address returns host:port.
func (e EntryPoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// ServiceImage is a built, runnable image: runtime, dependency environment, application
// source tree and entry point.
type ServiceImage struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Runtime    string     `json:"runtime"`
	EntryPoint EntryPoint `json:"entrypoint"`
	InstallKey string     `json:"install_key"`
	SourceHash string     `json:"source_hash"`
	CreatedAt  time.Time  `json:"created_at,omitzero"`

	// Root is where the image lives on disk. It is not persisted.
	Root string `json:"-"`
}

// EnvPath returns the image's dependency environment directory.
func (i ServiceImage) EnvPath() string {
	return filepath.Join(i.Root, EnvDirName)
}

// AppPath returns the image's application source directory.
func (i ServiceImage) AppPath() string {
	return filepath.Join(i.Root, AppDirName)
}

// ReceiptPath returns the image's environment receipt.
func (i ServiceImage) ReceiptPath() string {
	return filepath.Join(i.Root, EnvDirName, ReceiptFileName)
}

// ConfigPath returns the image config file.
func (i ServiceImage) ConfigPath() string {
	return filepath.Join(i.Root, ImageConfigFileName)
}
