// Package config provides the configuration loader for tandem.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds tandem.yaml from cwd upwards and returns the resolved project.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	root, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(root, domain.ConfigFileName)
	var file Tandemfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}

	return l.buildProject(root, &file)
}

// DiscoverRoot walks up from cwd to the directory containing tandem.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "cwd", cwd)
	}

	for dir := abs; ; {
		if _, err := os.Stat(filepath.Join(dir, domain.ConfigFileName)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no project root"), "cwd", abs)
}

func (l *Loader) buildProject(root string, file *Tandemfile) (*domain.Project, error) {
	switch file.Version {
	case SupportedVersion:
	case "":
		l.Logger.Warn(fmt.Sprintf("no version in %s, assuming %q", domain.ConfigFileName, SupportedVersion))
	default:
		return nil, invalid("unsupported version", "version", file.Version)
	}

	index, err := buildIndex(root, file.Index)
	if err != nil {
		return nil, err
	}

	images, err := buildImages(root, file.Images)
	if err != nil {
		return nil, err
	}

	return &domain.Project{
		Root:          root,
		Runtime:       orDefault(file.Runtime, DefaultRuntime),
		ManifestPath:  resolvePath(root, orDefault(file.Manifest, DefaultManifest)),
		LockfilePath:  resolvePath(root, orDefault(file.Lockfile, DefaultLockfile)),
		RequireHashes: file.RequireHashes,
		Index:         index,
		Images:        images,
	}, nil
}

func buildIndex(root string, dto IndexDTO) (domain.IndexConfig, error) {
	if dto.Path != "" && dto.URL != "" {
		return domain.IndexConfig{}, invalid("index path and url are mutually exclusive", "url", dto.URL)
	}
	if dto.Rate < 0 || dto.Burst < 0 {
		return domain.IndexConfig{}, invalid("index rate and burst must not be negative", "rate", dto.Rate)
	}

	cfg := domain.IndexConfig{Rate: dto.Rate, Burst: dto.Burst}
	if dto.URL != "" {
		cfg.URL = dto.URL
		if cfg.Rate == 0 {
			cfg.Rate = DefaultIndexRate
		}
		if cfg.Burst == 0 {
			cfg.Burst = 1
		}
		return cfg, nil
	}

	cfg.Path = resolvePath(root, orDefault(dto.Path, DefaultIndexPath))
	return cfg, nil
}

func buildImages(root string, dtos map[string]*ImageDTO) (map[domain.Role]domain.ImageSpec, error) {
	images := make(map[domain.Role]domain.ImageSpec, len(domain.Roles()))
	for _, role := range domain.Roles() {
		spec := domain.DefaultImageSpec(role)
		spec.Source = resolvePath(root, spec.Source)
		images[role] = spec
	}

	names := make([]string, 0, len(dtos))
	for name := range dtos {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		role, err := domain.ParseRole(name)
		if err != nil {
			return nil, invalid("unknown image", "image", name)
		}
		dto := dtos[name]
		if dto == nil {
			continue
		}

		spec := images[role]
		if dto.Source != "" {
			spec.Source = resolvePath(root, dto.Source)
		}
		if dto.Port != nil {
			if *dto.Port < 0 || *dto.Port > domain.MaxPort {
				return nil, zerr.With(invalid("port out of range", "image", name), "port", *dto.Port)
			}
			spec.Port = *dto.Port
		}
		if dto.Headless != nil {
			spec.Headless = *dto.Headless
		}
		images[role] = spec
	}

	backend, frontend := images[domain.RoleBackend], images[domain.RoleFrontend]
	if backend.Port != 0 && backend.Port == frontend.Port {
		return nil, zerr.With(invalid("backend and frontend cannot share a port", "port", backend.Port),
			"images", "backend, frontend")
	}

	return images, nil
}

func invalid(msg, key string, value any) error {
	return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, msg), key, value)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func readAndUnmarshalYAML(path string, v any) error {
	//nolint:gosec // Path is the discovered config file
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}
	return nil
}
