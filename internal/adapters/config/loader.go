// Package config provides the configuration and scene loader for shade.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using YAML files.
type Loader struct {
	Logger ports.Logger
	// IsTarget validates compile target names. A nil func accepts every target.
	IsTarget func(string) bool
}

// NewLoader creates a new Loader with the given logger and target validator.
func NewLoader(logger ports.Logger, isTarget func(string) bool) *Loader {
	return &Loader{Logger: logger, IsTarget: isTarget}
}

var validContentIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Load reads the configuration at path. Relative directories resolve against the
// directory holding the file. A missing file yields the default configuration.
func (l *Loader) Load(path string) (domain.Config, error) {
	var file Shadefile
	err := readAndUnmarshalYAML(path, &file)
	if errors.Is(err, fs.ErrNotExist) {
		l.Logger.Info("no " + filepath.Base(path) + " found, using defaults")
		file = Shadefile{}
	} else if err != nil {
		return domain.Config{}, zerr.With(err, "path", path)
	}

	cfg, err := l.buildConfig(&file, filepath.Dir(path))
	if err != nil {
		return domain.Config{}, zerr.With(err, "path", path)
	}
	return cfg, nil
}

func (l *Loader) buildConfig(file *Shadefile, baseDir string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	cfg.CacheDir = resolveDir(baseDir, file.CacheDir, domain.DefaultCachePath())
	cfg.DumpDir = resolveDir(baseDir, file.DumpDir, domain.DefaultDumpPath())

	if file.ContentID != "" {
		if !validContentIDRegex.MatchString(file.ContentID) {
			return cfg, zerr.With(domain.ErrInvalidConfig, "content_id", file.ContentID)
		}
		cfg.ContentID = file.ContentID
	}

	if file.Workers != nil {
		switch w := *file.Workers; {
		case w < 0:
			return cfg, zerr.With(domain.ErrInvalidConfig, "workers", w)
		case w == 0:
			cfg.Workers = runtime.NumCPU()
		default:
			cfg.Workers = w
		}
	}

	cfg.FullAsync = file.FullAsync
	cfg.ShaderDebugging = file.Debug.ShaderDebugging
	cfg.AuditCollisions = file.Debug.AuditCollisions

	switch mode := domain.TelemetryMode(strings.ToLower(file.Telemetry)); mode {
	case "":
	case domain.TelemetryNone, domain.TelemetryOTel, domain.TelemetryProgrock:
		cfg.Telemetry = mode
	default:
		return cfg, zerr.With(domain.ErrInvalidConfig, "telemetry", file.Telemetry)
	}

	for name, dto := range file.Profiles {
		stage, ok := domain.ParseStage(name)
		if !ok {
			return cfg, zerr.With(domain.ErrInvalidConfig, "stage", name)
		}
		profile, err := l.applyProfile(cfg.Profiles[stage], dto)
		if err != nil {
			return cfg, zerr.With(err, "stage", stage.String())
		}
		cfg.Profiles[stage] = profile
	}

	return cfg, nil
}

func (l *Loader) applyProfile(p domain.Profile, dto ProfileDTO) (domain.Profile, error) {
	if dto.Target != "" {
		if l.IsTarget != nil && !l.IsTarget(dto.Target) {
			return p, zerr.With(domain.ErrInvalidConfig, "target", dto.Target)
		}
		p.Target = dto.Target
	}
	if dto.EntryPoint != "" {
		p.EntryPoint = dto.EntryPoint
	}
	if dto.Flags != nil {
		flags, err := domain.ParseCompileFlags(dto.Flags)
		if err != nil {
			return p, err
		}
		p.Flags = flags
	}
	return p, nil
}

// LoadScene reads a render-state scene file. The scene name defaults to the file name.
func (l *Loader) LoadScene(path string) (*domain.Scene, error) {
	var file Scenefile
	// #nosec G304 -- path is provided by user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSceneReadFailed.Error()), "path", path)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSceneParseFailed.Error()), "path", path)
	}

	scene := &domain.Scene{
		Name:   file.Name,
		States: make([]domain.RenderState, 0, len(file.States)),
	}
	if scene.Name == "" {
		scene.Name = strings.TrimSuffix(filepath.Base(path), domain.SceneFileSuffix)
	}

	for i := range file.States {
		state, err := buildState(&file.States[i])
		if err != nil {
			return nil, zerr.With(zerr.With(err, "state_index", i), "path", path)
		}
		scene.States = append(scene.States, state)
	}
	return scene, nil
}

func buildState(dto *StateDTO) (domain.RenderState, error) {
	var (
		state domain.RenderState
		err   error
	)
	if dto.Topology != "" {
		if state.Topology, err = domain.ParseTopology(dto.Topology); err != nil {
			return state, err
		}
	}
	if state.Components, err = domain.ParseComponents(dto.Components); err != nil {
		return state, err
	}
	if state.AlphaMode, err = domain.ParseAlphaMode(dto.AlphaMode); err != nil {
		return state, err
	}
	if state.AlphaTest, err = domain.ParseAlphaTest(dto.AlphaTest); err != nil {
		return state, err
	}
	if state.Fog, err = domain.ParseFogMode(dto.Fog); err != nil {
		return state, err
	}
	state.AlphaRef = dto.AlphaRef
	state.LineWidth = dto.LineWidth
	state.PointSize = dto.PointSize
	state.Stereo = dto.Stereo
	state.Wireframe = dto.Wireframe
	return state, nil
}

// resolveDir returns configured relative to baseDir, or def relative to baseDir when unset.
func resolveDir(baseDir, configured, def string) string {
	if configured == "" {
		configured = def
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(baseDir, configured))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
