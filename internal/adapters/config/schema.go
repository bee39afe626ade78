package config

// Shadefile represents the structure of the shade.yaml configuration file.
type Shadefile struct {
	Version   string                `yaml:"version"`
	CacheDir  string                `yaml:"cache_dir"`
	DumpDir   string                `yaml:"dump_dir"`
	ContentID string                `yaml:"content_id"`
	Workers   *int                  `yaml:"workers"`
	FullAsync bool                  `yaml:"full_async"`
	Telemetry string                `yaml:"telemetry"`
	Debug     DebugDTO              `yaml:"debug"`
	Profiles  map[string]ProfileDTO `yaml:"profiles"`
}

// DebugDTO groups the diagnostic switches.
type DebugDTO struct {
	ShaderDebugging bool `yaml:"shader_debugging"`
	AuditCollisions bool `yaml:"audit_collisions"`
}

// ProfileDTO overrides the compile profile of one stage. Empty fields keep the default.
type ProfileDTO struct {
	Target     string   `yaml:"target"`
	EntryPoint string   `yaml:"entry_point"`
	Flags      []string `yaml:"flags"`
}

// Scenefile represents the structure of a *.scene.yaml file.
type Scenefile struct {
	Name   string     `yaml:"name"`
	States []StateDTO `yaml:"states"`
}

// StateDTO is one render state of a scene.
type StateDTO struct {
	Topology   string   `yaml:"topology"`
	Components []string `yaml:"components"`
	AlphaMode  string   `yaml:"alpha_mode"`
	AlphaTest  string   `yaml:"alpha_test"`
	AlphaRef   uint8    `yaml:"alpha_ref"`
	Fog        string   `yaml:"fog"`
	LineWidth  uint16   `yaml:"line_width"`
	PointSize  uint16   `yaml:"point_size"`
	Stereo     bool     `yaml:"stereo"`
	Wireframe  bool     `yaml:"wireframe"`
}
