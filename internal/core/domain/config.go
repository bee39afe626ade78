package domain

import "runtime"

// TelemetryMode selects the tracing backend.
type TelemetryMode string

const (
	// TelemetryNone disables tracing.
	TelemetryNone TelemetryMode = "none"
	// TelemetryOTel traces compiles with OpenTelemetry.
	TelemetryOTel TelemetryMode = "otel"
	// TelemetryProgrock records compiles on a progrock tape.
	TelemetryProgrock TelemetryMode = "progrock"
)

// Config is the validated runtime configuration of the cache.
type Config struct {
	// CacheDir holds the persistent mirror files.
	CacheDir string
	// DumpDir receives failure and collision dumps.
	DumpDir string
	// ContentID namespaces mirror files, one set per piece of content.
	ContentID string
	// Workers is the size of the compile worker pool.
	Workers int
	// FullAsync lets TestShaders return before the active artifacts are ready.
	FullAsync bool
	// ShaderDebugging clears the replayed store on start and retains program text on entries.
	ShaderDebugging bool
	// AuditCollisions checks that no two program texts share a UID.
	AuditCollisions bool
	Telemetry       TelemetryMode
	Profiles        [StageCount]Profile
}

// DefaultConfig returns the configuration used when no config file is present.
func DefaultConfig() Config {
	cfg := Config{
		CacheDir:  DefaultCachePath(),
		DumpDir:   DefaultDumpPath(),
		ContentID: DefaultContentID,
		Workers:   runtime.NumCPU(),
		Telemetry: TelemetryNone,
	}
	for _, s := range Stages {
		cfg.Profiles[s] = DefaultProfile(s)
	}
	return cfg
}
