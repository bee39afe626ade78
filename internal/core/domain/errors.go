package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidUID is returned when persisted key bytes do not decode into a UID.
	ErrInvalidUID = zerr.New("invalid uid encoding")

	// ErrInvalidRenderState is returned when a scene names an unknown state value.
	ErrInvalidRenderState = zerr.New("invalid render state")

	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrSceneReadFailed is returned when a scene file cannot be read.
	ErrSceneReadFailed = zerr.New("failed to read scene file")

	// ErrSceneParseFailed is returned when a scene file cannot be parsed.
	ErrSceneParseFailed = zerr.New("failed to parse scene file")

	// ErrNoScenes is returned when a command that needs scenes receives none.
	ErrNoScenes = zerr.New("no scene files specified")

	// ErrMirrorOpenFailed is returned when a mirror file cannot be opened or created.
	ErrMirrorOpenFailed = zerr.New("failed to open persistent mirror")

	// ErrMirrorWriteFailed is returned when a record cannot be appended to a mirror.
	ErrMirrorWriteFailed = zerr.New("failed to append to persistent mirror")

	// ErrMirrorSyncFailed is returned when a mirror cannot be flushed to disk.
	ErrMirrorSyncFailed = zerr.New("failed to sync persistent mirror")

	// ErrMirrorClosed is returned when a closed mirror is used.
	ErrMirrorClosed = zerr.New("persistent mirror is closed")



	// ErrCompileFailed is returned when the backend rejects a generated program.
	ErrCompileFailed = zerr.New("shader compilation failed")

	// ErrUnknownTarget is returned for a compile target the backend does not support.
	ErrUnknownTarget = zerr.New("unknown compile target")

	// ErrEntryPointNotFound is returned when the program lacks the requested entry point.
	ErrEntryPointNotFound = zerr.New("entry point not found")

	// ErrDumpFailed is returned when a diagnostic dump cannot be written.
	ErrDumpFailed = zerr.New("failed to write diagnostic dump")



	// ErrPipelineClosed is returned when a job is submitted after the pipeline shut down.
	ErrPipelineClosed = zerr.New("compile pipeline is closed")

	// ErrCleanFailed is returned when mirror files cannot be removed.
	ErrCleanFailed = zerr.New("failed to remove cache files")

	// ErrWatchFailed is returned when the scene watcher cannot start.
	ErrWatchFailed = zerr.New("failed to watch scene directory")
)
