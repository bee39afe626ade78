package domain

import (
	"fmt"
	"path/filepath"
)

const (
	// ShadeDirName is the name of the internal workspace directory.
	ShadeDirName = ".shade"

	// CacheDirName is the name of the persistent mirror directory.
	CacheDirName = "cache"

	// DumpDirName is the name of the diagnostic dump directory.
	DumpDirName = "dump"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "shade.yaml"

	// SceneFileSuffix marks render-state scene files.
	SceneFileSuffix = ".scene.yaml"

	// MirrorFilePrefix starts every mirror file name.
	MirrorFilePrefix = "shade"

	// DefaultContentID is used when no content identifier is configured.
	DefaultContentID = "default"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCachePath returns the default mirror directory.
// It joins .shade and cache.
func DefaultCachePath() string {
	return filepath.Join(ShadeDirName, CacheDirName)
}

// DefaultDumpPath returns the default dump directory.
// It joins .shade and dump.
func DefaultDumpPath() string {
	return filepath.Join(ShadeDirName, DumpDirName)
}

// MirrorFileName returns the mirror file name of stage for contentID.
func MirrorFileName(contentID string, stage Stage) string {
	return fmt.Sprintf("%s-%s-%s.cache", MirrorFilePrefix, contentID, stage.Short())
}

// MirrorPath returns the mirror file path of stage for contentID under dir.
func MirrorPath(dir, contentID string, stage Stage) string {
	return filepath.Join(dir, MirrorFileName(contentID, stage))
}
