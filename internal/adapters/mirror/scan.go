package mirror

import (
	"bufio"
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/zerr"
)

// ScanResult summarizes a mirror file without modifying it.
type ScanResult struct {
	// Exists is false when no file is present at the path.
	Exists bool
	// Compatible is false when the header does not match the expected format and tag.
	Compatible bool
	Records    int
	// ValueBytes is the total artifact length of all readable records.
	ValueBytes int64
	// Size is the file length.
	Size int64
	// Trailing is the number of bytes after the last readable record.
	Trailing int64
}

// Scan reads the mirror at path read-only and reports every readable record to sink,
// which may be nil. Unlike OpenAndReplay it never truncates or resets the file.
func Scan[K any](path, tag string, codec domain.KeyCodec[K], sink Sink[K]) (ScanResult, error) {
	var res ScanResult

	//nolint:gosec // Path is built from the configured cache directory
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return res, zerr.With(zerr.Wrap(err, domain.ErrMirrorOpenFailed.Error()), "path", path)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return res, zerr.With(zerr.Wrap(err, domain.ErrMirrorOpenFailed.Error()), "path", path)
	}
	res.Exists = true
	res.Size = info.Size()

	l := &Log[K]{path: path, codec: codec}
	r := bufio.NewReader(f)
	offset, ok := l.readHeader(r, tag)
	if !ok {
		res.Trailing = res.Size
		return res, nil
	}
	res.Compatible = true

	for {
		key, value, n, err := l.readRecord(r)
		if err != nil {
			break
		}
		if sink != nil {
			sink(key, value)
		}
		res.Records++
		res.ValueBytes += int64(len(value))
		offset += n
	}
	res.Trailing = res.Size - offset
	return res, nil
}
