// Package dump writes numbered diagnostic side files.
package dump

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Dumper = (*Writer)(nil)

const (
	failurePrefix   = "bad"
	collisionPrefix = "uid_mismatch"

	// maxAttempts bounds the search for a free sequence number.
	maxAttempts = 10000
)

type kind int

const (
	kindFailure kind = iota
	kindCollision
)

// Writer creates dump files under one directory. Names are unique across goroutines and
// never overwrite files left by earlier runs.
type Writer struct {
	dir string
	seq [2][domain.StageCount]atomic.Uint32
}

// NewWriter creates a Writer rooted at dir. The directory is created on first use.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the dump directory.
func (w *Writer) Dir() string {
	return w.dir
}

// DumpFailure implements ports.Dumper.
func (w *Writer) DumpFailure(stage domain.Stage, source string, diag error) (string, error) {
	var b strings.Builder
	b.WriteString(source)
	if !strings.HasSuffix(source, "\n") {
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if diag != nil {
		b.WriteString(diag.Error())
		b.WriteByte('\n')
	}
	return w.write(kindFailure, stage, b.String())
}

// DumpCollision implements ports.Dumper.
func (w *Writer) DumpCollision(stage domain.Stage, uid domain.UID, first, second string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "uid %s\n\n", uid)
	b.WriteString("--- first ---\n")
	b.WriteString(first)
	b.WriteString("\n--- second ---\n")
	b.WriteString(second)
	b.WriteByte('\n')
	return w.write(kindCollision, stage, b.String())
}

func (w *Writer) write(k kind, stage domain.Stage, content string) (string, error) {
	if !stage.Valid() {
		return "", zerr.With(domain.ErrDumpFailed, "stage", stage.String())
	}
	if err := os.MkdirAll(w.dir, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrDumpFailed.Error()), "dir", w.dir)
	}

	prefix := failurePrefix
	if k == kindCollision {
		prefix = collisionPrefix
	}
	counter := &w.seq[k][stage]

	for range maxAttempts {
		n := counter.Add(1) - 1
		path := filepath.Join(w.dir, fmt.Sprintf("%s_%s_%04d.txt", prefix, stage.Short(), n))

		//nolint:gosec // Path is built from the configured dump directory
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, domain.FilePerm)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrDumpFailed.Error()), "path", path)
		}

		_, werr := f.WriteString(content)
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrDumpFailed.Error()), "path", path)
		}
		return path, nil
	}
	return "", zerr.With(domain.ErrDumpFailed, "dir", w.dir)
}
