// Package mirror implements the append-only, per-stage file that persists compiled artifacts
// across runs.
//
// File layout, little endian:
//
//	header: "SHDM" | version u32 | key size u32 | tag length u32 | tag
//	record: key length u32 | value length u32 | key | value | xxhash64(key || value) u64
//
// A file whose header does not match the expected version, key size or tag is reset to an
// empty header. Replay stops at the first record that cannot be read in full or fails its
// checksum, and the file is truncated there.
package mirror

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// FormatVersion is the on-disk format version written into every header.
	FormatVersion = 1

	// MaxValueSize bounds the artifact length accepted during replay.
	MaxValueSize = 64 << 20

	maxTagSize      = 1 << 10
	maxKeySize      = 1 << 10
	fixedHeaderSize = 16
	recordHeadSize  = 8
	checksumSize    = 8
)

var magic = [4]byte{'S', 'H', 'D', 'M'}

// Sink receives every record recovered during replay. The value slice is owned by the sink.
type Sink[K any] func(key K, value []byte)

// Log is one open mirror file.
type Log[K any] struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	codec   domain.KeyCodec[K]
	scratch []byte
	closed  bool

	dropped int64
	reset   bool
}

// OpenAndReplay opens the mirror at path, creating it and its parent directories when absent,
// and streams every complete record into sink. It returns the open log and the number of
// records replayed.
func OpenAndReplay[K any](path, tag string, codec domain.KeyCodec[K], sink Sink[K]) (*Log[K], int, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, 0, zerr.With(zerr.Wrap(err, domain.ErrMirrorOpenFailed.Error()), "path", path)
	}

	//nolint:gosec // Path is built from the configured cache directory
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, domain.FilePerm)
	if err != nil {
		return nil, 0, zerr.With(zerr.Wrap(err, domain.ErrMirrorOpenFailed.Error()), "path", path)
	}

	l := &Log[K]{path: path, file: f, codec: codec}
	n, err := l.replay(tag, sink)
	if err != nil {
		_ = f.Close()
		return nil, 0, zerr.With(err, "path", path)
	}
	return l, n, nil
}

func (l *Log[K]) replay(tag string, sink Sink[K]) (int, error) {
	info, err := l.file.Stat()
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrMirrorOpenFailed.Error())
	}
	size := info.Size()

	r := bufio.NewReader(l.file)
	headerLen, ok := l.readHeader(r, tag)
	if !ok {
		l.reset = size > 0
		l.dropped = size
		return 0, l.writeHeader(tag)
	}

	offset := headerLen
	count := 0
	for {
		key, value, n, err := l.readRecord(r)
		if err != nil {
			break
		}
		sink(key, value)
		offset += n
		count++
	}

	if offset < size {
		l.dropped = size - offset
		if err := l.file.Truncate(offset); err != nil {
			return count, zerr.Wrap(err, domain.ErrMirrorWriteFailed.Error())
		}
	}
	if _, err := l.file.Seek(offset, io.SeekStart); err != nil {
		return count, zerr.Wrap(err, domain.ErrMirrorOpenFailed.Error())
	}
	return count, nil
}

func (l *Log[K]) readHeader(r io.Reader, tag string) (int64, bool) {
	var fixed [fixedHeaderSize]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return 0, false
	}
	if !bytes.Equal(fixed[:4], magic[:]) {
		return 0, false
	}
	version := binary.LittleEndian.Uint32(fixed[4:])
	keySize := binary.LittleEndian.Uint32(fixed[8:])
	tagLen := binary.LittleEndian.Uint32(fixed[12:])
	if version != FormatVersion || int(keySize) != l.codec.KeySize() || int(tagLen) != len(tag) || tagLen > maxTagSize {
		return 0, false
	}
	got := make([]byte, tagLen)
	if _, err := io.ReadFull(r, got); err != nil || string(got) != tag {
		return 0, false
	}
	return fixedHeaderSize + int64(tagLen), true
}

func (l *Log[K]) writeHeader(tag string) error {
	if err := l.file.Truncate(0); err != nil {
		return zerr.Wrap(err, domain.ErrMirrorWriteFailed.Error())
	}
	if _, err := l.file.Seek(0, io.SeekStart); err != nil {
		return zerr.Wrap(err, domain.ErrMirrorWriteFailed.Error())
	}

	buf := make([]byte, 0, fixedHeaderSize+len(tag))
	buf = append(buf, magic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, FormatVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(l.codec.KeySize()))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tag)))
	buf = append(buf, tag...)
	if _, err := l.file.Write(buf); err != nil {
		return zerr.Wrap(err, domain.ErrMirrorWriteFailed.Error())
	}
	return nil
}

var errBadRecord = errors.New("bad record")

func (l *Log[K]) readRecord(r io.Reader) (K, []byte, int64, error) {
	var zero K

	var head [recordHeadSize]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return zero, nil, 0, err
	}
	keyLen := binary.LittleEndian.Uint32(head[0:])
	valLen := binary.LittleEndian.Uint32(head[4:])
	if ks := l.codec.KeySize(); ks > 0 && int(keyLen) != ks {
		return zero, nil, 0, errBadRecord
	}
	if keyLen > maxKeySize || valLen > MaxValueSize {
		return zero, nil, 0, errBadRecord
	}

	body := make([]byte, int(keyLen)+int(valLen)+checksumSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return zero, nil, 0, err
	}
	payload := body[:keyLen+valLen]
	if xxhash.Sum64(payload) != binary.LittleEndian.Uint64(body[keyLen+valLen:]) {
		return zero, nil, 0, errBadRecord
	}

	key, err := l.codec.DecodeKey(payload[:keyLen])
	if err != nil {
		return zero, nil, 0, err
	}
	value := payload[keyLen : keyLen+valLen : keyLen+valLen]
	return key, value, int64(recordHeadSize + len(body)), nil
}

// Append writes one record. It is safe for concurrent use.
func (l *Log[K]) Append(key K, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return zerr.With(domain.ErrMirrorClosed, "path", l.path)
	}

	buf := l.scratch[:0]
	buf = append(buf, 0, 0, 0, 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(value)))
	start := len(buf)
	buf = l.codec.AppendKey(buf, key)
	keyLen := len(buf) - start
	binary.LittleEndian.PutUint32(buf[0:], uint32(keyLen))
	buf = append(buf, value...)
	buf = binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf[start:]))
	l.scratch = buf

	if _, err := l.file.Write(buf); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMirrorWriteFailed.Error()), "path", l.path)
	}
	return nil
}

// Sync flushes written records to stable storage.
func (l *Log[K]) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMirrorSyncFailed.Error()), "path", l.path)
	}
	return nil
}

// Close syncs and releases the file. Closing twice is a no-op.
func (l *Log[K]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	syncErr := l.file.Sync()
	closeErr := l.file.Close()
	if syncErr != nil {
		return zerr.With(zerr.Wrap(syncErr, domain.ErrMirrorSyncFailed.Error()), "path", l.path)
	}
	if closeErr != nil {
		return zerr.With(zerr.Wrap(closeErr, domain.ErrMirrorSyncFailed.Error()), "path", l.path)
	}
	return nil
}

// Path returns the file path of the log.
func (l *Log[K]) Path() string {
	return l.path
}

// Dropped returns the number of trailing bytes discarded during replay.
func (l *Log[K]) Dropped() int64 {
	return l.dropped
}

// WasReset reports whether an incompatible header caused the file to be rewritten on open.
func (l *Log[K]) WasReset() bool {
	return l.reset
}
