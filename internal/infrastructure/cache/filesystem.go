package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/shared/utils"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/zstd"
)

const (
	entryExt    = ".zst"
	headerBytes = 8
)

// DefaultDir is the cache directory used when none is configured.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "foundation-cache")
}

// Filesystem stores each entry as a zstd-compressed file under dir.
//
// Keys are hashed; the first two hex characters pick a shard directory.
// Every file starts with an 8-byte big-endian expiry (unix nanoseconds,
// zero for none) followed by the compressed value.
type Filesystem struct {
	dir    string
	hasher *utils.Hasher
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	now    func() time.Time

	closeOnce sync.Once
	closed    atomic.Bool
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewFilesystem creates dir if needed and returns a cache rooted there.
func NewFilesystem(dir string) (*Filesystem, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &Filesystem{
		dir:    dir,
		hasher: utils.DefaultHasher(),
		enc:    enc,
		dec:    dec,
		now:    time.Now,
	}, nil
}

// Dir returns the cache root.
func (f *Filesystem) Dir() string {
	return f.dir
}

func (f *Filesystem) path(key string) string {
	sum := f.hasher.HashString(key)
	return filepath.Join(f.dir, sum[:2], sum+entryExt)
}

// Get implements Cache. Expired entries are removed on read.
func (f *Filesystem) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.closed.Load() {
		return nil, false, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	path := f.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		f.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read entry: %w", err)
	}

	expiresAt, payload, err := splitEntry(raw)
	if err != nil {
		_ = os.Remove(path)
		f.misses.Add(1)
		return nil, false, nil
	}
	if expired(expiresAt, f.now()) {
		_ = os.Remove(path)
		f.misses.Add(1)
		return nil, false, nil
	}

	value, err := f.dec.DecodeAll(payload, nil)
	if err != nil {
		_ = os.Remove(path)
		f.misses.Add(1)
		return nil, false, nil
	}
	f.hits.Add(1)
	return value, true, nil
}

// Set implements Cache. The entry is written to a temporary file and renamed
// into place.
func (f *Filesystem) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if f.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path := f.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create shard: %w", err)
	}

	header := make([]byte, headerBytes, headerBytes+len(value))
	if at := expiry(f.now(), ttl); !at.IsZero() {
		binary.BigEndian.PutUint64(header, uint64(at.UnixNano()))
	}
	data := f.enc.EncodeAll(value, header)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("commit entry: %w", err)
	}
	return nil
}

// Delete implements Cache.
func (f *Filesystem) Delete(_ context.Context, key string) error {
	if f.closed.Load() {
		return ErrClosed
	}
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Clear implements Cache. Only entry files are removed; foreign files in the
// directory are left alone.
func (f *Filesystem) Clear(ctx context.Context) error {
	if f.closed.Load() {
		return ErrClosed
	}
	matches, err := doublestar.Glob(os.DirFS(f.dir), "**/*"+entryExt)
	if err != nil {
		return fmt.Errorf("glob failed: %w", err)
	}
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(filepath.Join(f.dir, filepath.FromSlash(match))); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("clear entry: %w", err)
		}
	}
	return nil
}

// Prune walks the cache and removes expired or unreadable entries. It
// returns the number of files removed.
func (f *Filesystem) Prune(ctx context.Context) (int, error) {
	if f.closed.Load() {
		return 0, ErrClosed
	}
	now := f.now()
	var removed atomic.Int64

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() || filepath.Ext(path) != entryExt {
			return nil
		}

		raw, err := readHeader(path)
		if err != nil {
			return nil
		}
		at, _, err := splitEntry(raw)
		if err != nil || expired(at, now) {
			if os.Remove(path) == nil {
				removed.Add(1)
			}
		}
		return nil
	})
	return int(removed.Load()), err
}

// Stats returns hit/miss counters and the number of entry files.
func (f *Filesystem) Stats() Stats {
	s := Stats{Hits: f.hits.Load(), Misses: f.misses.Load()}
	if matches, err := doublestar.Glob(os.DirFS(f.dir), "**/*"+entryExt); err == nil {
		s.Entries = int64(len(matches))
	}
	return s
}

// Close releases the codec resources. Entries stay on disk.
func (f *Filesystem) Close() error {
	f.closeOnce.Do(func() {
		f.closed.Store(true)
		f.enc.Close()
		f.dec.Close()
	})
	return nil
}

func readHeader(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	buf := make([]byte, headerBytes)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

func splitEntry(raw []byte) (time.Time, []byte, error) {
	if len(raw) < headerBytes {
		return time.Time{}, nil, errors.New("short entry")
	}
	var at time.Time
	if nanos := binary.BigEndian.Uint64(raw[:headerBytes]); nanos != 0 {
		at = time.Unix(0, int64(nanos))
	}
	return at, raw[headerBytes:], nil
}
