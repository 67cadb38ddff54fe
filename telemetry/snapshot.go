package telemetry

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// SnapshotVersion is incremented when the layout format changes.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when a snapshot was written by an incompatible version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// LayoutHeader is written as a JSON line ahead of the gob payload so the
// file can be identified without decoding it.
type LayoutHeader struct {
	Version      int     `json:"version"`
	Seed         int64   `json:"seed"`
	TableSize    int     `json:"table_size"`
	ChunkSpan    float64 `json:"chunk_span"`
	Neighborhood string  `json:"neighborhood"`
	Tick         uint64  `json:"tick"`
}

// Layout holds a generated grid: which prototypes were placed where, and
// the mobs each chunk owns.
type Layout struct {
	Header LayoutHeader
	Chunks []ChunkState
}

// ChunkState is one chunk in a layout, in row-major order.
type ChunkState struct {
	X, Y         int
	Block        string
	BlockQuarter int
	Lanes        [4]string
	Intersection string
	Relaxed      bool
	Mobs         []MobState
}

// MobState is one car or cloud at the time the snapshot was taken.
type MobState struct {
	Kind      string
	Model     string
	X, Y, Z   float64
	RotationY float64
	Lane      int // -1 for clouds
	Speed     float64
}

// Block returns the block name at grid cell (x, y), or "" if the layout has no such chunk.
func (l *Layout) Block(x, y int) string {
	n := l.Header.TableSize
	if n < 1 {
		return ""
	}
	i := y*n + x
	if x < 0 || y < 0 || x >= n || y >= n || i >= len(l.Chunks) {
		return ""
	}
	return l.Chunks[i].Block
}

// WriteLayout writes a zstd-compressed layout to path.
func WriteLayout(path string, l *Layout) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(l.Header)
	if err != nil {
		enc.Close()
		return fmt.Errorf("marshal header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(l); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadLayout reads a layout written by WriteLayout.
func ReadLayout(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var hdr LayoutHeader
	if err := json.Unmarshal(line, &hdr); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if hdr.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, hdr.Version)
	}

	var l Layout
	if err := gob.NewDecoder(br).Decode(&l); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	return &l, nil
}
