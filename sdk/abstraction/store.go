package abstraction

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lox/handbucket/internal/fileutil"
)

// Centroid store errors.
var (
	// ErrStoreMissing reports that no centroid store exists at the
	// configured path; training has to run first.
	ErrStoreMissing = errors.New("centroid store missing")
	// ErrStoreTruncated reports a short read or leftover bytes: the three
	// street records must span the whole file.
	ErrStoreTruncated = errors.New("centroid store truncated")
)

// StreetModel is one street's record in the centroid store: the
// normalisation statistics and the K centroids of dimension D.
type StreetModel struct {
	Stats     Stats
	Centroids [][]float32
}

// K returns the number of centroids.
func (m StreetModel) K() int {
	return len(m.Centroids)
}

// Store is the persisted artifact of a training run: one record per street
// in flop, turn, river order. It is written once offline and read-only at
// runtime.
//
// On-disk layout per street, little-endian, no magic or checksum:
//
//	int32   K
//	int32   D
//	float32 mean[D]
//	float32 std[D]
//	float32 centroids[K][D]
type Store struct {
	Streets [NumStreets]StreetModel
}

// Encode writes the three street records to w.
func (s *Store) Encode(w io.Writer) error {
	for street, model := range s.Streets {
		d := model.Stats.Dim()
		if err := binary.Write(w, binary.LittleEndian, int32(model.K())); err != nil {
			return fmt.Errorf("encode %s record: %w", Street(street), err)
		}
		if err := binary.Write(w, binary.LittleEndian, int32(d)); err != nil {
			return fmt.Errorf("encode %s record: %w", Street(street), err)
		}
		for _, block := range [][]float32{model.Stats.Mean, model.Stats.Std} {
			if err := binary.Write(w, binary.LittleEndian, block); err != nil {
				return fmt.Errorf("encode %s stats: %w", Street(street), err)
			}
		}
		for _, centroid := range model.Centroids {
			if err := binary.Write(w, binary.LittleEndian, centroid); err != nil {
				return fmt.Errorf("encode %s centroids: %w", Street(street), err)
			}
		}
	}
	return nil
}

// Decode reads the three street records from r and asserts they span the
// whole stream.
func Decode(r io.Reader) (*Store, error) {
	store := &Store{}
	for street := range store.Streets {
		var k, d int32
		if err := readValue(r, &k); err != nil {
			return nil, fmt.Errorf("%s record: %w", Street(street), err)
		}
		if err := readValue(r, &d); err != nil {
			return nil, fmt.Errorf("%s record: %w", Street(street), err)
		}
		if k < 0 || d <= 0 {
			return nil, fmt.Errorf("%s record: invalid dimensions K=%d D=%d", Street(street), k, d)
		}

		model := StreetModel{
			Stats: Stats{Mean: make([]float32, d), Std: make([]float32, d)},
		}
		if err := readValue(r, model.Stats.Mean); err != nil {
			return nil, fmt.Errorf("%s stats: %w", Street(street), err)
		}
		if err := readValue(r, model.Stats.Std); err != nil {
			return nil, fmt.Errorf("%s stats: %w", Street(street), err)
		}
		model.Centroids = make([][]float32, k)
		for i := range model.Centroids {
			model.Centroids[i] = make([]float32, d)
			if err := readValue(r, model.Centroids[i]); err != nil {
				return nil, fmt.Errorf("%s centroid %d: %w", Street(street), i, err)
			}
		}
		store.Streets[street] = model
	}

	var extra [1]byte
	if n, _ := r.Read(extra[:]); n != 0 {
		return nil, fmt.Errorf("%w: trailing bytes after river record", ErrStoreTruncated)
	}
	return store, nil
}

func readValue(r io.Reader, v any) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrStoreTruncated
		}
		return err
	}
	return nil
}

// LoadStore reads a centroid store from disk.
func LoadStore(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoreMissing, path)
		}
		return nil, err
	}
	defer f.Close()

	store, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return store, nil
}

// Save persists the store atomically.
func (s *Store) Save(path string) error {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write centroid store: %w", err)
	}
	return nil
}
