package run

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
)

const storeExt = ".json.zst"

// Store persists finished runs as zstd-compressed JSON, one file per
// run, named by run ID. Traces compress well: the same reprs and ref
// strings repeat on every step.
type Store struct {
	dir string
	mu  sync.Mutex

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewStore opens a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}
	return &Store{dir: dir, enc: enc, dec: dec}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+storeExt)
}

// Save writes the record durably: temp file first, then rename.
func (s *Store) Save(rec *Record) error {
	data, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	compressed := s.enc.EncodeAll(data, nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(rec.ID) + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := os.Rename(tmp, s.path(rec.ID)); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

// Load reads one record by ID. Missing records surface as fs.ErrNotExist.
func (s *Store) Load(id string) (*Record, error) {
	compressed, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, err
	}
	data, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress record %s: %w", id, err)
	}
	var rec Record
	if err := sonic.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return &rec, nil
}

// Delete removes one record. Missing records are not an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// IDs returns all stored run ids. ULIDs sort by creation time, so the
// slice comes back oldest first.
func (s *Store) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, storeExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, storeExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Close releases the compressor state.
func (s *Store) Close() error {
	err := s.enc.Close()
	s.dec.Close()
	return err
}
