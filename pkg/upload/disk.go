package upload

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore stores uploads on the local filesystem. Each file gets a
// random hex name plus a JSON sidecar with the original metadata, so
// the store survives restarts.
type DiskStore struct {
	dir     string
	maxSize int64
}

type diskMeta struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// NewDiskStore creates a DiskStore rooted at dir, creating it if
// needed. maxSize of 0 means no limit.
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, maxSize: maxSize}, nil
}

// Save stores the content under a fresh random ID.
func (s *DiskStore) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*File, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return nil, ErrTooLarge
	}

	id := newFileID()
	path := filepath.Join(s.dir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// The declared size is client input; cap the actual bytes too.
	reader := r
	if s.maxSize > 0 {
		reader = io.LimitReader(r, s.maxSize+1)
	}
	written, err := io.Copy(f, reader)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	if s.maxSize > 0 && written > s.maxSize {
		os.Remove(path)
		return nil, ErrTooLarge
	}

	meta := diskMeta{
		Filename:    sanitizeFilename(filename),
		ContentType: contentType,
		Size:        written,
	}
	if err := s.writeMeta(id, meta); err != nil {
		os.Remove(path)
		return nil, err
	}

	return &File{
		ID:          id,
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Size:        meta.Size,
	}, nil
}

// Open returns a stored file and its content.
func (s *DiskStore) Open(ctx context.Context, id string) (*File, io.ReadCloser, error) {
	if !validFileID(id) {
		return nil, nil, ErrNotFound
	}
	meta, err := s.readMeta(id)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return &File{
		ID:          id,
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		Size:        meta.Size,
	}, f, nil
}

// Remove deletes a stored file and its metadata.
func (s *DiskStore) Remove(ctx context.Context, id string) error {
	if !validFileID(id) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *DiskStore) metaPath(id string) string {
	return filepath.Join(s.dir, id+".meta")
}

func (s *DiskStore) writeMeta(id string, meta diskMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(id), data, 0o644)
}

func (s *DiskStore) readMeta(id string) (diskMeta, error) {
	var meta diskMeta
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(data, &meta)
	return meta, err
}

// sanitizeFilename reduces a client filename to a safe base name.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

// newFileID generates a random 32-hex-char file ID.
func newFileID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// validFileID rejects anything that is not a bare hex ID, so IDs can
// never traverse out of the store directory.
func validFileID(id string) bool {
	if len(id) != 32 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
