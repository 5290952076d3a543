package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ErrNotFound is returned when a stored file does not exist.
var ErrNotFound = errors.New("upload: file not found")

// ErrTooLarge is returned when a file exceeds the size limit.
var ErrTooLarge = errors.New("upload: file too large")

// ErrBadType is returned when a content type is not allowed.
var ErrBadType = errors.New("upload: content type not allowed")

// File describes one stored upload.
type File struct {
	// ID names the stored object; pass it to Open and Remove.
	ID string `json:"id"`

	// Filename is the client's name, reduced to its base name.
	Filename string `json:"filename"`

	// ContentType is the MIME type the client declared.
	ContentType string `json:"content_type"`

	// Size is the stored size in bytes.
	Size int64 `json:"size"`

	// URL is set when the backend serves the file directly (S3
	// presigned URL); empty for disk storage.
	URL string `json:"url,omitempty"`
}

// Store is the storage backend for uploads.
type Store interface {
	// Save stores content and returns its descriptor.
	Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*File, error)

	// Open returns a stored file's descriptor and content. The
	// caller closes the reader.
	Open(ctx context.Context, id string) (*File, io.ReadCloser, error)

	// Remove deletes a stored file. Removing an unknown ID is not
	// an error.
	Remove(ctx context.Context, id string) error
}

// Config holds configuration for the upload handler.
type Config struct {
	// MaxFileSize is the maximum allowed file size in bytes.
	// Default: 10MB.
	MaxFileSize int64

	// AllowedTypes restricts the declared content types. An entry
	// ending in "/*" matches the whole primary type ("image/*").
	// Empty allows everything.
	AllowedTypes []string

	// OnSaved runs after a successful save, before the response is
	// written. The session wiring lives here: look the session up
	// from the request and emit to it.
	OnSaved func(r *http.Request, f *File)

	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize: 10 << 20,
	}
}

// Handler returns an http.Handler accepting multipart uploads on the
// form field "file". It responds with the stored File as JSON.
func Handler(store Store) http.Handler {
	return HandlerWithConfig(store, DefaultConfig())
}

// HandlerWithConfig returns an upload handler with custom
// configuration.
func HandlerWithConfig(store Store, config *Config) http.Handler {
	if config == nil {
		config = DefaultConfig()
	}
	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Cap the body before parsing; the store checks again on
		// the actual bytes written.
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "no file provided", http.StatusBadRequest)
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !typeAllowed(config.AllowedTypes, contentType) {
			http.Error(w, "content type not allowed", http.StatusUnsupportedMediaType)
			return
		}

		saved, err := store.Save(r.Context(), header.Filename, contentType, header.Size, file)
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
				return
			}
			logger.Error("upload save failed", "filename", header.Filename, "error", err)
			http.Error(w, "upload failed", http.StatusInternalServerError)
			return
		}

		if config.OnSaved != nil {
			config.OnSaved(r, saved)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(saved); err != nil {
			logger.Error("upload response failed", "id", saved.ID, "error", err)
		}
	})
}

// ServeFile returns an http.Handler that streams a stored file. The
// file ID comes from the tail of the URL path.
func ServeFile(store Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path
		if i := strings.LastIndex(id, "/"); i >= 0 {
			id = id[i+1:]
		}
		if id == "" {
			http.NotFound(w, r)
			return
		}
		f, rc, err := store.Open(r.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "open failed", http.StatusInternalServerError)
			return
		}
		defer rc.Close()

		if f.ContentType != "" {
			w.Header().Set("Content-Type", f.ContentType)
		}
		w.Header().Set("Cache-Control", "private, max-age=3600")
		_, _ = io.Copy(w, rc)
	})
}

func typeAllowed(allowed []string, contentType string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == contentType {
			return true
		}
		if prefix, ok := strings.CutSuffix(a, "/*"); ok {
			if strings.HasPrefix(contentType, prefix+"/") {
				return true
			}
		}
	}
	return false
}
