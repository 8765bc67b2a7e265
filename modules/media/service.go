// Package media stores uploaded task images and audio recordings and
// serves them back under stable /assets/ URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrMediaNotFound is returned when no stored object matches the name.
	ErrMediaNotFound = errors.New("media not found")
	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = errors.New("uploaded file is empty")
	// ErrUnsupportedType is returned when the file extension is not in
	// the allowlist for the media kind.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrStorageUnavailable is returned when the object store backend
	// is not connected.
	ErrStorageUnavailable = errors.New("media storage unavailable")
)

// Kind distinguishes the two accepted media categories.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// Extension allowlists per kind, with the content type served back.
var allowedTypes = map[Kind]map[string]string{
	KindImage: {
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
		".webp": "image/webp",
	},
	KindAudio: {
		".mp3":  "audio/mpeg",
		".wav":  "audio/wav",
		".ogg":  "audio/ogg",
		".m4a":  "audio/mp4",
		".webm": "audio/webm",
	},
}

// Upload describes a stored media object.
type Upload struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Size        uint64 `json:"size"`
	ContentType string `json:"contentType"`
}

// Service validates and stores task media.
type Service struct {
	store ObjectStore
}

// NewService creates a media service. A nil store means storage is
// unavailable and every operation fails with ErrStorageUnavailable.
func NewService(store ObjectStore) *Service {
	return &Service{store: store}
}

// UploadImage validates and stores an image file.
func (s *Service) UploadImage(ctx context.Context, filename string, data []byte) (*Upload, error) {
	return s.upload(ctx, KindImage, filename, data)
}

// UploadAudio validates and stores an audio recording.
func (s *Service) UploadAudio(ctx context.Context, filename string, data []byte) (*Upload, error) {
	return s.upload(ctx, KindAudio, filename, data)
}

func (s *Service) upload(ctx context.Context, kind Kind, filename string, data []byte) (*Upload, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedTypes[kind][ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a valid %s extension", ErrUnsupportedType, ext, kind)
	}

	// Stored names are opaque: collisions and path tricks in the
	// client-supplied filename cannot reach the bucket.
	name := uuid.New().String() + ext

	info, err := s.store.Put(ctx, name, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", kind, err)
	}

	return &Upload{
		Name:        name,
		URL:         "/assets/" + name,
		Size:        info.Size,
		ContentType: contentType,
	}, nil
}

// Fetch returns the raw bytes and content type of a stored object.
func (s *Service) Fetch(ctx context.Context, name string) ([]byte, string, error) {
	if s.store == nil {
		return nil, "", ErrStorageUnavailable
	}
	if name == "" || strings.ContainsAny(name, "/\\") {
		return nil, "", ErrMediaNotFound
	}

	data, info, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, "", err
	}
	return data, info.ContentType, nil
}

// Remove deletes a stored object. Removing an already-deleted object
// is not an error.
func (s *Service) Remove(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrStorageUnavailable
	}
	if name == "" {
		return nil
	}

	if err := s.store.Delete(ctx, name); err != nil {
		if errors.Is(err, ErrMediaNotFound) {
			return nil
		}
		return err
	}
	return nil
}
