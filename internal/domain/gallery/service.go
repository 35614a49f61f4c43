package gallery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawgrasskings/booking-api/internal/pkg/imaging"
	"github.com/sawgrasskings/booking-api/internal/pkg/storage"
)

// Repository holds the device-local photo list, newest first.
type Repository interface {
	LocalPhotos() []Photo
	SaveGallery(ctx context.Context, photos []Photo) error
}

// Service manages the gallery: local uploads plus the repo manifest.
type Service struct {
	repo      Repository
	recent    *RecentWork
	storage   storage.Storage
	processor *imaging.Processor
	now       func() time.Time
}

// NewService creates gallery service. storage may be nil, in which case
// uploads are rejected.
func NewService(repo Repository, recent *RecentWork, store storage.Storage, processor *imaging.Processor) *Service {
	return &Service{
		repo:      repo,
		recent:    recent,
		storage:   store,
		processor: processor,
		now:       time.Now,
	}
}

// Local returns the device uploads tagged with their source.
func (s *Service) Local() []Photo {
	local := s.repo.LocalPhotos()
	out := make([]Photo, len(local))
	for i, p := range local {
		p.Source = SourceLocal
		out[i] = p
	}
	return out
}

// List merges local uploads ahead of repo photos, capped at MaxPhotos.
func (s *Service) List() []Photo {
	merged := s.Local()
	repo, err := s.recent.Photos(s.now().UnixMilli())
	if err != nil {
		log.Warn().Err(err).Msg("Repo gallery not available")
	}
	merged = append(merged, repo...)
	if len(merged) > MaxPhotos {
		merged = merged[:MaxPhotos]
	}
	return merged
}

// Upload validates, resizes and stores an image, then prepends it to the
// local list. Photos pushed past the cap lose their blobs.
func (s *Service) Upload(ctx context.Context, caption string, reader io.Reader) (Photo, error) {
	if s.storage == nil {
		return Photo{}, fmt.Errorf("gallery storage is not configured")
	}
	data, mime, err := storage.ValidateImage(reader, storage.MaxImageSize)
	if err != nil {
		return Photo{}, err
	}
	img, err := s.processor.Process(bytes.NewReader(data), mime)
	if err != nil {
		return Photo{}, fmt.Errorf("process upload: %w", err)
	}

	id := uuid.NewString()
	origKey, thumbKey := imaging.GeneratePaths(id, storage.ExtensionForMime(img.ContentType))
	if err := s.storage.Put(ctx, origKey, bytes.NewReader(img.Original), img.ContentType); err != nil {
		return Photo{}, err
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(img.Thumbnail), img.ContentType); err != nil {
		s.removeBlobs(ctx, Photo{StorageKey: origKey})
		return Photo{}, err
	}

	caption = strings.TrimSpace(caption)
	if caption == "" {
		caption = "Gallery upload"
	}
	photo := Photo{
		ID:         id,
		Caption:    caption,
		ImageData:  s.storage.URL(origKey),
		ThumbURL:   s.storage.URL(thumbKey),
		StorageKey: origKey,
		CreatedAt:  s.now().UnixMilli(),
		Source:     SourceLocal,
	}

	photos := append([]Photo{photo}, s.repo.LocalPhotos()...)
	var evicted []Photo
	if len(photos) > MaxPhotos {
		evicted = photos[MaxPhotos:]
		photos = photos[:MaxPhotos]
	}
	if err := s.repo.SaveGallery(ctx, photos); err != nil {
		s.removeBlobs(ctx, photo)
		return Photo{}, err
	}
	for _, p := range evicted {
		s.removeBlobs(ctx, p)
	}
	return photo, nil
}

// Delete removes a local photo and its blobs.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.HasPrefix(id, "repo-") {
		return ErrManagedInRepo
	}
	local := s.repo.LocalPhotos()
	kept := make([]Photo, 0, len(local))
	var removed *Photo
	for i := range local {
		if local[i].ID == id {
			removed = &local[i]
			continue
		}
		kept = append(kept, local[i])
	}
	if removed == nil {
		return ErrPhotoNotFound
	}
	if err := s.repo.SaveGallery(ctx, kept); err != nil {
		return err
	}
	s.removeBlobs(ctx, *removed)
	return nil
}

func (s *Service) removeBlobs(ctx context.Context, p Photo) {
	if s.storage == nil || p.StorageKey == "" {
		return
	}
	keys := []string{p.StorageKey}
	if ext := extOf(p.StorageKey); ext != "" {
		keys = append(keys, strings.TrimSuffix(p.StorageKey, ext)+"_thumb"+ext)
	}
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to delete gallery blob")
		}
	}
}

func extOf(key string) string {
	i := strings.LastIndex(key, ".")
	if i < 0 || strings.Contains(key[i:], "/") {
		return ""
	}
	return key[i:]
}
