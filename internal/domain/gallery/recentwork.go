package gallery

import (
	"encoding/json"
	"fmt"
	"os"
)

// RecentWork reads the repository-managed gallery manifest, a JSON array of
// {src, alt}. A missing manifest means no repo photos.
type RecentWork struct {
	path string
}

func NewRecentWork(path string) *RecentWork {
	return &RecentWork{path: path}
}

// Photos loads the manifest. Entries without src are dropped.
func (r *RecentWork) Photos(now int64) ([]Photo, error) {
	if r == nil || r.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read recent work: %w", err)
	}
	var images []RepoImage
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("decode recent work: %w", err)
	}
	return RepoPhotos(images, now), nil
}

// RepoPhotos converts manifest entries to photos with stable ids.
func RepoPhotos(images []RepoImage, now int64) []Photo {
	photos := make([]Photo, 0, len(images))
	for i, img := range images {
		if img.Src == "" {
			continue
		}
		caption := img.Alt
		if caption == "" {
			caption = fmt.Sprintf("Recent work %d", i+1)
		}
		photos = append(photos, Photo{
			ID:        fmt.Sprintf("repo-%d-%s", i, img.Src),
			Caption:   caption,
			ImageData: img.Src,
			CreatedAt: now,
			Source:    SourceRepo,
		})
	}
	return photos
}
