package gallery

// Photo sources.
const (
	SourceLocal = "local"
	SourceRepo  = "repo"
)

// MaxPhotos caps both the local list and the merged gallery.
const MaxPhotos = 9

// Photo is one gallery image. ImageData is a URL, or a data URI for photos
// saved before uploads went to blob storage.
type Photo struct {
	ID         string `json:"id"`
	Caption    string `json:"caption"`
	ImageData  string `json:"imageData"`
	ThumbURL   string `json:"thumbUrl,omitempty"`
	StorageKey string `json:"storageKey,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	Source     string `json:"source,omitempty"`
}

// RepoImage is an entry of recent-work.json.
type RepoImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}
