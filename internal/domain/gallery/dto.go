package gallery

// PhotoResponse is a gallery entry as served to the page.
type PhotoResponse struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	ImageURL  string `json:"imageUrl"`
	ThumbURL  string `json:"thumbUrl,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	Source    string `json:"source"`
	Managed   bool   `json:"managedInRepo"`
}

func ToResponse(p Photo) PhotoResponse {
	return PhotoResponse{
		ID:        p.ID,
		Caption:   p.Caption,
		ImageURL:  p.ImageData,
		ThumbURL:  p.ThumbURL,
		CreatedAt: p.CreatedAt,
		Source:    p.Source,
		Managed:   p.Source == SourceRepo,
	}
}

func toResponses(photos []Photo) []PhotoResponse {
	out := make([]PhotoResponse, len(photos))
	for i, p := range photos {
		out[i] = ToResponse(p)
	}
	return out
}
