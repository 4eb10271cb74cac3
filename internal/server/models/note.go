package models

import "time"

// Note is a user's note. Images are kept in insertion order; the first one
// is the cover.
type Note struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"-"`
	Owner      *Owner    `json:"owner,omitempty"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Content    string    `json:"content"`
	Images     []Image   `json:"images"`
	IsFavorite bool      `json:"isFavorite"`
	Template   *string   `json:"template"`
	LastViewed time.Time `json:"lastViewed"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Image is an attachment hosted in object storage. StorageHandle is the
// opaque key used to delete it again.
type Image struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	StorageHandle string `json:"storageHandle"`
}

// ImageIndex returns the position of the image with the given id, or -1.
func (n *Note) ImageIndex(imageID string) int {
	for i := range n.Images {
		if n.Images[i].ID == imageID {
			return i
		}
	}
	return -1
}
