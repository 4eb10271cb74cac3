package api

import "time"

type Owner struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type Image struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	StorageHandle string `json:"storageHandle"`
}

type Note struct {
	ID         string    `json:"id"`
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

type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type Analytics struct {
	TotalNotes      int             `json:"totalNotes"`
	FavoriteNotes   int             `json:"favoriteNotes"`
	Categories      int             `json:"categories"`
	NotesWithImages int             `json:"notesWithImages"`
	TotalImages     int             `json:"totalImages"`
	RecentNotes     int             `json:"recentNotes"`
	ByCategory      []CategoryCount `json:"byCategory"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *Owner    `json:"user"`
}

// NoteFields is sent as multipart form fields. Nil fields are omitted, so
// an update leaves them unchanged on the server.
type NoteFields struct {
	Title    *string
	Category *string
	Content  *string
}

type ListParams struct {
	Category      string
	FavoritesOnly bool
	Search        string
}

// Export is a downloaded export file.
type Export struct {
	FileName string
	Body     []byte
}
