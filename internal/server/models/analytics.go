package models

// Analytics summarises a user's notes.
type Analytics struct {
	TotalNotes      int             `json:"totalNotes"`
	FavoriteNotes   int             `json:"favoriteNotes"`
	Categories      int             `json:"categories"`
	NotesWithImages int             `json:"notesWithImages"`
	TotalImages     int             `json:"totalImages"`
	RecentNotes     int             `json:"recentNotes"`
	ByCategory      []CategoryCount `json:"byCategory"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
