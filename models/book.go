package models

import "time"

// Book represents one catalog entry with a copy count.
// Total is the number of physical copies; Available is how many are on the
// shelf right now. The invariant 0 <= Available <= Total must hold after
// every committed write; only the lending engine mutates Available.
type Book struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Author    string    `db:"author" json:"author"`
	CoverURL  *string   `db:"cover_url" json:"cover_url,omitempty"`
	Total     int       `db:"total" json:"total"`
	Available int       `db:"available" json:"available"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
