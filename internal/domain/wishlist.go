package domain

import "time"

// WishlistEntry is the server-side relation between a user and a saved
// product. EntryID addresses the relation itself and is distinct from the
// product id.
type WishlistEntry struct {
	EntryID   int       `json:"entry_id"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `json:"created_at"`
}
