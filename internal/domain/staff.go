package domain

import "time"

// Staff is a back-office operator allowed to manage the catalog and move
// bookings through their workflow.
type Staff struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
