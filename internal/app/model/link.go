package model

import "time"

// Link is the core short-link entity stored in Postgres. Code is the
// primary key; its unique constraint is what makes concurrent creation
// with colliding codes safe.
type Link struct {
	Code        string     `json:"code" gorm:"primaryKey;size:8"`
	URL         string     `json:"url" gorm:"type:text;not null"`
	TotalClicks int64      `json:"total_clicks" gorm:"not null;default:0"`
	LastClicked *time.Time `json:"last_clicked"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}
