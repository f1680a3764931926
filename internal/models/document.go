package models

import "time"

// Document is a user-owned document served through the bearer-protected API.
type Document struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID string `gorm:"not null;index"           json:"owner_id"` // FK → User.ID
	Title   string `gorm:"not null"                 json:"title"`
	Content string `gorm:"type:text"                json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}
