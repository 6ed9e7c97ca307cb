package models

import "time"

// Category groups products. Categories nest through ParentID.
type Category struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string     `json:"name" gorm:"type:varchar(100);not null"`
	Slug        string     `json:"slug" gorm:"type:varchar(120);uniqueIndex"`
	Description string     `json:"description" gorm:"type:text"`
	ParentID    *string    `json:"parent_id" gorm:"type:varchar(36);index"`
	Children    []Category `json:"children,omitempty" gorm:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
