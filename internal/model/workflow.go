package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Workflow is a named data-processing pipeline definition owned by a user.
// Definition is an opaque JSON document describing the pipeline's input and
// output; the core never interprets it.
type Workflow struct {
	ID          uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name" gorm:"size:255;not null;index"`
	Description string         `json:"description" gorm:"size:1024"`
	Definition  datatypes.JSON `json:"definition" gorm:"type:json"`
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Relations
	Owner User   `json:"-" gorm:"foreignKey:OwnerID"`
	Steps []Step `json:"steps,omitempty" gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (w *Workflow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
