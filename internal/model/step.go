package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StepType discriminates the shape of a workflow step.
type StepType string

const (
	StepTypeFilter    StepType = "filter"
	StepTypeAggregate StepType = "aggregate"
)

// Step describes one stage of a workflow over tabular input. Shape only:
// filter steps carry column/condition/value, aggregate steps carry
// column/aggregate function. There is no evaluator.
type Step struct {
	ID            uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	WorkflowID    uuid.UUID `json:"workflow_id" gorm:"type:char(36);not null;index"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	Type          StepType  `json:"type" gorm:"type:varchar(20);not null"`
	Column        string    `json:"column,omitempty" gorm:"size:255"`
	Condition     string    `json:"condition,omitempty" gorm:"size:255"`
	Value         string    `json:"value,omitempty" gorm:"size:255"`
	AggregateFunc string    `json:"aggregate_function,omitempty" gorm:"size:64"`
	Position      int       `json:"position" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	Workflow Workflow `json:"-" gorm:"foreignKey:WorkflowID"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Step) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
