package model

import (
	"github.com/google/uuid"
)

// ItemKind distinguishes the two schedulable item kinds
type ItemKind string

const (
	ItemKindScene ItemKind = "scene"
	ItemKindTask  ItemKind = "task"
)

func (k ItemKind) Valid() bool {
	return k == ItemKindScene || k == ItemKindTask
}

// Noun returns the lowercase noun used in notification messages
func (k ItemKind) Noun() string {
	if k == ItemKindScene {
		return "scene"
	}
	return "task"
}

// Label returns the capitalized noun used in notification titles
func (k ItemKind) Label() string {
	if k == ItemKindScene {
		return "Scene"
	}
	return "Task"
}

// ScheduleItem is a read-only view of a schedulable scene or task owned by
// the scheduling feature. Date and time are kept as the raw strings the
// scheduler stores; either may be empty.
type ScheduleItem struct {
	ID            uuid.UUID   `db:"id"`
	Kind          ItemKind    `db:"-"`
	Title         string      `db:"title"`
	ProjectID     uuid.UUID   `db:"project_id"`
	ScheduledDate string      `db:"scheduled_date"`
	ScheduledTime string      `db:"scheduled_time"`
	AssigneeIDs   []uuid.UUID `db:"-"`
}
