package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/showrunner/notification-api/internal/model"
	"github.com/showrunner/notification-api/internal/repository"
	apperrors "github.com/showrunner/notification-api/pkg/errors"
)

// scheduleRepository reads scene and task metadata from the scheduling
// feature's tables. Read-only collaborator, same as the user directory.
type scheduleRepository struct {
	BaseRepository
}

func NewScheduleRepository(base BaseRepository) repository.ScheduleRepository {
	return &scheduleRepository{base}
}

func (r *scheduleRepository) GetItem(ctx context.Context, id uuid.UUID, kind model.ItemKind) (*model.ScheduleItem, error) {
	if !kind.Valid() {
		return nil, apperrors.NewValidation("itemType must be 'scene' or 'task'", nil)
	}

	// Table and join names come from the closed ItemKind enum, never from
	// request input.
	itemTable, assigneeTable, assigneeColumn := "tasks", "task_assignees", "task_id"
	if kind == model.ItemKindScene {
		itemTable, assigneeTable, assigneeColumn = "scenes", "scene_assignees", "scene_id"
	}

	query := `
		SELECT id, title, project_id,
		       COALESCE(scheduled_date, '') AS scheduled_date,
		       COALESCE(scheduled_time, '') AS scheduled_time
		FROM ` + itemTable + `
		WHERE id = $1
	`

	var item model.ScheduleItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, translateError(err, kind.Noun())
	}
	item.Kind = kind

	assigneeQuery := `SELECT user_id FROM ` + assigneeTable + ` WHERE ` + assigneeColumn + ` = $1`

	assignees := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &assignees, assigneeQuery, id); err != nil {
		return nil, translateError(err, kind.Noun()+" assignees")
	}
	item.AssigneeIDs = assignees

	return &item, nil
}
