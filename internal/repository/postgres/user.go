package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/showrunner/notification-api/internal/model"
	"github.com/showrunner/notification-api/internal/repository"
)

// userRepository reads from the user directory tables owned by the main
// application. The notification service never writes to them.
type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, username, email, created_at FROM users
		WHERE id = $1
	`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, translateError(err, "user")
	}

	return &user, nil
}

func (r *userRepository) ListProjectMembers(ctx context.Context, projectID uuid.UUID) ([]*model.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.created_at
		FROM users u
		JOIN project_members pm ON u.id = pm.user_id
		WHERE pm.project_id = $1
		ORDER BY u.username
	`

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, projectID); err != nil {
		return nil, translateError(err, "project members")
	}

	return users, nil
}
