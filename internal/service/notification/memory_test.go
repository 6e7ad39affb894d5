package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/showrunner/notification-api/internal/model"
	apperrors "github.com/showrunner/notification-api/pkg/errors"
)

// memRepo is an in-memory NotificationRepository with the same semantics as
// the postgres implementation, including COALESCE read_at behavior.
type memRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.Notification
	seq     int
	// failFor simulates per-recipient write failures during fan-out
	failFor map[uuid.UUID]error
}

func newMemRepo() *memRepo {
	return &memRepo{
		records: make(map[uuid.UUID]*model.Notification),
		failFor: make(map[uuid.UUID]error),
	}
}

func (r *memRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.failFor[n.RecipientID]; ok {
		return err
	}

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.seq++
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Millisecond)
	n.CreatedAt = created
	n.UpdatedAt = created
	n.Read = false
	n.ReadAt = nil

	r.records[n.ID] = n
	return nil
}

func (r *memRepo) CreateBatch(ctx context.Context, ns []*model.Notification) error {
	for _, n := range ns {
		if err := r.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *memRepo) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.records[id]
	if !ok {
		return nil, apperrors.NewNotFound("notification", nil)
	}
	return n, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return apperrors.NewNotFound("notification", nil)
	}
	delete(r.records, id)
	return nil
}

func (r *memRepo) matching(filter *model.NotificationFilter) []*model.Notification {
	var out []*model.Notification
	for _, n := range r.records {
		if n.RecipientID != filter.RecipientID {
			continue
		}
		if filter.ProjectID != nil && (n.ProjectID == nil || *n.ProjectID != *filter.ProjectID) {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memRepo) List(_ context.Context, filter *model.NotificationFilter) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := r.matching(filter)
	offset := filter.Offset()
	if offset >= len(matched) {
		return []*model.Notification{}, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *memRepo) Count(_ context.Context, filter *model.NotificationFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matching(filter)), nil
}

func (r *memRepo) UnreadCount(_ context.Context, recipientID uuid.UUID, projectID *uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.records {
		if n.RecipientID != recipientID || n.Read {
			continue
		}
		if projectID != nil && (n.ProjectID == nil || *n.ProjectID != *projectID) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *memRepo) MarkRead(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.records[id]
	if !ok {
		return nil, apperrors.NewNotFound("notification", nil)
	}
	if !n.Read {
		now := time.Now()
		n.Read = true
		n.ReadAt = &now
		n.UpdatedAt = now
	}
	return n, nil
}

func (r *memRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID, projectID *uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var modified int64
	now := time.Now()
	for _, n := range r.records {
		if n.RecipientID != recipientID || n.Read {
			continue
		}
		if projectID != nil && (n.ProjectID == nil || *n.ProjectID != *projectID) {
			continue
		}
		n.Read = true
		n.ReadAt = &now
		n.UpdatedAt = now
		modified++
	}
	return modified, nil
}

// memDirectory is an in-memory user directory
type memDirectory struct {
	users   map[uuid.UUID]*model.User
	members map[uuid.UUID][]*model.User
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		users:   make(map[uuid.UUID]*model.User),
		members: make(map[uuid.UUID][]*model.User),
	}
}

func (d *memDirectory) addUser(id uuid.UUID) *model.User {
	u := &model.User{ID: id, Username: "user-" + id.String()[:8]}
	d.users[id] = u
	return u
}

func (d *memDirectory) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	return u, nil
}

func (d *memDirectory) ListProjectMembers(_ context.Context, projectID uuid.UUID) ([]*model.User, error) {
	return d.members[projectID], nil
}

// memSchedule is an in-memory schedule item source
type memSchedule struct {
	items map[uuid.UUID]*model.ScheduleItem
}

func newMemSchedule() *memSchedule {
	return &memSchedule{items: make(map[uuid.UUID]*model.ScheduleItem)}
}

func (s *memSchedule) GetItem(_ context.Context, id uuid.UUID, kind model.ItemKind) (*model.ScheduleItem, error) {
	if !kind.Valid() {
		return nil, apperrors.NewValidation("itemType must be 'scene' or 'task'", nil)
	}
	item, ok := s.items[id]
	if !ok || item.Kind != kind {
		return nil, apperrors.NewNotFound(kind.Noun(), nil)
	}
	return item, nil
}
