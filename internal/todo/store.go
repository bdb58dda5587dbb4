package todo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/raminkz/gotodo/internal/database/models"
	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

// Store is the task repository. Handlers never touch gorm for tasks
// directly; everything goes through here.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ListParams narrows and orders the task list. Zero values mean "no
// filter". Search matches a substring of the title or the owner's email.
type ListParams struct {
	OwnerID  uuid.UUID
	Title    string
	Search   string
	Ordering string
	Offset   int
	Limit    int
}

var orderings = map[string]string{
	"created_at":  "tasks.created_at ASC",
	"-created_at": "tasks.created_at DESC",
	"owner":       "tasks.profile_id ASC",
	"-owner":      "tasks.profile_id DESC",
}

func (s *Store) List(ctx context.Context, params ListParams) ([]models.Task, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Task{})

	if params.OwnerID != uuid.Nil {
		query = query.Where("tasks.profile_id = ?", params.OwnerID)
	}
	if params.Title != "" {
		query = query.Where("tasks.title = ?", params.Title)
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		query = query.
			Joins("JOIN profiles ON profiles.id = tasks.profile_id").
			Joins("JOIN users ON users.id = profiles.user_id").
			Where("tasks.title LIKE ? OR users.email LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := orderings[params.Ordering]
	if !ok {
		order = orderings["-created_at"]
	}

	var tasks []models.Task
	err := query.
		Order(order).
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Get loads a task with its owning profile so callers can resolve the
// owner's user in one read.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).
		Preload("Profile").
		First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *Store) Create(ctx context.Context, profileID uuid.UUID, title string) (*models.Task, error) {
	task := models.Task{
		ProfileID: profileID,
		Title:     title,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update writes title and complete back. Last writer wins; there is no
// optimistic concurrency check on the row.
func (s *Store) Update(ctx context.Context, task *models.Task) error {
	return s.db.WithContext(ctx).
		Model(task).
		Updates(map[string]interface{}{
			"title":    task.Title,
			"complete": task.Complete,
		}).Error
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// PurgeCompleted removes every completed task and reports how many rows
// went away. Safe to run with nothing to do.
func (s *Store) PurgeCompleted(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("complete = ?", true).
		Delete(&models.Task{})
	return res.RowsAffected, res.Error
}
