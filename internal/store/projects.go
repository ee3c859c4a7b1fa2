package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
)

// ProjectFilter narrows ListProjects. Zero values mean "no constraint".
type ProjectFilter struct {
	Status    models.ProjectStatus
	Category  string
	Search    string
	MinBudget float64
	MaxBudget float64
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	return translate("create project", s.conn(ctx).Create(p).Error)
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate("get project", err)
	}
	return &p, nil
}

// GetProjectDetail loads the project with its client and selected freelancer.
func (s *Store) GetProjectDetail(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := s.conn(ctx).
		Preload("Client").
		Preload("SelectedFreelancer").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate("get project detail", err)
	}
	return &p, nil
}

// UpdateOpenProject applies fields only while the project is still open.
// ErrNotFound means the project is gone, ErrStateChanged that it left open.
func (s *Store) UpdateOpenProject(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Project, error) {
	res := s.conn(ctx).Model(&models.Project{}).
		Where("id = ? AND status = ?", id, models.ProjectOpen).
		Updates(fields)
	if res.Error != nil {
		return nil, translate("update project", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetProject(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStateChanged
	}
	return s.GetProjectDetail(ctx, id)
}

// DeleteProject removes the project and its bids. Notifications keep their
// reference to the deleted project.
func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Bid{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return translate("delete project", err)
}

// ListProjects returns one page of matching projects, newest first, and the
// total number of matches.
func (s *Store) ListProjects(ctx context.Context, f ProjectFilter, limit, offset int) ([]models.Project, int64, error) {
	var total int64
	err := s.conn(ctx).Model(&models.Project{}).Scopes(f.apply).Count(&total).Error
	if err != nil {
		return nil, 0, translate("count projects", err)
	}

	var rows []models.Project
	err = s.conn(ctx).
		Scopes(f.apply).
		Preload("Client").
		Preload("SelectedFreelancer").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, translate("list projects", err)
	}
	return rows, total, nil
}

func (f ProjectFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
	}
	if f.MinBudget > 0 {
		q = q.Where("budget_min >= ?", f.MinBudget)
	}
	if f.MaxBudget > 0 {
		q = q.Where("budget_max <= ?", f.MaxBudget)
	}
	return q
}

func (s *Store) ListProjectsByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	var rows []models.Project
	err := s.conn(ctx).
		Preload("SelectedFreelancer").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate("list client projects", err)
	}
	return rows, nil
}

// Categories returns the fixed category list.
func (s *Store) Categories() []string {
	out := make([]string, len(models.Categories))
	copy(out, models.Categories)
	return out
}
