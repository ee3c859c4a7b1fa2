// Package projects lists, creates and edits client projects.
package projects

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/apperror"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/store"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/telemetry"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	// MaxPage keeps the row offset within int32 at the largest page size.
	MaxPage = math.MaxInt32 / MaxPageSize

	maxTitleLength       = 100
	maxDescriptionLength = 5000
)

type Store interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetProjectDetail(ctx context.Context, id uuid.UUID) (*models.Project, error)
	UpdateOpenProject(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
	ListProjects(ctx context.Context, f store.ProjectFilter, limit, offset int) ([]models.Project, int64, error)
	ListProjectsByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error)
	ListBidsByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
	Categories() []string
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type Filter = store.ProjectFilter

type Page struct {
	Projects []models.Project `json:"projects"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Total    int64            `json:"total"`
	Pages    int              `json:"total_pages"`
}

// List returns one page of projects, newest first. Out-of-range paging
// arguments fall back to defaults.
func (s *Service) List(ctx context.Context, f Filter, page, pageSize int) (*Page, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "projects.List",
		trace.WithAttributes(attribute.Int("page", page)))
	defer span.End()

	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperror.Validation("validation error", apperror.FieldErrors{"status": {"is not a known status"}})
	}

	rows, total, err := s.store.ListProjects(ctx, f, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperror.Unavailable("list projects", err)
	}
	if rows == nil {
		rows = []models.Project{}
	}
	return &Page{
		Projects: rows,
		Page:     page,
		Limit:    pageSize,
		Total:    total,
		Pages:    int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Input is the client-writable part of a project.
type Input struct {
	Title       string
	Description string
	Category    string
	Skills      []string
	Budget      models.Budget
	Deadline    time.Time
}

func (in Input) normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	skills := make([]string, 0, len(in.Skills))
	for _, sk := range in.Skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}
	in.Skills = skills
	return in
}

func (in Input) validate() error {
	fields := apperror.FieldErrors{}
	switch n := utf8.RuneCountInString(in.Title); {
	case n == 0:
		fields.Add("title", "is required")
	case n > maxTitleLength:
		fields.Add("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}
	switch n := utf8.RuneCountInString(in.Description); {
	case n == 0:
		fields.Add("description", "is required")
	case n > maxDescriptionLength:
		fields.Add("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLength))
	}
	if !models.ValidCategory(in.Category) {
		fields.Add("category", "is not a known category")
	}
	if in.Budget.Min < 1 {
		fields.Add("budget.min", "must be at least 1")
	}
	if in.Budget.Max < in.Budget.Min {
		fields.Add("budget.max", "must not be below budget.min")
	}
	if in.Deadline.IsZero() {
		fields.Add("deadline", "is required")
	}
	if len(fields) > 0 {
		return apperror.Validation("validation error", fields)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, clientID uuid.UUID, in Input) (*models.Project, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := &models.Project{
		Title:       in.Title,
		Description: in.Description,
		ClientID:    clientID,
		Category:    in.Category,
		Skills:      in.Skills,
		Budget:      in.Budget,
		Deadline:    in.Deadline.UTC(),
		Status:      models.ProjectOpen,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, apperror.Unavailable("create project", err)
	}
	return s.loadDetail(ctx, p.ID)
}

type Detail struct {
	Project *models.Project `json:"project"`
	Bids    []models.Bid    `json:"bids"`
}

// Get returns a project with its bids, newest first.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	p, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	bids, err := s.store.ListBidsByProject(ctx, id)
	if err != nil {
		return nil, apperror.Unavailable("list bids", err)
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	return &Detail{Project: p, Bids: bids}, nil
}

// Update edits an open project owned by clientID.
func (s *Service) Update(ctx context.Context, id, clientID uuid.UUID, in Input) (*models.Project, error) {
	if err := s.authorize(ctx, id, clientID); err != nil {
		return nil, err
	}
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.store.UpdateOpenProject(ctx, id, map[string]any{
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"skills":      datatypes.JSONSlice[string](in.Skills),
		"budget_min":  in.Budget.Min,
		"budget_max":  in.Budget.Max,
		"deadline":    in.Deadline.UTC(),
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, apperror.NotFound("project not found")
	case errors.Is(err, store.ErrStateChanged):
		return nil, apperror.InvalidState("only open projects can be edited")
	case err != nil:
		return nil, apperror.Unavailable("update project", err)
	}
	return p, nil
}

// Delete removes a project owned by clientID together with its bids.
func (s *Service) Delete(ctx context.Context, id, clientID uuid.UUID) error {
	if err := s.authorize(ctx, id, clientID); err != nil {
		return err
	}
	err := s.store.DeleteProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound("project not found")
	}
	if err != nil {
		return apperror.Unavailable("delete project", err)
	}
	return nil
}

func (s *Service) ListMine(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	rows, err := s.store.ListProjectsByClient(ctx, clientID)
	if err != nil {
		return nil, apperror.Unavailable("list projects", err)
	}
	return rows, nil
}

func (s *Service) Categories() []string {
	return s.store.Categories()
}

func (s *Service) authorize(ctx context.Context, id, clientID uuid.UUID) error {
	p, err := s.store.GetProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound("project not found")
	}
	if err != nil {
		return apperror.Unavailable("load project", err)
	}
	if !p.OwnedBy(clientID) {
		return apperror.Forbidden("not the owner of this project")
	}
	return nil
}

func (s *Service) loadDetail(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := s.store.GetProjectDetail(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("project not found")
	}
	if err != nil {
		return nil, apperror.Unavailable("load project", err)
	}
	return p, nil
}
