// Package accounts manages sign-up, sign-in and user profiles.
package accounts

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/apperror"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/store"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/utils"
)

const (
	maxNameLength     = 50
	maxBioLength      = 500
	minPasswordLength = 6
)

type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.User, error)
	ClientStats(ctx context.Context, clientID uuid.UUID) (store.ClientStats, error)
	FreelancerStats(ctx context.Context, freelancerID uuid.UUID) (store.FreelancerStats, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := models.Role(strings.ToLower(strings.TrimSpace(in.Role)))

	fields := apperror.FieldErrors{}
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		fields.Add("name", "is required")
	case n > maxNameLength:
		fields.Add("name", "must be at most 50 characters")
	}
	if email == "" {
		fields.Add("email", "is required")
	} else if !strings.Contains(email, "@") {
		fields.Add("email", "is not a valid email")
	}
	if len(in.Password) < minPasswordLength {
		fields.Add("password", "must be at least 6 characters")
	}
	if !role.Valid() {
		fields.Add("role", "must be client or freelancer")
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("validation error", fields)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}

	u := &models.User{
		Name:         name,
		Email:        email,
		Password:     hash,
		AuthProvider: models.AuthLocal,
		Role:         role,
		IsActive:     true,
	}
	switch err := s.store.CreateUser(ctx, u); {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperror.Conflict("email already registered")
	case err != nil:
		return nil, apperror.Unavailable("create user", err)
	}
	return u, nil
}

// Authenticate checks an email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, apperror.Unavailable("load user", err)
	}
	if u.Password == "" && u.AuthProvider == models.AuthGoogle {
		return nil, apperror.Unauthorized("this account uses Google sign-in")
	}
	if !utils.CheckPassword(u.Password, password) {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if !u.IsActive {
		return nil, apperror.Forbidden("account inactive")
	}
	return u, nil
}

type GoogleProfile struct {
	GoogleID string
	Email    string
	Name     string
	Avatar   string
}

// UpsertGoogleUser finds the account behind a Google identity, linking an
// existing local account with the same email, or creates one with role.
func (s *Service) UpsertGoogleUser(ctx context.Context, p GoogleProfile, role models.Role) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if p.GoogleID == "" || email == "" {
		return nil, apperror.Validation("google profile is missing id or email", nil)
	}

	u, err := s.store.GetUserByGoogleID(ctx, p.GoogleID)
	if err == nil {
		return active(u)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperror.Unavailable("load user", err)
	}

	u, err = s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		fields := map[string]any{"google_id": p.GoogleID}
		if u.Avatar == "" && p.Avatar != "" {
			fields["avatar"] = p.Avatar
		}
		u, err = s.store.UpdateUser(ctx, u.ID, fields)
		if err != nil {
			return nil, apperror.Unavailable("link google account", err)
		}
		return active(u)
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperror.Unavailable("load user", err)
	}

	if !role.Valid() {
		role = models.RoleClient
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	googleID := p.GoogleID
	u = &models.User{
		Name:         name,
		Email:        email,
		GoogleID:     &googleID,
		AuthProvider: models.AuthGoogle,
		Role:         role,
		IsActive:     true,
		Avatar:       p.Avatar,
	}
	switch err := s.store.CreateUser(ctx, u); {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperror.Conflict("account already exists")
	case err != nil:
		return nil, apperror.Unavailable("create user", err)
	}
	return u, nil
}

func active(u *models.User) (*models.User, error) {
	if !u.IsActive {
		return nil, apperror.Forbidden("account inactive")
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, apperror.Unavailable("load user", err)
	}
	return u, nil
}

// ProfileInput holds the profile fields a user may change. Nil means keep.
type ProfileInput struct {
	Name       *string
	Bio        *string
	Skills     []string
	Portfolio  []models.PortfolioItem
	HourlyRate *float64
	Location   *string
	Avatar     *string
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileInput) (*models.User, error) {
	fields := map[string]any{}
	errs := apperror.FieldErrors{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLength {
			errs.Add("name", "must be between 1 and 50 characters")
		}
		fields["name"] = name
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if utf8.RuneCountInString(bio) > maxBioLength {
			errs.Add("bio", "must be at most 500 characters")
		}
		fields["bio"] = bio
	}
	if in.Skills != nil {
		fields["skills"] = datatypes.JSONSlice[string](in.Skills)
	}
	if in.Portfolio != nil {
		fields["portfolio"] = datatypes.JSONSlice[models.PortfolioItem](in.Portfolio)
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < 0 {
			errs.Add("hourlyRate", "must not be negative")
		}
		fields["hourly_rate"] = *in.HourlyRate
	}
	if in.Location != nil {
		fields["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Avatar != nil {
		fields["avatar"] = strings.TrimSpace(*in.Avatar)
	}
	if len(errs) > 0 {
		return nil, apperror.Validation("validation error", errs)
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	u, err := s.store.UpdateUser(ctx, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, apperror.Unavailable("update profile", err)
	}
	return u, nil
}

type Dashboard struct {
	Role       models.Role            `json:"role"`
	Client     *store.ClientStats     `json:"client,omitempty"`
	Freelancer *store.FreelancerStats `json:"freelancer,omitempty"`
}

// Dashboard summarises the user's activity according to their role.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Role: u.Role}
	switch u.Role {
	case models.RoleClient:
		stats, err := s.store.ClientStats(ctx, u.ID)
		if err != nil {
			return nil, apperror.Unavailable("client stats", err)
		}
		d.Client = &stats
	case models.RoleFreelancer:
		stats, err := s.store.FreelancerStats(ctx, u.ID)
		if err != nil {
			return nil, apperror.Unavailable("freelancer stats", err)
		}
		d.Freelancer = &stats
	}
	return d, nil
}
