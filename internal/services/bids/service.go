// Package bids accepts freelancer bids on open projects.
package bids

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/apperror"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/notifications"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/store"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/telemetry"
)

type Store interface {
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateBidForOpenProject(ctx context.Context, b *models.Bid) error
	GetBidWithFreelancer(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListBidsByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
	ListBidsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error)
}

type Notifier interface {
	Notify(ctx context.Context, in notifications.Input) (*models.Notification, error)
}

type Service struct {
	store    Store
	notifier Notifier
	pub      realtime.Publisher
}

func NewService(store Store, notifier Notifier, pub realtime.Publisher) *Service {
	return &Service{store: store, notifier: notifier, pub: pub}
}

type SubmitInput struct {
	ProjectID    uuid.UUID
	FreelancerID uuid.UUID
	Amount       float64
	DeliveryDays int
	Proposal     string
}

func (in SubmitInput) validate() error {
	fields := apperror.FieldErrors{}
	if in.ProjectID == uuid.Nil {
		fields.Add("projectId", "is required")
	}
	if math.IsNaN(in.Amount) || in.Amount < 1 {
		fields.Add("amount", "must be at least 1")
	}
	if in.DeliveryDays < 1 {
		fields.Add("deliveryDays", "must be at least 1 day")
	}
	proposal := strings.TrimSpace(in.Proposal)
	switch {
	case proposal == "":
		fields.Add("proposal", "is required")
	case utf8.RuneCountInString(proposal) > models.MaxProposalLength:
		fields.Add("proposal", fmt.Sprintf("must be at most %d characters", models.MaxProposalLength))
	}
	if len(fields) > 0 {
		return apperror.Validation("validation error", fields)
	}
	return nil
}

// NewBidEvent is pushed to a project's watchers when a bid lands.
type NewBidEvent struct {
	Bid *models.Bid `json:"bid"`
}

// Submit records a bid by a freelancer on an open project, bumps the
// project's bid counter and tells the client.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.Bid, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "bids.Submit",
		trace.WithAttributes(
			attribute.String("project.id", in.ProjectID.String()),
			attribute.String("freelancer.id", in.FreelancerID.String()),
		))
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	project, err := s.store.GetProject(ctx, in.ProjectID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("project not found")
	}
	if err != nil {
		return nil, apperror.Unavailable("load project", err)
	}
	if project.OwnedBy(in.FreelancerID) {
		return nil, apperror.Forbidden("cannot bid on own project")
	}
	if !project.AcceptsBids() {
		return nil, apperror.InvalidState("project is not accepting bids")
	}

	freelancer, err := s.store.GetUser(ctx, in.FreelancerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, apperror.Unavailable("load freelancer", err)
	}

	bid := &models.Bid{
		ProjectID:    project.ID,
		FreelancerID: freelancer.ID,
		Amount:       in.Amount,
		DeliveryDays: in.DeliveryDays,
		Proposal:     strings.TrimSpace(in.Proposal),
		Status:       models.BidPending,
	}
	switch err := s.store.CreateBidForOpenProject(ctx, bid); {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperror.Conflict("already bid on this project")
	case errors.Is(err, store.ErrStateChanged):
		return nil, apperror.InvalidState("project is not accepting bids")
	case err != nil:
		span.RecordError(err)
		return nil, apperror.Transient("could not store bid", err)
	}

	if full, err := s.store.GetBidWithFreelancer(ctx, bid.ID); err == nil {
		bid = full
	} else {
		log.Printf("[bids] reload bid %s: %v", bid.ID, err)
		bid.Freelancer = freelancer
	}

	_, err = s.notifier.Notify(ctx, notifications.Input{
		UserID:           project.ClientID,
		Type:             models.NotificationNewBid,
		Title:            "New Bid Received",
		Message:          fmt.Sprintf("%s placed a $%s bid on \"%s\"", freelancer.Name, FormatAmount(bid.Amount), project.Title),
		RelatedProjectID: &project.ID,
	})
	if err != nil {
		log.Printf("[bids] notify client %s of bid %s: %v", project.ClientID, bid.ID, err)
	}

	if err := s.pub.Publish(ctx, realtime.ProjectTopic(project.ID), realtime.EventNewBid, NewBidEvent{Bid: bid}); err != nil {
		log.Printf("[bids] publish new bid on project %s: %v", project.ID, err)
	}

	return bid, nil
}

// ListForProject returns the bids on a project, newest first.
func (s *Service) ListForProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("project not found")
		}
		return nil, apperror.Unavailable("load project", err)
	}
	rows, err := s.store.ListBidsByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Unavailable("list bids", err)
	}
	return rows, nil
}

// ListMine returns a freelancer's bids with their projects, newest first.
func (s *Service) ListMine(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	rows, err := s.store.ListBidsByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, apperror.Unavailable("list bids", err)
	}
	return rows, nil
}

var printer = message.NewPrinter(language.English)

// FormatAmount renders a money amount with English digit grouping, dropping
// the cents when there are none.
func FormatAmount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.2f", v)
}
