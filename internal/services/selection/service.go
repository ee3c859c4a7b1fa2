// Package selection lets a client pick the winning bid on an open project.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/apperror"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/services/notifications"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/store"
	"github.com/Windi-Fikriyansyah/freelance_be/internal/telemetry"
)

type Store interface {
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetProjectDetail(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListBidsByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
	SelectBid(ctx context.Context, projectID, bidID, freelancerID uuid.UUID) error
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

// SelectedEvent is pushed to a project's watchers once a freelancer is chosen.
type SelectedEvent struct {
	Project       *models.Project `json:"project"`
	SelectedBidID uuid.UUID       `json:"selectedBidId"`
}

// SelectFreelancer accepts bidID on the client's open project, rejects the
// other pending bids and moves the project to in-progress. Everyone who bid
// is told the outcome.
func (s *Service) SelectFreelancer(ctx context.Context, projectID, clientID, bidID uuid.UUID) (*models.Project, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "selection.SelectFreelancer",
		trace.WithAttributes(
			attribute.String("project.id", projectID.String()),
			attribute.String("bid.id", bidID.String()),
		))
	defer span.End()

	project, err := s.store.GetProject(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("project not found")
	}
	if err != nil {
		return nil, apperror.Unavailable("load project", err)
	}
	if !project.OwnedBy(clientID) {
		return nil, apperror.Forbidden("only the project owner can select a freelancer")
	}

	bid, err := s.store.GetBid(ctx, bidID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && bid.ProjectID != project.ID) {
		return nil, apperror.NotFound("bid not found")
	}
	if err != nil {
		return nil, apperror.Unavailable("load bid", err)
	}
	if !project.AcceptsBids() {
		return nil, apperror.InvalidState("freelancer already selected")
	}
	if bid.Status != models.BidPending {
		return nil, apperror.InvalidState("bid is no longer pending")
	}

	switch err := s.store.SelectBid(ctx, project.ID, bid.ID, bid.FreelancerID); {
	case errors.Is(err, store.ErrStateChanged):
		return nil, apperror.InvalidState("freelancer already selected")
	case errors.Is(err, store.ErrBidNotPending):
		return nil, apperror.InvalidState("bid is no longer pending")
	case err != nil:
		span.RecordError(err)
		return nil, apperror.Transient("could not select freelancer", err)
	}

	// The selection is committed from here on; nothing below may fail the call.
	s.announce(ctx, project, bid)

	detail, err := s.store.GetProjectDetail(ctx, project.ID)
	if err != nil {
		log.Printf("[selection] reload project %s: %v", project.ID, err)
		detail = selected(project, bid)
	}

	if err := s.pub.Publish(ctx, realtime.ProjectTopic(project.ID), realtime.EventFreelancerSelected, SelectedEvent{
		Project:       detail,
		SelectedBidID: bid.ID,
	}); err != nil {
		log.Printf("[selection] publish selection on project %s: %v", project.ID, err)
	}
	return detail, nil
}

// announce notifies the winner and every other bidder. Failures are logged.
func (s *Service) announce(ctx context.Context, project *models.Project, winner *models.Bid) {
	s.notify(ctx, notifications.Input{
		UserID:           winner.FreelancerID,
		Type:             models.NotificationBidAccepted,
		Title:            "Bid Accepted!",
		Message:          fmt.Sprintf("Your bid on \"%s\" has been accepted!", project.Title),
		RelatedProjectID: &project.ID,
	})

	others, err := s.store.ListBidsByProject(ctx, project.ID)
	if err != nil {
		log.Printf("[selection] list bids of project %s: %v", project.ID, err)
		return
	}
	for _, b := range others {
		if b.ID == winner.ID {
			continue
		}
		s.notify(ctx, notifications.Input{
			UserID:           b.FreelancerID,
			Type:             models.NotificationBidRejected,
			Title:            "Bid Update",
			Message:          fmt.Sprintf("Another freelancer was selected for \"%s\".", project.Title),
			RelatedProjectID: &project.ID,
		})
	}
}

func (s *Service) notify(ctx context.Context, in notifications.Input) {
	if _, err := s.notifier.Notify(ctx, in); err != nil {
		log.Printf("[selection] notify user %s (%s): %v", in.UserID, in.Type, err)
	}
}

// selected is project as SelectBid left it, for when it cannot be reloaded.
func selected(project *models.Project, bid *models.Bid) *models.Project {
	p := *project
	p.Status = models.ProjectInProgress
	p.SelectedFreelancerID = &bid.FreelancerID
	return &p
}
