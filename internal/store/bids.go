package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
)

func (s *Store) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var b models.Bid
	if err := s.conn(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate("get bid", err)
	}
	return &b, nil
}

// GetBidWithFreelancer loads a bid with the bidder's profile.
func (s *Store) GetBidWithFreelancer(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var b models.Bid
	if err := s.conn(ctx).Preload("Freelancer").First(&b, "id = ?", id).Error; err != nil {
		return nil, translate("get bid", err)
	}
	return &b, nil
}

// ListBidsByProject returns every bid on a project, newest first.
func (s *Store) ListBidsByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	var rows []models.Bid
	err := s.conn(ctx).
		Preload("Freelancer").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate("list project bids", err)
	}
	return rows, nil
}

func (s *Store) ListBidsByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	var rows []models.Bid
	err := s.conn(ctx).
		Preload("Project").
		Preload("Project.Client").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, translate("list freelancer bids", err)
	}
	return rows, nil
}

// CreateBidForOpenProject inserts b and bumps the project's bid counter in one
// transaction. The counter update only matches an open project, so a project
// that closed in the meantime rolls the insert back with ErrStateChanged.
func (s *Store) CreateBidForOpenProject(ctx context.Context, b *models.Bid) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Project{}).
			Where("id = ? AND status = ?", b.ProjectID, models.ProjectOpen).
			Update("bid_count", gorm.Expr("bid_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStateChanged
		}
		return nil
	})
	return translate("create bid", err)
}

// SelectBid moves the project to in-progress with the bid's freelancer,
// accepts the bid and rejects every other pending bid, atomically. Both guards
// are conditional updates and nothing is written when one misses: a project
// that is no longer open yields ErrStateChanged, a bid that is no longer
// pending yields ErrBidNotPending.
func (s *Store) SelectBid(ctx context.Context, projectID, bidID, freelancerID uuid.UUID) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).
			Where("id = ? AND status = ?", projectID, models.ProjectOpen).
			Updates(map[string]any{
				"status":                 models.ProjectInProgress,
				"selected_freelancer_id": freelancerID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStateChanged
		}

		res = tx.Model(&models.Bid{}).
			Where("id = ? AND project_id = ? AND status = ?", bidID, projectID, models.BidPending).
			Update("status", models.BidAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBidNotPending
		}

		return tx.Model(&models.Bid{}).
			Where("project_id = ? AND id <> ? AND status = ?", projectID, bidID, models.BidPending).
			Update("status", models.BidRejected).Error
	})
	return translate("select bid", err)
}
