package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/freelance_be/internal/models"
)

type ClientStats struct {
	TotalProjects      int64 `json:"total_projects"`
	OpenProjects       int64 `json:"open_projects"`
	InProgressProjects int64 `json:"in_progress_projects"`
	CompletedProjects  int64 `json:"completed_projects"`
	BidsReceived       int64 `json:"bids_received"`
}

type FreelancerStats struct {
	TotalBids      int64 `json:"total_bids"`
	PendingBids    int64 `json:"pending_bids"`
	AcceptedBids   int64 `json:"accepted_bids"`
	RejectedBids   int64 `json:"rejected_bids"`
	ActiveProjects int64 `json:"active_projects"`
}

type statusCount struct {
	Status string
	Total  int64
}

func (s *Store) ClientStats(ctx context.Context, clientID uuid.UUID) (ClientStats, error) {
	var out ClientStats

	var counts []statusCount
	err := s.conn(ctx).Model(&models.Project{}).
		Select("status, COUNT(*) AS total").
		Where("client_id = ?", clientID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return out, translate("client stats", err)
	}
	for _, c := range counts {
		out.TotalProjects += c.Total
		switch models.ProjectStatus(c.Status) {
		case models.ProjectOpen:
			out.OpenProjects = c.Total
		case models.ProjectInProgress:
			out.InProgressProjects = c.Total
		case models.ProjectCompleted:
			out.CompletedProjects = c.Total
		}
	}

	var received struct{ Total int64 }
	err = s.conn(ctx).Model(&models.Project{}).
		Select("COALESCE(SUM(bid_count), 0) AS total").
		Where("client_id = ?", clientID).
		Scan(&received).Error
	if err != nil {
		return out, translate("client stats", err)
	}
	out.BidsReceived = received.Total
	return out, nil
}

func (s *Store) FreelancerStats(ctx context.Context, freelancerID uuid.UUID) (FreelancerStats, error) {
	var out FreelancerStats

	var counts []statusCount
	err := s.conn(ctx).Model(&models.Bid{}).
		Select("status, COUNT(*) AS total").
		Where("freelancer_id = ?", freelancerID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return out, translate("freelancer stats", err)
	}
	for _, c := range counts {
		out.TotalBids += c.Total
		switch models.BidStatus(c.Status) {
		case models.BidPending:
			out.PendingBids = c.Total
		case models.BidAccepted:
			out.AcceptedBids = c.Total
		case models.BidRejected:
			out.RejectedBids = c.Total
		}
	}

	err = s.conn(ctx).Model(&models.Project{}).
		Where("selected_freelancer_id = ? AND status = ?", freelancerID, models.ProjectInProgress).
		Count(&out.ActiveProjects).Error
	if err != nil {
		return out, translate("freelancer stats", err)
	}
	return out, nil
}
