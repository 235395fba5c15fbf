package services

import (
	"context"

	"github.com/anjiri1684/tutor_marketplace/models"
	"github.com/anjiri1684/tutor_marketplace/repository"
)

type DashboardStats struct {
	TotalUsers         int64                             `json:"totalUsers"`
	TotalStudents      int64                             `json:"totalStudents"`
	TotalTutors        int64                             `json:"totalTutors"`
	TotalAssignments   int64                             `json:"totalAssignments"`
	ActiveAssignments  int64                             `json:"activeAssignments"`
	PendingPayments    int64                             `json:"pendingPayments"`
	TotalRevenue       float64                           `json:"totalRevenue"`
	AssignmentsByState map[models.AssignmentStatus]int64 `json:"assignmentsByStatus"`
}

type DashboardService struct {
	store *repository.Store
}

func NewDashboardService(store *repository.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Stats reports platform counters. Revenue is the commission collected on
// succeeded payments.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	users, err := s.store.Users().CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.store.Assignments().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.store.Payments().SumPlatformFees(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalStudents:      users[models.RoleStudent],
		TotalTutors:        users[models.RoleTutor],
		ActiveAssignments:  assignments[models.StatusInProgress],
		PendingPayments:    assignments[models.StatusPaymentPending],
		TotalRevenue:       roundCents(revenue),
		AssignmentsByState: assignments,
	}
	for _, n := range users {
		stats.TotalUsers += n
	}
	for _, n := range assignments {
		stats.TotalAssignments += n
	}
	return stats, nil
}
