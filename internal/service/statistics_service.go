package service

import (
	"context"
	"time"

	"backend/internal/model"

	"gorm.io/gorm"
)

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.StatisticsResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetStatistics aggregates the proposal pipeline and lead funnel over a time range
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.StatisticsResponse, error) {
	var response model.StatisticsResponse
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate
	response.ProposalsByStatus = make(map[string]int64)

	// Proposal counts per status
	var statusCounts []struct {
		Status string
		Count  int64
	}
	s.db.WithContext(ctx).Table("proposals").
		Select("status, COUNT(*) as count").
		Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Group("status").
		Scan(&statusCounts)
	for _, sc := range statusCounts {
		response.ProposalsByStatus[sc.Status] = sc.Count
		response.TotalProposals += sc.Count
	}

	// Quoted value across the live pipeline; the amount lives inside the
	// document blob so it is cast out of jsonb.
	var quoted struct {
		Value float64
	}
	s.db.WithContext(ctx).Table("proposals").
		Select("COALESCE(SUM((proposal_data->>'quotedAmount')::numeric), 0) as value").
		Where("status IN ? AND created_at >= ? AND created_at <= ?",
			[]string{model.ProposalPending, model.ProposalApproved, model.ProposalSent}, startDate, endDate).
		Scan(&quoted)
	response.TotalQuotedValue = quoted.Value

	var accepted struct {
		Value float64
	}
	s.db.WithContext(ctx).Table("proposals").
		Select("COALESCE(SUM((proposal_data->>'quotedAmount')::numeric), 0) as value").
		Where("status = ? AND created_at >= ? AND created_at <= ?", model.ProposalAccepted, startDate, endDate).
		Scan(&accepted)
	response.TotalAcceptedValue = accepted.Value

	// Lead funnel
	var leadCounts []struct {
		Status string
		Count  int64
	}
	s.db.WithContext(ctx).Table("leads").
		Select("status, COUNT(*) as count").
		Where("created_at >= ? AND created_at <= ? AND deleted_at IS NULL", startDate, endDate).
		Group("status").
		Scan(&leadCounts)
	for _, lc := range leadCounts {
		switch lc.Status {
		case model.LeadPooled:
			response.LeadFunnel.Pooled = lc.Count
		case model.LeadClaimed:
			response.LeadFunnel.Claimed = lc.Count
		case model.LeadConverted:
			response.LeadFunnel.Converted = lc.Count
		case model.LeadDropped:
			response.LeadFunnel.Dropped = lc.Count
		}
	}
	if resolved := response.LeadFunnel.Converted + response.LeadFunnel.Dropped; resolved > 0 {
		response.LeadFunnel.ConversionRate = float64(response.LeadFunnel.Converted) / float64(resolved)
	}

	// Inquiry totals
	s.db.WithContext(ctx).Table("inquiries").
		Where("created_at >= ? AND created_at <= ? AND deleted_at IS NULL", startDate, endDate).
		Count(&response.TotalInquiries)
	s.db.WithContext(ctx).Table("inquiries").
		Where("status <> ? AND created_at >= ? AND created_at <= ? AND deleted_at IS NULL", model.InquiryClosed, startDate, endDate).
		Count(&response.OpenInquiries)

	// Top sales users by accepted proposal value
	var topSales []model.SalesRanking
	s.db.WithContext(ctx).Table("proposals").
		Select("users.id as user_id, users.username as username, COUNT(proposals.id) as proposal_count, COALESCE(SUM((proposals.proposal_data->>'quotedAmount')::numeric), 0) as accepted_value").
		Joins("JOIN users ON users.id = proposals.created_by").
		Where("proposals.status = ? AND proposals.created_at >= ? AND proposals.created_at <= ?", model.ProposalAccepted, startDate, endDate).
		Group("users.id, users.username").
		Order("accepted_value DESC").
		Limit(5).
		Scan(&topSales)
	response.TopSalesUsers = topSales

	return response, nil
}
