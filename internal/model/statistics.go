package model

import (
	"time"
)

// StatisticsResponse aggregates proposal pipeline and lead funnel metrics
type StatisticsResponse struct {
	ProposalsByStatus  map[string]int64 `json:"proposals_by_status"`
	TotalProposals     int64            `json:"total_proposals"`
	TotalQuotedValue   float64          `json:"total_quoted_value"`   // pending + approved + sent
	TotalAcceptedValue float64          `json:"total_accepted_value"` // accepted only
	LeadFunnel         LeadFunnel       `json:"lead_funnel"`
	TotalInquiries     int64            `json:"total_inquiries"`
	OpenInquiries      int64            `json:"open_inquiries"` // not CLOSED
	TopSalesUsers      []SalesRanking   `json:"top_sales_users"`
	TimeRangeStartDate time.Time        `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time        `json:"time_range_end_date"`
}

// LeadFunnel counts leads at each pool stage within the time range
type LeadFunnel struct {
	Pooled         int64   `json:"pooled"`
	Claimed        int64   `json:"claimed"`
	Converted      int64   `json:"converted"`
	Dropped        int64   `json:"dropped"`
	ConversionRate float64 `json:"conversion_rate"` // converted / (converted + dropped)
}

// SalesRanking represents a sales user ranked by accepted proposal value
type SalesRanking struct {
	UserID        string  `json:"user_id"`
	Username      string  `json:"username"`
	ProposalCount int64   `json:"proposal_count"`
	AcceptedValue float64 `json:"accepted_value"`
}
