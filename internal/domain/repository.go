package domain

import "context"

// MagpieRepository reads and appends command-center telemetry. The backing
// store is the hosted Postgres instance shared with the research agents.
type MagpieRepository interface {
	ProductOpportunities(ctx context.Context, filter ProductFilter) ([]Product, error)
	AgentStatuses(ctx context.Context) ([]Agent, error)
	ActivityFeed(ctx context.Context, filter ActivityFilter) ([]ActivityEvent, error)
	TrendingTopics(ctx context.Context, platform string) ([]TrendPoint, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	AppendActivity(ctx context.Context, event ActivityEvent) error
}
