package domain

import "time"

// Product is one scored product opportunity surfaced by the research agents.
type Product struct {
	ID               string
	Name             string
	Description      string
	Category         string
	Score            int
	Margin           float64
	TrendingOn       []string
	CreatedAt        time.Time
	AirtableRecordID string
}

// AgentState enumerates reported agent conditions.
type AgentState string

const (
	AgentActive  AgentState = "active"
	AgentIdle    AgentState = "idle"
	AgentBlocked AgentState = "blocked"
	AgentErrored AgentState = "error"
)

// AgentMetric is an optional headline metric an agent reports about itself.
type AgentMetric struct {
	Label string
	Value string
}

// Agent is the last reported status of one automation agent.
type Agent struct {
	ID             string
	Name           string
	Model          string
	Responsibility string
	Status         AgentState
	CurrentTask    string
	LastActive     *time.Time
	Metric         *AgentMetric
}

// ActivityEvent is one entry in the operations activity feed.
type ActivityEvent struct {
	ID          string
	Type        string
	Title       string
	Description string
	AgentID     string
	Source      string
	CreatedAt   time.Time
}

// TrendPoint is one collected trending-topic observation.
type TrendPoint struct {
	Topic       string
	Platform    string
	Score       int
	Velocity    string
	CollectedAt time.Time
}

// DashboardStats aggregates the command-center headline numbers.
type DashboardStats struct {
	ActiveAgents   int
	TotalAgents    int
	HighScoreCount int
	ProductCount   int
	ActivityLast24 int
}

// ProductFilter narrows a product opportunity listing.
type ProductFilter struct {
	MinScore int
	Category string
	Limit    int
}

// ActivityFilter narrows an activity feed listing.
type ActivityFilter struct {
	Type  string
	Limit int
}
