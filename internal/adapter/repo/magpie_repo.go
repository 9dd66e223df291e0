package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"scaler/internal/domain"
	"scaler/internal/infra"
	"scaler/internal/sqlinline"
)

const (
	defaultProductLimit  = 50
	defaultActivityLimit = 50
)

// MagpieRepositoryPG implements domain.MagpieRepository backed by the hosted
// PostgreSQL instance the research agents write into.
type MagpieRepositoryPG struct {
	db infra.SQLExecutor
}

// NewMagpieRepository constructs the repository.
func NewMagpieRepository(db infra.SQLExecutor) *MagpieRepositoryPG {
	return &MagpieRepositoryPG{db: db}
}

// ProductOpportunities lists scored products, highest score first.
func (r *MagpieRepositoryPG) ProductOpportunities(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultProductLimit
	}

	rows, err := r.db.Query(ctx, sqlinline.QListProductOpportunities, filter.MinScore, strings.TrimSpace(filter.Category), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Category,
			&p.Score,
			&p.Margin,
			&p.TrendingOn,
			&p.CreatedAt,
			&p.AirtableRecordID,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// AgentStatuses returns the latest reported status per agent.
func (r *MagpieRepositoryPG) AgentStatuses(ctx context.Context) ([]domain.Agent, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListAgentStatuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		var (
			a           domain.Agent
			status      string
			lastActive  *time.Time
			metricLabel *string
			metricValue *string
		)
		if err := rows.Scan(
			&a.ID,
			&a.Name,
			&a.Model,
			&a.Responsibility,
			&status,
			&a.CurrentTask,
			&lastActive,
			&metricLabel,
			&metricValue,
		); err != nil {
			return nil, err
		}
		a.Status = domain.AgentState(status)
		a.LastActive = lastActive
		if metricLabel != nil && metricValue != nil {
			a.Metric = &domain.AgentMetric{Label: *metricLabel, Value: *metricValue}
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// ActivityFeed lists activity events, newest first.
func (r *MagpieRepositoryPG) ActivityFeed(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityEvent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	rows, err := r.db.Query(ctx, sqlinline.QListActivityFeed, strings.TrimSpace(filter.Type), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.ActivityEvent, 0, limit)
	for rows.Next() {
		var e domain.ActivityEvent
		if err := rows.Scan(&e.ID, &e.Type, &e.Title, &e.Description, &e.AgentID, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// TrendingTopics lists collected trend observations, optionally filtered to
// one platform.
func (r *MagpieRepositoryPG) TrendingTopics(ctx context.Context, platform string) ([]domain.TrendPoint, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListTrendingTopics, strings.TrimSpace(platform))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []domain.TrendPoint
	for rows.Next() {
		var tp domain.TrendPoint
		if err := rows.Scan(&tp.Topic, &tp.Platform, &tp.Score, &tp.Velocity, &tp.CollectedAt); err != nil {
			return nil, err
		}
		trends = append(trends, tp)
	}
	return trends, rows.Err()
}

// DashboardStats aggregates the command-center headline numbers in one round
// trip.
func (r *MagpieRepositoryPG) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	row := r.db.QueryRow(ctx, sqlinline.QDashboardStats)

	var stats domain.DashboardStats
	if err := row.Scan(
		&stats.ActiveAgents,
		&stats.TotalAgents,
		&stats.HighScoreCount,
		&stats.ProductCount,
		&stats.ActivityLast24,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// AppendActivity records one event in the activity log.
func (r *MagpieRepositoryPG) AppendActivity(ctx context.Context, event domain.ActivityEvent) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertActivity,
		event.Type,
		event.Title,
		event.Description,
		event.AgentID,
		event.Source,
	)
	return err
}

var _ domain.MagpieRepository = (*MagpieRepositoryPG)(nil)
