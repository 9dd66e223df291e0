package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scaler/internal/domain"
	"scaler/internal/middleware"
)

// Products lists scored product opportunities. Results are cached per filter
// combination so dashboard refreshes do not hammer the shared database.
func (a *App) Products(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{
		MinScore: queryInt(r, "minScore", 0),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Limit:    queryInt(r, "limit", 0),
	}

	key := "products:" + strconv.Itoa(filter.MinScore) + ":" + filter.Category + ":" + strconv.Itoa(filter.Limit)
	products, err := cached(a, key, productsTTL, func() ([]domain.Product, error) {
		return a.Repo.ProductOpportunities(r.Context(), filter)
	})
	if err != nil {
		a.providerError(w, err)
		return
	}

	items := make([]map[string]any, len(products))
	for i, p := range products {
		items[i] = map[string]any{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"category":    p.Category,
			"score":       p.Score,
			"margin":      p.Margin,
			"trendingOn":  p.TrendingOn,
			"createdAt":   p.CreatedAt,
		}
		if p.AirtableRecordID != "" {
			items[i]["airtableRecordId"] = p.AirtableRecordID
		}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// Agents reports the latest known status of every automation agent.
func (a *App) Agents(w http.ResponseWriter, r *http.Request) {
	agents, err := cached(a, "agents", agentsTTL, func() ([]domain.Agent, error) {
		return a.Repo.AgentStatuses(r.Context())
	})
	if err != nil {
		a.providerError(w, err)
		return
	}

	items := make([]map[string]any, len(agents))
	for i, agent := range agents {
		entry := map[string]any{
			"id":             agent.ID,
			"name":           agent.Name,
			"model":          agent.Model,
			"responsibility": agent.Responsibility,
			"status":         string(agent.Status),
			"currentTask":    agent.CurrentTask,
		}
		if agent.LastActive != nil {
			entry["lastActive"] = agent.LastActive
		}
		if agent.Metric != nil {
			entry["metric"] = map[string]string{"label": agent.Metric.Label, "value": agent.Metric.Value}
		}
		items[i] = entry
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// Activity lists the operations activity feed, newest first.
func (a *App) Activity(w http.ResponseWriter, r *http.Request) {
	filter := domain.ActivityFilter{
		Type:  strings.TrimSpace(r.URL.Query().Get("type")),
		Limit: queryInt(r, "limit", 0),
	}

	key := "activity:" + filter.Type + ":" + strconv.Itoa(filter.Limit)
	events, err := cached(a, key, activityTTL, func() ([]domain.ActivityEvent, error) {
		return a.Repo.ActivityFeed(r.Context(), filter)
	})
	if err != nil {
		a.providerError(w, err)
		return
	}

	items := make([]map[string]any, len(events))
	for i, e := range events {
		items[i] = map[string]any{
			"id":          e.ID,
			"type":        e.Type,
			"title":       e.Title,
			"description": e.Description,
			"agentId":     e.AgentID,
			"source":      e.Source,
			"createdAt":   e.CreatedAt,
		}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

type activityRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AgentID     string `json:"agentId"`
}

// ActivityCreate appends an event to the activity log. The event source is
// stamped with the request's resolved country when available.
func (a *App) ActivityCreate(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Type) == "" || strings.TrimSpace(req.Title) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "type and title are required")
		return
	}

	source := "dashboard"
	if country := middleware.CountryFromContext(r.Context()); country != "" {
		source = "dashboard:" + country
	}
	err := a.Repo.AppendActivity(r.Context(), domain.ActivityEvent{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		AgentID:     req.AgentID,
		Source:      source,
	})
	if err != nil {
		a.providerError(w, err)
		return
	}

	// New events make every cached feed page stale.
	a.Cache.Flush()
	a.json(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// Trends lists collected trending-topic observations.
func (a *App) Trends(w http.ResponseWriter, r *http.Request) {
	platform := strings.TrimSpace(r.URL.Query().Get("platform"))

	trends, err := cached(a, "trends:"+platform, trendsTTL, func() ([]domain.TrendPoint, error) {
		return a.Repo.TrendingTopics(r.Context(), platform)
	})
	if err != nil {
		a.providerError(w, err)
		return
	}

	items := make([]map[string]any, len(trends))
	for i, tp := range trends {
		items[i] = map[string]any{
			"topic":       tp.Topic,
			"platform":    tp.Platform,
			"score":       tp.Score,
			"velocity":    tp.Velocity,
			"collectedAt": tp.CollectedAt,
		}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// Stats returns the command-center headline numbers.
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := cached(a, "stats", statsTTL, func() (*domain.DashboardStats, error) {
		return a.Repo.DashboardStats(r.Context())
	})
	if err != nil {
		a.providerError(w, err)
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"activeAgents":   stats.ActiveAgents,
		"totalAgents":    stats.TotalAgents,
		"highScoreCount": stats.HighScoreCount,
		"productCount":   stats.ProductCount,
		"activityLast24": stats.ActivityLast24,
		"generatedAt":    time.Now().UTC(),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
