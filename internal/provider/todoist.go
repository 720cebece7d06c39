package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/config"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/circuitbreaker"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/metrics"
)

const todoistDefaultBaseURL = "https://api.todoist.com"

// Todoist wraps the REST v2 API. One client serves several sources,
// each a saved filter expression (@label, #project, p1).
type Todoist struct {
	token      string
	baseURL    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewTodoist(cfg config.ProviderConfig, timeout time.Duration, logger *zap.Logger) *Todoist {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = todoistDefaultBaseURL
	}
	return &Todoist{
		token:      cfg.Token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cb:         circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:     logger,
	}
}

// Source returns a feed of the tasks matching a Todoist filter query.
func (t *Todoist) Source(name, filter string) Source {
	return &todoistSource{client: t, name: name, filter: filter}
}

type todoistSource struct {
	client *Todoist
	name   string
	filter string
}

func (s *todoistSource) Name() string { return s.name }

func (s *todoistSource) Fetch(ctx context.Context) ([]model.Item, error) {
	return s.client.tasks(ctx, s.filter)
}

type todoistDue struct {
	Date     string `json:"date"`
	Datetime string `json:"datetime"`
}

type todoistTask struct {
	ID      string      `json:"id"`
	Content string      `json:"content"`
	URL     string      `json:"url"`
	Due     *todoistDue `json:"due"`
}

func (t *Todoist) tasks(ctx context.Context, filter string) ([]model.Item, error) {
	var tasks []todoistTask

	err := t.cb.Execute(func() error {
		start := time.Now()

		endpoint := fmt.Sprintf("%s/rest/v2/tasks?filter=%s", t.baseURL, url.QueryEscape(filter))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+t.token)

		resp, err := t.httpClient.Do(req)
		latency := time.Since(start)
		if err != nil {
			metrics.RecordProviderFetchLatency("todoist", "error", latency)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			metrics.RecordProviderFetchLatency("todoist", fmt.Sprintf("%d", resp.StatusCode), latency)
			return fmt.Errorf("todoist status %d for filter %q", resp.StatusCode, filter)
		}

		metrics.RecordProviderFetchLatency("todoist", "success", latency)
		return json.NewDecoder(resp.Body).Decode(&tasks)
	})
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, model.Item{
			ID:     task.ID,
			Source: "todoist",
			Title:  task.Content,
			URL:    task.URL,
			Due:    parseTodoistDue(task.Due),
		})
	}

	// 稳定排序：到期日升序，无到期日的排最后，同日按 id
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Due == nil && b.Due == nil:
			return a.ID < b.ID
		case a.Due == nil:
			return false
		case b.Due == nil:
			return true
		case !a.Due.Equal(*b.Due):
			return a.Due.Before(*b.Due)
		default:
			return a.ID < b.ID
		}
	})
	return items, nil
}

// parseTodoistDue prefers the exact datetime and falls back to the
// all-day date. Unparsable values leave the item undated, which the
// evaluator treats as never auto-reviewed.
func parseTodoistDue(due *todoistDue) *time.Time {
	if due == nil {
		return nil
	}
	if due.Datetime != "" {
		if ts, err := time.Parse(time.RFC3339, due.Datetime); err == nil {
			utc := ts.UTC()
			return &utc
		}
	}
	if due.Date != "" {
		if ts, err := time.Parse("2006-01-02", due.Date); err == nil {
			return &ts
		}
	}
	return nil
}
