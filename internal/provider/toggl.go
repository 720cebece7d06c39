package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/config"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/circuitbreaker"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/metrics"
)

const togglDefaultBaseURL = "https://api.track.toggl.com"

// Toggl contributes a single non-reviewable tile: minutes tracked so
// far today.
type Toggl struct {
	token      string
	baseURL    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
	now        func() time.Time
}

func NewToggl(cfg config.ProviderConfig, timeout time.Duration, logger *zap.Logger) *Toggl {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = togglDefaultBaseURL
	}
	return &Toggl{
		token:      cfg.Token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cb:         circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:     logger,
		now:        time.Now,
	}
}

type togglEntry struct {
	Duration int64  `json:"duration"`
	Start    string `json:"start"`
}

// TrackedToday sums today's time entries. A running entry reports a
// negative duration; its elapsed time is counted from its start.
func (t *Toggl) TrackedToday(ctx context.Context) (model.Card, error) {
	var entries []togglEntry

	err := t.cb.Execute(func() error {
		start := time.Now()

		now := t.now().UTC()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		endpoint := fmt.Sprintf("%s/api/v9/me/time_entries?start_date=%s&end_date=%s",
			t.baseURL,
			dayStart.Format("2006-01-02"),
			dayStart.AddDate(0, 0, 1).Format("2006-01-02"),
		)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.SetBasicAuth(t.token, "api_token")

		resp, err := t.httpClient.Do(req)
		latency := time.Since(start)
		if err != nil {
			metrics.RecordProviderFetchLatency("toggl", "error", latency)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			metrics.RecordProviderFetchLatency("toggl", fmt.Sprintf("%d", resp.StatusCode), latency)
			return fmt.Errorf("toggl status %d", resp.StatusCode)
		}

		metrics.RecordProviderFetchLatency("toggl", "success", latency)
		return json.NewDecoder(resp.Body).Decode(&entries)
	})
	if err != nil {
		return model.Card{}, err
	}

	var total time.Duration
	for _, e := range entries {
		if e.Duration >= 0 {
			total += time.Duration(e.Duration) * time.Second
			continue
		}
		if started, err := time.Parse(time.RFC3339, e.Start); err == nil {
			if elapsed := t.now().Sub(started); elapsed > 0 {
				total += elapsed
			}
		}
	}

	return model.Card{
		Source: "toggl",
		Label:  "Tracked today",
		Value:  formatTracked(total),
	}, nil
}

func formatTracked(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes >= 60 {
		return fmt.Sprintf("%dh%dm", minutes/60, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}
