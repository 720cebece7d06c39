package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/config"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/circuitbreaker"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/metrics"
)

const gcalDefaultBaseURL = "https://www.googleapis.com"

// GoogleCalendar feeds the upcoming events of the primary calendar,
// bounded to a rolling window so the review list stays short.
type GoogleCalendar struct {
	token      string
	baseURL    string
	windowDays int
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
	now        func() time.Time
}

func NewGoogleCalendar(cfg config.ProviderConfig, timeout time.Duration, windowDays int, logger *zap.Logger) *GoogleCalendar {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = gcalDefaultBaseURL
	}
	return &GoogleCalendar{
		token:      cfg.Token,
		baseURL:    baseURL,
		windowDays: windowDays,
		httpClient: &http.Client{Timeout: timeout},
		cb:         circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:     logger,
		now:        time.Now,
	}
}

func (g *GoogleCalendar) Name() string { return "calendar" }

type gcalEvent struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	HTMLLink string `json:"htmlLink"`
	Start    struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"start"`
}

type gcalEvents struct {
	Items []gcalEvent `json:"items"`
}

func (g *GoogleCalendar) Fetch(ctx context.Context) ([]model.Item, error) {
	var events gcalEvents

	err := g.cb.Execute(func() error {
		start := time.Now()

		from := g.now().UTC()
		to := from.AddDate(0, 0, g.windowDays)
		endpoint := fmt.Sprintf(
			"%s/calendar/v3/calendars/primary/events?timeMin=%s&timeMax=%s&singleEvents=true&orderBy=startTime&maxResults=50",
			g.baseURL,
			url.QueryEscape(from.Format(time.RFC3339)),
			url.QueryEscape(to.Format(time.RFC3339)),
		)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+g.token)

		resp, err := g.httpClient.Do(req)
		latency := time.Since(start)
		if err != nil {
			metrics.RecordProviderFetchLatency("calendar", "error", latency)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			metrics.RecordProviderFetchLatency("calendar", fmt.Sprintf("%d", resp.StatusCode), latency)
			return fmt.Errorf("calendar status %d", resp.StatusCode)
		}

		metrics.RecordProviderFetchLatency("calendar", "success", latency)
		return json.NewDecoder(resp.Body).Decode(&events)
	})
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(events.Items))
	for _, ev := range events.Items {
		items = append(items, model.Item{
			ID:     ev.ID,
			Source: "gcal",
			Title:  ev.Summary,
			URL:    ev.HTMLLink,
			Due:    parseEventStart(ev),
		})
	}
	return items, nil
}

// parseEventStart reads either the timed or the all-day form.
func parseEventStart(ev gcalEvent) *time.Time {
	if ev.Start.DateTime != "" {
		if ts, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
			utc := ts.UTC()
			return &utc
		}
	}
	if ev.Start.Date != "" {
		if ts, err := time.Parse("2006-01-02", ev.Start.Date); err == nil {
			return &ts
		}
	}
	return nil
}
