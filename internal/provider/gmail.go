package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/config"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/model"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/circuitbreaker"
	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/pkg/metrics"
)

const (
	gmailDefaultBaseURL = "https://gmail.googleapis.com"
	gmailMaxResults     = 25
)

// Gmail wraps the users.messages API. Sources are search queries:
// is:starred for the starred section, is:unread in:inbox for the
// unread headline.
type Gmail struct {
	token      string
	baseURL    string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewGmail(cfg config.ProviderConfig, timeout time.Duration, logger *zap.Logger) *Gmail {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = gmailDefaultBaseURL
	}
	return &Gmail{
		token:      cfg.Token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cb:         circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:     logger,
	}
}

// Source returns a feed of the threads matching a Gmail search query.
func (g *Gmail) Source(name, query string) Source {
	return &gmailSource{client: g, name: name, query: query}
}

type gmailSource struct {
	client *Gmail
	name   string
	query  string
}

func (s *gmailSource) Name() string { return s.name }

func (s *gmailSource) Fetch(ctx context.Context) ([]model.Item, error) {
	return s.client.threads(ctx, s.query)
}

type gmailMessageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

type gmailList struct {
	Messages []gmailMessageRef `json:"messages"`
}

type gmailMessage struct {
	ID           string `json:"id"`
	ThreadID     string `json:"threadId"`
	Snippet      string `json:"snippet"`
	InternalDate string `json:"internalDate"` // epoch millis
	Payload      struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
	} `json:"payload"`
}

func (g *Gmail) threads(ctx context.Context, query string) ([]model.Item, error) {
	var items []model.Item
	received := map[string]int64{}

	err := g.cb.Execute(func() error {
		start := time.Now()

		list, err := g.listMessages(ctx, query)
		if err != nil {
			metrics.RecordProviderFetchLatency("gmail", "error", time.Since(start))
			return err
		}

		// 同一线程可能命中多封邮件，按 threadId 去重
		seen := map[string]bool{}
		items = items[:0]
		for _, ref := range list.Messages {
			if seen[ref.ThreadID] {
				continue
			}
			seen[ref.ThreadID] = true

			msg, err := g.getMessage(ctx, ref.ID)
			if err != nil {
				metrics.RecordProviderFetchLatency("gmail", "error", time.Since(start))
				return err
			}
			received[msg.ThreadID], _ = strconv.ParseInt(msg.InternalDate, 10, 64)
			items = append(items, model.Item{
				ID:      msg.ThreadID,
				Source:  "gmail",
				Title:   headerValue(msg, "Subject"),
				URL:     fmt.Sprintf("https://mail.google.com/mail/u/0/#inbox/%s", msg.ThreadID),
				Snippet: msg.Snippet,
			})
		}

		metrics.RecordProviderFetchLatency("gmail", "success", time.Since(start))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 最新邮件排最前，时间相同按线程 id
	sort.Slice(items, func(i, j int) bool {
		ri, rj := received[items[i].ID], received[items[j].ID]
		if ri != rj {
			return ri > rj
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (g *Gmail) listMessages(ctx context.Context, query string) (*gmailList, error) {
	endpoint := fmt.Sprintf("%s/gmail/v1/users/me/messages?q=%s&maxResults=%d",
		g.baseURL, url.QueryEscape(query), gmailMaxResults)

	var list gmailList
	if err := g.getJSON(ctx, endpoint, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (g *Gmail) getMessage(ctx context.Context, id string) (*gmailMessage, error) {
	endpoint := fmt.Sprintf("%s/gmail/v1/users/me/messages/%s?format=metadata&metadataHeaders=Subject",
		g.baseURL, id)

	var msg gmailMessage
	if err := g.getJSON(ctx, endpoint, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (g *Gmail) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gmail status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func headerValue(msg *gmailMessage, name string) string {
	for _, h := range msg.Payload.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}
