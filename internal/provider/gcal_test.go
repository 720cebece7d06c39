package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SonOfSamuel1/My-Workspace-TB--sub000/internal/config"
)

func TestGoogleCalendarFetchWindow(t *testing.T) {
	now := time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)

	var gotMin, gotMax string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar/v3/calendars/primary/events" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotMin = r.URL.Query().Get("timeMin")
		gotMax = r.URL.Query().Get("timeMax")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
            {"id":"ev1","summary":"Dentist","htmlLink":"https://calendar.google.com/event?eid=ev1",
             "start":{"dateTime":"2024-05-15T14:30:00+02:00"}},
            {"id":"ev2","summary":"Conference","start":{"date":"2024-05-18"}}
        ]}`))
	}))
	defer srv.Close()

	client := NewGoogleCalendar(config.ProviderConfig{Token: "gc-token", BaseURL: srv.URL}, 5*time.Second, 7, zap.NewNop())
	client.now = func() time.Time { return now }

	items, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if gotMin != now.Format(time.RFC3339) {
		t.Errorf("timeMin = %q, want %q", gotMin, now.Format(time.RFC3339))
	}
	if want := now.AddDate(0, 0, 7).Format(time.RFC3339); gotMax != want {
		t.Errorf("timeMax = %q, want %q", gotMax, want)
	}

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "ev1" || items[0].Source != "gcal" || items[0].Title != "Dentist" {
		t.Errorf("first item = %+v", items[0])
	}
	// 14:30+02:00 normalizes to 12:30 UTC.
	if items[0].Due == nil || !items[0].Due.Equal(time.Date(2024, 5, 15, 12, 30, 0, 0, time.UTC)) {
		t.Errorf("timed event due = %v", items[0].Due)
	}
	if items[1].Due == nil || !items[1].Due.Equal(time.Date(2024, 5, 18, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("all-day event due = %v", items[1].Due)
	}
}

func TestGoogleCalendarFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewGoogleCalendar(config.ProviderConfig{Token: "x", BaseURL: srv.URL}, 5*time.Second, 7, zap.NewNop())
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("5xx should surface as an error")
	}
}
