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

func TestTodoistSourceFetch(t *testing.T) {
	var gotFilter, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v2/tasks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotFilter = r.URL.Query().Get("filter")
		gotAuth = r.Header.Get("Authorization")
		// deliberately out of order, the client sorts by due then id
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
            {"id":"103","content":"Someday idea"},
            {"id":"102","content":"Renew passport","due":{"date":"2024-06-01"}},
            {"id":"101","content":"Ship release notes","url":"https://todoist.com/showTask?id=101",
             "due":{"date":"2024-05-20","datetime":"2024-05-20T09:00:00Z"}}
        ]`))
	}))
	defer srv.Close()

	client := NewTodoist(config.ProviderConfig{Token: "td-token", BaseURL: srv.URL}, 5*time.Second, zap.NewNop())
	src := client.Source("commit", "@commit")

	if src.Name() != "commit" {
		t.Errorf("Name = %q", src.Name())
	}

	items, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if gotFilter != "@commit" {
		t.Errorf("filter = %q, want @commit", gotFilter)
	}
	if gotAuth != "Bearer td-token" {
		t.Errorf("auth header = %q", gotAuth)
	}

	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	first := items[0]
	if first.ID != "101" || first.Source != "todoist" || first.Title != "Ship release notes" {
		t.Errorf("first item = %+v", first)
	}
	if first.Due == nil || !first.Due.Equal(time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("first due = %v, want the exact datetime", first.Due)
	}

	if items[1].Due == nil || !items[1].Due.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("all-day due = %v, want midnight UTC", items[1].Due)
	}
	if items[2].Due != nil {
		t.Errorf("undated task has due %v, want nil", items[2].Due)
	}
}

func TestTodoistSourceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewTodoist(config.ProviderConfig{Token: "x", BaseURL: srv.URL}, 5*time.Second, zap.NewNop())
	if _, err := client.Source("commit", "@commit").Fetch(context.Background()); err == nil {
		t.Fatal("5xx should surface as an error for the pool to degrade")
	}
}
