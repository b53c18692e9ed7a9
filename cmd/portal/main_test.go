package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/internship-exchange/internal/adapters"
	"github.com/example/internship-exchange/internal/config"
	"github.com/example/internship-exchange/internal/kvstore"
	"github.com/example/internship-exchange/internal/persistence/sqlite"
	"github.com/example/internship-exchange/internal/persistence/sqlite/migration"
	"github.com/example/internship-exchange/internal/workflow"
)

func openTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	path := filepath.Join(t.TempDir(), "portal.db")
	storage, err := sqlite.OpenWithConfig(migration.TempFileTestSQLiteConfig(path), nil)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })
	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return storage
}

type client struct {
	t      *testing.T
	server *httptest.Server
}

func (c client) do(method, path, token string, body any, out any) int {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.server.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (c client) login(email, password string) string {
	c.t.Helper()

	var out struct {
		Token string `json:"token"`
	}
	if status := c.do(http.MethodPost, "/sessions", "", map[string]string{"email": email, "password": password}, &out); status != http.StatusCreated {
		c.t.Fatalf("login %s status = %d", email, status)
	}
	return out.Token
}

func TestPortalEndToEnd(t *testing.T) {
	storage := openTestStorage(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	created, err := workflow.EnsureAdmin(context.Background(), adapters.NewUserRepository(storage.Users), "admin@example.com", "admin-pass-1", func() string { return "admin-1" }, time.Now)
	if err != nil || !created {
		t.Fatalf("EnsureAdmin = %v, %v", created, err)
	}

	server := httptest.NewServer(newHandler(storage, storage.KV, time.Hour, logger))
	t.Cleanup(server.Close)
	c := client{t: t, server: server}

	adminToken := c.login("admin@example.com", "admin-pass-1")

	var submitted struct {
		Membership struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"membership"`
	}
	membership := map[string]any{
		"full_name":           "Asha Rao",
		"registration_number": "REG-100",
		"email":               "asha@example.com",
		"whatsapp_number":     "+91 90000 00000",
		"course":              "B.Tech",
		"branch_section":      "CSE-A",
		"semester":            "5",
		"member_type":         "in_station",
		"has_passport":        "yes",
	}
	if status := c.do(http.MethodPost, "/memberships", "", membership, &submitted); status != http.StatusCreated {
		t.Fatalf("submit status = %d", status)
	}
	if submitted.Membership.Status != "pending_review" {
		t.Fatalf("status = %q", submitted.Membership.Status)
	}
	if status := c.do(http.MethodPost, "/memberships", "", membership, nil); status != http.StatusConflict {
		t.Fatalf("duplicate submit status = %d, want 409", status)
	}

	memberID := submitted.Membership.ID
	approve := map[string]string{"login_email": "asha.login@example.com", "temp_password": "temp-pass-1"}
	if status := c.do(http.MethodPost, "/memberships/"+memberID+"/approve", adminToken, approve, nil); status != http.StatusOK {
		t.Fatalf("approve status = %d", status)
	}
	if status := c.do(http.MethodPost, "/memberships/"+memberID+"/reject", adminToken, nil, nil); status != http.StatusConflict {
		t.Fatalf("reject after approve status = %d, want 409", status)
	}

	var offer struct {
		Offer struct {
			ID string `json:"id"`
		} `json:"offer"`
	}
	offerBody := map[string]string{"company": "Acme", "position": "Intern", "country": "Germany"}
	if status := c.do(http.MethodPost, "/offers", adminToken, offerBody, &offer); status != http.StatusCreated {
		t.Fatalf("create offer status = %d", status)
	}

	memberToken := c.login("asha.login@example.com", "temp-pass-1")

	if status := c.do(http.MethodPost, "/offers", memberToken, offerBody, nil); status != http.StatusForbidden {
		t.Fatalf("member create offer status = %d, want 403", status)
	}
	apply := map[string]string{"offer_id": offer.Offer.ID}
	if status := c.do(http.MethodPost, "/applications", memberToken, apply, nil); status != http.StatusCreated {
		t.Fatalf("apply status = %d", status)
	}
	if status := c.do(http.MethodPost, "/applications", memberToken, apply, nil); status != http.StatusConflict {
		t.Fatalf("duplicate apply status = %d, want 409", status)
	}

	var saved struct {
		OfferIDs []string `json:"offer_ids"`
	}
	if status := c.do(http.MethodPost, "/me/saved-offers/"+offer.Offer.ID, memberToken, nil, &saved); status != http.StatusOK {
		t.Fatalf("toggle status = %d", status)
	}
	if len(saved.OfferIDs) != 1 {
		t.Fatalf("saved offers = %v", saved.OfferIDs)
	}

	notification := map[string]any{"title": "Welcome", "body": "Orientation on Monday", "recipient_type": "broadcast"}
	if status := c.do(http.MethodPost, "/notifications", adminToken, notification, nil); status != http.StatusCreated {
		t.Fatalf("send notification status = %d", status)
	}
	var inbox struct {
		Notifications []struct {
			Title string `json:"title"`
		} `json:"notifications"`
	}
	if status := c.do(http.MethodGet, "/me/notifications", memberToken, nil, &inbox); status != http.StatusOK {
		t.Fatalf("inbox status = %d", status)
	}
	if len(inbox.Notifications) != 1 || inbox.Notifications[0].Title != "Welcome" {
		t.Fatalf("inbox = %+v", inbox.Notifications)
	}

	var stats struct {
		TotalOffers     int `json:"total_offers"`
		TotalApplicants int `json:"total_applicants"`
		Approved        int `json:"approved"`
	}
	if status := c.do(http.MethodGet, "/stats", adminToken, nil, &stats); status != http.StatusOK {
		t.Fatalf("stats status = %d", status)
	}
	if stats.TotalOffers != 1 || stats.TotalApplicants != 1 || stats.Approved != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	if status := c.do(http.MethodDelete, "/sessions/current", memberToken, nil, nil); status != http.StatusNoContent {
		t.Fatalf("logout status = %d", status)
	}
	if status := c.do(http.MethodGet, "/me/applications", memberToken, nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("revoked token status = %d, want 401", status)
	}
}

func TestNewSavedOfferStore(t *testing.T) {
	storage := openTestStorage(t)
	ctx := context.Background()

	t.Run("sqlite is the default", func(t *testing.T) {
		store, closeFn, err := newSavedOfferStore(ctx, config.Config{}, storage)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeFn()
		if _, ok := store.(*sqlite.KVRepository); !ok {
			t.Fatalf("store = %T, want *sqlite.KVRepository", store)
		}
	})

	t.Run("memory backend", func(t *testing.T) {
		store, closeFn, err := newSavedOfferStore(ctx, config.Config{SavedOffersBackend: config.BackendMemory, SavedOffersCacheSize: 8}, storage)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer closeFn()
		if _, ok := store.(*kvstore.Memory); !ok {
			t.Fatalf("store = %T, want *kvstore.Memory", store)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, closeFn, err := newSavedOfferStore(ctx, config.Config{SavedOffersBackend: "etcd"}, storage)
		if err == nil {
			t.Fatal("expected error for unknown backend")
		}
		if closeFn == nil {
			t.Fatal("close function must never be nil")
		}
	})
}
