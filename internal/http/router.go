package http

import (
	"net/http"
)

// RouterConfig collects the handlers mounted by NewRouter. Nil handlers leave
// their routes unregistered.
type RouterConfig struct {
	Auth          *AuthHandler
	Memberships   *MembershipHandler
	Offers        *OfferHandler
	Applications  *ApplicationHandler
	Notifications *NotificationHandler
	Stats         *StatsHandler
	SavedOffers   *SavedOffersHandler

	// RequireSession guards every route except login and membership submission.
	RequireSession func(http.Handler) http.Handler
	Middleware     []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.Handler {
		if cfg.RequireSession == nil {
			return h
		}
		return cfg.RequireSession(h)
	}

	if cfg.Auth != nil {
		mux.HandleFunc("POST /sessions", cfg.Auth.CreateSession)
		mux.Handle("DELETE /sessions/current", protect(cfg.Auth.DeleteCurrentSession))
	}

	if cfg.Memberships != nil {
		mux.HandleFunc("POST /memberships", cfg.Memberships.Submit)
		mux.Handle("GET /memberships", protect(cfg.Memberships.List))
		mux.Handle("GET /memberships/{id}", protect(cfg.Memberships.Get))
		mux.Handle("POST /memberships/{id}/approve", protect(cfg.Memberships.Approve))
		mux.Handle("POST /memberships/{id}/reject", protect(cfg.Memberships.Reject))
		mux.Handle("GET /me/membership", protect(cfg.Memberships.Mine))
	}

	if cfg.Offers != nil {
		mux.Handle("GET /offers", protect(cfg.Offers.List))
		mux.Handle("POST /offers", protect(cfg.Offers.Create))
		mux.Handle("GET /offers/{id}", protect(cfg.Offers.Get))
		mux.Handle("PUT /offers/{id}", protect(cfg.Offers.Update))
		mux.Handle("DELETE /offers/{id}", protect(cfg.Offers.Delete))
	}

	if cfg.Applications != nil {
		mux.Handle("GET /applications", protect(cfg.Applications.List))
		mux.Handle("POST /applications", protect(cfg.Applications.Apply))
		mux.Handle("PUT /applications/{id}/status", protect(cfg.Applications.UpdateStatus))
		mux.Handle("GET /memberships/{id}/applications", protect(cfg.Applications.ListByMembership))
		mux.Handle("GET /me/applications", protect(cfg.Applications.ListMine))
	}

	if cfg.Notifications != nil {
		mux.Handle("GET /notifications", protect(cfg.Notifications.List))
		mux.Handle("POST /notifications", protect(cfg.Notifications.Send))
		mux.Handle("GET /me/notifications", protect(cfg.Notifications.ListMine))
	}

	if cfg.Stats != nil {
		mux.Handle("GET /stats", protect(cfg.Stats.Summary))
	}

	if cfg.SavedOffers != nil {
		mux.Handle("GET /me/saved-offers", protect(cfg.SavedOffers.List))
		mux.Handle("POST /me/saved-offers/{offerID}", protect(cfg.SavedOffers.Toggle))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}
