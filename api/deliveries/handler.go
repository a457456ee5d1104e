// Package deliveries exposes the delivery log over HTTP.
package deliveries

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/greetd/core/delivery"
)

// NewHandler returns an HTTP handler exposing the delivery log via GET /api/deliveries.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
//
// Query parameters: start and end (RFC3339), email, and days, which selects
// today plus the previous days-1 calendar days when start is absent.
func NewHandler(store delivery.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !Authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q, err := parseQuery(r, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		entries, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []delivery.Entry{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// Authorized checks the bearer token. An empty token allows every request.
func Authorized(r *http.Request, token string) bool {
	return token == "" || r.Header.Get("Authorization") == "Bearer "+token
}

var errBadDays = errors.New("days must be a positive integer")

func parseQuery(r *http.Request, now time.Time) (delivery.Query, error) {
	v := r.URL.Query()
	q := delivery.Query{Email: v.Get("email")}
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, err
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, err
		}
		q.End = t
	}
	if s := v.Get("days"); s != "" && q.Start.IsZero() {
		days, err := strconv.Atoi(s)
		if err != nil || days <= 0 {
			return q, errBadDays
		}
		today := delivery.StartOfDay(now)
		q.Start = today.AddDate(0, 0, -(days - 1))
	}
	return q, nil
}
