// Package contacts exposes the configured contacts over HTTP.
package contacts

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/greetd/api/deliveries"
	"github.com/kilianp07/greetd/core/model"
)

// Lister provides the contacts to expose.
type Lister interface {
	List() []model.Contact
}

// NewHandler returns an HTTP handler listing contacts via GET /api/contacts.
// The optional email parameter narrows the result to one contact.
func NewHandler(store Lister, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !deliveries.Authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		list := store.List()
		if email := r.URL.Query().Get("email"); email != "" {
			filtered := list[:0]
			for _, c := range list {
				if c.Email == email {
					filtered = append(filtered, c)
				}
			}
			list = filtered
		}
		if list == nil {
			list = []model.Contact{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(list); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
