// Package oceanstortest provides an in-process DeviceManager REST server
// for tests, with switchable failure modes.
package oceanstortest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Default identity of the simulated array.
const (
	SystemID = "SYS1"
	DeviceID = "DEV1"
	Token    = "TOKEN1"
	Username = "admin"
	Password = "secret"
)

// CodeBadCredentials is the error code returned for a wrong password.
const CodeBadCredentials = 1077949061

// Array is a fake array. Configure it before the first request.
type Array struct {
	// Components maps a category name to its JSON objects.
	Components map[string][]map[string]any
	// Fail lists categories that answer with HTTP 500.
	Fail map[string]bool
	// Block lists categories whose requests hang until the client gives up.
	Block map[string]bool
	// IgnoreRange makes every category query return all components.
	IgnoreRange bool

	server *httptest.Server

	mu      sync.Mutex
	logins  int
	logouts int
	ranges  []string
}

// NewServer starts a server for a. Close it when done.
func NewServer(a *Array) *Array {
	a.server = httptest.NewServer(a.handler())
	return a
}

// URL is the base URL of the server.
func (a *Array) URL() string { return a.server.URL }

// Close shuts the server down.
func (a *Array) Close() {
	a.server.CloseClientConnections()
	a.server.Close()
}

// Logins returns the number of successful logins.
func (a *Array) Logins() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logins
}

// Logouts returns the number of logout requests.
func (a *Array) Logouts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logouts
}

// Ranges returns every category query as "name[start-end]", in order.
func (a *Array) Ranges() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.ranges...)
}

func (a *Array) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /deviceManager/rest/"+SystemID+"/sessions", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req["username"] != Username || req["password"] != Password {
			writeEnvelope(w, nil, CodeBadCredentials, "The username or password is incorrect.")
			return
		}

		a.mu.Lock()
		a.logins++
		a.mu.Unlock()

		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		writeEnvelope(w, map[string]any{"deviceid": DeviceID, "iBaseToken": Token}, 0, "0")
	})

	mux.HandleFunc("DELETE /deviceManager/rest/"+DeviceID+"/sessions", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.logouts++
		a.mu.Unlock()
		writeEnvelope(w, nil, 0, "0")
	})

	mux.HandleFunc("GET /deviceManager/rest/"+DeviceID+"/{category}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("iBaseToken") != Token {
			writeEnvelope(w, nil, -401, "unauthorized")
			return
		}
		if c, err := r.Cookie("session"); err != nil || c.Value != "abc" {
			writeEnvelope(w, nil, -401, "missing session cookie")
			return
		}

		category := r.PathValue("category")
		if a.Block[category] {
			<-r.Context().Done()
			return
		}
		if a.Fail[category] {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		rng := r.URL.Query().Get("range")
		a.mu.Lock()
		a.ranges = append(a.ranges, category+rng)
		a.mu.Unlock()

		var start, end int
		if _, err := fmt.Sscanf(rng, "[%d-%d]", &start, &end); err != nil {
			writeEnvelope(w, nil, 50331651, "invalid range")
			return
		}
		items := a.Components[category]
		if a.IgnoreRange {
			writeEnvelope(w, items, 0, "0")
			return
		}
		start = min(start, len(items))
		end = min(end, len(items))
		writeEnvelope(w, items[start:end], 0, "0")
	})

	return mux
}

func writeEnvelope(w http.ResponseWriter, data any, code int, desc string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data":  data,
		"error": map[string]any{"code": code, "description": desc},
	})
}
