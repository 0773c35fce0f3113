// Package memoapi implements the HTTP API of the memo server: login, memo
// CRUD, the search endpoints, suggestions and per-user tag statistics.
package memoapi

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/memoka/memoka-server/database"
	"github.com/memoka/memoka-server/idhash"
	"github.com/memoka/memoka-server/memo"
)

type Options struct {
	Memos *memo.MemoRepo
	Repo  *database.DatabaseRepo
	// Unique ID of this server, used in API responses
	ServerID string
	// ServerName is name of server returned in info responses
	ServerName string
	// Indicates if we should auto-register unknown users at login
	AutoRegister bool
}

type MemoAPI struct {
	memos *memo.MemoRepo
	repo  *database.DatabaseRepo
	// Unique ID of this server, used in API responses
	serverID string
	// serverName is name of server returned in info responses
	serverName string
	// Indicates if we should auto-register unknown users at login
	autoRegister bool
}

func New(o *Options) *MemoAPI {
	m := &MemoAPI{
		memos:        o.Memos,
		repo:         o.Repo,
		serverID:     o.ServerID,
		serverName:   o.ServerName,
		autoRegister: o.AutoRegister,
	}
	if m.serverID == "" {
		if hostname, err := os.Hostname(); err == nil {
			m.serverID = idhash.Hash(hostname)
		} else {
			log.Printf("Failed to get hostname for server ID generation: %v", err)
		}
	}
	if m.serverName == "" {
		m.serverName = "Memoka"
	}
	return m
}

func (m *MemoAPI) RegisterHandlers(r *mux.Router) {
	// middleware for endpoints to check valid auth token
	middleware := func(handler http.HandlerFunc) http.Handler {
		return handlers.CompressHandler(m.authmiddleware(http.HandlerFunc(handler)))
	}

	r.Handle("/health", http.HandlerFunc(m.healthHandler))

	s := r.PathPrefix("/api/").Subrouter()
	s.Handle("/login", http.HandlerFunc(m.loginHandler)).Methods("POST")
	s.Handle("/info", http.HandlerFunc(m.infoHandler)).Methods("GET")

	s.Handle("/memos", middleware(m.memosListHandler)).Methods("GET")
	s.Handle("/memos", middleware(m.memoCreateHandler)).Methods("POST")
	s.Handle("/memos/{memo}", middleware(m.memoGetHandler)).Methods("GET")
	s.Handle("/memos/{memo}", middleware(m.memoUpdateHandler)).Methods("PUT")
	s.Handle("/memos/{memo}", middleware(m.memoDeleteHandler)).Methods("DELETE")
	s.Handle("/memos/{memo}/pin", middleware(m.memoPinHandler)).Methods("PUT")

	s.Handle("/search", middleware(m.searchHandler)).Methods("GET")
	s.Handle("/suggestions", middleware(m.suggestionsHandler)).Methods("GET")
	s.Handle("/history", middleware(m.historyHandler)).Methods("GET")
	s.Handle("/tags", middleware(m.tagStatsHandler)).Methods("GET")
}

// GET /health
func (m *MemoAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// GET /api/info
func (m *MemoAPI) infoHandler(w http.ResponseWriter, r *http.Request) {
	serveJSON(serverInfoResponse{
		ID:   m.serverID,
		Name: m.serverName,
	}, w)
}

type serverInfoResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func serveJSON(obj any, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	j := json.NewEncoder(w)
	j.SetIndent("", "  ")
	j.Encode(obj)
}
