package memoapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/memoka/memoka-server/database/model"
)

// Memo is the JSON view of a stored memo.
type Memo struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	Tags     []string  `json:"tags"`
	Category string    `json:"category,omitempty"`
	Summary  string    `json:"summary,omitempty"`
	Keywords []string  `json:"keywords"`
	Analyzed bool      `json:"analyzed"`
	Pinned   bool      `json:"pinned"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
}

type memoRequest struct {
	Content string `json:"content"`
}

func makeMemo(m *model.Memo) Memo {
	return Memo{
		ID:       m.ID,
		Content:  m.Content,
		Tags:     m.Tags,
		Category: m.Category,
		Summary:  m.Summary,
		Keywords: m.Keywords,
		Analyzed: m.Analyzed,
		Pinned:   m.Pinned,
		Created:  m.Created,
		Updated:  m.Updated,
	}
}

// GET /api/memos
//
// memosListHandler returns all memos of the user, newest first.
func (m *MemoAPI) memosListHandler(w http.ResponseWriter, r *http.Request) {
	token := m.getAccessTokenDetails(w, r)
	if token == nil {
		return
	}

	memos, err := m.memos.List(r.Context(), token.UserID)
	if err != nil {
		http.Error(w, "Failed to list memos", http.StatusInternalServerError)
		return
	}

	response := make([]Memo, 0, len(memos))
	for i := range memos {
		response = append(response, makeMemo(&memos[i]))
	}
	serveJSON(response, w)
}

// POST /api/memos
//
// memoCreateHandler stores a new memo.
func (m *MemoAPI) memoCreateHandler(w http.ResponseWriter, r *http.Request) {
	token := m.getAccessTokenDetails(w, r)
	if token == nil {
		return
	}

	var request memoRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Content == "" {
		http.Error(w, "content required", http.StatusBadRequest)
		return
	}

	memo, err := m.memos.Create(r.Context(), token.UserID, request.Content)
	if err != nil {
		http.Error(w, "Failed to create memo", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	serveJSON(makeMemo(memo), w)
}

// GET /api/memos/{memo}
func (m *MemoAPI) memoGetHandler(w http.ResponseWriter, r *http.Request) {
	token := m.getAccessTokenDetails(w, r)
	if token == nil {
		return
	}

	memo, err := m.memos.Get(r.Context(), token.UserID, mux.Vars(r)["memo"])
	if err != nil {
		http.Error(w, "404 Not Found", http.StatusNotFound)
		return
	}
	serveJSON(makeMemo(memo), w)
}

// PUT /api/memos/{memo}
//
// memoUpdateHandler replaces the memo content and queues re-analysis.
func (m *MemoAPI) memoUpdateHandler(w http.ResponseWriter, r *http.Request) {
	token := m.getAccessTokenDetails(w, r)
	if token == nil {
		return
	}

	var request memoRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Content == "" {
		http.Error(w, "content required", http.StatusBadRequest)
		return
	}

	memo, err := m.memos.Update(r.Context(), token.UserID, mux.Vars(r)["memo"], request.Content)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			http.Error(w, "404 Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update memo", http.StatusInternalServerError)
		return
	}
	serveJSON(makeMemo(memo), w)
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

// PUT /api/memos/{memo}/pin
func (m *MemoAPI) memoPinHandler(w http.ResponseWriter, r *http.Request) {
	token := m.getAccessTokenDetails(w, r)
	if token == nil {
		return
	}

	var request pinRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	memo, err := m.memos.SetPinned(r.Context(), token.UserID, mux.Vars(r)["memo"], request.Pinned)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			http.Error(w, "404 Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to pin memo", http.StatusInternalServerError)
		return
	}
	serveJSON(makeMemo(memo), w)
}

// DELETE /api/memos/{memo}
func (m *MemoAPI) memoDeleteHandler(w http.ResponseWriter, r *http.Request) {
	token := m.getAccessTokenDetails(w, r)
	if token == nil {
		return
	}

	if err := m.memos.Delete(r.Context(), token.UserID, mux.Vars(r)["memo"]); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			http.Error(w, "404 Not Found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete memo", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
