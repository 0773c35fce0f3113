package memoapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/memoka/memoka-server/database/model"
	"github.com/memoka/memoka-server/idhash"
)

type contextKey int

const contextAccessTokenDetails contextKey = iota

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	ServerID    string `json:"serverId"`
}

// POST /api/login
//
// loginHandler authenticates a user by name and returns an access token.
func (m *MemoAPI) loginHandler(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request", http.StatusUnauthorized)
		return
	}
	if len(request.Username) == 0 || len(request.Password) == 0 {
		http.Error(w, "username and password required", http.StatusUnauthorized)
		return
	}

	user, err := m.validateUser(r.Context(), request.Username, request.Password)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) && m.autoRegister {
			user, err = m.registerUser(r.Context(), request.Username, request.Password)
			if err != nil {
				http.Error(w, "Failed to auto-register user", http.StatusInternalServerError)
				return
			}
		} else {
			http.Error(w, "Invalid username/password", http.StatusUnauthorized)
			return
		}
	}

	user.LastLogin = time.Now().UTC()
	if err := m.repo.UpsertUser(r.Context(), user); err != nil {
		log.Printf("Failed to update last login for %s: %s", user.ID, err)
	}

	accesstoken, err := m.repo.CreateAccessToken(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "Failed to generate access token", http.StatusInternalServerError)
		return
	}

	serveJSON(loginResponse{
		AccessToken: accesstoken,
		UserID:      user.ID,
		Username:    user.Username,
		ServerID:    m.serverID,
	}, w)
}

// validateUser checks if the user exists and the password is correct.
func (m *MemoAPI) validateUser(ctx context.Context, username, password string) (*model.User, error) {
	user, err := m.repo.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, model.ErrInvalidPassword
	}
	return user, nil
}

// registerUser creates a new user with a stable id derived from the name.
func (m *MemoAPI) registerUser(ctx context.Context, username, password string) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:       idhash.Hash(username),
		Username: username,
		Password: string(hashedPassword),
		Created:  time.Now().UTC(),
	}
	if err := m.repo.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// authmiddleware validates the auth token, token can be provided as bearer
// token or in the X-Api-Token header.
func (m *MemoAPI) authmiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if t := r.Header.Get("X-Api-Token"); t != "" {
			token = t
		}
		if token == "" {
			http.Error(w, "no token provided", http.StatusUnauthorized)
			return
		}

		tokendetails, err := m.repo.GetAccessToken(r.Context(), token)
		if err != nil {
			log.Printf("invalid access token: %s", err)
			http.Error(w, "invalid access token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), contextAccessTokenDetails, tokendetails)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getAccessTokenDetails returns access token details from the request
// context populated by authmiddleware().
//
// if not found sends an HTTP unauthorized error
func (m *MemoAPI) getAccessTokenDetails(w http.ResponseWriter, r *http.Request) *model.AccessToken {
	details, ok := r.Context().Value(contextAccessTokenDetails).(*model.AccessToken)
	if ok {
		return details
	}
	http.Error(w, "access token not found", http.StatusUnauthorized)
	return nil
}
