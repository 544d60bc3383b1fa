package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// PostAuth authenticates an API client (a signage screen or an
// automation script) and returns a bearer token.
func (s *Server) PostAuth(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var b AuthUserRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&b); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if b.LoginName == "" || b.Password == "" {
		handleError(w, errors.New("not enough parameters to auth user"), http.StatusBadRequest)

		return
	}

	token, err := s.authService.LoginToken(r.Context(), b.LoginName, b.Password)
	if err != nil {
		handleError(w, fmt.Errorf("login error: %w", err), http.StatusUnauthorized)

		return
	}

	resp := AuthUserResponse{Token: token}

	enc := json.NewEncoder(w)

	if err := enc.Encode(resp); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// GetAPIUsers returns the user list as JSON. Admin tokens only.
func (s *Server) GetAPIUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	caller := currentUser(r)
	if caller == nil {
		handleError(w, errors.New("token required"), http.StatusUnauthorized)

		return
	}

	if !caller.IsAdmin {
		w.WriteHeader(http.StatusForbidden)

		return
	}

	users, err := s.userService.ListUsers(r.Context(), caller)
	if err != nil {
		handleError(w, fmt.Errorf("list users error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(users); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

func handleError(w http.ResponseWriter, err error, code int) {
	w.WriteHeader(code)

	e := Error{err.Error()}

	w.Write(e.ToJSON()) //nolint:errcheck
}
