package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/reemaRaven/streetsign/internal/streetsign/services/userservice"
)

// Messages the pages must carry verbatim; operators and the admin docs
// rely on the exact wording.
const (
	msgPermissionDenied = "Permission Denied"
	msgPasswordChanged  = "Password changed"
	msgCurrentPassword  = "You need to enter your current password"
	msgPasswordMismatch = "New passwords do not match"
	msgPasswordConflict = "The password was changed by someone else, please try again"
	msgEmptyPassword    = "You need to give the new user a password"
	msgDuplicateLogin   = "That login name is already taken"
	msgDeleteSelf       = "You cannot delete your own account"
	msgUserCreated      = "User created"
	msgUserDeleted      = "User deleted"
	msgChangesSaved     = "Changes saved"
	msgLoginFailed      = "Invalid login name or password"
)

// formMessage maps a business-rule rejection to the message its form
// redisplay carries. Rejections are not 4xx: the request was well-formed.
func formMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, userservice.ErrCurrentPassword):
		return msgCurrentPassword, true
	case errors.Is(err, userservice.ErrPasswordMismatch):
		return msgPasswordMismatch, true
	case errors.Is(err, userservice.ErrPasswordConflict):
		return msgPasswordConflict, true
	case errors.Is(err, userservice.ErrEmptyPassword):
		return msgEmptyPassword, true
	case errors.Is(err, userservice.ErrDuplicateLogin):
		return msgDuplicateLogin, true
	case errors.Is(err, userservice.ErrDeleteSelf):
		return msgDeleteSelf, true
	default:
		return "", false
	}
}

func flash(r *http.Request) []string {
	return r.URL.Query()["m"]
}

func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?m="+url.QueryEscape(message), http.StatusSeeOther)
}

func (s *Server) forbidden(w http.ResponseWriter) {
	s.render(w, http.StatusForbidden, "error", errorPage{
		Messages: []string{msgPermissionDenied},
		Title:    msgPermissionDenied,
	})
}

func targetID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

func (s *Server) LoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login", loginPage{Messages: flash(r)})
}

func (s *Server) PostLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)

		return
	}

	_, sessionID, err := s.authService.Login(r.Context(), r.FormValue("loginname"), r.FormValue("password"))
	if err != nil {
		redirectWithMessage(w, r, "/login", msgLoginFailed)

		return
	}

	if err := s.cookies.set(w, sessionID); err != nil {
		s.lg.Errorf("set cookie error: %s", err.Error())
		http.Error(w, "session error", http.StatusInternalServerError)

		return
	}

	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (s *Server) PostLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := s.cookies.get(r); ok {
		if err := s.authService.Logout(r.Context(), sessionID); err != nil {
			s.lg.Errorf("logout error: %s", err.Error())
		}
	}

	s.cookies.clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// GetUsers lists all accounts. Named users_and_groups in the routes the
// templates link to.
func (s *Server) GetUsers(w http.ResponseWriter, r *http.Request) {
	caller := currentUser(r)

	users, err := s.userService.ListUsers(r.Context(), caller)
	if err != nil {
		if errors.Is(err, userservice.ErrPermissionDenied) {
			s.forbidden(w)

			return
		}

		s.lg.Errorf("list users error: %s", err.Error())
		http.Error(w, "server error", http.StatusInternalServerError)

		return
	}

	s.render(w, http.StatusOK, "users", usersPage{
		Messages: flash(r),
		Users:    users,
		Caller:   caller,
	})
}

func (s *Server) PostUsers(w http.ResponseWriter, r *http.Request) {
	caller := currentUser(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)

		return
	}

	req := userservice.CreateUserRequest{
		LoginName:    r.FormValue("loginname"),
		EmailAddress: r.FormValue("emailaddress"),
		NewPass:      r.FormValue("newpass"),
		ConfNewPass:  r.FormValue("conf_newpass"),
		IsAdmin:      r.FormValue("is_admin") != "",
	}

	if _, err := s.userService.CreateUser(r.Context(), caller, req); err != nil {
		if errors.Is(err, userservice.ErrPermissionDenied) {
			s.forbidden(w)

			return
		}

		if msg, ok := formMessage(err); ok {
			users, errL := s.userService.ListUsers(r.Context(), caller)
			if errL != nil {
				s.lg.Errorf("list users error: %s", errL.Error())
			}

			s.render(w, http.StatusOK, "users", usersPage{
				Messages: []string{msg},
				Users:    users,
				Caller:   caller,
			})

			return
		}

		s.lg.Errorf("create user error: %s", err.Error())
		http.Error(w, "server error", http.StatusInternalServerError)

		return
	}

	redirectWithMessage(w, r, "/users", msgUserCreated)
}

func (s *Server) GetUserEdit(w http.ResponseWriter, r *http.Request) {
	caller := currentUser(r)

	id, ok := targetID(r)
	if !ok {
		http.NotFound(w, r)

		return
	}

	if err := userservice.Decide(caller, id, userservice.ActionEdit); err != nil {
		s.forbidden(w)

		return
	}

	u, err := s.userService.GetUser(r.Context(), caller, id)
	if err != nil {
		if errors.Is(err, userservice.ErrNotFound) {
			http.NotFound(w, r)

			return
		}

		s.lg.Errorf("get user error: %s", err.Error())
		http.Error(w, "server error", http.StatusInternalServerError)

		return
	}

	posts, err := s.userService.UserPosts(r.Context(), caller, id)
	if err != nil {
		s.lg.Errorf("get posts error: %s", err.Error())
	}

	s.render(w, http.StatusOK, "useredit", userEditPage{
		Messages: flash(r),
		User:     u,
		Posts:    posts,
		Caller:   caller,
	})
}

// PostUserEdit handles the user_edit form: action=update edits the
// profile and, when a new password is supplied, runs the
// current-password gate; action=delete removes the account.
func (s *Server) PostUserEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := targetID(r)
	if !ok {
		http.NotFound(w, r)

		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)

		return
	}

	switch r.FormValue("action") {
	case "update":
		s.updateUser(w, r, id)
	case "delete":
		s.deleteUser(w, r, id)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

func (s *Server) PostUserDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := targetID(r)
	if !ok {
		http.NotFound(w, r)

		return
	}

	s.deleteUser(w, r, id)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, id int) {
	caller := currentUser(r)

	req := userservice.UpdateUserRequest{
		TargetID:     id,
		EmailAddress: r.FormValue("emailaddress"),
		CurrPass:     r.FormValue("currpass"),
		NewPass:      r.FormValue("newpass"),
		ConfNewPass:  r.FormValue("conf_newpass"),
	}

	changingPassword := req.NewPass != "" || req.ConfNewPass != ""

	if err := s.userService.UpdateUser(r.Context(), caller, req); err != nil {
		switch {
		case errors.Is(err, userservice.ErrPermissionDenied):
			s.forbidden(w)
		case errors.Is(err, userservice.ErrNotFound):
			http.NotFound(w, r)
		default:
			if msg, ok := formMessage(err); ok {
				s.rerenderEdit(w, r, id, msg)

				return
			}

			s.lg.Errorf("update user error: %s", err.Error())
			http.Error(w, "server error", http.StatusInternalServerError)
		}

		return
	}

	if changingPassword {
		redirectWithMessage(w, r, r.URL.Path, msgPasswordChanged)

		return
	}

	redirectWithMessage(w, r, r.URL.Path, msgChangesSaved)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, id int) {
	caller := currentUser(r)

	if err := s.userService.DeleteUser(r.Context(), caller, id); err != nil {
		switch {
		case errors.Is(err, userservice.ErrPermissionDenied):
			s.forbidden(w)
		case errors.Is(err, userservice.ErrNotFound):
			http.NotFound(w, r)
		default:
			if msg, ok := formMessage(err); ok {
				s.rerenderEdit(w, r, id, msg)

				return
			}

			s.lg.Errorf("delete user error: %s", err.Error())
			http.Error(w, "server error", http.StatusInternalServerError)
		}

		return
	}

	redirectWithMessage(w, r, "/users", msgUserDeleted)
}

// rerenderEdit shows the edit form again with a message after a rejected
// submission.
func (s *Server) rerenderEdit(w http.ResponseWriter, r *http.Request, id int, msg string) {
	caller := currentUser(r)

	u, err := s.userService.GetUser(r.Context(), caller, id)
	if err != nil {
		s.lg.Errorf("get user error: %s", err.Error())
		http.Error(w, "server error", http.StatusInternalServerError)

		return
	}

	posts, err := s.userService.UserPosts(r.Context(), caller, id)
	if err != nil {
		s.lg.Errorf("get posts error: %s", err.Error())
	}

	s.render(w, http.StatusOK, "useredit", userEditPage{
		Messages: []string{msg},
		User:     u,
		Posts:    posts,
		Caller:   caller,
	})
}
