package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/shared"
)

const (
	msgFieldsRequired = "All fields are required!"
	msgInvalidLogin   = "Invalid username or password"
	msgUsernameTaken  = "Username already exists!"
	msgGenericError   = "An error occurred. Please try again."
)

// homeURL is the landing page for a signed-in user.
func homeURL(username string) string {
	return "/?user=" + url.QueryEscape(username)
}

func (h *Handler) authPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, PageAuth, authData{Page: Page{Title: "Log in"}})
}

func (h *Handler) authError(w http.ResponseWriter, r *http.Request, message string) {
	h.render(w, r, PageAuth, authData{Page: Page{Title: "Log in"}, ErrorMessage: message})
}

// login checks the submitted credentials. Unknown users, wrong passwords and store failures
// all produce the same message.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.logger.Warn("login: bad body", "error", err)
		h.authError(w, r, msgFieldsRequired)
		return
	}

	username, password := body.Get("username"), body.Get("password")
	if username == "" || password == "" {
		h.authError(w, r, msgFieldsRequired)
		return
	}

	user, err := h.store.FindUserByUsername(r.Context(), username)
	if err != nil {
		if !errors.Is(err, shared.ErrUserNotFound) {
			h.logger.Error("login: lookup failed", "error", err, "id", server.RequestID(r.Context()))
		}
		h.authError(w, r, msgInvalidLogin)
		return
	}

	if !user.CheckPassword(password) {
		h.logger.Warn("login: invalid password", "username", username, "remote", r.RemoteAddr)
		h.authError(w, r, msgInvalidLogin)
		return
	}

	http.Redirect(w, r, homeURL(username), http.StatusFound)
}

// createAccount inserts a new user with an empty watchlist.
func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		h.logger.Warn("create account: bad body", "error", err)
		h.authError(w, r, msgFieldsRequired)
		return
	}

	username, password := body.Get("username"), body.Get("password")
	if username == "" || password == "" {
		h.authError(w, r, msgFieldsRequired)
		return
	}

	ctx := r.Context()
	if _, err := h.store.FindUserByUsername(ctx, username); err == nil {
		h.authError(w, r, msgUsernameTaken)
		return
	} else if !errors.Is(err, shared.ErrUserNotFound) {
		h.logger.Error("create account: lookup failed", "error", err, "id", server.RequestID(ctx))
		h.authError(w, r, msgGenericError)
		return
	}

	if _, err := h.store.CreateUser(ctx, username, password); err != nil {
		if errors.Is(err, shared.ErrUserExists) {
			h.authError(w, r, msgUsernameTaken)
			return
		}
		h.logger.Error("create account: insert failed", "error", err, "id", server.RequestID(ctx))
		h.authError(w, r, msgGenericError)
		return
	}

	h.logger.Info("account created", "username", username)
	http.Redirect(w, r, homeURL(username), http.StatusFound)
}
