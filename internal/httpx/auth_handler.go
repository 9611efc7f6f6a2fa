package httpx

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harshsindhu0408/beauty-storefront/internal/backend"
	"github.com/harshsindhu0408/beauty-storefront/internal/session"
)

type AuthBackend interface {
	Login(ctx context.Context, creds backend.Credentials) (backend.AuthResult, error)
	Register(ctx context.Context, req backend.RegisterRequest) (backend.AuthResult, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	Backend  AuthBackend
	Sessions session.Store
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/register", h.register)
	r.Post("/auth/logout", h.logout)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var creds backend.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "email and password are required")
		return
	}

	res, err := h.Backend.Login(r.Context(), creds)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		return
	}

	setAuthCookie(w, res.AccessToken)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type registerDTO struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "email and password are required")
		return
	}
	if req.Password != req.ConfirmPassword {
		respondError(w, http.StatusBadRequest, "password_mismatch", "passwords do not match")
		return
	}

	res, err := h.Backend.Register(r.Context(), backend.RegisterRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondError(w, http.StatusBadGateway, "registration_failed", err.Error())
		return
	}

	setAuthCookie(w, res.AccessToken)
	respondJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// logout clears both halves of the session credential: the cookie and the
// server-side session state, then tells the remote API.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(AuthCookieName); err == nil && c.Value != "" {
		if err := h.Backend.Logout(r.Context(), c.Value); err != nil {
			log.Printf("warn: remote logout: %v", err)
		}
		if err := h.Sessions.Clear(r.Context(), c.Value); err != nil {
			log.Printf("warn: clear session: %v", err)
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}
