package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/febriand/go-shop-api/internal/accounts"
	"github.com/febriand/go-shop-api/internal/auth"
	"github.com/febriand/go-shop-api/internal/store"
)

type AuthHandler struct {
	Store  store.UserStore
	Tokens *auth.TokenService
}

func (h *AuthHandler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
}

func (h *AuthHandler) RegisterProtected(r chi.Router) {
	r.Get("/me", h.profile)
	r.Put("/me", h.updateProfile)
}

type registerReq struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" {
		badRequest(w, "username and email are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		badRequest(w, "invalid email address")
		return
	}
	if req.Password != req.Password2 {
		badRequest(w, "password fields didn't match")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	user := accounts.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         accounts.RoleCustomer,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Store.CreateUser(r.Context(), &user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	User        accounts.User `json:"user"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}

	user, err := h.Store.UserByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token, expiresAt, err := h.Tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResp{AccessToken: token, ExpiresAt: expiresAt, User: user})
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.Store.GetUser(r.Context(), claimsFrom(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileReq struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	PhoneNumber string     `json:"phone_number"`
	Address     string     `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}

	user, err := h.Store.GetUser(r.Context(), claimsFrom(r).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.PhoneNumber = req.PhoneNumber
	user.Address = req.Address
	user.DateOfBirth = req.DateOfBirth
	if err := h.Store.UpdateUser(r.Context(), &user); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
