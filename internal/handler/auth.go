package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cristijna/SaboresGo/internal/auth"
	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AuthStore defines the database methods needed by auth handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type AuthStore interface {
	GetUserByUsername(ctx context.Context, username string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	GetCustomerByUserID(ctx context.Context, userID uuid.UUID) (database.Customer, error)
	GetSupplierByUserID(ctx context.Context, userID uuid.UUID) (database.Supplier, error)
}

// Registrar creates accounts.
// Satisfied by *service.RegistrationService.
type Registrar interface {
	Register(ctx context.Context, req service.RegisterRequest) (auth.Account, error)
}

// AuthHandler handles signup and authentication endpoints.
type AuthHandler struct {
	store     AuthStore
	registrar Registrar
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, registrar Registrar, jwtSecret string) *AuthHandler {
	return &AuthHandler{store: store, registrar: registrar, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/auth/refresh", h.Refresh)
}

// --- Request / Response types ---

type registerRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Password      string `json:"password"`
	Password2     string `json:"password2"`
	Role          string `json:"role"`
	CompanyName   string `json:"company_name"`
	Description   string `json:"description"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	AgreementCode string `json:"agreement_code"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      string     `json:"role"`
	ProfileID *uuid.UUID `json:"profile_id"`
}

// --- Handlers ---

// Register creates a customer or supplier account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := h.registrar.Register(r.Context(), service.RegisterRequest{
		Username:      req.Username,
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Password:      req.Password,
		Password2:     req.Password2,
		Role:          req.Role,
		CompanyName:   req.CompanyName,
		Description:   req.Description,
		Phone:         req.Phone,
		Address:       req.Address,
		AgreementCode: req.AgreementCode,
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "validation failed",
				"details": verr.Problems,
			})
		case errors.Is(err, service.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already taken")
		case errors.Is(err, service.ErrInvalidAgreementCode):
			writeError(w, http.StatusBadRequest, "invalid agreement code")
		default:
			writeInternal(w, "register", err)
		}
		return
	}

	user, err := h.store.GetUserByID(r.Context(), acct.UserID)
	if err != nil {
		writeInternal(w, "get registered user", err)
		return
	}
	h.respondWithTokens(w, http.StatusCreated, user, acct)
}

// Login handles username + password authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeInternal(w, "get user by username", err)
		return
	}

	if !auth.CheckPassword(user.HashedPassword, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.resolveAndRespond(w, r, user)
}

// Logout is stateless; clients discard their tokens.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Refresh exchanges a valid refresh token for a new access + refresh token pair.
// The account is resolved again so a profile created since login is picked up.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	userID, err := auth.ValidateRefreshToken(h.jwtSecret, req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "user not found")
			return
		}
		writeInternal(w, "get user by id", err)
		return
	}

	h.resolveAndRespond(w, r, user)
}

// --- Helpers ---

func (h *AuthHandler) resolveAndRespond(w http.ResponseWriter, r *http.Request, user database.User) {
	acct, err := service.ResolveAccount(r.Context(), h.store, user)
	if err != nil {
		writeInternal(w, "resolve account", err)
		return
	}
	h.respondWithTokens(w, http.StatusOK, user, acct)
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, status int, user database.User, acct auth.Account) {
	accessToken, err := auth.GenerateToken(h.jwtSecret, acct)
	if err != nil {
		log.Printf("ERROR: generate access token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	refreshToken, err := auth.GenerateRefreshToken(h.jwtSecret, user.ID)
	if err != nil {
		log.Printf("ERROR: generate refresh token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
	if acct.ProfileID != uuid.Nil {
		id := acct.ProfileID
		resp.ProfileID = &id
	}

	writeJSON(w, status, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         resp,
	})
}
