package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgreementServicer defines the service methods needed for company agreements.
// Satisfied by *service.AgreementService; narrow interface for testability.
type AgreementServicer interface {
	Create(ctx context.Context, name string, monthly decimal.Decimal) (database.CompanyAgreement, error)
	List(ctx context.Context) ([]service.AgreementWithCodes, error)
	AddCode(ctx context.Context, agreementID uuid.UUID, code string) (database.AgreementCode, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (database.CompanyAgreement, error)
	JoinAgreement(ctx context.Context, customerID uuid.UUID, code string) (database.Customer, error)
}

// AgreementHandler manages company agreements and their access codes.
type AgreementHandler struct {
	svc AgreementServicer
}

func NewAgreementHandler(svc AgreementServicer) *AgreementHandler {
	return &AgreementHandler{svc: svc}
}

// RegisterRoutes registers the admin endpoints under /admin/convenios.
func (h *AgreementHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}", h.SetActive)
	r.Post("/{id}/codigos", h.AddCode)
}

// RegisterCustomerRoutes registers POST /perfil/convenio. Expected to be
// mounted behind the CLIENTE role check.
func (h *AgreementHandler) RegisterCustomerRoutes(r chi.Router) {
	r.Post("/perfil/convenio", h.Join)
}

// --- Request / Response types ---

type createAgreementRequest struct {
	Name           string `json:"name"`
	MonthlyBalance string `json:"monthly_balance"`
}

type setAgreementActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

type agreementCodeRequest struct {
	Code string `json:"code"`
}

type agreementCodeResponse struct {
	ID          uuid.UUID `json:"id"`
	AgreementID uuid.UUID `json:"agreement_id"`
	Code        string    `json:"code"`
}

type agreementResponse struct {
	ID             uuid.UUID               `json:"id"`
	Name           string                  `json:"name"`
	MonthlyBalance string                  `json:"monthly_balance"`
	IsActive       bool                    `json:"is_active"`
	CreatedAt      time.Time               `json:"created_at"`
	Codes          []agreementCodeResponse `json:"codes,omitempty"`
}

type customerProfileResponse struct {
	ID          uuid.UUID  `json:"id"`
	Address     string     `json:"address"`
	AgreementID *uuid.UUID `json:"agreement_id"`
	Balance     string     `json:"balance"`
}

func toAgreementResponse(a database.CompanyAgreement) agreementResponse {
	return agreementResponse{
		ID:             a.ID,
		Name:           a.Name,
		MonthlyBalance: numericToString(a.MonthlyBalance),
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
	}
}

func toAgreementCodeResponse(c database.AgreementCode) agreementCodeResponse {
	return agreementCodeResponse{ID: c.ID, AgreementID: c.AgreementID, Code: c.Code}
}

func writeAgreementError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAgreement),
		errors.Is(err, service.ErrAgreementCodeEmpty):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidAgreementCode):
		writeError(w, http.StatusBadRequest, "invalid agreement code")
	case errors.Is(err, service.ErrAgreementExists),
		errors.Is(err, service.ErrAlreadyJoined):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAgreementNotFound):
		writeError(w, http.StatusNotFound, "agreement not found")
	default:
		writeInternal(w, what, err)
	}
}

// --- Handlers ---

func (h *AgreementHandler) List(w http.ResponseWriter, r *http.Request) {
	agreements, err := h.svc.List(r.Context())
	if err != nil {
		writeInternal(w, "list agreements", err)
		return
	}

	resp := make([]agreementResponse, len(agreements))
	for i, a := range agreements {
		resp[i] = toAgreementResponse(a.Agreement)
		codes := make([]agreementCodeResponse, len(a.Codes))
		for j, c := range a.Codes {
			codes[j] = toAgreementCodeResponse(c)
		}
		resp[i].Codes = codes
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AgreementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	monthly := decimal.Zero
	if req.MonthlyBalance != "" {
		d, err := decimal.NewFromString(req.MonthlyBalance)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid monthly_balance")
			return
		}
		monthly = d
	}

	a, err := h.svc.Create(r.Context(), req.Name, monthly)
	if err != nil {
		writeAgreementError(w, "create agreement", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAgreementResponse(a))
}

func (h *AgreementHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "agreement")
	if !ok {
		return
	}

	var req setAgreementActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "is_active is required")
		return
	}

	a, err := h.svc.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		writeAgreementError(w, "set agreement active", err)
		return
	}
	writeJSON(w, http.StatusOK, toAgreementResponse(a))
}

func (h *AgreementHandler) AddCode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "agreement")
	if !ok {
		return
	}

	var req agreementCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.svc.AddCode(r.Context(), id, req.Code)
	if err != nil {
		writeAgreementError(w, "add agreement code", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAgreementCodeResponse(c))
}

// Join handles POST /perfil/convenio.
func (h *AgreementHandler) Join(w http.ResponseWriter, r *http.Request) {
	customerID, ok := requireCustomer(w, r)
	if !ok {
		return
	}

	var req agreementCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.svc.JoinAgreement(r.Context(), customerID, req.Code)
	if err != nil {
		writeAgreementError(w, "join agreement", err)
		return
	}

	resp := customerProfileResponse{
		ID:      c.ID,
		Address: c.Address,
		Balance: numericToString(c.Balance),
	}
	if c.AgreementID.Valid {
		id := uuid.UUID(c.AgreementID.Bytes)
		resp.AgreementID = &id
	}
	writeJSON(w, http.StatusOK, resp)
}
