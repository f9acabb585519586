package handlers

import (
	"net/http"

	"github.com/jababox/jababox/pkg/storage"
)

// AccountHandler handles account registration and self-service operations.
type AccountHandler struct {
	registry    *storage.Registry
	coordinator *storage.Coordinator
}

// NewAccountHandler creates an account handler.
func NewAccountHandler(registry *storage.Registry, coordinator *storage.Coordinator) *AccountHandler {
	return &AccountHandler{
		registry:    registry,
		coordinator: coordinator,
	}
}

type registerRequest struct {
	Login          string `json:"login"`
	Password       string `json:"password"`
	QuotaGigabytes int64  `json:"quota_gigabytes"`
}

// accountView is the account as exposed over the API, with quota figures
// attached.
type accountView struct {
	ID             string `json:"id"`
	Login          string `json:"login"`
	QuotaGigabytes int64  `json:"quota_gigabytes"`
	QuotaBytes     int64  `json:"quota_bytes"`
	BytesAvailable int64  `json:"bytes_available,omitempty"`
}

// Register creates a new account.
//
// POST /api/v1/accounts/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.registry.Register(r.Context(), req.Login, req.Password, req.QuotaGigabytes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeOK(w, http.StatusCreated, accountView{
		ID:             account.ID,
		Login:          account.Login,
		QuotaGigabytes: account.QuotaGigabytes,
		QuotaBytes:     account.QuotaBytes(),
		BytesAvailable: account.QuotaBytes(),
	})
}

// Me returns the authenticated account with its quota usage.
//
// GET /api/v1/accounts/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	available, err := h.coordinator.BytesAvailable(r.Context(), account)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeOK(w, http.StatusOK, accountView{
		ID:             account.ID,
		Login:          account.Login,
		QuotaGigabytes: account.QuotaGigabytes,
		QuotaBytes:     account.QuotaBytes(),
		BytesAvailable: available,
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword replaces the authenticated account's password.
//
// POST /api/v1/accounts/me/password
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.registry.ChangePassword(r.Context(), account.Login, req.OldPassword, req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}

	writeOK(w, http.StatusOK, map[string]string{"message": "password changed"})
}

type changePlanRequest struct {
	QuotaGigabytes int64 `json:"quota_gigabytes"`
}

// ChangePlan updates the authenticated account's quota plan.
//
// PUT /api/v1/accounts/me/plan
func (h *AccountHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	account := resolveAccount(w, r, h.registry)
	if account == nil {
		return
	}

	var req changePlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.registry.ChangeGigabytesPlan(r.Context(), account.Login, req.QuotaGigabytes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	available, err := h.coordinator.BytesAvailable(r.Context(), updated)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeOK(w, http.StatusOK, accountView{
		ID:             updated.ID,
		Login:          updated.Login,
		QuotaGigabytes: updated.QuotaGigabytes,
		QuotaBytes:     updated.QuotaBytes(),
		BytesAvailable: available,
	})
}
