/*
handlers.go - HTTP handlers for the wash book

PURPOSE:
  Exposes the record engine to the UI collaborator. The handler owns the
  live snapshot: every mutation computes the next snapshot through the
  Keeper (which persists it), swaps it in under the mutex, and returns the
  full new snapshot so the client re-renders from it.

ENDPOINTS:
  GET    /api/store                 Current snapshot
  POST   /api/cars                  Add car           (and PUT/DELETE /{id})
  POST   /api/wash-types            Add wash type     (and PUT/DELETE /{id})
  POST   /api/companies             Add company       (and PUT/DELETE /{id})
  POST   /api/washes                Add wash          (and PUT/DELETE /{id})
  POST   /api/expenses              Add expense       (and PUT/DELETE /{id})
  GET    /api/price                 Resolve pre-fill price
  PUT    /api/settings              Patch settings
  GET    /api/stats                 KPI windows + income breakdowns
  GET    /api/washes/history        Washes, newest first
  GET    /api/expenses/categories   Distinct expense categories
  GET    /api/companies/unpaid      Unpaid rollup per company
  GET    /api/export                Backup download
  POST   /api/import                Backup restore (atomic swap)
  POST   /api/reset                 Back to the seeded default store

CONCURRENCY:
  One mutex serializes every snapshot swap, including import, so a slow
  import cannot race a concurrent mutation onto the durable slot. Reads
  take the same mutex briefly to copy the snapshot value out.

ERROR HANDLING:
  - 400: validation errors, format errors, undecodable request bodies
  - 404: unknown route (chi default)
  - 500: export serialization failures
  Unknown ids on update/delete are NOT 404s: the engine defines them as
  no-ops and the handler returns the (content-identical) snapshot.
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/washbook/record"
	"github.com/warp/washbook/stats"
)

// maxImportBytes bounds backup uploads.
const maxImportBytes = 16 << 20

// Handler holds the Keeper and the live snapshot.
type Handler struct {
	keeper *record.Keeper

	mu    sync.Mutex
	store record.Store
}

// NewHandler loads the persisted snapshot (or the seeded default) and
// returns a ready handler.
func NewHandler(ctx context.Context, keeper *record.Keeper) *Handler {
	return &Handler{keeper: keeper, store: keeper.Load(ctx)}
}

// snapshot returns the current store value.
func (h *Handler) snapshot() record.Store {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store
}

// swap installs next as the live snapshot.
func (h *Handler) swap(next record.Store) {
	h.mu.Lock()
	h.store = next
	h.mu.Unlock()
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// GetStore returns the current snapshot.
func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot())
}

// Reset clears the durable slot and reinstalls the seeded default.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.store = h.keeper.Reset(r.Context())
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

// =============================================================================
// CARS
// =============================================================================

func (h *Handler) CreateCar(w http.ResponseWriter, r *http.Request) {
	var in record.CarInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.mu.Lock()
	next, err := h.keeper.AddCar(r.Context(), h.store, in)
	if err != nil {
		h.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Invalid car", err)
		return
	}
	h.store = next
	h.mu.Unlock()
	writeJSON(w, http.StatusCreated, next)
}

func (h *Handler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	var patch record.CarPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id := record.ID(chi.URLParam(r, "id"))
	h.mu.Lock()
	h.store = h.keeper.UpdateCar(r.Context(), h.store, id, patch)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

func (h *Handler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id := record.ID(chi.URLParam(r, "id"))
	h.mu.Lock()
	h.store = h.keeper.DeleteCar(r.Context(), h.store, id)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

// =============================================================================
// WASH TYPES
// =============================================================================

func (h *Handler) CreateWashType(w http.ResponseWriter, r *http.Request) {
	var in record.WashTypeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.mu.Lock()
	next, err := h.keeper.AddWashType(r.Context(), h.store, in)
	if err != nil {
		h.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Invalid wash type", err)
		return
	}
	h.store = next
	h.mu.Unlock()
	writeJSON(w, http.StatusCreated, next)
}

func (h *Handler) UpdateWashType(w http.ResponseWriter, r *http.Request) {
	var patch record.WashTypePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id := record.ID(chi.URLParam(r, "id"))
	h.mu.Lock()
	h.store = h.keeper.UpdateWashType(r.Context(), h.store, id, patch)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

func (h *Handler) DeleteWashType(w http.ResponseWriter, r *http.Request) {
	id := record.ID(chi.URLParam(r, "id"))
	h.mu.Lock()
	h.store = h.keeper.DeleteWashType(r.Context(), h.store, id)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

// =============================================================================
// COMPANIES
// =============================================================================

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var in record.CompanyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.mu.Lock()
	next, err := h.keeper.AddCompany(r.Context(), h.store, in)
	if err != nil {
		h.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Invalid company", err)
		return
	}
	h.store = next
	h.mu.Unlock()
	writeJSON(w, http.StatusCreated, next)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var patch record.CompanyPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id := record.ID(chi.URLParam(r, "id"))
	h.mu.Lock()
	h.store = h.keeper.UpdateCompany(r.Context(), h.store, id, patch)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id := record.ID(chi.URLParam(r, "id"))
	h.mu.Lock()
	h.store = h.keeper.DeleteCompany(r.Context(), h.store, id)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

// UnpaidByCompany returns the unpaid rollup per billed company.
func (h *Handler) UnpaidByCompany(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.UnpaidByCompany(h.snapshot()))
}

// =============================================================================
// WASHES
// =============================================================================

func (h *Handler) CreateWash(w http.ResponseWriter, r *http.Request) {
	var in record.WashInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.mu.Lock()
	next, err := h.keeper.AddWash(r.Context(), h.store, in)
	if err != nil {
		h.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Invalid wash", err)
		return
	}
	h.store = next
	h.mu.Unlock()
	writeJSON(w, http.StatusCreated, next)
}

func (h *Handler) UpdateWash(w http.ResponseWriter, r *http.Request) {
	var patch record.WashPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id := record.ID(chi.URLParam(r, "id"))
	h.mu.Lock()
	h.store = h.keeper.UpdateWash(r.Context(), h.store, id, patch)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

func (h *Handler) DeleteWash(w http.ResponseWriter, r *http.Request) {
	id := record.ID(chi.URLParam(r, "id"))
	h.mu.Lock()
	h.store = h.keeper.DeleteWash(r.Context(), h.store, id)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

// WashHistory returns the washes newest first, the history display order.
func (h *Handler) WashHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.WashesByDateDesc(h.snapshot()))
}

// =============================================================================
// EXPENSES
// =============================================================================

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var in record.ExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.mu.Lock()
	next, err := h.keeper.AddExpense(r.Context(), h.store, in)
	if err != nil {
		h.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Invalid expense", err)
		return
	}
	h.store = next
	h.mu.Unlock()
	writeJSON(w, http.StatusCreated, next)
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var patch record.ExpensePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	id := record.ID(chi.URLParam(r, "id"))
	h.mu.Lock()
	h.store = h.keeper.UpdateExpense(r.Context(), h.store, id, patch)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := record.ID(chi.URLParam(r, "id"))
	h.mu.Lock()
	h.store = h.keeper.DeleteExpense(r.Context(), h.store, id)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

// ExpenseCategories returns the distinct categories for filter dropdowns.
func (h *Handler) ExpenseCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: stats.ExpenseCategories(h.snapshot())})
}

// =============================================================================
// SETTINGS & PRICE
// =============================================================================

// PatchSettings merges a partial settings document over the current one.
func (h *Handler) PatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch record.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.mu.Lock()
	h.store = h.keeper.PatchSettings(r.Context(), h.store, patch)
	next := h.store
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, next)
}

// ResolvePrice returns the pre-fill price for a car/wash-type pair.
func (h *Handler) ResolvePrice(w http.ResponseWriter, r *http.Request) {
	carID := record.ID(r.URL.Query().Get("carId"))
	washTypeID := record.ID(r.URL.Query().Get("washTypeId"))
	price := record.ResolveDefaultPrice(h.snapshot(), carID, washTypeID)
	writeJSON(w, http.StatusOK, PriceResponse{Price: price})
}

// =============================================================================
// STATS
// =============================================================================

// GetStats returns the KPI windows and income breakdowns.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stats.All(h.snapshot(), time.Now()))
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

// Export streams the backup document as a download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	doc, filename, err := record.Export(h.snapshot(), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// Import validates and installs a backup document. The live snapshot is
// swapped exactly once, on success; the mutex serializes competing imports.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload", err)
		return
	}

	h.mu.Lock()
	next, err := h.keeper.Import(r.Context(), data)
	if err != nil {
		h.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Import rejected", err)
		return
	}
	h.store = next
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, ImportResponse{
		Cars:      len(next.Cars),
		WashTypes: len(next.WashTypes),
		Companies: len(next.Companies),
		Washes:    len(next.Washes),
		Expenses:  len(next.Expenses),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
