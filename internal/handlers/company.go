package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"spat-backend/internal/analytics"
	"spat-backend/internal/database"
	"spat-backend/internal/models"
)

// CompanyHandler handles company-related HTTP requests.
type CompanyHandler struct {
	db database.Service
}

// NewCompanyHandler creates a new CompanyHandler with the provided database service.
func NewCompanyHandler(db database.Service) *CompanyHandler {
	return &CompanyHandler{db: db}
}

// ── List ───────────────────────────────────────────────────────

// List returns all companies, ordered alphabetically, each with its
// lifetime ticket count and commission earned.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	companies, err := loadCompanies(ctx, pool)
	if err != nil {
		log.Printf("Error fetching companies: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch companies")
		return
	}
	bookings, err := loadBookings(ctx, pool)
	if err != nil {
		log.Printf("Error loading bookings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch companies")
		return
	}

	metrics := analytics.CompanyPerformance(bookings, companies, "")

	type CompanyWithStats struct {
		models.Company
		TicketCount   int     `json:"ticketCount"`
		CommissionSum float64 `json:"commissionSum"`
	}

	out := make([]CompanyWithStats, len(companies))
	for i, c := range companies {
		out[i] = CompanyWithStats{
			Company:       c,
			TicketCount:   metrics[i].TicketCount,
			CommissionSum: metrics[i].CommissionSum,
		}
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": out,
	})
}

// ── Create ─────────────────────────────────────────────────────

// Create adds a new company.
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if errs := req.Validate(); len(errs) > 0 {
		JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Validation failed",
			"details": errs,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var company models.Company
	err := pool.QueryRow(ctx, `
		INSERT INTO companies (name)
		VALUES ($1)
		RETURNING id::text, name, created_at::text, updated_at::text
	`, req.Name).Scan(
		&company.ID, &company.Name, &company.CreatedAt, &company.UpdatedAt,
	)

	if err != nil {
		if isDuplicateKeyError(err) {
			JSONError(w, http.StatusConflict, "A company with this name already exists")
			return
		}
		log.Printf("Error creating company: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create company")
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":    company,
		"message": "Company created successfully",
	})
}

// ── Update ─────────────────────────────────────────────────────

// Update renames a company.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.CreateCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if errs := req.Validate(); len(errs) > 0 {
		JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Validation failed",
			"details": errs,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	var company models.Company
	err := pool.QueryRow(ctx, `
		UPDATE companies SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id::text, name, created_at::text, updated_at::text
	`, req.Name, id).Scan(
		&company.ID, &company.Name, &company.CreatedAt, &company.UpdatedAt,
	)

	if err != nil {
		if isDuplicateKeyError(err) {
			JSONError(w, http.StatusConflict, "A company with this name already exists")
			return
		}
		JSONError(w, http.StatusNotFound, "Company not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    company,
		"message": "Company updated successfully",
	})
}

// ── Delete ─────────────────────────────────────────────────────

// Delete removes a company. Its bookings survive as orphans — they keep
// counting toward totals and trends, just not toward any company row.
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	result, err := pool.Exec(ctx, "DELETE FROM companies WHERE id = $1", id)
	if err != nil {
		log.Printf("Error deleting company: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete company")
		return
	}

	if result.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Company not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Company deleted successfully",
	})
}
