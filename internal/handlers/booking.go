package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spat-backend/internal/analytics"
	"spat-backend/internal/database"
)

// BookingHandler handles booking-related HTTP requests.
type BookingHandler struct {
	db database.Service
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(db database.Service) *BookingHandler {
	return &BookingHandler{db: db}
}

// ── List ───────────────────────────────────────────────────────

// List handles GET /api/bookings
// Query params: company_id ("ALL" or a company id), from, to (inclusive
// YYYY-MM-DD bounds), page, limit. Returns one page of the filtered
// bookings together with the totals over the WHOLE filtered set, so the
// table footer stays correct on every page.
//
// A fresh request always carries its own page number; the client resets to
// page 1 whenever a filter changes.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = analytics.DefaultPageSize
	}

	companyID := q.Get("company_id")
	if companyID == "" {
		companyID = analytics.AllCompanies
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	bookings, err := loadBookings(ctx, h.db.GetPool())
	if err != nil {
		log.Printf("Error loading bookings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}

	filtered := analytics.Filter(bookings, companyID, q.Get("from"), q.Get("to"))
	totals := analytics.ComputeTotals(filtered)
	pageResult := analytics.Paginate(filtered, page, limit)

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":   pageResult.Items,
		"totals": totals,
		"pagination": PaginationMeta{
			Page:       pageResult.Number,
			Limit:      pageResult.PageSize,
			Total:      pageResult.TotalItems,
			TotalPages: pageResult.TotalPages,
		},
	})
}

// ── Export ─────────────────────────────────────────────────────

// Export handles GET /api/bookings/export — returns the filtered booking
// set as CSV, honoring the same company_id/from/to params as List.
func (h *BookingHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	companyID := q.Get("company_id")
	if companyID == "" {
		companyID = analytics.AllCompanies
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	bookings, err := loadBookings(ctx, h.db.GetPool())
	if err != nil {
		log.Printf("Error exporting bookings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to export")
		return
	}

	filtered := analytics.Filter(bookings, companyID, q.Get("from"), q.Get("to"))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=bookings.csv")

	fmt.Fprintln(w, "Ticket No,Date,Company,Amount,Commission")
	for _, b := range filtered {
		company := ""
		if b.Company != nil {
			company = b.Company.Name
		}
		fmt.Fprintf(w, "%s,%s,%s,%.2f,%.2f\n",
			csvEscape(b.TicketNumber), b.BookingDate, csvEscape(company),
			b.TicketAmount, b.Commission)
	}
}

// ── Helpers ────────────────────────────────────────────────────

// csvEscape wraps a value in quotes if it contains commas or quotes.
func csvEscape(s string) string {
	if strings.Contains(s, ",") || strings.Contains(s, "\"") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}
