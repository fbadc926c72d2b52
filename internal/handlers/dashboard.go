package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"spat-backend/internal/analytics"
	"spat-backend/internal/database"
)

// DashboardHandler handles dashboard-related HTTP requests.
type DashboardHandler struct {
	db database.Service
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(db database.Service) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// ── GetStats ───────────────────────────────────────────────────

// dashboardStats is the KPI summary shown in the header cards.
type dashboardStats struct {
	TotalTickets    int     `json:"totalTickets"`
	TotalAmount     float64 `json:"totalAmount"`
	TotalCommission float64 `json:"totalCommission"`
}

// GetStats handles GET /api/dashboard/stats
// Optional ?date=YYYY-MM-DD restricts the summary to exactly that calendar
// day — the same single-day match the per-company chart uses, so the two
// views never disagree on what a selected date means.
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()
	stats := dashboardStats{}

	query := `
		SELECT COUNT(*),
			COALESCE(SUM(COALESCE(ticket_amount, 0)), 0),
			COALESCE(SUM(COALESCE(commission, 0)), 0)
		FROM bookings
	`
	args := []interface{}{}
	if date := r.URL.Query().Get("date"); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			JSONError(w, http.StatusBadRequest, "Invalid date. Use YYYY-MM-DD.")
			return
		}
		query += " WHERE booking_date = $1"
		args = append(args, date)
	}

	err := pool.QueryRow(ctx, query, args...).Scan(
		&stats.TotalTickets, &stats.TotalAmount, &stats.TotalCommission,
	)
	if err != nil {
		log.Printf("Error querying dashboard stats: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}

	JSON(w, http.StatusOK, stats)
}

// ── GetCompanyPerformance ──────────────────────────────────────

// GetCompanyPerformance handles GET /api/dashboard/company-performance
// Optional ?date=YYYY-MM-DD counts only bookings on exactly that day.
// Every known company appears in the response, zero-valued when it has no
// matching bookings, in a stable alphabetical order.
func (h *DashboardHandler) GetCompanyPerformance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	companies, err := loadCompanies(ctx, pool)
	if err != nil {
		log.Printf("Error loading companies: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch company performance")
		return
	}
	bookings, err := loadBookings(ctx, pool)
	if err != nil {
		log.Printf("Error loading bookings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch company performance")
		return
	}

	metrics := analytics.CompanyPerformance(bookings, companies, r.URL.Query().Get("date"))

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": metrics,
	})
}

// ── GetTrend ───────────────────────────────────────────────────

// GetTrend handles GET /api/dashboard/trend
// Optional ?from=YYYY-MM-DD&to=YYYY-MM-DD; without them the series covers
// the trailing 30 days including today. Every day in range appears in the
// response, zero-valued when nothing was booked.
func (h *DashboardHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	bookings, err := loadBookings(ctx, h.db.GetPool())
	if err != nil {
		log.Printf("Error loading bookings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch trend")
		return
	}

	q := r.URL.Query()
	points := analytics.Trend(bookings, q.Get("from"), q.Get("to"), time.Now())

	JSON(w, http.StatusOK, map[string]interface{}{
		"data": points,
	})
}
