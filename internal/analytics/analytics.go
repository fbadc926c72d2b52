// Package analytics provides pure functions for booking report
// calculations: filtering, totals, pagination, per-company performance,
// and gap-filled daily trends. These functions have ZERO dependencies on
// HTTP, database, or any other infrastructure — making them trivially
// testable and safe to run concurrently. Callers pass in whole booking
// and company snapshots; nothing here holds state between calls.
package analytics

import (
	"math"
	"time"

	"spat-backend/internal/models"
)

// AllCompanies is the sentinel selector meaning "no company restriction".
const AllCompanies = "ALL"

// DefaultPageSize is the booking table page size used by the dashboard.
const DefaultPageSize = 8

// trendWindowDays is the default trailing window for the trend series,
// inclusive of today.
const trendWindowDays = 30

const dayFormat = "2006-01-02"

// ── Filtering ────────────────────────────────────────────────────

// Filter returns the bookings matching a company selector and an inclusive
// date range, preserving input order.
// Parameters:
//   - companyID: AllCompanies (or "") keeps every booking; a specific id
//     keeps only bookings whose company reference matches it, so orphan
//     bookings are excluded when a specific company is selected.
//   - fromDate/toDate: inclusive "2006-01-02" bounds; empty (or unparsable)
//     means unbounded on that side. The fixed format makes plain string
//     comparison equivalent to chronological comparison.
func Filter(bookings []models.Booking, companyID, fromDate, toDate string) []models.Booking {
	fromDate = normalizeDay(fromDate)
	toDate = normalizeDay(toDate)

	out := []models.Booking{}
	for _, b := range bookings {
		if companyID != "" && companyID != AllCompanies {
			if b.Company == nil || b.Company.ID != companyID {
				continue
			}
		}
		if fromDate != "" && b.BookingDate < fromDate {
			continue
		}
		if toDate != "" && b.BookingDate > toDate {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ── Totals ───────────────────────────────────────────────────────

// Totals aggregates a booking sequence into the table footer numbers.
type Totals struct {
	TicketCount   int     `json:"ticketCount"`
	AmountSum     float64 `json:"amountSum"`
	CommissionSum float64 `json:"commissionSum"`
}

// ComputeTotals reduces a booking sequence to ticket count, amount sum,
// and commission sum. An empty sequence yields all-zero totals.
func ComputeTotals(bookings []models.Booking) Totals {
	t := Totals{}
	for _, b := range bookings {
		t.TicketCount++
		t.AmountSum += b.TicketAmount
		t.CommissionSum += b.Commission
	}
	return t
}

// ── Pagination ───────────────────────────────────────────────────

// Page is one fixed-size slice of a booking sequence.
type Page struct {
	Number     int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
	Items      []models.Booking `json:"items"`
}

// Paginate slices a booking sequence into the requested 1-based page.
// pageSize <= 0 falls back to DefaultPageSize. TotalPages is
// ceil(len/pageSize), 0 for an empty sequence. A page number outside
// [1, TotalPages] returns empty items rather than an error — clamping the
// page number is the caller's job.
func Paginate(bookings []models.Booking, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := 0
	if len(bookings) > 0 {
		totalPages = int(math.Ceil(float64(len(bookings)) / float64(pageSize)))
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start < 0 || start > len(bookings) {
		start, end = 0, 0
	} else if end > len(bookings) {
		end = len(bookings)
	}

	return Page{
		Number:     page,
		PageSize:   pageSize,
		TotalItems: len(bookings),
		TotalPages: totalPages,
		Items:      bookings[start:end],
	}
}

// ── Company performance ──────────────────────────────────────────

// CompanyMetric is one per-company aggregate row for the performance chart.
type CompanyMetric struct {
	CompanyID     string  `json:"companyId"`
	CompanyName   string  `json:"companyName"`
	TicketCount   int     `json:"ticketCount"`
	CommissionSum float64 `json:"commissionSum"`
}

// CompanyPerformance groups bookings by company id, producing exactly one
// metric row per supplied company in the order the companies are supplied
// (chart axes stay stable across reloads). Companies with no matching
// bookings appear with zero counters.
// Parameters:
//   - exactDate: when non-empty, only bookings on precisely that calendar
//     day are counted (single-day match, not a range).
//
// Bookings with no company reference, or with a company id not in the
// supplied list, are skipped.
func CompanyPerformance(bookings []models.Booking, companies []models.Company, exactDate string) []CompanyMetric {
	metrics := make([]CompanyMetric, len(companies))
	index := make(map[string]int, len(companies))
	for i, c := range companies {
		metrics[i] = CompanyMetric{CompanyID: c.ID, CompanyName: c.Name}
		index[c.ID] = i
	}

	for _, b := range bookings {
		if exactDate != "" && b.BookingDate != exactDate {
			continue
		}
		if b.Company == nil {
			continue
		}
		i, ok := index[b.Company.ID]
		if !ok {
			continue
		}
		metrics[i].TicketCount++
		metrics[i].CommissionSum += b.Commission
	}

	return metrics
}

// ── Trend ────────────────────────────────────────────────────────

// TrendPoint is the per-day aggregate for the trend chart. The series
// containing it is calendar-dense: one point per day, no gaps.
type TrendPoint struct {
	Date          string  `json:"date"`
	TicketCount   int     `json:"ticketCount"`
	CommissionSum float64 `json:"commissionSum"`
}

// Trend builds a calendar-complete day series between fromDate and toDate
// inclusive and folds booking counts and commissions into the matching
// days. Days with no bookings stay at zero. Bookings outside the range are
// silently ignored.
// Parameters:
//   - fromDate: series start; empty (or unparsable) defaults to 29 days
//     before now, giving a trailing 30-day window inclusive of today.
//   - toDate: series end; defaults to now.
//   - now: current time (injected for testability).
//
// An inverted range (start after end) yields an empty series, not an error.
// Day stepping is done on a day-granularity UTC date via AddDate, so month,
// year, and DST boundaries can never skip or repeat a day.
func Trend(bookings []models.Booking, fromDate, toDate string, now time.Time) []TrendPoint {
	start, ok := parseDay(fromDate)
	if !ok {
		start = truncateToDay(now).AddDate(0, 0, -(trendWindowDays - 1))
	}
	end, ok := parseDay(toDate)
	if !ok {
		end = truncateToDay(now)
	}

	points := []TrendPoint{}
	index := map[string]int{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayFormat)
		index[key] = len(points)
		points = append(points, TrendPoint{Date: key})
	}

	for _, b := range bookings {
		i, ok := index[b.BookingDate]
		if !ok {
			continue
		}
		points[i].TicketCount++
		points[i].CommissionSum += b.Commission
	}

	return points
}

// ── Internal helpers ─────────────────────────────────────────────

// parseDay parses a "2006-01-02" string into a UTC day-granularity time.
// Returns ok=false for empty or malformed input.
func parseDay(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dayFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// normalizeDay returns s if it is a valid calendar day, "" otherwise.
// Malformed bounds behave like absent bounds instead of filtering
// everything out through string comparison.
func normalizeDay(s string) string {
	if _, ok := parseDay(s); !ok {
		return ""
	}
	return s
}

// truncateToDay strips the time component, keeping only the UTC date.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
