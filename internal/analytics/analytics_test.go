package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spat-backend/internal/models"
)

func ref(id, name string) *models.CompanyRef {
	return &models.CompanyRef{ID: id, Name: name}
}

// sampleBookings covers the interesting shapes: two companies, an orphan
// booking, and dates spanning two days.
func sampleBookings() []models.Booking {
	return []models.Booking{
		{ID: "1", TicketNumber: "SAT-1001", BookingDate: "2026-01-05", Company: ref("1", "Alpha"), TicketAmount: 1200, Commission: 80},
		{ID: "2", TicketNumber: "SAT-1002", BookingDate: "2026-01-05", Company: ref("2", "Beta"), TicketAmount: 500, Commission: 30},
		{ID: "3", TicketNumber: "SAT-1003", BookingDate: "2026-01-06", Company: nil, TicketAmount: 100, Commission: 5},
	}
}

func sampleCompanies() []models.Company {
	return []models.Company{
		{ID: "1", Name: "Alpha"},
		{ID: "2", Name: "Beta"},
	}
}

// ── Filter ───────────────────────────────────────────────────────

func TestFilter(t *testing.T) {
	bookings := sampleBookings()

	tests := []struct {
		name      string
		companyID string
		from, to  string
		wantIDs   []string
	}{
		{"all companies no dates", AllCompanies, "", "", []string{"1", "2", "3"}},
		{"empty selector behaves like all", "", "", "", []string{"1", "2", "3"}},
		{"specific company", "1", "", "", []string{"1"}},
		{"specific company excludes orphans", "2", "", "", []string{"2"}},
		{"unknown company", "99", "", "", []string{}},
		{"from bound inclusive", AllCompanies, "2026-01-06", "", []string{"3"}},
		{"to bound inclusive", AllCompanies, "", "2026-01-05", []string{"1", "2"}},
		{"both bounds", AllCompanies, "2026-01-05", "2026-01-05", []string{"1", "2"}},
		{"inverted range matches nothing", AllCompanies, "2026-01-07", "2026-01-04", []string{}},
		{"company and range combined", "1", "2026-01-05", "2026-01-06", []string{"1"}},
		{"malformed bound ignored", AllCompanies, "not-a-date", "", []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(bookings, tt.companyID, tt.from, tt.to)
			ids := make([]string, 0, len(got))
			for _, b := range got {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	bookings := sampleBookings()

	once := Filter(bookings, "1", "2026-01-01", "2026-01-31")
	twice := Filter(once, "1", "2026-01-01", "2026-01-31")

	assert.Equal(t, once, twice)
}

func TestFilterPreservesInputOrder(t *testing.T) {
	// Deliberately unsorted dates: a stable filter must not resort.
	bookings := []models.Booking{
		{ID: "a", BookingDate: "2026-03-09", Company: ref("1", "Alpha")},
		{ID: "b", BookingDate: "2026-03-01", Company: ref("1", "Alpha")},
		{ID: "c", BookingDate: "2026-03-05", Company: ref("1", "Alpha")},
	}

	got := Filter(bookings, "1", "", "")
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	bookings := sampleBookings()
	Filter(bookings, "2", "2026-01-05", "2026-01-05")
	assert.Equal(t, sampleBookings(), bookings)
}

// ── ComputeTotals ────────────────────────────────────────────────

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(sampleBookings())

	assert.Equal(t, 3, totals.TicketCount)
	assert.InDelta(t, 1800, totals.AmountSum, 1e-9)
	assert.InDelta(t, 115, totals.CommissionSum, 1e-9)
}

func TestComputeTotalsEmpty(t *testing.T) {
	assert.Equal(t, Totals{}, ComputeTotals(nil))
	assert.Equal(t, Totals{}, ComputeTotals([]models.Booking{}))
}

func TestComputeTotalsIsAdditive(t *testing.T) {
	all := sampleBookings()
	a, b := all[:1], all[1:]

	whole := ComputeTotals(all)
	partA := ComputeTotals(a)
	partB := ComputeTotals(b)

	assert.Equal(t, whole.TicketCount, partA.TicketCount+partB.TicketCount)
	assert.InDelta(t, whole.AmountSum, partA.AmountSum+partB.AmountSum, 1e-9)
	assert.InDelta(t, whole.CommissionSum, partA.CommissionSum+partB.CommissionSum, 1e-9)
}

// ── Paginate ─────────────────────────────────────────────────────

func makeBookings(n int) []models.Booking {
	out := make([]models.Booking, n)
	for i := range out {
		out[i] = models.Booking{ID: string(rune('a' + i)), BookingDate: "2026-01-05"}
	}
	return out
}

func TestPaginate(t *testing.T) {
	bookings := makeBookings(10)

	tests := []struct {
		name           string
		page           int
		wantItems      int
		wantTotalPages int
	}{
		{"first page is full", 1, 8, 2},
		{"last page holds remainder", 2, 2, 2},
		{"page past the end is empty", 3, 0, 2},
		{"page zero is empty not an error", 0, 0, 2},
		{"negative page is empty not an error", -4, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(bookings, tt.page, DefaultPageSize)
			assert.Len(t, p.Items, tt.wantItems)
			assert.Equal(t, tt.wantTotalPages, p.TotalPages)
			assert.Equal(t, 10, p.TotalItems)
			assert.Equal(t, tt.page, p.Number)
		})
	}
}

func TestPaginateEmptySequence(t *testing.T) {
	p := Paginate(nil, 1, DefaultPageSize)

	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 0, p.TotalItems)
	assert.Empty(t, p.Items)
}

func TestPaginateDefaultsPageSize(t *testing.T) {
	p := Paginate(makeBookings(9), 1, 0)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Len(t, p.Items, 8)
}

// Concatenating all pages must reproduce the sequence exactly.
func TestPaginateCoversSequenceExactly(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 16, 17} {
		bookings := makeBookings(n)
		first := Paginate(bookings, 1, DefaultPageSize)

		var rebuilt []models.Booking
		for page := 1; page <= first.TotalPages; page++ {
			rebuilt = append(rebuilt, Paginate(bookings, page, DefaultPageSize).Items...)
		}

		assert.Len(t, rebuilt, n, "n=%d", n)
		for i := range rebuilt {
			assert.Equal(t, bookings[i].ID, rebuilt[i].ID, "n=%d i=%d", n, i)
		}
		assert.Equal(t, n == 0, first.TotalPages == 0, "n=%d", n)
	}
}

// ── CompanyPerformance ───────────────────────────────────────────

func TestCompanyPerformanceExactDate(t *testing.T) {
	metrics := CompanyPerformance(sampleBookings(), sampleCompanies(), "2026-01-05")

	require.Len(t, metrics, 2)
	assert.Equal(t, CompanyMetric{CompanyID: "1", CompanyName: "Alpha", TicketCount: 1, CommissionSum: 80}, metrics[0])
	assert.Equal(t, CompanyMetric{CompanyID: "2", CompanyName: "Beta", TicketCount: 1, CommissionSum: 30}, metrics[1])
}

func TestCompanyPerformanceAllDates(t *testing.T) {
	bookings := append(sampleBookings(),
		models.Booking{ID: "4", BookingDate: "2026-01-07", Company: ref("1", "Alpha"), Commission: 20},
	)

	metrics := CompanyPerformance(bookings, sampleCompanies(), "")

	require.Len(t, metrics, 2)
	assert.Equal(t, 2, metrics[0].TicketCount)
	assert.InDelta(t, 100, metrics[0].CommissionSum, 1e-9)
}

func TestCompanyPerformanceZeroActivityCompanyStillAppears(t *testing.T) {
	companies := append(sampleCompanies(), models.Company{ID: "3", Name: "Gamma"})

	metrics := CompanyPerformance(sampleBookings(), companies, "")

	require.Len(t, metrics, 3)
	assert.Equal(t, "3", metrics[2].CompanyID)
	assert.Equal(t, 0, metrics[2].TicketCount)
	assert.Zero(t, metrics[2].CommissionSum)
}

func TestCompanyPerformancePreservesCompanyOrder(t *testing.T) {
	// Supply companies in reverse order; the rows must follow suit so
	// chart axes stay stable no matter the booking volume.
	companies := []models.Company{
		{ID: "2", Name: "Beta"},
		{ID: "1", Name: "Alpha"},
	}

	metrics := CompanyPerformance(sampleBookings(), companies, "")

	require.Len(t, metrics, 2)
	assert.Equal(t, "Beta", metrics[0].CompanyName)
	assert.Equal(t, "Alpha", metrics[1].CompanyName)
}

func TestCompanyPerformanceSkipsOrphansAndUnknowns(t *testing.T) {
	bookings := []models.Booking{
		{ID: "1", BookingDate: "2026-01-05", Company: nil, Commission: 10},
		{ID: "2", BookingDate: "2026-01-05", Company: ref("99", "Ghost Travels"), Commission: 25},
	}

	metrics := CompanyPerformance(bookings, sampleCompanies(), "")

	for _, m := range metrics {
		assert.Zero(t, m.TicketCount)
		assert.Zero(t, m.CommissionSum)
	}
}

func TestCompanyPerformanceNoCompanies(t *testing.T) {
	metrics := CompanyPerformance(sampleBookings(), nil, "")
	assert.Empty(t, metrics)
}

// ── Trend ────────────────────────────────────────────────────────

var trendNow = time.Date(2026, 2, 15, 13, 45, 0, 0, time.UTC)

func TestTrendExplicitRange(t *testing.T) {
	points := Trend(sampleBookings(), "2026-01-05", "2026-01-06", trendNow)

	require.Len(t, points, 2)
	assert.Equal(t, TrendPoint{Date: "2026-01-05", TicketCount: 2, CommissionSum: 110}, points[0])
	assert.Equal(t, TrendPoint{Date: "2026-01-06", TicketCount: 1, CommissionSum: 5}, points[1])
}

func TestTrendDefaultsToTrailing30Days(t *testing.T) {
	points := Trend(nil, "", "", trendNow)

	require.Len(t, points, 30)
	assert.Equal(t, "2026-01-17", points[0].Date)
	assert.Equal(t, "2026-02-15", points[29].Date)
}

func TestTrendSeriesIsDense(t *testing.T) {
	// Range crossing a month boundary and a leap-year February.
	points := Trend(nil, "2024-02-27", "2024-03-02", trendNow)

	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	require.Len(t, points, len(want))
	for i, p := range points {
		assert.Equal(t, want[i], p.Date)
		assert.Zero(t, p.TicketCount)
		assert.Zero(t, p.CommissionSum)
	}
}

func TestTrendCrossesYearBoundary(t *testing.T) {
	points := Trend(nil, "2025-12-30", "2026-01-02", trendNow)

	require.Len(t, points, 4)
	assert.Equal(t, "2025-12-31", points[1].Date)
	assert.Equal(t, "2026-01-01", points[2].Date)
}

func TestTrendInvertedRangeIsEmpty(t *testing.T) {
	points := Trend(sampleBookings(), "2026-01-10", "2026-01-05", trendNow)
	assert.Empty(t, points)
}

func TestTrendIgnoresBookingsOutsideRange(t *testing.T) {
	points := Trend(sampleBookings(), "2026-01-06", "2026-01-07", trendNow)

	require.Len(t, points, 2)
	// Only the orphan booking on the 6th falls in range; the two on the
	// 5th are silently dropped.
	assert.Equal(t, 1, points[0].TicketCount)
	assert.InDelta(t, 5, points[0].CommissionSum, 1e-9)
	assert.Zero(t, points[1].TicketCount)
}

func TestTrendCountsOrphanBookings(t *testing.T) {
	points := Trend(sampleBookings(), "2026-01-05", "2026-01-06", trendNow)

	// Orphans are excluded from per-company grouping but always count
	// toward the day series.
	assert.Equal(t, 1, points[1].TicketCount)
}

func TestTrendSingleDayRange(t *testing.T) {
	points := Trend(sampleBookings(), "2026-01-05", "2026-01-05", trendNow)

	require.Len(t, points, 1)
	assert.Equal(t, 2, points[0].TicketCount)
	assert.InDelta(t, 110, points[0].CommissionSum, 1e-9)
}
