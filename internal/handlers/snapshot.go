package handlers

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"spat-backend/internal/models"
)

// The analytics engine works on whole in-memory snapshots, mirroring how
// the dashboard fetches its collections. Both loaders read one consistent
// collection per call; amounts are coalesced so the engine never sees a
// null numeric field.

// loadBookings fetches the full booking snapshot with company references
// resolved. Orphan bookings come back with a nil Company.
func loadBookings(ctx context.Context, pool *pgxpool.Pool) ([]models.Booking, error) {
	rows, err := pool.Query(ctx, `
		SELECT b.id::text, b.ticket_number, b.booking_date::text,
			c.id::text, c.name,
			COALESCE(b.ticket_amount, 0), COALESCE(b.commission, 0)
		FROM bookings b
		LEFT JOIN companies c ON b.company_id = c.id
		ORDER BY b.booking_date ASC, b.created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		var companyID, companyName *string
		if err := rows.Scan(
			&b.ID, &b.TicketNumber, &b.BookingDate,
			&companyID, &companyName,
			&b.TicketAmount, &b.Commission,
		); err != nil {
			return nil, err
		}
		if companyID != nil && companyName != nil {
			b.Company = &models.CompanyRef{ID: *companyID, Name: *companyName}
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// loadCompanies fetches all companies, ordered alphabetically. The order
// here fixes the row order of per-company metrics and the chart axis.
func loadCompanies(ctx context.Context, pool *pgxpool.Pool) ([]models.Company, error) {
	rows, err := pool.Query(ctx, `
		SELECT id::text, name, created_at::text, updated_at::text
		FROM companies
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
