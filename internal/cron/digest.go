// Package cron hosts the background jobs of the API server.
package cron

import (
	"context"
	"log"
	"time"

	"spat-backend/internal/analytics"
	"spat-backend/internal/database"
	"spat-backend/internal/models"
)

// StartDigest launches a background goroutine that runs once per day
// (and once immediately) and logs the previous day's booking digest.
// Operators get a daily one-line summary in the server logs without
// opening the dashboard.
func StartDigest(db database.Service) {
	go func() {
		runDigest(db)

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			runDigest(db)
		}
	}()

	log.Println("[cron] booking digest started – runs every 24 h")
}

// runDigest aggregates yesterday's bookings and logs the totals.
func runDigest(db database.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	rows, err := db.GetPool().Query(ctx, `
		SELECT COALESCE(ticket_amount, 0), COALESCE(commission, 0)
		FROM bookings
		WHERE booking_date = $1
	`, yesterday)
	if err != nil {
		log.Printf("[cron] digest query failed: %v", err)
		return
	}
	defer rows.Close()

	day := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.TicketAmount, &b.Commission); err != nil {
			log.Printf("[cron] digest scan failed: %v", err)
			return
		}
		day = append(day, b)
	}

	totals := analytics.ComputeTotals(day)

	log.Printf("[cron] digest %s: %d tickets, amount %.2f, commission %.2f",
		yesterday, totals.TicketCount, totals.AmountSum, totals.CommissionSum)
}
