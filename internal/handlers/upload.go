package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"spat-backend/internal/database"
	"spat-backend/internal/ingest"
	"spat-backend/internal/storage"
)

// maxUploadSize bounds an ingestion request (file + pasted text).
const maxUploadSize = 10 << 20 // 10 MB

// UploadHandler ingests booking CSV data and archives the raw uploads.
type UploadHandler struct {
	db    database.Service
	store storage.Store
}

// NewUploadHandler creates an UploadHandler with the given database and
// storage backend.
func NewUploadHandler(db database.Service, store storage.Store) *UploadHandler {
	return &UploadHandler{db: db, store: store}
}

// ── IngestBookings ─────────────────────────────────────────────

// IngestBookings handles POST /api/upload/bookings
// Accepts multipart/form-data with an optional "file" part and/or an
// optional "csvText" part; at least one must be present. Companies named
// in the CSV are created on the fly; rows with an empty company name
// become orphan bookings. Valid rows are ingested even when other rows
// are rejected.
func (h *UploadHandler) IngestBookings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid upload. Maximum size is 10MB.")
		return
	}

	var raw []byte

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		raw, err = io.ReadAll(file)
		if err != nil {
			JSONError(w, http.StatusBadRequest, "Could not read file.")
			return
		}
		if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" && ext != ".txt" && ext != "" {
			JSONError(w, http.StatusBadRequest, "Only CSV files are accepted.")
			return
		}
	}

	csvText := strings.TrimSpace(r.FormValue("csvText"))
	if len(raw) == 0 && csvText == "" {
		JSONError(w, http.StatusBadRequest, "Provide a CSV file or paste CSV text.")
		return
	}

	// File and pasted text may arrive together; each is a complete CSV
	// document with its own header.
	rows := []ingest.Row{}
	rowErrors := []ingest.RowError{}
	for _, src := range [][]byte{raw, []byte(csvText)} {
		if len(bytes.TrimSpace(src)) == 0 {
			continue
		}
		result, err := ingest.ParseCSV(bytes.NewReader(src))
		if err != nil {
			JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		rows = append(rows, result.Rows...)
		rowErrors = append(rowErrors, result.Errors...)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	inserted, newCompanies, err := h.ingestRows(ctx, rows)
	if err != nil {
		log.Printf("Error ingesting bookings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Ingestion failed")
		return
	}

	// Archive the raw upload for audit; failure doesn't fail the ingestion.
	h.archive(ctx, raw, csvText)

	message := fmt.Sprintf("Ingested %d bookings (%d new companies)", inserted, newCompanies)
	if len(rowErrors) > 0 {
		message += fmt.Sprintf(", rejected %d rows", len(rowErrors))
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"message":      message,
		"ingested":     inserted,
		"newCompanies": newCompanies,
		"rowErrors":    rowErrors,
	})
}

// ingestRows inserts the parsed rows in one transaction, creating any
// companies that don't exist yet. Returns (bookings inserted, companies
// created).
func (h *UploadHandler) ingestRows(ctx context.Context, rows []ingest.Row) (int, int, error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}

	pool := h.db.GetPool()
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	companyIDs := map[string]string{} // name → id, per-request cache
	newCompanies := 0

	for _, row := range rows {
		var companyID *string
		if row.CompanyName != "" {
			id, ok := companyIDs[row.CompanyName]
			if !ok {
				id, err = resolveCompany(ctx, tx, row.CompanyName, &newCompanies)
				if err != nil {
					return 0, 0, err
				}
				companyIDs[row.CompanyName] = id
			}
			companyID = &id
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO bookings (ticket_number, booking_date, company_id, ticket_amount, commission)
			VALUES ($1, $2, $3, $4, $5)
		`, row.TicketNumber, row.BookingDate, companyID, row.TicketAmount, row.Commission)
		if err != nil {
			return 0, 0, fmt.Errorf("insert booking %s: %w", row.TicketNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}

	return len(rows), newCompanies, nil
}

// resolveCompany finds a company by name, creating it if missing.
func resolveCompany(ctx context.Context, tx pgx.Tx, name string, created *int) (string, error) {
	var id string
	err := tx.QueryRow(ctx, "SELECT id::text FROM companies WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return "", fmt.Errorf("lookup company %q: %w", name, err)
	}

	err = tx.QueryRow(ctx,
		"INSERT INTO companies (name) VALUES ($1) RETURNING id::text", name,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create company %q: %w", name, err)
	}
	*created++
	return id, nil
}

// archive stores the raw CSV document(s) for later audit.
func (h *UploadHandler) archive(ctx context.Context, raw []byte, csvText string) {
	parts := [][]byte{}
	if len(raw) > 0 {
		parts = append(parts, raw)
	}
	if csvText != "" {
		parts = append(parts, []byte(csvText+"\n"))
	}

	for _, part := range parts {
		key := fmt.Sprintf("bookings/%s_%s.csv", time.Now().Format("20060102"), uuid.NewString())
		if _, err := h.store.Save(ctx, key, bytes.NewReader(part), "text/csv"); err != nil {
			log.Printf("Failed to archive CSV upload: %v", err)
		}
	}
}

// ── ServeFile ──────────────────────────────────────────────────

// ServeFile serves archived uploads.
// For R2 storage, redirects to the public CDN URL. For local storage,
// serves from disk.
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filePath := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if filePath == "" {
		JSONError(w, http.StatusBadRequest, "File path required.")
		return
	}

	if url := h.store.URL(filePath); strings.HasPrefix(url, "https://") {
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
		return
	}

	http.ServeFile(w, r, filepath.Join("uploads", filepath.Clean(filePath)))
}
