// Package ingest parses booking CSV data uploaded through the dashboard.
// Parsing is tolerant: bad rows are collected as errors while the valid
// rows are still returned for ingestion.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Expected CSV header, in order.
var header = []string{"ticketNumber", "bookingDate", "companyName", "ticketAmount", "commission"}

// Row is one parsed booking line. CompanyName may be empty — such rows
// become orphan bookings with no company reference.
type Row struct {
	TicketNumber string
	BookingDate  string
	CompanyName  string
	TicketAmount float64
	Commission   float64
}

// RowError points at a rejected CSV line.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Result holds the accepted rows and the per-line rejections.
type Result struct {
	Rows   []Row      `json:"-"`
	Errors []RowError `json:"errors,omitempty"`
}

// ParseCSV reads booking rows from r.
// The first line must be the header
// "ticketNumber,bookingDate,companyName,ticketAmount,commission".
// Empty amount fields parse as 0; a malformed date or amount rejects the
// row without aborting the rest of the file.
func ParseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // column count checked per row below
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV input")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(first); err != nil {
		return nil, err
	}

	result := &Result{Rows: []Row{}, Errors: []RowError{}}
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		if isBlank(record) {
			continue
		}
		if len(record) != len(header) {
			result.Errors = append(result.Errors, RowError{
				Line:    line,
				Message: fmt.Sprintf("expected %d columns, got %d", len(header), len(record)),
			})
			continue
		}

		row, err := parseRow(record)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// ParseCSVString parses pasted CSV text.
func ParseCSVString(text string) (*Result, error) {
	return ParseCSV(strings.NewReader(text))
}

func checkHeader(record []string) error {
	if len(record) != len(header) {
		return fmt.Errorf("invalid CSV header: expected %q", strings.Join(header, ","))
	}
	for i, want := range header {
		if !strings.EqualFold(strings.TrimSpace(record[i]), want) {
			return fmt.Errorf("invalid CSV header: expected %q", strings.Join(header, ","))
		}
	}
	return nil
}

func parseRow(record []string) (Row, error) {
	row := Row{
		TicketNumber: strings.TrimSpace(record[0]),
		BookingDate:  strings.TrimSpace(record[1]),
		CompanyName:  strings.TrimSpace(record[2]),
	}

	if row.TicketNumber == "" {
		return Row{}, fmt.Errorf("ticketNumber is required")
	}
	if _, err := time.Parse("2006-01-02", row.BookingDate); err != nil {
		return Row{}, fmt.Errorf("invalid bookingDate %q (want YYYY-MM-DD)", row.BookingDate)
	}

	amount, err := parseAmount(record[3], "ticketAmount")
	if err != nil {
		return Row{}, err
	}
	commission, err := parseAmount(record[4], "commission")
	if err != nil {
		return Row{}, err
	}

	row.TicketAmount = amount
	row.Commission = commission
	return row, nil
}

// parseAmount parses a non-negative decimal. Empty fields count as 0.
func parseAmount(s, field string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", field, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return v, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
