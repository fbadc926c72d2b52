package models

// ── Booking ──────────────────────────────────────────────────────

// CompanyRef is the by-value company reference embedded in a booking.
// It is a copy taken at load time, not a live link to the company row.
type CompanyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Booking is one ticket-sale record.
// BookingDate is an ISO calendar day ("2006-01-02", no time component),
// so string comparison orders the same as chronological comparison.
// Company is nil for orphan bookings (CSV rows with no company name).
// Null amounts are coalesced to 0 when the record is loaded, so the
// analytics engine never sees a missing numeric field.
type Booking struct {
	ID           string      `json:"id"`
	TicketNumber string      `json:"ticketNumber"`
	BookingDate  string      `json:"bookingDate"`
	Company      *CompanyRef `json:"company"`
	TicketAmount float64     `json:"ticketAmount"`
	Commission   float64     `json:"commission"`
}

// ── Company ──────────────────────────────────────────────────────

// Company represents a travel company record.
type Company struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateCompanyRequest defines the accepted fields for company creation/update.
type CreateCompanyRequest struct {
	Name string `json:"name"`
}

// Validate checks that required company fields are present.
func (r *CreateCompanyRequest) Validate() map[string]string {
	errors := map[string]string{}
	if r.Name == "" {
		errors["name"] = "Company name is required"
	}
	return errors
}
