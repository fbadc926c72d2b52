package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `ticketNumber,bookingDate,companyName,ticketAmount,commission
SAT-1001,2026-01-05,Sri Amaravathi Travels,1200,80
SAT-1002,2026-01-05,Beta Tours,500,30
SAT-1003,2026-01-06,,100,5
`

func TestParseCSV(t *testing.T) {
	result, err := ParseCSVString(sampleCSV)
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)
	assert.Empty(t, result.Errors)

	first := result.Rows[0]
	assert.Equal(t, "SAT-1001", first.TicketNumber)
	assert.Equal(t, "2026-01-05", first.BookingDate)
	assert.Equal(t, "Sri Amaravathi Travels", first.CompanyName)
	assert.InDelta(t, 1200, first.TicketAmount, 1e-9)
	assert.InDelta(t, 80, first.Commission, 1e-9)

	// Empty company name is allowed — the booking becomes an orphan.
	assert.Equal(t, "", result.Rows[2].CompanyName)
}

func TestParseCSVHeaderIsCaseInsensitive(t *testing.T) {
	result, err := ParseCSVString("TicketNumber,BookingDate,CompanyName,TicketAmount,Commission\nSAT-1,2026-02-01,Alpha,10,1\n")
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
}

func TestParseCSVRejectsBadHeader(t *testing.T) {
	_, err := ParseCSVString("ticket,date,company\nSAT-1,2026-02-01,Alpha\n")
	assert.Error(t, err)
}

func TestParseCSVRejectsEmptyInput(t *testing.T) {
	_, err := ParseCSVString("")
	assert.Error(t, err)
}

func TestParseCSVEmptyAmountsParseAsZero(t *testing.T) {
	result, err := ParseCSVString("ticketNumber,bookingDate,companyName,ticketAmount,commission\nSAT-1,2026-02-01,Alpha,,\n")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Zero(t, result.Rows[0].TicketAmount)
	assert.Zero(t, result.Rows[0].Commission)
}

func TestParseCSVCollectsRowErrors(t *testing.T) {
	csv := `ticketNumber,bookingDate,companyName,ticketAmount,commission
SAT-1,2026-02-01,Alpha,10,1
SAT-2,02/01/2026,Alpha,10,1
SAT-3,2026-02-01,Alpha,ten,1
,2026-02-01,Alpha,10,1
SAT-5,2026-02-01,Alpha,-10,1
SAT-6,2026-02-02,Beta,20,2
`
	result, err := ParseCSVString(csv)
	require.NoError(t, err)

	// Valid rows survive the bad ones.
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "SAT-1", result.Rows[0].TicketNumber)
	assert.Equal(t, "SAT-6", result.Rows[1].TicketNumber)

	require.Len(t, result.Errors, 4)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "bookingDate")
	assert.Contains(t, result.Errors[1].Message, "ticketAmount")
	assert.Contains(t, result.Errors[2].Message, "ticketNumber")
	assert.Contains(t, result.Errors[3].Message, "negative")
}

func TestParseCSVSkipsBlankLines(t *testing.T) {
	result, err := ParseCSVString("ticketNumber,bookingDate,companyName,ticketAmount,commission\n\nSAT-1,2026-02-01,Alpha,10,1\n\n")
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
	assert.Empty(t, result.Errors)
}

func TestParseCSVQuotedCompanyName(t *testing.T) {
	result, err := ParseCSVString("ticketNumber,bookingDate,companyName,ticketAmount,commission\nSAT-1,2026-02-01,\"Alpha, Beta & Co\",10,1\n")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Alpha, Beta & Co", result.Rows[0].CompanyName)
}
