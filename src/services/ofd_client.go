// backend/src/services/ofd_client.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/username/receiptcheck/backend/src/logger"
	"github.com/username/receiptcheck/backend/src/models"
	"golang.org/x/net/publicsuffix"
)

// Fixed format of the operator's transactionDate field.
const transactionDateLayout = "2006-01-02T15:04:05"

// Structs for the OFD ticket lookup response
type ofdTicketResponse struct {
	Ticket ofdTicket `json:"ticket"`
}

type ofdTicket struct {
	TransactionDate string                 `json:"transactionDate"`
	Items           []models.RawTicketItem `json:"items"`
}

// ofdClientImpl implements the TicketResolver interface against the fiscal
// operator's consumer API.
type ofdClientImpl struct {
	httpClient http.Client
	baseURL    string
}

// NewOFDClient creates the operator-backed ticket resolver. The HTTP client
// carries a cookie jar because the consumer portal sets session cookies on
// the first request.
func NewOFDClient(baseURL string, timeout time.Duration) TicketResolver {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	client := http.Client{
		Jar:     jar,
		Timeout: timeout,
	}

	return &ofdClientImpl{
		httpClient: client,
		baseURL:    baseURL,
	}
}

// ResolveTicket looks the receipt up by its six QR fields. The fields must
// appear in exactly this order; the operator rejects any other arrangement.
func (c *ofdClientImpl) ResolveTicket(ctx context.Context, params models.TicketParams) (*models.Ticket, error) {
	lookupURL := fmt.Sprintf("%s/api/tickets/ticket/t=%s&s=%s&fn=%d&i=%d&fp=%d&n=%d",
		c.baseURL,
		params.Time,
		params.Sum,
		params.FiscalStorage,
		params.Index,
		params.FiscalSignature,
		params.Number,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build lookup request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup request failed: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: operator returned status %d for key %q", ErrMalformedResponse, resp.StatusCode, params.Key())
	}

	var response ofdTicketResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode ticket body: %v", ErrMalformedResponse, err)
	}

	date, err := time.Parse(transactionDateLayout, response.Ticket.TransactionDate)
	if err != nil {
		return nil, fmt.Errorf("%w: transactionDate %q does not match %s", ErrInvalidTimestamp, response.Ticket.TransactionDate, transactionDateLayout)
	}

	logger.L.Debug("Resolved ticket from operator",
		"key", params.Key(),
		"transactionDate", response.Ticket.TransactionDate,
		"rawItems", len(response.Ticket.Items))

	return &models.Ticket{
		Date:  date,
		Items: response.Ticket.Items,
	}, nil
}
