package parsers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/username/receiptcheck/backend/src/models"
)

// ParseTicketParams decodes the raw text of a scanned receipt QR code into
// TicketParams. The payload is a query-string-encoded blob of the six OFD
// fields, e.g. "t=20230101T1200&s=100.50&fn=9280&i=5&fp=3528&n=1".
func ParseTicketParams(raw string) (models.TicketParams, error) {
	var params models.TicketParams

	values, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return params, fmt.Errorf("payload is not a valid query string: %w", err)
	}

	timeStr, err := requireField(values, "t")
	if err != nil {
		return params, err
	}
	sumStr, err := requireField(values, "s")
	if err != nil {
		return params, err
	}
	if _, err := strconv.ParseFloat(sumStr, 64); err != nil {
		return params, fmt.Errorf("field 's' is not a decimal number: %q", sumStr)
	}
	fiscalStorage, err := requireUint(values, "fn", 64)
	if err != nil {
		return params, err
	}
	index, err := requireUint(values, "i", 32)
	if err != nil {
		return params, err
	}
	fiscalSignature, err := requireUint(values, "fp", 64)
	if err != nil {
		return params, err
	}
	number, err := requireUint(values, "n", 64)
	if err != nil {
		return params, err
	}

	params = models.TicketParams{
		Time:            timeStr,
		Sum:             sumStr,
		FiscalStorage:   fiscalStorage,
		Index:           uint32(index),
		FiscalSignature: fiscalSignature,
		Number:          number,
	}
	return params, nil
}

func requireField(values url.Values, key string) (string, error) {
	value := values.Get(key)
	if value == "" {
		return "", fmt.Errorf("payload is missing required field %q", key)
	}
	return value, nil
}

func requireUint(values url.Values, key string, bitSize int) (uint64, error) {
	raw, err := requireField(values, key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(raw, 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("field %q is not an unsigned integer: %q", key, raw)
	}
	return value, nil
}
