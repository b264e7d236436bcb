package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrMalformedIssuanceID = errors.New("malformed_issuance_id")

// NewIssuanceID derives the deterministic issuance identifier for a device
// and production starting interval. Two issuance runs over the same device
// and interval produce the same ID.
func NewIssuanceID(deviceID snowflake.ID, productionStart time.Time) string {
	return fmt.Sprintf("%d-%s", deviceID, productionStart.UTC().Format(time.RFC3339))
}

// ParseIssuanceID recovers the device ID and production starting interval
// from an issuance ID.
func ParseIssuanceID(id string) (snowflake.ID, time.Time, error) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, ErrMalformedIssuanceID
	}

	deviceID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, time.Time{}, ErrMalformedIssuanceID
	}

	start, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return 0, time.Time{}, ErrMalformedIssuanceID
	}

	return snowflake.ID(deviceID), start, nil
}
