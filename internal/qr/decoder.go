// Package qr normalizes and validates the text payload of a scanned guest
// QR code. Guest passes encode the guest ID either bare, with a "guest-"
// prefix, or inside a deep link URL.
package qr

import (
	"net/url"
	"regexp"
	"strings"
)

// InvalidFormatMessage is shown to the driver when a scanned payload does
// not contain a guest identifier.
const InvalidFormatMessage = "Invalid QR code format. Please scan a valid guest QR code."

const guestPrefix = "guest-"

// Canonical dashed UUID form, case-insensitive.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ScannedIdentifier is the transient result of decoding one QR payload. It
// lives only for the duration of a single scan-confirm interaction.
type ScannedIdentifier struct {
	ID    string
	Valid bool
}

// Decode extracts a candidate guest identifier from raw scanned text.
// Normalization rules, applied in order until one matches:
//
//  1. A "guest-" prefix is stripped once.
//  2. Text containing "/guest/" or "guestId=" is treated as a deep link:
//     the portion after the first "?" is parsed as a query string and its
//     guestId parameter extracted. Any parse failure or absent parameter
//     falls back to the raw text.
//  3. Anything else is used unchanged.
//
// The candidate is valid only when it has the canonical dashed UUID shape.
// Decode is pure and deterministic.
func Decode(raw string) ScannedIdentifier {
	candidate := raw

	switch {
	case strings.HasPrefix(raw, guestPrefix):
		candidate = strings.TrimPrefix(raw, guestPrefix)
	case strings.Contains(raw, "/guest/") || strings.Contains(raw, "guestId="):
		if _, query, ok := strings.Cut(raw, "?"); ok {
			if values, err := url.ParseQuery(query); err == nil {
				if id := values.Get("guestId"); id != "" {
					candidate = id
				}
			}
		}
	}

	return ScannedIdentifier{
		ID:    candidate,
		Valid: uuidPattern.MatchString(candidate),
	}
}
