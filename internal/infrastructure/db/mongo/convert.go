package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/screengrabber/account-api/internal/core/domain"
)

// decodeTime reads a timestamp stored either as a BSON date or, for records
// written by the legacy backend, as an ISO-8601 string.
func decodeTime(rv bson.RawValue) time.Time {
	if t, ok := rv.TimeOK(); ok {
		return t.UTC()
	}
	if s, ok := rv.StringValueOK(); ok {
		for _, layout := range legacyLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}

// Naive timestamps carry no offset and are read as UTC.
var legacyLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// parseProvider maps stored provider names, including the legacy "email"
// and "google", onto domain providers.
func parseProvider(s string) domain.AuthProvider {
	switch s {
	case string(domain.ProviderFederated), "google":
		return domain.ProviderFederated
	default:
		return domain.ProviderPassword
	}
}
