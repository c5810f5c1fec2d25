package domain

import "time"

// License is a Pro license key. Only active keys grant entitlement.
type License struct {
	Key       string    `json:"key"`
	Active    bool      `json:"active"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
