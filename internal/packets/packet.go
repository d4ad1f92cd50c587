// Package packets regenerates a transaction's signing packet by merging its
// PDF documents into a single file.
package packets

import "time"

// Packet describes a generated PDF ready for download.
type Packet struct {
	TransactionID string    `json:"transaction_id"`
	URL           string    `json:"url"`
	Filename      string    `json:"filename"`
	StorageKey    string    `json:"storage_key"`
	PageCount     int       `json:"page_count"`
	Sources       int       `json:"sources"`
	GeneratedAt   time.Time `json:"generated_at"`
}
