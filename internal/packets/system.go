package packets

import (
	"context"
	"time"
)

// System generates signing packets.
type System interface {
	Handler() *Handler
	// Generate merges the transaction's non-rejected PDFs in upload order.
	Generate(ctx context.Context, transactionID string) (*Packet, error)
}

// Config holds packet generation settings.
type Config struct {
	// DownloadPrefix forms the packet URL when the storage provider cannot sign.
	DownloadPrefix string
	URLExpiry      time.Duration
}
