package sheets

import (
	"context"

	"alphawealth/internal/core"
)

// Ports for outbound mirror adapters.
type (
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)
