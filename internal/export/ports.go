package export

import (
	"context"

	"givetrack/internal/core"
)

// Appender writes one donation to the bookkeeping destination and returns
// a destination-specific row reference.
type Appender interface {
	Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}
