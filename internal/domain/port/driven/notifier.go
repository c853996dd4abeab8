package driven

import (
	"context"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
)

// Notifier delivers a message to an address. Delivery is fire-and-forget
// from the caller's point of view: the returned error is for logging only.
type Notifier interface {
	Notify(ctx context.Context, address string, msg model.Message) error
}
