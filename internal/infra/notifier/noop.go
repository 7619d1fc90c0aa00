package notifier

import (
	"context"

	"github.com/google/uuid"
)

// Noop stands in when no broker is configured, and in tests.
type Noop struct{}

func (Noop) OrderEvent(_ context.Context, _ string, _ uuid.UUID, _ any) {}
