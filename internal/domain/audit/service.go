package audit

import "context"

// Recorder writes audit entries opportunistically. Record never returns an
// error: a failing sink is logged and ignored so business operations proceed.
type Recorder interface {
	Record(ctx context.Context, action, entityType, entityID string, details any)
	List(ctx context.Context, filter Filter) ([]EntryResponse, error)
}
