package playback

import "context"

// Store persists the whole session state as one named entry. Implementations
// live in internal/infra/sessionstore.
type Store interface {
	// Save replaces the stored session wholesale.
	Save(ctx context.Context, session Session) error
	// Load returns the stored session, or found=false when none exists.
	Load(ctx context.Context) (session Session, found bool, err error)
	// Clear removes the stored session.
	Clear(ctx context.Context) error
}
