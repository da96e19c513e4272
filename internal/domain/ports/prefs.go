package ports

import (
	"context"
	"time"
)

// PreferencesStore persists the freshness timestamp and the user's
// source/target currency selection. Selections survive cache clears.
//
// The Watch methods return streams that yield the currently persisted code
// first (when one exists) and then every subsequent change. The returned
// channel is closed when ctx is cancelled.
type PreferencesStore interface {
	SaveLastUpdated(ctx context.Context, t time.Time) error

	// LastUpdated reports the stored timestamp; ok is false when no
	// timestamp has ever been saved.
	LastUpdated(ctx context.Context) (t time.Time, ok bool, err error)

	// IsDataFresh reports whether the stored timestamp and now fall on the
	// same calendar day in local time. Never-saved data is not fresh.
	IsDataFresh(ctx context.Context, now time.Time) (bool, error)

	SaveSourceCurrencyCode(ctx context.Context, code string) error
	SaveTargetCurrencyCode(ctx context.Context, code string) error

	WatchSourceCurrencyCode(ctx context.Context) (<-chan string, error)
	WatchTargetCurrencyCode(ctx context.Context) (<-chan string, error)
}
