package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/mirrorcat/gameversions/internal/catalog"
	"github.com/mirrorcat/gameversions/internal/common"
)

// DefaultTTL is how long a successfully refreshed mirror stays fresh.
const DefaultTTL = 300 * time.Second

// Fetcher retrieves the two upstream catalog collections.
type Fetcher interface {
	Fetch(ctx context.Context) ([]catalog.Version, []catalog.VersionType, error)
}

// Service is the refresh coordinator and query bridge. A single mutex
// covers the staleness check, the conditional fetch-and-replace and the
// query execution, so refreshes and queries form one serialized stream: no
// two refreshes race and a reader never observes a mirror mid-replacement.
type Service struct {
	mu      sync.Mutex
	store   *Store
	fetcher Fetcher
	ttl     time.Duration

	// now is swapped in tests to drive the staleness clock.
	now  func() time.Time
	last time.Time
}

// NewService constructs a Service. A non-positive ttl falls back to
// DefaultTTL. The last-refresh timestamp starts at zero so the first
// access always refreshes.
func NewService(store *Store, fetcher Fetcher, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		store:   store,
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Refresh unconditionally fetches the upstream catalog and replaces the
// mirror. Called once at startup before the service accepts traffic, so
// the mirror is never empty while serving.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Service) refreshLocked(ctx context.Context) error {
	versions, types, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return &RefreshError{Err: err}
	}
	if err := s.store.ReplaceAll(ctx, versions, types); err != nil {
		return &RefreshError{Err: err}
	}
	// Advanced only on success: a failed attempt stays stale and the
	// next query retries.
	s.last = s.now()
	common.Logger().Info("mirror: refreshed", "versions", len(versions), "version_types", len(types))
	return nil
}

func (s *Service) maybeRefreshLocked(ctx context.Context) error {
	if !s.last.IsZero() && s.now().Sub(s.last) <= s.ttl {
		return nil
	}
	return s.refreshLocked(ctx)
}

// RunQuery is the entry point consumed by the HTTP boundary: it refreshes
// the mirror if stale, then executes the caller's SQL with optional
// positional parameters over a read-only connection.
func (s *Service) RunQuery(ctx context.Context, query string, args ...any) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.maybeRefreshLocked(ctx); err != nil {
		return nil, err
	}
	return s.store.Query(ctx, query, args...)
}
