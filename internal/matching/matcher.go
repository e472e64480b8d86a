package matching

import (
	"context"
	"errors"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/apperror"
)

// Matcher composes eligibility and selection under a deadline.
type Matcher struct {
	finder   *Finder
	selector Selector
	timeout  time.Duration
}

func NewMatcher(finder *Finder, selector Selector, timeout time.Duration) *Matcher {
	return &Matcher{finder: finder, selector: selector, timeout: timeout}
}

// Assign returns one eligible provider for c. A query that outlives the
// matcher timeout is reported as a Timeout error.
func (m *Matcher) Assign(ctx context.Context, c Criteria) (*entity.Provider, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	eligible, err := m.finder.FindEligible(ctx, c)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.Timeout("Finding a provider took too long, please try again", err)
		}
		return nil, err
	}

	return m.selector.SelectOne(eligible)
}
