package matching

import (
	"errors"
	"math/rand/v2"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/apperror"
)

// ErrNoProviderAvailable is the cause carried by the NoProviderAvailable AppError.
var ErrNoProviderAvailable = errors.New("no eligible provider")

// Selector picks exactly one provider from a non-empty eligible set.
type Selector interface {
	SelectOne(eligible []*entity.Provider) (*entity.Provider, error)
}

func noProvider() error {
	return apperror.NoProviderAvailable("", ErrNoProviderAvailable)
}

// RandomSelector picks uniformly at random.
type RandomSelector struct{}

func (RandomSelector) SelectOne(eligible []*entity.Provider) (*entity.Provider, error) {
	if len(eligible) == 0 {
		return nil, noProvider()
	}
	return eligible[rand.IntN(len(eligible))], nil
}

// FirstSelector always picks the first provider.
type FirstSelector struct{}

func (FirstSelector) SelectOne(eligible []*entity.Provider) (*entity.Provider, error) {
	if len(eligible) == 0 {
		return nil, noProvider()
	}
	return eligible[0], nil
}
