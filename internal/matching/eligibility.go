// Package matching finds providers able to serve a booking request and
// picks one of them.
package matching

import (
	"context"
	"fmt"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Criteria is one booking request as seen by the eligibility rules.
type Criteria struct {
	AreaID      uuid.UUID
	ServiceIDs  []uuid.UUID
	ScheduledAt time.Time
	CustomerID  uuid.UUID
	Exclude     []uuid.UUID
	// Now is the instant subscriptions are checked against. Zero means time.Now().
	Now time.Time
}

// Stage is a single named eligibility predicate.
type Stage struct {
	Name string
	Keep func(p *entity.Provider, c Criteria) bool
}

// Stages are applied in order; a provider is eligible only if every stage keeps it.
var Stages = []Stage{
	{Name: "active", Keep: func(p *entity.Provider, _ Criteria) bool {
		return p.IsActive
	}},
	{Name: "subscription", Keep: func(p *entity.Provider, c Criteria) bool {
		return p.HasSubscriptionAt(c.Now)
	}},
	{Name: "area", Keep: func(p *entity.Provider, c Criteria) bool {
		return p.CoversArea(c.AreaID)
	}},
	{Name: "skills", Keep: func(p *entity.Provider, c Criteria) bool {
		for _, id := range c.ServiceIDs {
			if !p.OffersService(id) {
				return false
			}
		}
		return true
	}},
	{Name: "schedule", Keep: func(p *entity.Provider, c Criteria) bool {
		return p.WorksAt(c.ScheduledAt)
	}},
	{Name: "exclusion", Keep: func(p *entity.Provider, c Criteria) bool {
		for _, id := range c.Exclude {
			if p.UserID == id {
				return false
			}
		}
		return true
	}},
	{Name: "self", Keep: func(p *entity.Provider, c Criteria) bool {
		return p.UserID != c.CustomerID
	}},
}

// Check returns the name of the first stage that rejects p, or "" if p is eligible.
func Check(p *entity.Provider, c Criteria) string {
	c = c.withNow()
	for _, stage := range Stages {
		if !stage.Keep(p, c) {
			return stage.Name
		}
	}
	return ""
}

// Filter keeps the candidates that pass every stage, preserving order.
func Filter(candidates []*entity.Provider, c Criteria) []*entity.Provider {
	c = c.withNow()
	eligible := make([]*entity.Provider, 0, len(candidates))
	for _, p := range candidates {
		if Check(p, c) == "" {
			eligible = append(eligible, p)
		}
	}
	return eligible
}

func (c Criteria) withNow() Criteria {
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
	return c
}

// CandidateSource narrows providers to an area. Every stage is still
// re-applied to what it returns.
type CandidateSource interface {
	ListCandidatesByArea(ctx context.Context, areaID uuid.UUID) ([]*entity.Provider, error)
}

type AreaLookup interface {
	FindAreaByID(ctx context.Context, id uuid.UUID) (*entity.ServiceArea, error)
}

type Finder struct {
	providers CandidateSource
	areas     AreaLookup
	log       *zap.Logger
}

func NewFinder(providers CandidateSource, areas AreaLookup, log *zap.Logger) *Finder {
	return &Finder{
		providers: providers,
		areas:     areas,
		log:       log.With(zap.String("component", "matching")),
	}
}

// FindEligible returns every provider satisfying c. An unknown area is a
// NotFound error; an empty result is not an error.
func (f *Finder) FindEligible(ctx context.Context, c Criteria) ([]*entity.Provider, error) {
	area, err := f.areas.FindAreaByID(ctx, c.AreaID)
	if err != nil {
		return nil, fmt.Errorf("find area: %w", err)
	}
	if area == nil {
		return nil, apperror.NotFound("Service area")
	}

	candidates, err := f.providers.ListCandidatesByArea(ctx, c.AreaID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	eligible := Filter(candidates, c)

	f.log.Debug("Eligibility evaluated",
		zap.String("area_id", c.AreaID.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("eligible", len(eligible)),
	)

	return eligible, nil
}
