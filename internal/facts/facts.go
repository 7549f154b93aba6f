// Package facts turns extracted entities into grounded fact sentences.
//
// The resolver reads the relational store and emits short natural-language
// sentences consumed verbatim by the prompt assembler. It prioritizes
// precision over recall: exact counts and locations anchor the model's
// answer and keep it from fabricating numbers.
package facts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zynfvr/sih2/internal/argo"
	"github.com/zynfvr/sih2/internal/extract"
)

// regionFloatLimit caps the sample of float IDs emitted per region fact.
const regionFloatLimit = 5

// Store is the subset of the relational store the resolver needs.
// Interfaces are defined by the consumer; *argo.Store satisfies this.
type Store interface {
	CountFloats(ctx context.Context) (int64, error)
	FloatExists(ctx context.Context, platformNumber string) (bool, error)
	LatestCycle(ctx context.Context, platformNumber string) (*argo.Cycle, error)
	FloatsInRegion(ctx context.Context, box argo.BoundingBox, limit int32) ([]string, error)
}

// Resolver resolves entities to grounded fact sentences.
//
// Resolver is safe for concurrent use; it holds no mutable state.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(store Store, logger *slog.Logger) (*Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}, nil
}

// Resolve returns an ordered list of fact sentences for the question.
//
// Store errors never abort resolution: each is logged, surfaced as a
// "database error" sentence, and processing continues with the remaining
// facts. The returned slice is never empty for a healthy store; the total
// float count fact always comes first.
func (r *Resolver) Resolve(ctx context.Context, question string, ents extract.Entities) []string {
	var facts []string

	count, err := r.store.CountFloats(ctx)
	if err != nil {
		facts = append(facts, r.errorFact("counting floats", err))
	} else {
		facts = append(facts, fmt.Sprintf("Database contains %d unique floats.", count))
	}

	if ents.FloatID != "" {
		facts = append(facts, r.floatFacts(ctx, ents.FloatID)...)
	}

	if ents.Region != "" {
		facts = append(facts, r.regionFacts(ctx, ents.Region)...)
	}

	return facts
}

// floatFacts emits the existence fact and, when the float exists, its most
// recent cycle location. Exactly one of the exists/not-found sentences fires.
func (r *Resolver) floatFacts(ctx context.Context, floatID string) []string {
	exists, err := r.store.FloatExists(ctx, floatID)
	if err != nil {
		return []string{r.errorFact("checking float "+floatID, err)}
	}
	if !exists {
		return []string{fmt.Sprintf("Float %s not found in database.", floatID)}
	}

	facts := []string{fmt.Sprintf("Float %s exists in the database.", floatID)}

	cycle, err := r.store.LatestCycle(ctx, floatID)
	switch {
	case errors.Is(err, argo.ErrNoCycles):
		facts = append(facts, fmt.Sprintf("No cycle records found for float %s.", floatID))
	case err != nil:
		facts = append(facts, r.errorFact("fetching latest cycle for float "+floatID, err))
	default:
		facts = append(facts, fmt.Sprintf("Last cycle %d at %.2f°N, %.2f°E on %s.",
			cycle.CycleNumber, cycle.Latitude, cycle.Longitude,
			cycle.Date.Format("2006-01-02")))
	}
	return facts
}

// regionFacts emits a sample of float IDs inside the region's bounding box.
func (r *Resolver) regionFacts(ctx context.Context, region string) []string {
	box, ok := argo.RegionBox(region)
	if !ok {
		return nil
	}

	ids, err := r.store.FloatsInRegion(ctx, box, regionFloatLimit)
	if err != nil {
		return []string{r.errorFact("querying region "+region, err)}
	}
	if len(ids) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("Sample floats in %s region: %s.",
		region, strings.Join(ids, ", "))}
}

// errorFact converts a store error into a fact sentence so the model can
// acknowledge the gap instead of inventing data. The error is never
// silently swallowed.
func (r *Resolver) errorFact(op string, err error) string {
	r.logger.Warn("fact resolution failed", "op", op, "error", err)
	return fmt.Sprintf("DATABASE ERROR while %s: %v.", op, err)
}
