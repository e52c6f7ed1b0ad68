package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrOrderExhausted is returned when a new entry would need a position
// past MaxOrder.
var ErrOrderExhausted = errors.New("no position left after the current maximum")

// positionAssigner hands out orders for new entries within one job.
//
// The collection max is read once and then tracked in memory; every row
// commits before the next one is assigned, so the running value always
// matches the store for this job's own writes.
type positionAssigner struct {
	coll   Collection
	max    int
	seeded bool
}

func newPositionAssigner(coll Collection) *positionAssigner {
	return &positionAssigner{coll: coll}
}

func (p *positionAssigner) seed(ctx context.Context) error {
	if p.seeded {
		return nil
	}
	max, err := p.coll.MaxOrder(ctx)
	if err != nil {
		return fmt.Errorf("read max order: %w", err)
	}
	if max > p.max {
		p.max = max
	}
	p.seeded = true
	return nil
}

// assign returns the order for a new entry. raw is the row's order cell;
// an explicit positive integer is used verbatim even if another entry
// already holds it. Anything else falls back to max+1, with a warning when
// a value was supplied but unusable.
func (p *positionAssigner) assign(ctx context.Context, raw string) (int, string, error) {
	if err := p.seed(ctx); err != nil {
		return 0, "", err
	}

	if n, ok := ParseOrder(raw); ok {
		p.observe(n)
		return n, "", nil
	}

	if p.max >= MaxOrder {
		return 0, "", ErrOrderExhausted
	}
	p.max++
	if raw == "" {
		return p.max, "", nil
	}
	return p.max, invalidOrderWarning(raw, fmt.Sprintf("assigned position %d", p.max)), nil
}

// observe records an order written outside assign (an explicit order on
// the update path) so later fallbacks land after it.
func (p *positionAssigner) observe(order int) {
	if order > p.max {
		p.max = order
	}
}

func invalidOrderWarning(raw, fallback string) string {
	return fmt.Sprintf("Invalid order value %q; %s", raw, fallback)
}
