package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// outcomeKind classifies a processed row.
type outcomeKind int

const (
	outcomeImported outcomeKind = iota
	outcomeSkipped
	outcomeFailed
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeImported:
		return "imported"
	case outcomeSkipped:
		return "skipped"
	default:
		return "error"
	}
}

// rowOutcome is the result of one row. Only imported rows carry warnings.
type rowOutcome struct {
	row      int
	kind     outcomeKind
	entryID  uuid.UUID
	created  bool
	message  string // failed only
	warnings []string
}

// persistError marks a failure from the collection adapter so the
// orchestrator can phrase it with MapError instead of echoing SQL.
type persistError struct {
	op  string
	err error
}

func (e *persistError) Error() string { return e.op + ": " + e.err.Error() }
func (e *persistError) Unwrap() error { return e.err }

// reconcile matches the resolved entity against the collection and
// applies policy. The lookup runs against the collection as of right now,
// which includes every earlier row of this job. Enrichment happens only
// once the row is known to create or update an entry; a skipped row makes
// no detail fetch and carries no warnings.
func reconcile(
	ctx context.Context,
	coll Collection,
	pos *positionAssigner,
	resolver *Resolver,
	policy DuplicatePolicy,
	res *Resolution,
	row RowFields,
) (rowOutcome, error) {
	entity := res.Entity
	existing, err := coll.FindEntry(ctx, entity.CanonicalID, entity.Kind)
	if err != nil {
		return rowOutcome{}, &persistError{op: "find entry", err: err}
	}

	if existing != nil && policy == PolicySkip {
		return rowOutcome{kind: outcomeSkipped, entryID: existing.ID}, nil
	}

	enrichWarnings := resolver.Enrich(ctx, res)

	var out rowOutcome
	if existing != nil {
		out, err = updateExisting(ctx, coll, pos, existing, entity, row)
	} else {
		out, err = createEntry(ctx, coll, pos, entity, row)
	}
	if err != nil {
		return rowOutcome{}, err
	}
	out.warnings = append(enrichWarnings, out.warnings...)
	return out, nil
}

// createEntry inserts a new entry at the assigned position.
func createEntry(
	ctx context.Context,
	coll Collection,
	pos *positionAssigner,
	entity *ResolvedEntity,
	row RowFields,
) (rowOutcome, error) {
	order, warn, err := pos.assign(ctx, row.Order)
	if errors.Is(err, ErrOrderExhausted) {
		return rowOutcome{}, rowErrorf(err, "cannot place entry: %v (%d)", err, MaxOrder)
	}
	if err != nil {
		return rowOutcome{}, &persistError{op: "assign order", err: err}
	}

	entry := CollectionEntry{
		ID:           uuid.New(),
		CanonicalID:  entity.CanonicalID,
		Kind:         entity.Kind,
		Title:        entity.Title,
		PosterPath:   entity.PosterPath,
		BackdropPath: entity.BackdropPath,
		ReleaseDate:  entity.ReleaseDate,
		FirstAirDate: entity.FirstAirDate,
		Order:        order,
	}
	if coll.Info().HasNote {
		entry.Note = ToPgText(row.Note)
	}

	created, err := coll.CreateEntry(ctx, entry)
	if err != nil {
		return rowOutcome{}, &persistError{op: "create entry", err: err}
	}

	out := rowOutcome{kind: outcomeImported, entryID: created.ID, created: true}
	if warn != "" {
		out.warnings = append(out.warnings, warn)
	}
	return out, nil
}

// updateExisting applies the update policy. Only fields the row carried
// change; order changes only for an explicit, valid value.
func updateExisting(
	ctx context.Context,
	coll Collection,
	pos *positionAssigner,
	existing *CollectionEntry,
	entity *ResolvedEntity,
	row RowFields,
) (rowOutcome, error) {
	upd := EntryUpdate{Title: entity.Title}
	if upd.Title == "" {
		upd.Title = existing.Title
	}
	if d := entity.Date(); d.Valid {
		if entity.Kind == KindTV {
			upd.FirstAirDate = d
		} else {
			upd.ReleaseDate = d
		}
	}
	if coll.Info().HasNote {
		upd.Note = ToPgText(row.Note)
	}

	var warnings []string
	if row.Order != "" {
		if n, ok := ParseOrder(row.Order); ok {
			upd.Order = ToPgInt4(n)
			pos.observe(n)
		} else {
			warnings = append(warnings, invalidOrderWarning(row.Order,
				fmt.Sprintf("kept existing position %d", existing.Order)))
		}
	}

	updated, err := coll.UpdateEntry(ctx, existing.ID, upd)
	if err != nil {
		return rowOutcome{}, &persistError{op: "update entry", err: err}
	}

	return rowOutcome{kind: outcomeImported, entryID: updated.ID, warnings: warnings}, nil
}
