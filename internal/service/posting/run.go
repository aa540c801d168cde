package posting

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
)

// step is one write of a pairing together with the write that reverts it.
type step struct {
	id   uuid.UUID
	do   func(ctx context.Context, w Writer) error
	undo func(ctx context.Context, w Writer) error
}

// PartialPostingError reports a pairing left half-applied because compensation failed.
// Orphans lists the rows that could not be restored.
type PartialPostingError struct {
	Kind    Kind
	Op      string
	ID      uuid.UUID
	Orphans []uuid.UUID
	Err     error
}

func (e *PartialPostingError) Error() string {
	ids := make([]string, len(e.Orphans))
	for i, id := range e.Orphans {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s %s %s: partial posting, orphans [%s]: %v", e.Op, e.Kind, e.ID, strings.Join(ids, ","), e.Err)
}

func (e *PartialPostingError) Unwrap() []error { return []error{errs.ErrPartialPosting, e.Err} }

// run applies steps in order, inside a transaction when one is available.
func (s *service) run(ctx context.Context, kind Kind, op string, id uuid.UUID, steps []step) error {
	var err error
	if s.begin != nil {
		err = s.runTx(ctx, steps)
	} else {
		err = s.runCompensated(ctx, kind, op, id, steps)
	}
	postingsTotal.WithLabelValues(string(kind), op, outcome(err)).Inc()
	return err
}

func (s *service) runTx(ctx context.Context, steps []step) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, st := range steps {
		if err := st.do(ctx, tx); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}
	return tx.Commit(ctx)
}

// runCompensated writes sequentially. When a step fails, completed steps are reverted
// in reverse order; rows whose revert also fails are reported as orphans.
func (s *service) runCompensated(ctx context.Context, kind Kind, op string, id uuid.UUID, steps []step) error {
	for i, st := range steps {
		err := st.do(ctx, s.writer)
		if err == nil {
			continue
		}
		var orphans []uuid.UUID
		for j := i - 1; j >= 0; j-- {
			if uerr := steps[j].undo(ctx, s.writer); uerr != nil {
				orphans = append(orphans, steps[j].id)
				s.log.Error("paired posting compensation failed", "kind", kind, "op", op, "id", id, "row_id", steps[j].id, "err", uerr)
			}
		}
		if len(orphans) == 0 {
			return err
		}
		s.log.Warn("paired posting left orphaned rows", "kind", kind, "op", op, "id", id, "orphans", orphans)
		return &PartialPostingError{Kind: kind, Op: op, ID: id, Orphans: orphans, Err: err}
	}
	return nil
}
