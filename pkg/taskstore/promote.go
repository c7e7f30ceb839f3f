package taskstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// PromoteEligible selects every task whose next-eligible time has passed,
// locking the rows with SKIP LOCKED, bumps num_pushed in the same statement
// and hands the batch to push before committing. Returns the number of
// promoted tasks.
func (s *Store) PromoteEligible(ctx context.Context, push tasks.PushFunc) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, errors.Join(ErrPromote, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, s.promoteSQL, s.promoteArgs...)
	if err != nil {
		return 0, errors.Join(ErrPromote, err)
	}
	var promotions []tasks.Promotion
	for rows.Next() {
		var p tasks.Promotion
		if err := rows.Scan(&p.TaskID, &p.WorkerName, &p.NumPushed); err != nil {
			rows.Close()
			return 0, errors.Join(ErrPromote, err)
		}
		promotions = append(promotions, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, errors.Join(ErrPromote, err)
	}

	if len(promotions) > 0 && push != nil {
		// Queue errors propagate untouched so the caller can tell a failed
		// push from a failed sweep; the deferred rollback undoes the bump.
		if err := push(ctx, promotions); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Join(ErrPromote, err)
	}
	return len(promotions), nil
}

// buildPromoteQuery renders the eligibility sweep for a timing policy.
// Worker names become CASE arms bound as parameters, in sorted order so the
// statement text is deterministic; unknown names fall through to the ELSE
// arms carrying the package defaults.
func buildPromoteQuery(policy tasks.Policy) (string, []any) {
	names := make([]string, 0, len(policy))
	for name := range policy {
		names = append(names, name)
	}
	slices.Sort(names)

	args := make([]any, 0, len(names)*3)
	var delayCase, retryCase strings.Builder

	if len(names) == 0 {
		fmt.Fprintf(&delayCase, "make_interval(secs => %d)", tasks.DefaultDelaySeconds)
		fmt.Fprintf(&retryCase, "make_interval(secs => %d)", tasks.DefaultRetrySeconds)
	} else {
		delayCase.WriteString("CASE bg_worker_task")
		retryCase.WriteString("CASE bg_worker_task")
		for i, name := range names {
			timing := policy[name]
			args = append(args, name, int64(timing.DelaySeconds), int64(timing.RetrySeconds))
			base := i * 3
			fmt.Fprintf(&delayCase, " WHEN $%d THEN make_interval(secs => $%d)", base+1, base+2)
			fmt.Fprintf(&retryCase, " WHEN $%d THEN make_interval(secs => $%d)", base+1, base+3)
		}
		fmt.Fprintf(&delayCase, " ELSE make_interval(secs => %d) END", tasks.DefaultDelaySeconds)
		fmt.Fprintf(&retryCase, " ELSE make_interval(secs => %d) END", tasks.DefaultRetrySeconds)
	}

	sql := fmt.Sprintf(`WITH eligible AS (
	SELECT id FROM tasks
	WHERE COALESCE(execute_after, creation_time) + %s + num_pushed * %s <= statement_timestamp()
	FOR UPDATE SKIP LOCKED
)
UPDATE tasks AS t
SET num_pushed = t.num_pushed + 1
FROM eligible AS e
WHERE t.id = e.id
RETURNING t.id, t.bg_worker_task, t.num_pushed`, delayCase.String(), retryCase.String())

	return sql, args
}
