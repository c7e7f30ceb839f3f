package workers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// QueueDeleteDBTable is the queue name tasks for the table dropper are
// created under.
const QueueDeleteDBTable = "delete_db_table"

// tableNameRe accepts a plain or schema-qualified SQL identifier. Anything
// else is rejected before it can reach the DROP statement.
var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// TableDropParams name the table to remove.
type TableDropParams struct {
	FullTableName string `json:"full_table_name"`
}

// TableDropper removes the scratch tables analytics runs leave behind. The
// drop happens inside the task's session, so the table disappears in the
// same transaction that acknowledges the task.
type TableDropper struct{}

// NewTableDropper creates the table drop worker.
func NewTableDropper() *TableDropper {
	return &TableDropper{}
}

func (w *TableDropper) QueueName() string { return QueueDeleteDBTable }

func (w *TableDropper) DelaySeconds() int { return 0 }

func (w *TableDropper) RetrySeconds() int { return 300 }

// Run validates the identifier, drops the table and deletes the task row.
// A malformed name can never succeed, so it fails fatally.
func (w *TableDropper) Run(ctx context.Context, task *tasks.Task, session tasks.Session, res *tasks.Resources, _ tasks.Lease) error {
	var params TableDropParams
	if err := task.DecodeParams(&params); err != nil {
		return tasks.Fatal(err)
	}
	if !tableNameRe.MatchString(params.FullTableName) {
		return tasks.Fatal(fmt.Errorf("%w: %q", ErrInvalidTableName, params.FullTableName))
	}

	if _, err := session.Exec(ctx, "DROP TABLE IF EXISTS "+quoteTableName(params.FullTableName)); err != nil {
		return fmt.Errorf("drop table %q: %w", params.FullTableName, err)
	}

	res.Log().Info("scratch table dropped",
		logger.TaskID(task.ID),
		logger.Worker(w.QueueName()))

	return session.DeleteTask(ctx, task.ID)
}

// quoteTableName double-quotes each identifier part. The regexp already
// excludes quotes, so this only preserves case and reserved words.
func quoteTableName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + p + `"`
	}
	return strings.Join(parts, ".")
}
