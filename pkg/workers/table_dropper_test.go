package workers_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
	"github.com/dmitrymomot/dispatchkit/pkg/workers"
)

func TestTableDropperSchedule(t *testing.T) {
	t.Parallel()

	w := workers.NewTableDropper()
	assert.Equal(t, "delete_db_table", w.QueueName())
	assert.Equal(t, 0, w.DelaySeconds())
	assert.Equal(t, 300, w.RetrySeconds())
}

func TestTableDropperRun(t *testing.T) {
	t.Parallel()

	t.Run("drops the table inside the session and acknowledges", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		task := testTask(7, workers.QueueDeleteDBTable, `{"full_table_name":"tmp_export_20260801"}`)

		err := workers.NewTableDropper().Run(context.Background(), task, session, testResources(nil), &fakeLease{})
		require.NoError(t, err)

		require.Len(t, session.execs, 1)
		assert.Equal(t, `DROP TABLE IF EXISTS "tmp_export_20260801"`, session.execs[0])
		assert.True(t, session.acked(7), "drop and ack must share the session")
	})

	t.Run("quotes schema-qualified names per part", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		task := testTask(8, workers.QueueDeleteDBTable, `{"full_table_name":"scratch.drift_report_tmp"}`)

		err := workers.NewTableDropper().Run(context.Background(), task, session, testResources(nil), &fakeLease{})
		require.NoError(t, err)

		require.Len(t, session.execs, 1)
		assert.Equal(t, `DROP TABLE IF EXISTS "scratch"."drift_report_tmp"`, session.execs[0])
	})

	t.Run("rejects names that are not identifiers", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{
			"users; DROP TABLE accounts",
			"tmp_export--",
			`tmp"export`,
			"a.b.c",
			"1_starts_with_digit",
			"spaced out",
			"",
		} {
			session := &fakeSession{}
			task := testTask(9, workers.QueueDeleteDBTable, fmt.Sprintf(`{"full_table_name":%q}`, name))

			err := workers.NewTableDropper().Run(context.Background(), task, session, testResources(nil), &fakeLease{})
			require.Error(t, err, "name %q must be rejected", name)
			assert.True(t, tasks.IsFatal(err), "name %q can never succeed, retrying is pointless", name)
			assert.ErrorIs(t, err, workers.ErrInvalidTableName)
			assert.Empty(t, session.execs, "no statement may reach the session for %q", name)
			assert.False(t, session.acked(9))
		}
	})

	t.Run("missing params fail fatally", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{}
		task := testTask(10, workers.QueueDeleteDBTable, "")

		err := workers.NewTableDropper().Run(context.Background(), task, session, testResources(nil), &fakeLease{})
		require.Error(t, err)
		assert.True(t, tasks.IsFatal(err))
		assert.ErrorIs(t, err, tasks.ErrNoParams)
	})

	t.Run("exec failure leaves the task for retry", func(t *testing.T) {
		t.Parallel()

		session := &fakeSession{execErr: errors.New("deadlock detected")}
		task := testTask(11, workers.QueueDeleteDBTable, `{"full_table_name":"tmp_export_20260801"}`)

		err := workers.NewTableDropper().Run(context.Background(), task, session, testResources(nil), &fakeLease{})
		require.Error(t, err)
		requireNotFatal(t, err)
		assert.False(t, session.acked(11))
	})
}
