package tasks_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

func TestTask_DecodeParams(t *testing.T) {
	t.Parallel()

	t.Run("decodes JSON payload", func(t *testing.T) {
		t.Parallel()

		task := &tasks.Task{ID: 1, Params: json.RawMessage(`{"full_table_name":"org_7_model_3"}`)}

		var p struct {
			FullTableName string `json:"full_table_name"`
		}
		require.NoError(t, task.DecodeParams(&p))
		assert.Equal(t, "org_7_model_3", p.FullTableName)
	})

	t.Run("missing params", func(t *testing.T) {
		t.Parallel()

		task := &tasks.Task{ID: 2}
		var p map[string]any
		assert.ErrorIs(t, task.DecodeParams(&p), tasks.ErrNoParams)
	})

	t.Run("malformed payload", func(t *testing.T) {
		t.Parallel()

		task := &tasks.Task{ID: 3, Params: json.RawMessage(`{"broken"`)}
		var p map[string]any
		assert.Error(t, task.DecodeParams(&p))
	})
}

func TestTask_Anchor(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	task := &tasks.Task{CreationTime: created}
	assert.Equal(t, created, task.Anchor())

	after := created.Add(30 * time.Minute)
	task.ExecuteAfter = &after
	assert.Equal(t, after, task.Anchor())
}

func TestLeaseName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "task-runner:42", tasks.LeaseName(42))
	assert.Equal(t, "task-runner:0", tasks.LeaseName(0))
}
