package tasks_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

func TestFatal(t *testing.T) {
	t.Parallel()

	t.Run("marks an error as permanent", func(t *testing.T) {
		t.Parallel()

		base := errors.New("bucket does not exist")
		err := tasks.Fatal(base)
		require.Error(t, err)
		assert.True(t, tasks.IsFatal(err))
		assert.ErrorIs(t, err, base)
	})

	t.Run("survives further wrapping", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("ingest objects: %w", tasks.Fatal(errors.New("boom")))
		assert.True(t, tasks.IsFatal(err))
	})

	t.Run("plain errors are retriable", func(t *testing.T) {
		t.Parallel()

		assert.False(t, tasks.IsFatal(errors.New("transient")))
		assert.False(t, tasks.IsFatal(nil))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, tasks.Fatal(nil))
	})
}
