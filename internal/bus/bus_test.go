package bus

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/clients-console/internal/table"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestNewBusFallsBackToNull(t *testing.T) {
	b := NewBus("", quietLogger())
	_, ok := b.(*NullBus)
	assert.True(t, ok, "empty URL should yield NullBus")

	b = NewBus("redis://127.0.0.1:1", quietLogger())
	_, ok = b.(*NullBus)
	assert.True(t, ok, "unreachable Redis should yield NullBus")
	assert.NotEmpty(t, b.Origin())
}

func TestNullBus(t *testing.T) {
	nb := NewNullBus(quietLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, nb.PublishCriteriaChange(ctx, CriteriaChange{Criteria: table.Criteria{{Field: table.FieldName, Direction: table.Asc}}}))
	require.NoError(t, nb.HealthCheck(ctx))
	err := nb.ReadCriteriaChanges(ctx, func(context.Context, CriteriaChange) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, nb.Close())
}

func TestRedisBusPublishAndRead(t *testing.T) {
	mr := miniredis.RunT(t)

	publisher, err := NewRedisBus("redis://"+mr.Addr(), quietLogger())
	require.NoError(t, err)
	defer publisher.Close()

	reader, err := NewRedisBus("redis://"+mr.Addr(), quietLogger())
	require.NoError(t, err)
	reader.block = 50 * time.Millisecond
	defer reader.Close()

	assert.NotEqual(t, publisher.Origin(), reader.Origin())

	ctx := context.Background()
	want := table.Criteria{{Field: table.FieldID, Direction: table.Desc}, {Field: table.FieldName, Direction: table.Asc}}
	require.NoError(t, publisher.PublishCriteriaChange(ctx, CriteriaChange{Backend: "file", Criteria: want}))
	// The reader's own messages are skipped.
	require.NoError(t, reader.PublishCriteriaChange(ctx, CriteriaChange{Backend: "file", Criteria: table.Criteria{}}))

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	var got []CriteriaChange
	done := make(chan error, 1)
	go func() {
		done <- reader.ReadCriteriaChangesFrom(readCtx, "0-0", func(_ context.Context, c CriteriaChange) error {
			mu.Lock()
			got = append(got, c)
			mu.Unlock()
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, publisher.Origin(), got[0].Origin)
	assert.Equal(t, "file", got[0].Backend)
	assert.Equal(t, want, got[0].Criteria)
	assert.NotZero(t, got[0].Timestamp)
}

func TestDecodeChangeRejectsMalformed(t *testing.T) {
	_, err := decodeChange(map[string]interface{}{"criteria": "not json"})
	assert.Error(t, err)

	_, err = decodeChange(map[string]interface{}{
		"criteria": `[{"field":"name","direction":"asc"},{"field":"name","direction":"desc"}]`,
	})
	assert.ErrorIs(t, err, table.ErrDuplicateField)

	c, err := decodeChange(map[string]interface{}{
		"origin":    "abc",
		"criteria":  `[{"field":"type","direction":"desc"}]`,
		"timestamp": "1700000000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Origin)
	assert.Equal(t, int64(1700000000000), c.Timestamp)
	assert.Equal(t, table.Criteria{{Field: table.FieldCategory, Direction: table.Desc}}, c.Criteria)
}
