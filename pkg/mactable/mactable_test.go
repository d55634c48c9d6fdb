package mactable

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iamBelugaa/mactable/pkg/clock"
	"github.com/iamBelugaa/mactable/pkg/errors"
	"github.com/iamBelugaa/mactable/pkg/events"
	"github.com/iamBelugaa/mactable/pkg/macaddr"
	"github.com/iamBelugaa/mactable/pkg/options"
)

const (
	roleClient  Role = 0
	roleGateway Role = 1
	roleSensor  Role = 2
)

func newTable(t *testing.T, capacity int, opts ...options.OptionFunc) (*Table, *clock.Simulated) {
	t.Helper()

	clk := clock.NewSimulated(time.Time{})
	base := []options.OptionFunc{
		options.WithCapacity(capacity),
		options.WithClock(clk),
		options.WithLogger(zap.NewNop().Sugar()),
	}

	table, err := New(context.Background(), "mactable-test", append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Close() })
	return table, clk
}

func TestNewFailsWithoutSideEffects(t *testing.T) {
	clk := clock.NewSimulated(time.Time{})

	_, err := New(context.Background(), "mactable-test",
		options.WithCapacity(0), options.WithClock(clk), options.WithLogger(zap.NewNop().Sugar()))
	require.Error(t, err)
	ve, ok := errors.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "capacity", ve.Field())

	_, err = New(context.Background(), "mactable-test",
		options.WithDefaultTTL(-time.Second), options.WithClock(clk), options.WithLogger(zap.NewNop().Sugar()))
	require.Error(t, err)
	assert.Zero(t, clk.Pending())
}

func TestInsertOptions(t *testing.T) {
	table, clk := newTable(t, 8, options.WithDefaultTTL(time.Minute))
	ctx := context.Background()
	addr := macaddr.MustParse("00:1a:2b:3c:4d:5f")

	outcome, err := table.Insert(ctx, addr, WithTTL(120*time.Second), WithRole(roleGateway))
	require.NoError(t, err)
	require.Equal(t, events.Inserted, outcome)

	entries, err := table.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, addr, entries[0].Address)
	assert.Equal(t, roleGateway, entries[0].Role)
	assert.Equal(t, clk.Now().Add(120*time.Second), entries[0].Expiry())

	entry, outcome, err := table.GetByIndex(ctx, entries[0].Slot)
	require.NoError(t, err)
	assert.Equal(t, events.Found, outcome)
	assert.Equal(t, entries[0].Entry, entry)

	next, ok := table.NextExpiry()
	require.True(t, ok)
	assert.Equal(t, entry.Expiry(), next)
}

func TestInsertRejectsBadTTL(t *testing.T) {
	table, _ := newTable(t, 4)

	for _, ttl := range []time.Duration{0, -time.Second, options.MaxTTL + 1} {
		_, err := table.Insert(context.Background(), macaddr.MustParse("00:00:00:00:00:01"), WithTTL(ttl))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrValidationOutOfRange), "ttl %v", ttl)
	}

	stats, err := table.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalInserts)
}

func TestSlotRange(t *testing.T) {
	table, _ := newTable(t, 4)
	ctx := context.Background()

	for _, slot := range []int{-1, 4, 100} {
		_, outcome, err := table.GetByIndex(ctx, slot)
		require.Error(t, err)
		assert.Equal(t, events.NotFound, outcome)
		assert.True(t, errors.HasCode(err, errors.ErrTableSlotRange))

		deleted, err := table.DeleteByIndex(ctx, slot)
		require.Error(t, err)
		assert.False(t, deleted)
	}

	_, outcome, err := table.GetByIndex(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, events.NotFound, outcome)
}

func TestRoleProtectedEviction(t *testing.T) {
	table, clk := newTable(t, 8)
	ctx := context.Background()

	addrs := map[string]macaddr.Address{}
	for i, tc := range []struct {
		name string
		ttl  time.Duration
		role Role
	}{
		{"gateway", 1 * time.Second, roleGateway},
		{"sensor", 2 * time.Second, roleSensor},
		{"client-late", 9 * time.Second, roleClient},
		{"client-early", 3 * time.Second, roleClient},
	} {
		addr := macaddr.Address{0x02, 0, 0, 0, 0, byte(i)}
		addrs[tc.name] = addr
		_, err := table.Insert(ctx, addr, WithTTL(tc.ttl), WithRole(tc.role))
		require.NoError(t, err)
	}

	removed, err := table.RemoveOldest(ctx, roleGateway, roleSensor)
	require.NoError(t, err)
	require.True(t, removed)

	outcome, _ := table.Exists(ctx, addrs["client-early"])
	assert.Equal(t, events.NotFound, outcome)
	require.NoError(t, table.Verify())

	n, err := table.EvictByRole(ctx, roleSensor)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	clk.Advance(time.Second)
	outcome, _ = table.Exists(ctx, addrs["gateway"])
	assert.Equal(t, events.NotFound, outcome)

	n, err = table.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	removed, err = table.RemoveOldest(ctx)
	require.NoError(t, err)
	assert.False(t, removed)

	stats, _ := table.Stats()
	assert.Equal(t, Stats{TotalInserts: 4, TotalDeletes: 3, TotalExpired: 1}, stats)
}

func TestEvictOnFull(t *testing.T) {
	table, _ := newTable(t, 2)
	ctx := context.Background()

	gw := macaddr.MustParse("aa:00:00:00:00:01")
	cl := macaddr.MustParse("aa:00:00:00:00:02")
	_, _ = table.Insert(ctx, gw, WithRole(roleGateway), WithTTL(time.Second))
	_, _ = table.Insert(ctx, cl, WithTTL(time.Minute))

	outcome, err := table.Insert(ctx, macaddr.MustParse("aa:00:00:00:00:03"))
	require.NoError(t, err)
	assert.Equal(t, events.Full, outcome)

	outcome, err = table.Insert(ctx, macaddr.MustParse("aa:00:00:00:00:03"), WithEvictOnFull(roleGateway))
	require.NoError(t, err)
	assert.Equal(t, events.Inserted, outcome)

	outcome, _ = table.Exists(ctx, cl)
	assert.Equal(t, events.NotFound, outcome)
}

func TestJournalSinkRecordsEveryEvent(t *testing.T) {
	var buf bytes.Buffer
	journal := events.NewJournal(&buf, zap.NewNop().Sugar())
	table, clk := newTable(t, 2, options.WithEventSink(journal), options.WithDefaultTTL(5*time.Second))
	ctx := context.Background()

	a := macaddr.MustParse("00:1a:2b:3c:4d:5e")
	b := macaddr.MustParse("00:1a:2b:3c:4d:5f")
	c := macaddr.MustParse("00:1a:2b:3c:4d:60")

	_, _ = table.Insert(ctx, a)
	_, _ = table.Insert(ctx, b)
	_, _ = table.Insert(ctx, c)
	_, _ = table.Insert(ctx, a)
	_, _ = table.Delete(ctx, b)
	clk.Advance(5 * time.Second)
	require.NoError(t, table.Close())

	reader := events.NewJournalReader(&buf)
	var got []events.Outcome
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, ev.Outcome)
		if ev.Outcome == events.Full {
			assert.Equal(t, events.NoSlot, ev.Slot)
			assert.Equal(t, c, ev.Address)
		}
	}

	assert.Equal(t, []events.Outcome{
		events.Inserted, events.Inserted, events.Full, events.Updated, events.Deleted, events.Timeout,
	}, got)
	assert.True(t, errors.HasCode(journal.Err(), errors.ErrTableClosed))
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	table, _ := newTable(t, 1, options.WithEventSink(events.NewLogSink(zap.New(core).Sugar())))
	ctx := context.Background()

	_, _ = table.Insert(ctx, macaddr.MustParse("00:00:00:00:00:01"))
	_, _ = table.Insert(ctx, macaddr.MustParse("00:00:00:00:00:02"))
	_, _ = table.Exists(ctx, macaddr.MustParse("00:00:00:00:00:01"))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "inserted", entries[0].ContextMap()["event"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "00:00:00:00:00:02", entries[1].ContextMap()["address"])
}

func TestClosedTable(t *testing.T) {
	table, _ := newTable(t, 4)
	require.NoError(t, table.Close())

	_, err := table.Exists(context.Background(), macaddr.Address{})
	assert.True(t, errors.HasCode(err, errors.ErrTableClosed))
	assert.Error(t, table.Close())
}
