package trace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stepmesh/core"
	"github.com/hupe1980/stepmesh/internal/testutil"
	"github.com/hupe1980/stepmesh/scheduler"
)

func TestInMemoryRecorder_WithScheduler(t *testing.T) {
	rec := NewInMemoryRecorder()
	s := scheduler.New(func(o *scheduler.Options) { o.Sink = rec })
	owner := testutil.NewOwner("agent")

	_, err := s.Register(1, core.Do(func() {}), owner, core.WithName("A"), core.WithPriority(100))
	require.NoError(t, err)
	b, err := s.Register(2, core.Do(func() {}), owner, core.WithName("B"), core.WithPriority(200))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Tick())
	}
	s.Deregister(b)
	require.NoError(t, s.Tick())

	assert.Equal(t, []string{"A", "A", "B", "A", "A", "B", "A"}, rec.Executions())
	assert.Equal(t, []string{"A", "B"}, rec.ExecutionsAt(2))
	assert.Len(t, rec.ByKind(core.EventCommitted), 2)
	assert.Len(t, rec.ByKind(core.EventFrameOpened), 5)

	deregs := rec.ByKind(core.EventDeregistered)
	require.Len(t, deregs, 1)
	assert.Equal(t, "B", deregs[0].StepperName)
	assert.Equal(t, uint64(5), deregs[0].Tick)

	for _, ev := range rec.ByTick(3) {
		assert.Equal(t, uint64(3), ev.Tick)
	}
}

func TestInMemoryRecorder_Capacity(t *testing.T) {
	rec := NewInMemoryRecorder(func(o *Options) { o.Capacity = 3 })

	for tick := uint64(1); tick <= 5; tick++ {
		rec.Record(core.NewEvent(core.EventFrameOpened, tick))
	}

	events := rec.Events()
	require.Len(t, events, 3)
	assert.Equal(t, uint64(3), events[0].Tick)
	assert.Equal(t, uint64(5), events[2].Tick)
	assert.Equal(t, 2, rec.Dropped())

	rec.Reset()
	assert.Zero(t, rec.Len())
	assert.Zero(t, rec.Dropped())
}

func TestInMemoryRecorder_CapacityKeepsOrderAcrossWraps(t *testing.T) {
	rec := NewInMemoryRecorder(func(o *Options) { o.Capacity = 4 })

	for tick := uint64(1); tick <= 11; tick++ {
		kind := core.EventExecuted
		if tick%2 == 0 {
			kind = core.EventSkipped
		}
		rec.Record(core.NewEvent(kind, tick))
	}

	var ticks []uint64
	for _, ev := range rec.Events() {
		ticks = append(ticks, ev.Tick)
	}
	assert.Equal(t, []uint64{8, 9, 10, 11}, ticks)
	assert.Equal(t, 7, rec.Dropped())
	assert.Equal(t, 4, rec.Len())

	skipped := rec.ByKind(core.EventSkipped)
	require.Len(t, skipped, 2)
	assert.Equal(t, uint64(8), skipped[0].Tick)
	assert.Equal(t, uint64(10), skipped[1].Tick)
	assert.Empty(t, rec.ByTick(7))

	rec.Reset()
	rec.Record(core.NewEvent(core.EventExecuted, 12))
	require.Len(t, rec.Events(), 1)
	assert.Equal(t, uint64(12), rec.Events()[0].Tick)
}

func TestInMemoryRecorder_KindFilter(t *testing.T) {
	rec := NewInMemoryRecorder(func(o *Options) {
		o.Kinds = []core.EventKind{core.EventFailed, core.EventSkipped}
	})

	rec.Record(core.NewEvent(core.EventExecuted, 1))
	rec.Record(core.NewEvent(core.EventSkipped, 1))
	rec.Record(core.NewEvent(core.EventFailed, 2))

	assert.Equal(t, 2, rec.Len())
	assert.Empty(t, rec.Executions())
}

func TestInMemoryRecorder_EventsReturnsCopy(t *testing.T) {
	rec := NewInMemoryRecorder()
	rec.Record(core.NewEvent(core.EventExecuted, 1))

	events := rec.Events()
	events[0].Tick = 99

	assert.Equal(t, uint64(1), rec.Events()[0].Tick)
}

func TestInMemoryRecorder_ConcurrentReads(t *testing.T) {
	rec := NewInMemoryRecorder()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			rec.Record(core.NewEvent(core.EventExecuted, uint64(i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = rec.ByTick(uint64(i))
			_ = rec.Len()
		}
	}()
	wg.Wait()

	assert.Equal(t, 100, rec.Len())
}
