package core_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stepmesh/core"
	"github.com/hupe1980/stepmesh/internal/testutil"
)

func TestNewStepper(t *testing.T) {
	owner := testutil.NewOwner("sheep")

	st, err := core.NewStepper(3, core.Do(func() {}), owner, 7,
		core.WithPriority(120),
		core.WithStartDelay(2),
		core.WithName("graze"),
	)
	require.NoError(t, err)

	assert.NotEmpty(t, st.ID())
	assert.Equal(t, "graze", st.Name())
	assert.Equal(t, 3, st.Frequency())
	assert.Equal(t, 120, st.Priority())
	assert.Equal(t, core.SlotEarly, st.Slot())
	assert.Equal(t, 2, st.StartDelay())
	assert.Equal(t, uint64(7), st.CreationTick())
	assert.Same(t, owner, st.Owner())
	assert.Equal(t, "graze(EARLY/120 every 3)", st.String())
}

func TestNewStepper_NameDefaultsToID(t *testing.T) {
	a, err := core.NewStepper(1, core.Do(func() {}), testutil.NewOwner("a"), 0)
	require.NoError(t, err)
	b, err := core.NewStepper(1, core.Do(func() {}), testutil.NewOwner("b"), 0)
	require.NoError(t, err)

	assert.Equal(t, a.ID(), a.Name())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, core.NormalPriority, a.Priority())
	assert.Equal(t, core.SlotNormal, a.Slot())
}

func TestNewStepper_Validation(t *testing.T) {
	owner := testutil.NewOwner("o")
	noop := core.Do(func() {})

	tests := []struct {
		name      string
		frequency int
		cb        core.Callback
		owner     core.Owner
		opts      []core.StepperOption
	}{
		{"zero frequency", 0, noop, owner, nil},
		{"negative delay", 2, noop, owner, []core.StepperOption{core.WithStartDelay(-2)}},
		{"nil callback", 2, nil, owner, nil},
		{"nil owner", 2, noop, nil, nil},
		{"invalid slot", 2, noop, owner, []core.StepperOption{core.WithSlot(core.QueueSlot(3))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.NewStepper(tt.frequency, tt.cb, tt.owner, 0, tt.opts...)
			assert.ErrorIs(t, err, core.ErrInvalidArgument)
		})
	}
}

func TestStepper_Execute(t *testing.T) {
	owner := testutil.NewOwner("o")
	calls := 0
	boom := errors.New("boom")

	ok, err := core.NewStepper(1, core.Do(func() { calls++ }), owner, 0)
	require.NoError(t, err)
	failing, err := core.NewStepper(1, func() error { return boom }, owner, 0)
	require.NoError(t, err)

	ran, err := ok.Execute()
	assert.True(t, ran)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	ran, err = failing.Execute()
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)

	owner.Kill()
	ran, err = ok.Execute()
	assert.False(t, ran)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCompare_StableSortKeepsInsertionOrder(t *testing.T) {
	owner := testutil.NewOwner("o")
	mk := func(name string, priority int) *core.Stepper {
		st, err := core.NewStepper(1, core.Do(func() {}), owner, 0, core.WithName(name), core.WithPriority(priority))
		require.NoError(t, err)
		return st
	}

	steppers := []*core.Stepper{mk("c", 300), mk("a1", 100), mk("b", 200), mk("a2", 100), mk("a3", 100)}
	slices.SortStableFunc(steppers, core.Compare)

	var names []string
	for _, st := range steppers {
		names = append(names, st.Name())
	}
	assert.Equal(t, []string{"a1", "a2", "a3", "b", "c"}, names)
	assert.True(t, core.Less(steppers[0], steppers[3]))
	assert.False(t, core.Less(steppers[0], steppers[1]))
}

func TestStepperError(t *testing.T) {
	cause := errors.New("no grass")
	err := error(&core.StepperError{Name: "graze", Tick: 4, Slot: core.SlotEarly, Priority: 105, Err: cause})

	assert.EqualError(t, err, `stepper "graze" failed at tick 4 (EARLY/105): no grass`)
	assert.ErrorIs(t, err, cause)
}

func TestNewStepperEvent(t *testing.T) {
	st, err := core.NewStepper(1, core.Do(func() {}), testutil.NewOwner("wolf"), 0, core.WithName("hunt"), core.WithSlot(core.SlotLate))
	require.NoError(t, err)

	ev := core.NewStepperEvent(core.EventExecuted, 9, st)
	assert.Equal(t, core.EventExecuted, ev.Kind)
	assert.Equal(t, uint64(9), ev.Tick)
	assert.Equal(t, "hunt", ev.StepperName)
	assert.Equal(t, "wolf", ev.OwnerName)
	assert.Equal(t, core.LatePriority, ev.Priority)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Timestamp.IsZero())
}
