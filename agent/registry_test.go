package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/stepmesh/core"
	"github.com/hupe1980/stepmesh/internal/testutil"
	"github.com/hupe1980/stepmesh/scheduler"
)

// MockQuerier for testing registry filters.
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) HasStepperInPriorityRange(owner core.Owner, start, end int) bool {
	return m.Called(owner, start, end).Bool(0)
}

func (m *MockQuerier) HasStepperInSlot(owner core.Owner, slot core.QueueSlot) bool {
	return m.Called(owner, slot).Bool(0)
}

func TestRegistry_Membership(t *testing.T) {
	reg := NewRegistry(new(MockQuerier))
	a, b, c := testutil.NewOwner("a"), testutil.NewOwner("b"), testutil.NewOwner("c")

	assert.True(t, reg.RegisterOwner(a))
	assert.True(t, reg.RegisterOwner(b))
	assert.False(t, reg.RegisterOwner(a))
	assert.False(t, reg.RegisterOwner(nil))
	assert.True(t, reg.RegisterOwner(c))

	assert.Equal(t, []core.Owner{a, b, c}, reg.Owners())
	assert.Equal(t, 3, reg.Len())

	assert.True(t, reg.DeregisterOwner(b))
	assert.False(t, reg.DeregisterOwner(b))
	assert.Equal(t, []core.Owner{a, c}, reg.Owners())
	assert.False(t, reg.Contains(b))
}

func TestRegistry_OwnersReturnsCopy(t *testing.T) {
	reg := NewRegistry(new(MockQuerier))
	a := testutil.NewOwner("a")
	reg.RegisterOwner(a)

	owners := reg.Owners()
	owners[0] = testutil.NewOwner("z")

	assert.Equal(t, []core.Owner{a}, reg.Owners())
}

func TestRegistry_FiltersDelegateToQuerier(t *testing.T) {
	q := new(MockQuerier)
	reg := NewRegistry(q)
	a, b := testutil.NewOwner("a"), testutil.NewOwner("b")
	reg.RegisterOwner(a)
	reg.RegisterOwner(b)

	q.On("HasStepperInPriorityRange", a, 100, 200).Return(false)
	q.On("HasStepperInPriorityRange", b, 100, 200).Return(true)
	q.On("HasStepperInSlot", a, core.SlotLate).Return(true)
	q.On("HasStepperInSlot", b, core.SlotLate).Return(true)

	assert.Equal(t, []core.Owner{b}, reg.OwnersInPriorityRange(100, 200))
	assert.Equal(t, []core.Owner{a, b}, reg.OwnersInSlot(core.SlotLate))
	q.AssertExpectations(t)
}

func TestRegistry_WithScheduler(t *testing.T) {
	s := scheduler.New()
	reg := NewRegistry(s)
	opt := func(o *Options) { o.Registry = reg }

	mover := NewBaseAgent("mover", s, opt)
	ager := NewBaseAgent("ager", s, opt)
	idle := NewBaseAgent("idle", s, opt)

	_, err := mover.CreateStepper(1, core.Do(func() {}), core.WithPriority(105))
	require.NoError(t, err)
	_, err = ager.CreateStepper(1, core.Do(func() {}), core.WithPriority(107), core.WithSlot(core.SlotLate))
	require.NoError(t, err)

	assert.Equal(t, []core.Owner{mover, ager}, reg.OwnersInPriorityRange(100, 110))
	assert.Equal(t, []core.Owner{mover}, reg.OwnersInSlot(core.SlotEarly))
	assert.Equal(t, []core.Owner{ager}, reg.OwnersInSlot(core.SlotLate))
	assert.Empty(t, reg.OwnersInSlot(core.SlotNormal))

	mover.Destroy()
	assert.Equal(t, []core.Owner{ager, idle}, reg.Owners())
	assert.Empty(t, reg.OwnersInSlot(core.SlotEarly))
}
