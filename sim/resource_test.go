package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_Seize_ServerQueueReject(t *testing.T) {
	// GIVEN a single-server resource with room for one waiting entity
	s, _ := newTestSimulator(t)
	r := NewResource(s, "r", 1, 1)
	a := NewArrival(s, "a", nil, 0, false)
	b := NewArrival(s, "b", nil, 0, false)
	c := NewArrival(s, "c", nil, 0, false)

	// WHEN three entities ask for it
	// THEN the first is served, the second waits and the third is turned away
	assert.Equal(t, 0.0, r.Seize(a))
	assert.Equal(t, Enqueue, r.Seize(b))
	assert.Equal(t, Reject, r.Seize(c))
	assert.Equal(t, 1, r.Server())
	assert.Equal(t, 1, r.QueueCount())
}

func TestResource_Release_ServesQueueAndReports(t *testing.T) {
	s, rec := newTestSimulator(t)
	r := NewResource(s, "r", 1, -1)
	a := NewArrival(s, "a", nil, 0, true)
	b := NewArrival(s, "b", nil, 0, true)
	require.Equal(t, 0.0, r.Seize(a))
	require.Equal(t, Enqueue, r.Seize(b))
	a.UpdateActivity(3)
	s.clock = 3

	require.NoError(t, r.Release(a))

	assert.Equal(t, 1, r.Server())
	assert.Zero(t, r.QueueCount())
	assert.True(t, s.IsActive(b.ID()))
	got := rec.ReleasesOf("a")
	require.Len(t, got, 1)
	assert.Equal(t, 3.0, got[0].Activity)
	assert.Equal(t, 3.0, got[0].End)
}

func TestResource_Release_NotHolder(t *testing.T) {
	s, _ := newTestSimulator(t)
	r := NewResource(s, "r", 1, -1)
	a := NewArrival(s, "a", nil, 0, false)

	assert.Error(t, r.Release(a))
}

func TestResource_Queue_PriorityThenFIFO(t *testing.T) {
	s, _ := newTestSimulator(t)
	r := NewResource(s, "r", 1, -1)
	holder := NewArrival(s, "holder", nil, 0, false)
	low := NewArrival(s, "low", nil, 0, false)
	high := NewArrival(s, "high", nil, 5, false)
	low2 := NewArrival(s, "low2", nil, 0, false)
	r.Seize(holder)
	r.Seize(low)
	r.Seize(high)
	r.Seize(low2)

	require.NoError(t, r.Release(holder))
	assert.Equal(t, high.ID(), r.servers[0].ID())
	assert.Equal(t, low.ID(), r.queue[0].entity.ID())
	assert.Equal(t, low2.ID(), r.queue[1].entity.ID())
}

func TestResource_Remove_FromQueue(t *testing.T) {
	s, _ := newTestSimulator(t)
	r := NewResource(s, "r", 1, -1)
	a := NewArrival(s, "a", nil, 0, false)
	b := NewArrival(s, "b", nil, 0, false)
	r.Seize(a)
	r.Seize(b)

	assert.True(t, r.Remove(b))
	assert.Zero(t, r.QueueCount())
	assert.Empty(t, b.resources)
	assert.False(t, r.Remove(a))
	assert.Zero(t, r.Server())
}

func TestArrival_LeaveResources_CorrectsInterruptedActivity(t *testing.T) {
	// GIVEN an arrival 2 units into a 5-unit step while holding r
	s, rec := newTestSimulator(t)
	r := NewResource(s, "r", 1, -1)
	a := NewArrival(s, "a", nil, 0, true)
	r.Seize(a)
	a.SetBusy(5)
	a.UpdateActivity(5)
	s.clock = 2

	// WHEN it drops its resources
	deactivated := a.LeaveResources(false)

	// THEN only the consumed time is accounted and reported
	assert.False(t, deactivated)
	assert.Equal(t, 2.0, a.ActivityTime())
	assert.Equal(t, 2.0, a.BusyUntil())
	assert.Zero(t, a.Remaining())
	got := rec.ReleasesOf("a")
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Activity)
}
