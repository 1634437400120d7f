package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatched_Insert_DetachesMemberTrajectory(t *testing.T) {
	s, _ := newTestSimulator(t)
	step := NewTimeout(Constant(1))
	a := NewArrival(s, "a", step, 0, false)
	b := NewBatched(s, "b", false, 0)

	b.Insert(a)

	assert.Nil(t, a.Activity())
	assert.Equal(t, b.ID(), a.BatchID())
	assert.Equal(t, 1, b.Size())
}

func TestBatched_SetAttribute_Local_PropagatesToMembers(t *testing.T) {
	s, _ := newTestSimulator(t)
	b, members := newBatchOf(s, "b", 3)

	b.SetAttribute("k", 7, false)

	assert.Equal(t, 7.0, b.Attribute("k", false))
	for _, m := range members {
		assert.Equal(t, 7.0, m.Attribute("k", false), m.Name())
	}
	assert.True(t, math.IsNaN(s.Attribute("k")))
}

func TestBatched_SetAttribute_Global_LeavesLocalMapsUntouched(t *testing.T) {
	s, _ := newTestSimulator(t)
	b, members := newBatchOf(s, "b", 3)

	b.SetAttribute("k", 7, true)

	assert.Equal(t, 7.0, s.Attribute("k"))
	assert.True(t, math.IsNaN(b.Attribute("k", false)))
	for _, m := range members {
		assert.True(t, math.IsNaN(m.Attribute("k", false)), m.Name())
	}
}

func TestBatched_TimingFanOut(t *testing.T) {
	// GIVEN a batch of three arrivals
	s, _ := newTestSimulator(t)
	b, members := newBatchOf(s, "b", 3)

	// WHEN the batch is timed
	b.UpdateActivity(5.0)
	b.SetBusy(12)
	b.SetRemaining(4)

	// THEN the batch and every member report the same timing
	assert.Equal(t, 5.0, b.ActivityTime())
	for _, m := range members {
		assert.Equal(t, 5.0, m.ActivityTime(), m.Name())
		assert.Equal(t, 12.0, m.BusyUntil(), m.Name())
		assert.Equal(t, 4.0, m.Remaining(), m.Name())
	}
}

func TestBatched_Erase_OtherMembersRemain_ReportsThroughEnclosingBatches(t *testing.T) {
	// GIVEN batch B (A1, A2, A3) nested in batch P (B, X), with B holding r and P holding r2
	s, rec := newTestSimulator(t)
	NewResource(s, "r", 1, -1)
	NewResource(s, "r2", 1, -1)
	b, members := newBatchOf(s, "B", 3)
	p := NewBatched(s, "P", false, 0)
	x := NewArrival(s, "X", nil, 0, true)
	p.Insert(b)
	p.Insert(x)
	require.Equal(t, 0.0, s.Resource("r").Seize(b))
	require.Equal(t, 0.0, s.Resource("r2").Seize(p))

	// AND a 5-unit step started at t=0 that is 2 units in
	p.SetBusy(5)
	p.UpdateActivity(5)
	s.clock = 2

	// WHEN A1 leaves B
	a1 := members[0]
	ok := b.Erase(a1)

	// THEN B survives with two members and A1 is detached
	assert.True(t, ok)
	assert.Equal(t, 2, b.Size())
	assert.Zero(t, a1.BatchID())
	assert.NotNil(t, s.Batch(b.ID()))
	for _, m := range b.Members() {
		assert.NotEqual(t, a1.ID(), m.ID())
	}

	// AND A1 got one record per resource held at each level, counting only consumed time
	got := rec.ReleasesOf(a1.Name())
	require.Len(t, got, 2)
	assert.Equal(t, "r", got[0].Resource)
	assert.Equal(t, "r2", got[1].Resource)
	for _, r := range got {
		assert.Equal(t, 0.0, r.Start)
		assert.Equal(t, 2.0, r.Activity)
		assert.Equal(t, 2.0, r.End)
	}
	// AND nothing was released
	assert.Equal(t, 1, s.Resource("r").Server())
	assert.Equal(t, 1, s.Resource("r2").Server())
}

func TestBatched_Erase_UnmonitoredMember_NoReport(t *testing.T) {
	s, rec := newTestSimulator(t)
	NewResource(s, "r", 1, -1)
	b := NewBatched(s, "b", false, 0)
	quiet := NewArrival(s, "quiet", nil, 0, false)
	other := NewArrival(s, "other", nil, 0, true)
	b.Insert(quiet)
	b.Insert(other)
	s.Resource("r").Seize(b)

	assert.True(t, b.Erase(quiet))
	assert.Empty(t, rec.Releases)
	assert.Equal(t, 1, b.Size())
}

func TestBatched_Erase_LastMemberTopLevel_Deactivates(t *testing.T) {
	// GIVEN an active top-level batch with a single member and no pending activity
	s, _ := newTestSimulator(t)
	b, members := newBatchOf(s, "b", 1)
	b.Activate()
	require.True(t, s.IsActive(b.ID()))

	// WHEN its sole member leaves
	ok := b.Erase(members[0])

	// THEN the batch is suspended but not destroyed, and empty
	assert.True(t, ok)
	assert.False(t, s.IsActive(b.ID()))
	assert.Same(t, b, s.Batch(b.ID()))
	assert.Zero(t, b.Size())
	assert.Zero(t, members[0].BatchID())
}

func TestBatched_Erase_LastMemberTopLevel_WithNextActivity_ReleasesAndDeactivates(t *testing.T) {
	// GIVEN an active top-level batch holding r, with a pending next activity
	s, rec := newTestSimulator(t)
	r := NewResource(s, "r", 1, -1)
	b, members := newBatchOf(s, "b", 1)
	require.Equal(t, 0.0, r.Seize(b))
	b.SetActivity(NewTimeout(Constant(1)))
	b.Activate()

	// WHEN its sole member leaves
	assert.True(t, b.Erase(members[0]))

	// THEN the resource is handed back, the member got the usage record, the batch is suspended
	assert.Zero(t, r.Server())
	assert.Len(t, rec.ReleasesOf(members[0].Name()), 1)
	assert.False(t, s.IsActive(b.ID()))
	assert.NotNil(t, s.Batch(b.ID()))
}

func TestBatched_Erase_LastMemberNested_DissolvesIntoParent(t *testing.T) {
	// GIVEN batch B (A) holding r, nested in non-permanent P (B, X) holding r2
	s, rec := newTestSimulator(t)
	r := NewResource(s, "r", 1, -1)
	r2 := NewResource(s, "r2", 1, -1)
	b, members := newBatchOf(s, "B", 1)
	p := NewBatched(s, "P", false, 0)
	x := NewArrival(s, "X", nil, 0, true)
	p.Insert(b)
	p.Insert(x)
	require.Equal(t, 0.0, r.Seize(b))
	require.Equal(t, 0.0, r2.Seize(p))

	// WHEN B's last member leaves
	a := members[0]
	ok := b.Erase(a)

	// THEN B is gone, P lost exactly B, r was released once, A is detached
	assert.True(t, ok)
	assert.Nil(t, s.Batch(b.ID()))
	assert.Nil(t, s.Entity(b.ID()))
	assert.Equal(t, 1, p.Size())
	assert.Equal(t, x.ID(), p.Members()[0].ID())
	assert.Zero(t, r.Server())
	assert.Equal(t, 1, r2.Server())

	// AND A received both records, including P's r2 passed down through B
	got := rec.ReleasesOf(a.Name())
	require.Len(t, got, 2)
	assert.Equal(t, "r", got[0].Resource)
	assert.Equal(t, "r2", got[1].Resource)
	assert.Zero(t, got[1].Activity)
	assert.Empty(t, rec.ReleasesOf(b.Name()))
	assert.Zero(t, a.BatchID())
	assert.NotNil(t, s.Entity(a.ID()))
}

func TestBatched_PopAll_HandsBackHeldResources(t *testing.T) {
	// GIVEN a batch of two holding the only unit of r
	s, rec := newTestSimulator(t)
	r := NewResource(s, "r", 1, -1)
	b, members := newBatchOf(s, "B", 2)
	require.Equal(t, 0.0, r.Seize(b))

	// WHEN it is popped without releasing r first
	require.True(t, b.PopAll(nil))

	// THEN r is free again and every member got its record
	assert.Nil(t, s.Entity(b.ID()))
	assert.Zero(t, r.Server())
	for _, m := range members {
		assert.Len(t, rec.ReleasesOf(m.Name()), 1, m.Name())
	}
	fresh := NewArrival(s, "fresh", nil, 0, false)
	assert.Equal(t, 0.0, r.Seize(fresh))
}

func TestBatched_Erase_LastMemberInPermanentParent_Survives(t *testing.T) {
	s, _ := newTestSimulator(t)
	b, members := newBatchOf(s, "B", 1)
	p := NewBatched(s, "P", true, 0)
	p.Insert(b)

	assert.True(t, b.Erase(members[0]))
	assert.Same(t, b, s.Batch(b.ID()))
	assert.Zero(t, b.Size())
	assert.Equal(t, 1, p.Size())
}

func TestBatched_Permanent_RefusesEraseAndPopAll(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		s, _ := newTestSimulator(t)
		b := NewBatched(s, "perm", true, 0)
		for i := 0; i < n; i++ {
			b.Insert(NewArrival(s, "a", nil, 0, false))
		}
		before := b.Members()

		assert.False(t, b.Erase(before[0]), "n=%d", n)
		assert.False(t, b.PopAll(NewTimeout(Constant(1))), "n=%d", n)

		assert.Equal(t, before, b.Members(), "n=%d", n)
		assert.NotNil(t, s.Batch(b.ID()))
		for _, m := range before {
			assert.Equal(t, b.ID(), m.base().BatchID())
		}
	}
}

func TestBatched_PopAll_ReleasesEveryMember(t *testing.T) {
	// GIVEN a batch of three arrivals
	s, _ := newTestSimulator(t)
	b, members := newBatchOf(s, "b", 3)
	next := NewTimeout(Constant(1))

	// WHEN it is released
	ok := b.PopAll(next)

	// THEN every member runs next independently and the batch is destroyed
	assert.True(t, ok)
	for _, m := range members {
		assert.Same(t, next, m.Activity())
		assert.Zero(t, m.BatchID())
		assert.True(t, s.IsActive(m.ID()), m.Name())
	}
	assert.Zero(t, b.Size())
	assert.Nil(t, s.Entity(b.ID()))
}

func TestBatched_Terminate_EndsMembersAndBatch(t *testing.T) {
	s, rec := newTestSimulator(t)
	b, members := newBatchOf(s, "b", 2)
	p := NewBatched(s, "perm", true, 0)
	p.Insert(b)

	p.Terminate(false)

	assert.Zero(t, s.Len())
	assert.Zero(t, p.Size())
	require.Len(t, rec.Arrivals, 2)
	for i, r := range rec.Arrivals {
		assert.Equal(t, members[i].Name(), r.Name)
		assert.False(t, r.Finished)
	}
}

func TestBatched_Erase_NonMemberPanics(t *testing.T) {
	s, _ := newTestSimulator(t)
	b, _ := newBatchOf(s, "b", 2)
	stranger := NewArrival(s, "stranger", nil, 0, false)

	assert.Panics(t, func() { b.Erase(stranger) })
}
