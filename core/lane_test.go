package core

import "testing"

func TestLane_EnqueueTransitionsIdleToReady(t *testing.T) {
	// Given a freshly created, idle lane
	l := newLane("k")

	// When the first envelope is enqueued
	needsPublish := l.enqueue(&envelope{identity: "k"})

	// Then the caller is told to publish, and a second enqueue is not
	if !needsPublish {
		t.Fatal("expected first enqueue on an idle lane to require publish")
	}
	if l.enqueue(&envelope{identity: "k"}) {
		t.Fatal("expected second enqueue on an already-ready lane not to require publish")
	}
}

func TestLane_BeginRunPopsHeadAndGoesRunning(t *testing.T) {
	// Given a lane with two queued envelopes
	l := newLane("k")
	first := &envelope{identity: "k"}
	second := &envelope{identity: "k"}
	l.enqueue(first)
	l.enqueue(second)

	// When beginRun is called
	got, ok := l.beginRun()

	// Then it returns the head envelope and leaves the rest queued
	if !ok || got != first {
		t.Fatalf("beginRun returned (%v, %v), want (first, true)", got, ok)
	}
	if l.depth() != 1 {
		t.Fatalf("depth after beginRun = %d, want 1", l.depth())
	}
}

func TestLane_FinishSyncRepublishesWhenMoreIsPending(t *testing.T) {
	// Given a lane with two queued envelopes, one already popped
	l := newLane("k")
	l.enqueue(&envelope{identity: "k"})
	l.enqueue(&envelope{identity: "k"})
	l.beginRun()

	// When the running envelope finishes synchronously
	needsRepublish := l.finishSync()

	// Then the lane reports more work is pending
	if !needsRepublish {
		t.Fatal("expected finishSync to request republish when work remains")
	}
	if l.depth() != 1 {
		t.Fatalf("depth after finishSync = %d, want 1", l.depth())
	}
}

func TestLane_FinishSyncGoesIdleWhenDrained(t *testing.T) {
	// Given a lane with exactly one envelope, already popped
	l := newLane("k")
	l.enqueue(&envelope{identity: "k"})
	l.beginRun()

	// When that envelope finishes synchronously
	needsRepublish := l.finishSync()

	// Then the lane reports no republish is needed
	if needsRepublish {
		t.Fatal("expected finishSync not to request republish on an empty lane")
	}

	// And a fresh enqueue again reports needsPublish, confirming IDLE
	if !l.enqueue(&envelope{identity: "k"}) {
		t.Fatal("expected enqueue on a drained (idle) lane to require publish")
	}
}

func TestLane_AsyncWaitBlocksBeginRunUntilFinishAsync(t *testing.T) {
	// Given a lane with one envelope that has started running and gone
	// into WAITING_ASYNC
	l := newLane("k")
	l.enqueue(&envelope{identity: "k"})
	l.enqueue(&envelope{identity: "k"})
	l.beginRun()
	l.beginAsyncWait()

	// When beginRun is attempted again while still WAITING_ASYNC
	_, ok := l.beginRun()

	// Then it refuses, since the lane is not READY
	if ok {
		t.Fatal("expected beginRun to refuse a lane in WAITING_ASYNC")
	}

	// And once finishAsync reports a republish, beginRun succeeds again
	if !l.finishAsync() {
		t.Fatal("expected finishAsync to request republish with one envelope still pending")
	}
	_, ok = l.beginRun()
	if !ok {
		t.Fatal("expected beginRun to succeed after finishAsync republished the lane")
	}
}

func TestLane_ClearDropsPendingWithoutRunning(t *testing.T) {
	// Given a lane with pending work
	l := newLane("k")
	l.enqueue(&envelope{identity: "k"})
	l.enqueue(&envelope{identity: "k"})

	// When clear is called
	l.clear()

	// Then nothing is left pending
	if l.depth() != 0 {
		t.Fatalf("depth after clear = %d, want 0", l.depth())
	}
}
