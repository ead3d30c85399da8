package core

import (
	"errors"
	"sync"
	"testing"
)

func TestFuture_OnCompleteFiresInlineWhenAlreadySettled(t *testing.T) {
	// Given a future already resolved before any listener is attached
	f := NewFuture[bool]()
	f.Set(true)

	// When OnComplete is called
	var gotValue bool
	var gotErr error
	called := false
	f.OnComplete(func(v bool, err error) {
		called = true
		gotValue, gotErr = v, err
	})

	// Then the listener ran synchronously with the already-settled value
	if !called {
		t.Fatal("expected listener to fire inline for an already-settled future")
	}
	if !gotValue || gotErr != nil {
		t.Fatalf("got (%v, %v), want (true, nil)", gotValue, gotErr)
	}
}

func TestFuture_OnCompleteFiresOnResolvingGoroutine(t *testing.T) {
	// Given an unresolved future with a listener attached
	f := NewFuture[bool]()
	var wg sync.WaitGroup
	wg.Add(1)
	var gotValue bool
	f.OnComplete(func(v bool, err error) {
		gotValue = v
		wg.Done()
	})

	// When the future is later resolved
	go f.Set(true)
	wg.Wait()

	// Then the listener observed the resolved value
	if !gotValue {
		t.Fatal("expected listener to observe true")
	}
}

func TestFuture_SetErrorDeliversErrorToListener(t *testing.T) {
	// Given an unresolved future
	f := NewFuture[bool]()
	boom := errors.New("boom")

	// When it settles with an error
	var gotErr error
	f.OnComplete(func(v bool, err error) { gotErr = err })
	f.SetError(boom)

	// Then the listener observes that error
	if gotErr != boom {
		t.Fatalf("gotErr = %v, want %v", gotErr, boom)
	}
}

func TestFuture_SettlesAtMostOnce(t *testing.T) {
	// Given a future resolved once
	f := NewFuture[bool]()
	f.Set(true)

	// When it is resolved again with a different value
	f.Set(false)

	// Then the first resolution wins
	var got bool
	f.OnComplete(func(v bool, err error) { got = v })
	if !got {
		t.Fatal("expected the first Set to win over a later Set")
	}
}

func TestFuture_IsDone(t *testing.T) {
	// Given an unresolved future
	f := NewFuture[bool]()
	if f.IsDone() {
		t.Fatal("expected a fresh future to not be done")
	}

	// When it resolves
	f.Set(true)

	// Then IsDone reports true
	if !f.IsDone() {
		t.Fatal("expected IsDone to report true after Set")
	}
}
