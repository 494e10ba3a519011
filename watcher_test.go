package ecs

import (
	"reflect"
	"testing"
)

func TestComponentWatcherAddedRemovedModified(t *testing.T) {
	w := newTestWorld(t, posVelTypes())
	posID, _ := w.index.ID(reflect.TypeOf(Position{}))
	ctx := w.getOrCreateContext(map[FilterKind][]CompID{AllOf: {posID}})
	cw := w.getOrCreateComponentWatcher(ctx, posID)

	e, _ := w.AddEntity([]Component{Position{X: 1}})
	notes := cw.PopNotifications()
	if len(notes[NotifyAdded]) != 1 || notes[NotifyAdded][0].id != e.id {
		t.Fatalf("expected one added notification for %v, got %v", e.id, notes[NotifyAdded])
	}

	_ = e.Replace(Position{X: 2}, true)
	notes = cw.PopNotifications()
	if len(notes[NotifyModified]) != 1 {
		t.Fatalf("expected one modified notification, got %v", notes)
	}

	_ = e.Remove(posID)
	notes = cw.PopNotifications()
	if len(notes[NotifyRemoved]) != 1 {
		t.Fatalf("expected one removed notification, got %v", notes)
	}
}

// Within a single frame, add C then remove C. The cancellation rule means
// added is never reported; removed still fires because the component
// genuinely existed mid-frame.
func TestComponentWatcherAddThenRemoveSameFrameCancelsAdded(t *testing.T) {
	w := newTestWorld(t, posVelTypes())
	posID, _ := w.index.ID(reflect.TypeOf(Position{}))
	velID, _ := w.index.ID(reflect.TypeOf(Velocity{}))
	ctx := w.getOrCreateContext(map[FilterKind][]CompID{AllOf: {posID}, AnyOf: {velID}})
	cw := w.getOrCreateComponentWatcher(ctx, velID)

	e, _ := w.AddEntity([]Component{Position{}})
	_ = e.Add(Velocity{})
	_ = e.Remove(velID)

	notes := cw.PopNotifications()
	if len(notes[NotifyAdded]) != 0 {
		t.Fatalf("added must be cancelled by a same-frame remove, got %v", notes[NotifyAdded])
	}
	if len(notes[NotifyRemoved]) != 1 {
		t.Fatalf("expected exactly one removed notification, got %v", notes[NotifyRemoved])
	}
}

// added then disabled, same frame: neither fires (the entity "was never
// born" from the watcher's perspective).
func TestComponentWatcherAddThenDisableSameFrameCancelsBoth(t *testing.T) {
	w := newTestWorld(t, posVelTypes())
	posID, _ := w.index.ID(reflect.TypeOf(Position{}))
	ctx := w.getOrCreateContext(map[FilterKind][]CompID{AllOf: {posID}})
	cw := w.getOrCreateComponentWatcher(ctx, posID)

	e, _ := w.AddEntity(nil, EntityID(0))
	_ = e.Add(Position{})
	e.Deactivate()

	notes := cw.PopNotifications()
	if len(notes[NotifyAdded]) != 0 {
		t.Errorf("added must be cancelled when the entity is disabled in the same frame, got %v", notes[NotifyAdded])
	}
	if len(notes[NotifyDisabled]) != 0 {
		t.Errorf("disabled must not be recorded either, got %v", notes[NotifyDisabled])
	}
}

func TestComponentWatcherEnabledDisabledAcrossFrames(t *testing.T) {
	w := newTestWorld(t, posVelTypes())
	posID, _ := w.index.ID(reflect.TypeOf(Position{}))
	ctx := w.getOrCreateContext(map[FilterKind][]CompID{AllOf: {posID}})
	cw := w.getOrCreateComponentWatcher(ctx, posID)

	e, _ := w.AddEntity([]Component{Position{}})
	cw.PopNotifications() // drain the initial "added"

	e.Deactivate()
	notes := cw.PopNotifications()
	if len(notes[NotifyDisabled]) != 1 {
		t.Fatalf("expected one disabled notification across frames, got %v", notes)
	}

	e.Activate()
	notes = cw.PopNotifications()
	if len(notes[NotifyEnabled]) != 1 {
		t.Fatalf("expected one enabled notification, got %v", notes)
	}
}

func TestComponentWatcherPopFiltersDestroyedExceptRemoved(t *testing.T) {
	w := newTestWorld(t, posVelTypes())
	posID, _ := w.index.ID(reflect.TypeOf(Position{}))
	velID, _ := w.index.ID(reflect.TypeOf(Velocity{}))
	ctx := w.getOrCreateContext(map[FilterKind][]CompID{AllOf: {posID, velID}})
	cw := w.getOrCreateComponentWatcher(ctx, velID)

	e, _ := w.AddEntity([]Component{Position{}, Velocity{}})
	cw.PopNotifications() // drain the initial added

	// Modify then destroy in the same frame: modified must be filtered out
	// (entity now destroyed), nothing survives except what Destroy itself
	// queues under Removed.
	_ = e.Replace(Velocity{X: 1}, true)
	e.Destroy()

	notes := cw.PopNotifications()
	if len(notes[NotifyModified]) != 0 {
		t.Errorf("a destroyed entity must be filtered out of non-removed buckets, got %v", notes[NotifyModified])
	}
	if len(notes[NotifyRemoved]) != 1 {
		t.Errorf("a destroyed entity's removed notification must still be reported, got %v", notes[NotifyRemoved])
	}
}
