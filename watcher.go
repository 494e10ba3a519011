package ecs

// ComponentWatcher observes one (Context, target CompID) pair and coalesces
// every add/remove/modify/enable/disable event touching it into per-frame
// buckets, drained once per phase via PopNotifications.
//
// Rather than eager per-call dispatch, a ComponentWatcher buffers: several
// events can land on the same entity within one frame, and two of them
// cancel per the trigger table — added then removed within the frame
// reports only removed; added then disabled within the frame reports
// neither (the entity, from an observer's perspective, never existed).
type ComponentWatcher struct {
	id     WatcherID
	ctx    *Context
	target CompID

	// owners lists the SystemIDs of every system this watcher was created
	// for; two systems declaring the same (context, target) share one
	// watcher, the same way they share one Context.
	owners []SystemID

	buffer map[NotificationKind]map[EntityID]*Entity
	queued bool
}

// addOwner records another system sharing this watcher.
func (cw *ComponentWatcher) addOwner(id SystemID) {
	cw.owners = append(cw.owners, id)
}

func newComponentWatcher(w *World, ctx *Context, target CompID) *ComponentWatcher {
	cw := &ComponentWatcher{
		id:     hashComponentWatcherID(ctx.id, target),
		ctx:    ctx,
		target: target,
		buffer: make(map[NotificationKind]map[EntityID]*Entity),
	}
	ctx.OnComponentAdded.Subscribe(func(ev ComponentEvent) {
		if ev.CompID == target {
			cw.enqueue(w, NotifyAdded, ev.Entity)
		}
	})
	ctx.OnComponentRemoved.Subscribe(func(ev RemoveEvent) {
		if ev.CompID == target {
			cw.enqueue(w, NotifyRemoved, ev.Entity)
		}
	})
	ctx.OnComponentModified.Subscribe(func(ev ComponentEvent) {
		if ev.CompID == target {
			cw.enqueue(w, NotifyModified, ev.Entity)
		}
	})
	ctx.OnEntityActivated.Subscribe(func(id EntityID) {
		if e, ok := w.tryGetEntityAny(id); ok {
			cw.enqueue(w, NotifyEnabled, e)
		}
	})
	ctx.OnEntityDeactivated.Subscribe(func(id EntityID) {
		if e, ok := w.tryGetEntityAny(id); ok {
			cw.enqueue(w, NotifyDisabled, e)
		}
	})
	return cw
}

// ID returns the watcher's canonical identity.
func (cw *ComponentWatcher) ID() WatcherID { return cw.id }

func (cw *ComponentWatcher) bucket(kind NotificationKind) map[EntityID]*Entity {
	b, ok := cw.buffer[kind]
	if !ok {
		b = make(map[EntityID]*Entity)
		cw.buffer[kind] = b
	}
	return b
}

func (cw *ComponentWatcher) has(kind NotificationKind, id EntityID) bool {
	b, ok := cw.buffer[kind]
	if !ok {
		return false
	}
	_, ok = b[id]
	return ok
}

func (cw *ComponentWatcher) drop(kind NotificationKind, id EntityID) {
	if b, ok := cw.buffer[kind]; ok {
		delete(b, id)
	}
}

// enqueue applies coalescing/cancellation rules, then tells
// the owning World this watcher has work to drain this frame.
func (cw *ComponentWatcher) enqueue(w *World, kind NotificationKind, e *Entity) {
	switch kind {
	case NotifyRemoved:
		// added then removed, same frame: only removed fires.
		cw.drop(NotifyAdded, e.id)
		cw.bucket(NotifyRemoved)[e.id] = e
	case NotifyDisabled:
		// added then disabled, same frame: neither fires.
		if cw.has(NotifyAdded, e.id) {
			cw.drop(NotifyAdded, e.id)
			return
		}
		cw.bucket(NotifyDisabled)[e.id] = e
	default:
		cw.bucket(kind)[e.id] = e
	}
	if !cw.queued {
		cw.queued = true
		w.enqueueWatcherDrain(cw)
	}
}

// PopNotifications drains and clears the buffer, returning one entity slice
// per non-empty NotificationKind bucket in dispatch order.
// A destroyed entity is dropped from every bucket except Removed, since a
// watcher observing Added/Modified/Enabled/Disabled for an entity that no
// longer exists has nothing meaningful left to report.
func (cw *ComponentWatcher) PopNotifications() map[NotificationKind][]*Entity {
	out := make(map[NotificationKind][]*Entity)
	for _, kind := range dispatchOrder {
		bucket := cw.buffer[kind]
		if len(bucket) == 0 {
			continue
		}
		var list []*Entity
		for _, e := range bucket {
			if kind != NotifyRemoved && e.destroyed {
				continue
			}
			list = append(list, e)
		}
		if len(list) > 0 {
			out[kind] = list
		}
	}
	cw.buffer = make(map[NotificationKind]map[EntityID]*Entity)
	cw.queued = false
	return out
}
