package ecs

// MessageWatcher subscribes to a Context's relayed message-sent channel and
// dispatches synchronously, at send time, to every interested Messager
// system — unlike ComponentWatcher, there is no per-frame coalescing buffer,
// because a message is a fire-once-per-send event rather than a state
// transition worth batching.
type MessageWatcher struct {
	id      WatcherID
	ctx     *Context
	targets map[CompID]bool
}

func newMessageWatcher(ctx *Context, targets []CompID, dispatch func(e *Entity, compID CompID, msg Message)) *MessageWatcher {
	set := make(map[CompID]bool, len(targets))
	for _, id := range targets {
		set[id] = true
	}
	mw := &MessageWatcher{
		id:      hashMessageWatcherID(ctx.id, targets),
		ctx:     ctx,
		targets: set,
	}
	ctx.OnMessageSent.Subscribe(func(ev MessageEvent) {
		if set[ev.CompID] {
			dispatch(ev.Entity, ev.CompID, ev.Msg)
		}
	})
	return mw
}

// ID returns the watcher's canonical identity.
func (mw *MessageWatcher) ID() WatcherID { return mw.id }
