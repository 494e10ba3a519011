package ecs

import "github.com/TheBitDrifter/mask"

// Context is a canonical, shared subset of a World's entities, selected by a
// filter over target_components. Two systems declared with
// byte-equal filters resolve to the very same *Context object, keyed by
// ContextID.
//
// Entities here mutate components in place rather than transferring between
// archetype tables, so Context keeps its membership live: it subscribes,
// permanently, to every entity's own event Signals for the lifetime of both,
// and reacts incrementally rather than rescanning. A literal reading of
// "subscribes on first match, unsubscribes on leaving" is intentionally NOT
// implemented that way — Signal.Emit only visits handlers that existed
// before the emit began, so a handler added during the very mutation that
// causes a first match would miss that mutation's own event. Persistent
// subscription with internal admit/evict gating produces the same
// externally observable admit/evict/relay behavior without that gap.
type Context struct {
	id    ContextID
	world *World

	targets map[FilterKind][]CompID

	allMask, anyMask, noneMask mask.Mask
	hasAny                     bool
	isNoneKind                 bool

	members            map[EntityID]*Entity
	deactivatedMembers map[EntityID]*Entity

	access map[CompID]AccessKind

	OnComponentAdded           Signal[ComponentEvent]
	OnComponentBeforeModifying Signal[ComponentEvent]
	OnComponentModified        Signal[ComponentEvent]
	OnComponentBeforeRemoving  Signal[ComponentEvent]
	OnComponentRemoved         Signal[RemoveEvent]
	OnEntityActivated          Signal[EntityID]
	OnEntityDeactivated        Signal[EntityID]
	OnMessageSent              Signal[MessageEvent]
}

// newContext builds a Context for the given canonical targets. Callers
// should go through World.getOrCreateContext so sharing across systems that
// declare the same filter is honored.
func newContext(w *World, targets map[FilterKind][]CompID) *Context {
	ctx := &Context{
		id:                 hashContextID(targets),
		world:              w,
		targets:            targets,
		members:            make(map[EntityID]*Entity),
		deactivatedMembers: make(map[EntityID]*Entity),
		access:             make(map[CompID]AccessKind),
	}
	if ids, ok := targets[AllOf]; ok {
		ctx.allMask = maskFrom(ids)
	}
	if ids, ok := targets[AnyOf]; ok && len(ids) > 0 {
		ctx.anyMask = maskFrom(ids)
		ctx.hasAny = true
	}
	if ids, ok := targets[NoneOf]; ok {
		ctx.noneMask = maskFrom(ids)
	}
	if _, ok := targets[NoneKind]; ok {
		ctx.isNoneKind = true
	}
	return ctx
}

// ID returns the Context's canonical identity.
func (ctx *Context) ID() ContextID { return ctx.id }

// matches evaluates the filter predicate against an entity's current
// presence mask (components currently held OR messages sent this frame).
func (ctx *Context) matches(e *Entity) bool {
	if ctx.isNoneKind {
		return false
	}
	p := e.PresenceMask()
	if !p.ContainsAll(ctx.allMask) {
		return false
	}
	if !p.ContainsNone(ctx.noneMask) {
		return false
	}
	if ctx.hasAny && !p.ContainsAny(ctx.anyMask) {
		return false
	}
	return true
}

// targetsInclude reports whether id appears in any of this Context's filter
// clauses, i.e. whether a relayed event about id is something a watcher on
// this Context would care about.
func (ctx *Context) targetsInclude(id CompID) bool {
	for _, ids := range ctx.targets {
		for _, want := range ids {
			if want == id {
				return true
			}
		}
	}
	return false
}

func (ctx *Context) isMember(id EntityID) bool {
	if _, ok := ctx.members[id]; ok {
		return true
	}
	_, ok := ctx.deactivatedMembers[id]
	return ok
}

func (ctx *Context) admit(e *Entity) {
	if e.deactivated {
		ctx.deactivatedMembers[e.id] = e
	} else {
		ctx.members[e.id] = e
	}
}

func (ctx *Context) evict(e *Entity) {
	delete(ctx.members, e.id)
	delete(ctx.deactivatedMembers, e.id)
}

// mergeAccess records the read/write intent declared by one system's filter
// clauses against this (possibly shared) Context. ReadWrite collapses to
// Write; a CompID already recorded as Write never downgrades to Read, since
// any one writer makes the access pattern for that id a write overall.
func (ctx *Context) mergeAccess(filters []FilterDecl) {
	for _, f := range filters {
		kind := f.Access
		if kind == ReadWrite {
			kind = Write
		}
		for _, id := range f.Types {
			if existing, ok := ctx.access[id]; ok && existing == Write {
				continue
			}
			ctx.access[id] = kind
		}
	}
}

// AccessKinds returns the merged access-kind declarations across every
// system that shares this Context, grouped by kind. This is metadata for a
// future parallel scheduler; this module's sequential execution never
// consults it.
func (ctx *Context) AccessKinds() map[AccessKind][]CompID {
	out := make(map[AccessKind][]CompID)
	for id, kind := range ctx.access {
		out[kind] = append(out[kind], id)
	}
	return out
}

// Entities returns every active member, order unspecified.
func (ctx *Context) Entities() []*Entity {
	return collectValues(ctx.members)
}

// Len reports the number of active members.
func (ctx *Context) Len() int { return len(ctx.members) }

// attach wires ctx to react to one entity's lifecycle for as long as both
// live; called once per (Context, Entity) pair by World: by AddEntity for
// every existing Context, and by getOrCreateContext for every existing
// entity when a Context is newly created.
func (ctx *Context) attach(e *Entity) {
	e.OnComponentAdded.Subscribe(func(ev ComponentEvent) { ctx.onComponentAdded(ev) })
	e.OnComponentBeforeRemoving.Subscribe(func(ev ComponentEvent) { ctx.onBeforeRemoving(ev) })
	e.OnComponentRemoved.Subscribe(func(ev RemoveEvent) { ctx.onComponentRemoved(ev) })
	e.OnComponentBeforeModifying.Subscribe(func(ev ComponentEvent) { ctx.onBeforeModifying(ev) })
	e.OnComponentModified.Subscribe(func(ev ComponentEvent) { ctx.onModified(ev) })
	e.OnEntityActivated.Subscribe(func(id EntityID) { ctx.onEntityActivated(id) })
	e.OnEntityDeactivated.Subscribe(func(id EntityID) { ctx.onEntityDeactivated(id) })
	e.OnEntityDestroyed.Subscribe(func(id EntityID) { ctx.onEntityDestroyed(id) })
	e.OnMessage.Subscribe(func(ev MessageEvent) { ctx.onMessage(ev) })

	if ctx.matches(e) {
		ctx.admit(e)
	}
}

func (ctx *Context) onComponentAdded(ev ComponentEvent) {
	e := ev.Entity
	was := ctx.isMember(e.id)
	now := ctx.matches(e)
	switch {
	case !was && now:
		ctx.admit(e)
		ctx.OnComponentAdded.Emit(ev)
	case was && now && ctx.targetsInclude(ev.CompID):
		ctx.OnComponentAdded.Emit(ev)
	case was && !now:
		ctx.evict(e)
		ctx.OnComponentRemoved.Emit(RemoveEvent{Entity: e, CompID: ev.CompID})
	}
}

func (ctx *Context) onBeforeRemoving(ev ComponentEvent) {
	if ctx.isMember(ev.Entity.id) && ctx.targetsInclude(ev.CompID) {
		ctx.OnComponentBeforeRemoving.Emit(ev)
	}
}

func (ctx *Context) onComponentRemoved(ev RemoveEvent) {
	e := ev.Entity

	// A destroy cascade removes every remaining component one at a time,
	// each firing its own removed event; evaluating "still matches" after
	// each individual deletion would evict the entity partway through and
	// silently drop the relay for whichever targeted components happen to
	// be removed afterward. Defer eviction to onEntityDestroyed (fired once,
	// after every component is gone) and simply relay every targeted id.
	if ev.CausedByDestroy {
		if ctx.isMember(e.id) && ctx.targetsInclude(ev.CompID) {
			ctx.OnComponentRemoved.Emit(ev)
		}
		return
	}

	was := ctx.isMember(e.id)
	now := ctx.matches(e)
	switch {
	case was && !now:
		ctx.evict(e)
		ctx.OnComponentRemoved.Emit(ev)
	case was && now && ctx.targetsInclude(ev.CompID):
		ctx.OnComponentRemoved.Emit(ev)
	case !was && now:
		ctx.admit(e)
		ctx.OnComponentAdded.Emit(ComponentEvent{Entity: e, CompID: ev.CompID})
	}
}

func (ctx *Context) onBeforeModifying(ev ComponentEvent) {
	if ctx.isMember(ev.Entity.id) && ctx.targetsInclude(ev.CompID) {
		ctx.OnComponentBeforeModifying.Emit(ev)
	}
}

func (ctx *Context) onModified(ev ComponentEvent) {
	if ctx.isMember(ev.Entity.id) && ctx.targetsInclude(ev.CompID) {
		ctx.OnComponentModified.Emit(ev)
	}
}

func (ctx *Context) onEntityActivated(id EntityID) {
	if _, ok := ctx.deactivatedMembers[id]; !ok {
		return
	}
	e := ctx.deactivatedMembers[id]
	delete(ctx.deactivatedMembers, id)
	ctx.members[id] = e
	ctx.OnEntityActivated.Emit(id)
}

func (ctx *Context) onEntityDeactivated(id EntityID) {
	e, ok := ctx.members[id]
	if !ok {
		return
	}
	delete(ctx.members, id)
	ctx.deactivatedMembers[id] = e
	ctx.OnEntityDeactivated.Emit(id)
}

// onEntityDestroyed fires once, strictly after every per-component removed
// event from the same Destroy() call has already been relayed above, and is
// solely responsible for the membership eviction that the destroy cascade
// itself no longer performs inline.
func (ctx *Context) onEntityDestroyed(id EntityID) {
	delete(ctx.members, id)
	delete(ctx.deactivatedMembers, id)
}

func (ctx *Context) onMessage(ev MessageEvent) {
	e := ev.Entity
	was := ctx.isMember(e.id)
	now := ctx.matches(e)
	if !was && now {
		ctx.admit(e)
	}
	if ctx.isMember(e.id) && (!was || ctx.targetsInclude(ev.CompID)) {
		ctx.OnMessageSent.Emit(ev)
	}
}

// onMessagesCleared is invoked by World at end-of-frame, once per entity
// that had any message this frame, for every context in the world, with the
// ids about to be cleared. A context the entity belongs to emits a synthetic
// removed relay for every cleared id it targets, mirroring a normal
// component removal; if the entity no longer matches once the messages are
// gone (its membership depended on them), it is then evicted.
func (ctx *Context) onMessagesCleared(e *Entity, clearedIDs []CompID) {
	if !ctx.isMember(e.id) {
		return
	}
	for _, id := range clearedIDs {
		if ctx.targetsInclude(id) {
			ctx.OnComponentRemoved.Emit(RemoveEvent{Entity: e, CompID: id})
		}
	}
	if !ctx.matches(e) {
		ctx.evict(e)
	}
}

// dispose detaches every Signal this Context owns; called by World.exit.
func (ctx *Context) dispose() {
	ctx.OnComponentAdded.Clear()
	ctx.OnComponentBeforeModifying.Clear()
	ctx.OnComponentModified.Clear()
	ctx.OnComponentBeforeRemoving.Clear()
	ctx.OnComponentRemoved.Clear()
	ctx.OnEntityActivated.Clear()
	ctx.OnEntityDeactivated.Clear()
	ctx.OnMessageSent.Clear()
	ctx.members = nil
	ctx.deactivatedMembers = nil
}
