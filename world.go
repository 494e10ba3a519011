package ecs

import (
	"fmt"
	"reflect"
	"sort"
)

// WorldOption configures a World at construction, a functional-option idiom
// used in place of a sprawling positional-argument constructor.
type WorldOption func(*World)

// WithLogger overrides the World's Logger; defaults to Config.logger.
func WithLogger(l Logger) WorldOption {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithDiagnostics toggles the uniqueness assertion GetUnique performs.
func WithDiagnostics(on bool) WorldOption {
	return func(w *World) { w.diagnostics = on }
}

// WithComponentMeta supplies the per-component flags (unique,
// keep_on_replace, requires), keyed by CompID — typically built by resolving
// LoadComponentMetadataYAML's name-keyed map against the World's own
// ComponentIndex before construction.
func WithComponentMeta(meta map[CompID]ComponentMeta) WorldOption {
	return func(w *World) { w.componentMeta = meta }
}

// SystemRegistration is one (system_meta, handlers, initially_active) triple
// supplied to NewWorld.
type SystemRegistration struct {
	Meta            SystemMeta
	Handlers        any
	InitiallyActive bool
}

type pendingSysChange struct {
	sys      *registeredSystem
	activate bool
}

// World owns every Entity, Context, and watcher, and drives the phase
// methods a host calls once per frame. It is the single
// object a host holds; everything else is reached through it.
type World struct {
	log         Logger
	diagnostics bool

	index *ComponentIndex

	entities map[EntityID]*Entity
	nextID   EntityID

	contexts map[ContextID]*Context
	watchers map[WatcherID]*ComponentWatcher

	systems       []*registeredSystem
	systemsByName map[string]*registeredSystem

	pendingDestroy     []*Entity
	pendingSysChanges  []pendingSysChange
	watcherQueue       []*ComponentWatcher
	messagedEntities   map[EntityID]*Entity

	uniqueContexts map[reflect.Type]*Context

	componentMeta map[CompID]ComponentMeta

	paused  bool
	exiting bool
}

// NewWorld builds a World: it constructs the ComponentIndex from the given
// component/message types, then registers every system in declaration
// order, building or reusing a Context per distinct filter set and
// creating watchers per declared watch type.
func NewWorld(componentTypes, messageTypes []reflect.Type, registrations []SystemRegistration, opts ...WorldOption) (*World, error) {
	idx, err := NewComponentIndex(componentTypes, messageTypes)
	if err != nil {
		return nil, err
	}
	w := &World{
		log:            Config.logger,
		diagnostics:    Config.diagnostics,
		index:          idx,
		entities:       make(map[EntityID]*Entity),
		contexts:       make(map[ContextID]*Context),
		watchers:       make(map[WatcherID]*ComponentWatcher),
		systemsByName:  make(map[string]*registeredSystem),
		uniqueContexts: make(map[reflect.Type]*Context),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = noopLogger{}
	}
	for _, reg := range registrations {
		if _, err := w.registerSystem(reg); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *World) logger() Logger { return w.log }

// ComponentMeta returns the declared flags for id, or the zero value if none
// were supplied via WithComponentMeta.
func (w *World) ComponentMeta(id CompID) ComponentMeta {
	return w.componentMeta[id]
}

// Index exposes the World's ComponentIndex, e.g. so a host can resolve a
// CompID before building an ad-hoc Context.
func (w *World) Index() *ComponentIndex { return w.index }

func (w *World) registerSystem(reg SystemRegistration) (*registeredSystem, error) {
	meta := reg.Meta
	if meta.Capabilities.Has(CapReactive) && len(meta.Watcher.Types) == 0 {
		return nil, BadMetadataError{SystemName: meta.Name, Reason: "declares Reactive without a watcher list"}
	}
	if meta.Capabilities.Has(CapMessager) && len(meta.Messager.Types) == 0 {
		return nil, BadMetadataError{SystemName: meta.Name, Reason: "declares Messager without a messager list"}
	}

	targets := make(map[FilterKind][]CompID)
	for _, f := range meta.Filters {
		targets[f.Kind] = append(targets[f.Kind], f.Types...)
	}
	ctx := w.getOrCreateContext(targets)
	ctx.mergeAccess(meta.Filters)

	isUpdateKind := meta.Capabilities.Has(CapUpdate) || meta.Capabilities.Has(CapLateUpdate) || meta.Capabilities.Has(CapFixedUpdate)
	pausable := isUpdateKind && !meta.Capabilities.Has(CapRender) && (!meta.DoNotPause || meta.IncludeOnPause)

	rs := &registeredSystem{
		id:          SystemID(len(w.systems)),
		meta:        meta,
		handlers:    reg.Handlers,
		ctx:         ctx,
		active:      reg.InitiallyActive,
		pausable:    pausable,
		playOnPause: meta.OnPause,
	}

	if meta.Capabilities.Has(CapReactive) {
		for _, t := range meta.Watcher.Types {
			cw := w.getOrCreateComponentWatcher(ctx, t)
			cw.addOwner(rs.id)
			rs.compWatchers = append(rs.compWatchers, cw)
		}
		// before_removing/before_modifying are the synchronous half of
		// Reactive: unlike the coalesced added/removed/modified dispatch,
		// they fire immediately at mutation time, not queued for drain.
		if brs, ok := rs.handlers.(BeforeReactiveSystem); ok {
			ctx.OnComponentBeforeRemoving.Subscribe(func(ev ComponentEvent) {
				if rs.active {
					brs.OnBeforeRemoving(w, ev.Entity, ev.CompID)
				}
			})
			ctx.OnComponentBeforeModifying.Subscribe(func(ev ComponentEvent) {
				if rs.active {
					brs.OnBeforeModifying(w, ev.Entity, ev.CompID)
				}
			})
		}
	}

	if meta.Capabilities.Has(CapMessager) {
		rs.msgWatcher = newMessageWatcher(ctx, meta.Messager.Types, func(e *Entity, compID CompID, msg Message) {
			if !rs.active {
				return
			}
			if ms, ok := rs.handlers.(MessagerSystem); ok {
				ms.OnMessage(w, e, compID, msg)
			}
		})
	}

	if meta.Capabilities.Has(CapActivationListener) {
		if al, ok := rs.handlers.(ActivationListenerSystem); ok {
			ctx.OnEntityActivated.Subscribe(func(EntityID) {
				if rs.active {
					al.OnActivated(ctx)
				}
			})
			ctx.OnEntityDeactivated.Subscribe(func(EntityID) {
				if rs.active {
					al.OnDeactivated(ctx)
				}
			})
		}
	}

	w.systems = append(w.systems, rs)
	w.systemsByName[meta.Name] = rs
	return rs, nil
}

// getOrCreateContext returns the shared Context for a canonical target set,
// attaching every existing entity if the Context is newly created.
func (w *World) getOrCreateContext(targets map[FilterKind][]CompID) *Context {
	id := hashContextID(targets)
	if ctx, ok := w.contexts[id]; ok {
		return ctx
	}
	ctx := newContext(w, targets)
	w.contexts[id] = ctx
	for _, e := range w.entities {
		ctx.attach(e)
	}
	return ctx
}

func (w *World) getOrCreateComponentWatcher(ctx *Context, target CompID) *ComponentWatcher {
	id := hashComponentWatcherID(ctx.id, target)
	if cw, ok := w.watchers[id]; ok {
		return cw
	}
	cw := newComponentWatcher(w, ctx, target)
	w.watchers[id] = cw
	return cw
}

func (w *World) enqueueWatcherDrain(cw *ComponentWatcher) {
	w.watcherQueue = append(w.watcherQueue, cw)
}

func (w *World) scheduleDestroy(e *Entity) {
	w.pendingDestroy = append(w.pendingDestroy, e)
}

func (w *World) markSentMessages(e *Entity) {
	if w.messagedEntities == nil {
		w.messagedEntities = make(map[EntityID]*Entity)
	}
	w.messagedEntities[e.id] = e
}

func (w *World) tryGetEntityAny(id EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// --- Entity management ---

// AddEntity allocates a new Entity (or claims explicitID if given and free),
// attaches it to every Context, and adds each supplied component in order.
func (w *World) AddEntity(components []Component, explicitID ...EntityID) (*Entity, error) {
	var id EntityID
	if len(explicitID) > 0 {
		id = explicitID[0]
		if _, used := w.entities[id]; used {
			return nil, EntityMissingError{Entity: id}
		}
		if id >= w.nextID {
			w.nextID = id + 1
		}
	} else {
		id = w.nextEntityID()
	}
	e := newEntity(w, id)
	w.entities[id] = e
	for _, ctx := range w.contexts {
		ctx.attach(e)
	}
	for _, c := range components {
		if err := e.Add(c); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (w *World) nextEntityID() EntityID {
	for {
		id := w.nextID
		w.nextID++
		if _, used := w.entities[id]; !used {
			return id
		}
	}
}

// GetEntity returns the entity for id, panicking with EntityMissingError if
// it was never allocated or has already been disposed.
func (w *World) GetEntity(id EntityID) *Entity {
	e, ok := w.entities[id]
	if !ok {
		panic(EntityMissingError{Entity: id})
	}
	return e
}

// TryGetEntity is the non-panicking counterpart to GetEntity.
func (w *World) TryGetEntity(id EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// GetAllEntities returns every live entity, order unspecified.
func (w *World) GetAllEntities() []*Entity {
	return collectValues(w.entities)
}

// GetEntitiesWith returns every active entity carrying all of the given
// component types, via an ad-hoc all_of Context.
func (w *World) GetEntitiesWith(types ...reflect.Type) ([]*Entity, error) {
	ids := make([]CompID, 0, len(types))
	for _, t := range types {
		id, err := w.index.ID(t)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	ctx := w.getOrCreateContext(map[FilterKind][]CompID{AllOf: ids})
	return ctx.Entities(), nil
}

// GetUnique returns the single non-destroyed entity carrying component type
// t, panicking if diagnostics mode is on and more than one is found.
func (w *World) GetUnique(t reflect.Type) (*Entity, bool) {
	ctx, ok := w.uniqueContexts[t]
	if !ok {
		id, err := w.index.ID(t)
		if err != nil {
			return nil, false
		}
		ctx = w.getOrCreateContext(map[FilterKind][]CompID{AnyOf: {id}})
		w.uniqueContexts[t] = ctx
	}
	members := ctx.Entities()
	if w.diagnostics && len(members) > 1 {
		panic(UniquenessViolationError{TypeName: t.String(), Count: len(members)})
	}
	if len(members) == 0 {
		return nil, false
	}
	return members[0], true
}

// TryGetUniqueEntity is an alias for GetUnique kept for parity with the
// `try_get_unique_entity` naming used by callers ported from other engines.
func (w *World) TryGetUniqueEntity(t reflect.Type) (*Entity, bool) {
	return w.GetUnique(t)
}

// --- System activation ---

// ActivateSystem activates a registered system by name, immediately or
// deferred to the end of the current phase. Returns false and a
// SystemMissingError if name is not a registered system.
func (w *World) ActivateSystem(name string, immediate bool) (bool, error) {
	rs, ok := w.systemsByName[name]
	if !ok {
		return false, SystemMissingError{SystemName: name}
	}
	if immediate {
		rs.active = true
	} else {
		w.pendingSysChanges = append(w.pendingSysChanges, pendingSysChange{sys: rs, activate: true})
	}
	return true, nil
}

// DeactivateSystem mirrors ActivateSystem.
func (w *World) DeactivateSystem(name string, immediate bool) (bool, error) {
	rs, ok := w.systemsByName[name]
	if !ok {
		return false, SystemMissingError{SystemName: name}
	}
	if immediate {
		rs.active = false
	} else {
		w.pendingSysChanges = append(w.pendingSysChanges, pendingSysChange{sys: rs, activate: false})
	}
	return true, nil
}

// ActivateAllSystems activates every registered system immediately.
func (w *World) ActivateAllSystems() {
	for _, rs := range w.systems {
		rs.active = true
	}
}

// DeactivateAllSystems deactivates every registered system immediately,
// except those whose name appears in skip.
func (w *World) DeactivateAllSystems(skip ...string) {
	skipSet := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}
	for _, rs := range w.systems {
		if skipSet[rs.meta.Name] {
			continue
		}
		rs.active = false
	}
}

// --- Pause ---

// Pause deactivates every active pausable system (remembering which it
// touched, for Resume) and activates every play-on-pause system.
func (w *World) Pause() {
	if w.paused {
		return
	}
	w.paused = true
	for _, rs := range w.systems {
		rs.wasActiveBeforePause = false
		if rs.pausable && rs.active {
			rs.active = false
			rs.wasActiveBeforePause = true
		}
		if rs.playOnPause {
			rs.active = true
		}
	}
}

// Resume reverses exactly what Pause touched.
func (w *World) Resume() {
	if !w.paused {
		return
	}
	w.paused = false
	for _, rs := range w.systems {
		if rs.wasActiveBeforePause {
			rs.active = true
			rs.wasActiveBeforePause = false
		}
		if rs.playOnPause {
			rs.active = false
		}
	}
}

// IsPaused reports whether Pause has been called without a matching Resume.
func (w *World) IsPaused() bool { return w.paused }

// IsExiting reports whether Exit has run.
func (w *World) IsExiting() bool { return w.exiting }

// --- Phases ---

func (w *World) runPhase(cap Capability, isUpdatePhase bool) {
	if w.exiting {
		return
	}
	for _, rs := range w.systems {
		if !rs.active || !rs.meta.Capabilities.Has(cap) {
			continue
		}
		if ps, ok := rs.handlers.(PhaseSystem); ok {
			ps.Run(rs.ctx)
		}
	}
	w.drainReactive()
	w.destroyPendingEntities()
	w.applyPendingSystemChanges()
	if isUpdatePhase {
		w.clearFrameMessages()
	}
}

// EarlyStart runs every active EarlyStartup system.
func (w *World) EarlyStart() { w.runPhase(CapEarlyStartup, false) }

// Start runs every active Startup system.
func (w *World) Start() { w.runPhase(CapStartup, false) }

// Update runs every active Update system, then clears per-frame messages.
func (w *World) Update() { w.runPhase(CapUpdate, true) }

// LateUpdate runs every active LateUpdate system.
func (w *World) LateUpdate() { w.runPhase(CapLateUpdate, false) }

// FixedUpdate runs every active FixedUpdate system.
func (w *World) FixedUpdate() { w.runPhase(CapFixedUpdate, false) }

// Exit runs every active Exit system, disposes every entity (including
// deactivated ones) and every context, and marks the World as exiting; every
// phase method becomes a no-op afterward. Idempotent.
func (w *World) Exit() {
	if w.exiting {
		return
	}
	for _, rs := range w.systems {
		if !rs.active || !rs.meta.Capabilities.Has(CapExit) {
			continue
		}
		if ps, ok := rs.handlers.(PhaseSystem); ok {
			ps.Run(rs.ctx)
		}
	}
	for _, e := range w.entities {
		e.Dispose()
	}
	w.entities = make(map[EntityID]*Entity)
	for _, ctx := range w.contexts {
		ctx.dispose()
	}
	w.contexts = make(map[ContextID]*Context)
	w.exiting = true
}

// Dispose is an alias for Exit kept for parity with naming
// (`dispose()` alongside the phase methods).
func (w *World) Dispose() { w.Exit() }

func (w *World) destroyPendingEntities() {
	if len(w.pendingDestroy) == 0 {
		return
	}
	pending := w.pendingDestroy
	w.pendingDestroy = nil
	for _, e := range pending {
		e.Dispose()
		delete(w.entities, e.id)
	}
}

func (w *World) applyPendingSystemChanges() {
	if len(w.pendingSysChanges) == 0 {
		return
	}
	pending := w.pendingSysChanges
	w.pendingSysChanges = nil
	for _, ch := range pending {
		ch.sys.active = ch.activate
	}
}

func (w *World) clearFrameMessages() {
	if len(w.messagedEntities) == 0 {
		return
	}
	sent := w.messagedEntities
	w.messagedEntities = nil
	for _, e := range sent {
		ids := e.messageIDs()
		for _, ctx := range w.contexts {
			ctx.onMessagesCleared(e, ids)
		}
		e.clearMessages()
	}
}

// drainReactive implements reactive drain: snapshot the
// triggered watcher set, clear the live queue, pop each watcher's
// notifications, merge per owning system into NotificationKind buckets, and
// dispatch in registration order using the fixed kind order from
// system.go's dispatchOrder. If dispatch itself produces new pending
// notifications (a reactive handler mutating a component that causes a
// second wave), the whole pass repeats until a fixpoint.
func (w *World) drainReactive() {
	for len(w.watcherQueue) > 0 {
		triggered := w.watcherQueue
		w.watcherQueue = nil

		perSystem := make(map[SystemID]map[NotificationKind]map[EntityID]*Entity)
		for _, cw := range triggered {
			notifications := cw.PopNotifications()
			for _, ownerID := range cw.owners {
				bucket := perSystem[ownerID]
				if bucket == nil {
					bucket = make(map[NotificationKind]map[EntityID]*Entity)
					perSystem[ownerID] = bucket
				}
				for kind, ents := range notifications {
					m := bucket[kind]
					if m == nil {
						m = make(map[EntityID]*Entity)
						bucket[kind] = m
					}
					for _, e := range ents {
						m[e.id] = e
					}
				}
			}
		}

		for _, rs := range w.systems {
			bucket, ok := perSystem[rs.id]
			if !ok || !rs.active {
				continue
			}
			rsys, ok := rs.handlers.(ReactiveSystem)
			if !ok {
				continue
			}
			for _, kind := range dispatchOrder {
				m := bucket[kind]
				if len(m) == 0 {
					continue
				}
				list := entitiesOf(m)
				switch kind {
				case NotifyRemoved:
					rsys.OnRemoved(w, list)
				case NotifyAdded:
					rsys.OnAdded(w, list)
				case NotifyModified:
					rsys.OnModified(w, list)
				case NotifyEnabled:
					rsys.OnActivated(w, list)
				case NotifyDisabled:
					rsys.OnDeactivated(w, list)
				}
			}
		}
	}
}

func entitiesOf(m map[EntityID]*Entity) []*Entity {
	out := collectValues(m)
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// describeSystems renders the registration order and active flags, used by
// Logger-backed diagnostics output.
func (w *World) describeSystems() string {
	var names []string
	for _, rs := range w.systems {
		names = append(names, fmt.Sprintf("%s(active=%v)", rs.meta.Name, rs.active))
	}
	return fmt.Sprintf("%v", names)
}
