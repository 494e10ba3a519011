package ecs

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/TheBitDrifter/mask"
)

// EntityID identifies an Entity, unique and non-reusable within a World.
type EntityID uint64

// ComponentEvent is the payload for on_component_added / on_component_before_modifying /
// on_component_modified / on_component_before_removing. WillDestroy is only
// meaningful on the before_removing event: from Remove it reports whether
// removing this component will leave the entity with zero components and so
// trigger Destroy immediately afterward; Destroy and Dispose set it on every
// component they remove.
type ComponentEvent struct {
	Entity      *Entity
	CompID      CompID
	WillDestroy bool
}

// RemoveEvent is the payload for on_component_removed.
type RemoveEvent struct {
	Entity          *Entity
	CompID          CompID
	WillDestroy     bool
	CausedByDestroy bool
}

// MessageEvent is the payload for on_message.
type MessageEvent struct {
	Entity *Entity
	CompID CompID
	Msg    Message
}

// Entity is the identified container of components. Unlike an
// archetype-table entity (a thin handle into a column store, relocated on
// every component add/remove), an Entity here is a stable, independently
// addressable object: components are mutated in place and every mutation
// fires a multicast Signal in subscription order.
type Entity struct {
	world *World
	id    EntityID

	components map[CompID]Component
	messages   map[CompID]Message

	// compMask mirrors the keys of components; msgMask mirrors the keys of
	// messages. presence = compMask | msgMask is what Context predicates
	// test, since entity presence is defined as has(comp) OR has_message(comp).
	compMask mask.Mask
	msgMask  mask.Mask

	parent    EntityID
	hasParent bool
	children  map[EntityID]string
	byName    map[string]EntityID

	destroyed             bool
	deactivated           bool
	deactivatedFromParent bool
	disposed              bool

	OnComponentAdded           Signal[ComponentEvent]
	OnComponentBeforeModifying Signal[ComponentEvent]
	OnComponentModified        Signal[ComponentEvent]
	OnComponentBeforeRemoving  Signal[ComponentEvent]
	OnComponentRemoved         Signal[RemoveEvent]
	OnEntityActivated         Signal[EntityID]
	OnEntityDeactivated       Signal[EntityID]
	OnEntityDestroyed         Signal[EntityID]
	OnMessage                 Signal[MessageEvent]
}

func newEntity(w *World, id EntityID) *Entity {
	return &Entity{
		world:      w,
		id:         id,
		components: make(map[CompID]Component),
		messages:   make(map[CompID]Message),
	}
}

// ID returns the entity's identifier.
func (e *Entity) ID() EntityID { return e.id }

// Destroyed reports whether Destroy has been called.
func (e *Entity) Destroyed() bool { return e.destroyed }

// Deactivated reports whether the entity is currently deactivated.
func (e *Entity) Deactivated() bool { return e.deactivated }

// DeactivatedFromParent reports whether this entity's deactivation was
// caused by a parent's deactivation cascading down.
func (e *Entity) DeactivatedFromParent() bool { return e.deactivatedFromParent }

// Mask returns the entity's present-component bitset (components only, not
// messages). Context evaluates filter predicates against PresenceMask.
func (e *Entity) Mask() mask.Mask { return e.compMask }

// PresenceMask returns compMask|msgMask, matching the "has(comp)
// OR has_message(comp)" presence rule.
func (e *Entity) PresenceMask() mask.Mask {
	m := e.compMask
	for i, v := range e.msgMask {
		m[i] |= v
	}
	return m
}

// Has reports whether the component id is currently present.
func (e *Entity) Has(id CompID) bool {
	_, ok := e.components[id]
	return ok
}

// HasMessage reports whether a message with this id was sent this frame.
func (e *Entity) HasMessage(id CompID) bool {
	_, ok := e.messages[id]
	return ok
}

// TryGet returns the component and true if present, or the zero value and
// false otherwise.
func (e *Entity) TryGet(id CompID) (Component, bool) {
	c, ok := e.components[id]
	return c, ok
}

// Get returns the component for id, panicking with MissingComponentError if
// absent — a programmer error.
func (e *Entity) Get(id CompID) Component {
	c, ok := e.components[id]
	if !ok {
		panic(MissingComponentError{Entity: e.id, CompID: id})
	}
	return c
}

// Components returns every present CompID, order unspecified.
func (e *Entity) Components() []CompID {
	return collectKeys(e.components)
}

// DebugString renders present components and their concrete Go types.
func (e *Entity) DebugString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "entity(%d)", e.id)
	if len(e.components) == 0 {
		b.WriteString(" <no components>")
		return b.String()
	}
	for id, c := range e.components {
		fmt.Fprintf(&b, " [%d:%T]", id, c)
	}
	return b.String()
}

// idOf resolves a component/message value to its CompID via the owning
// World's ComponentIndex.
func (e *Entity) idOf(c any) (CompID, error) {
	return e.world.index.ID(reflect.TypeOf(c))
}

// Add adds a component, warning and no-op'ing if already present. Fires
// on_component_added on success.
func (e *Entity) Add(c Component) error {
	if e.destroyed {
		return UseAfterDestroyError{Entity: e.id}
	}
	id, err := e.idOf(c)
	if err != nil {
		panic(err)
	}
	if e.Has(id) {
		e.world.logger().Warnf("%v", DuplicateAddError{Entity: e.id, CompID: id})
		return nil
	}
	if e.world.diagnostics {
		meta := e.world.ComponentMeta(id)
		for _, req := range meta.Requires {
			if !e.Has(req) {
				e.world.logger().Warnf("%v", MissingRequiredComponentError{Entity: e.id, CompID: id, Requires: req})
			}
		}
		if meta.Unique {
			if others, err := e.world.GetEntitiesWith(reflect.TypeOf(c)); err == nil && len(others) > 0 {
				panic(UniquenessViolationError{TypeName: reflect.TypeOf(c).String(), Count: len(others) + 1})
			}
		}
	}
	e.components[id] = c
	e.compMask.Mark(uint32(id))
	e.OnComponentAdded.Emit(ComponentEvent{Entity: e, CompID: id})
	return nil
}

// Replace swaps in place, emitting before_modifying/modified. If force is
// false and neither the old nor new value implements ModifiableComponent,
// the implementation short-circuits (no emission, no swap) when the values
// are reflect.DeepEqual — "MAY short-circuit" latitude.
func (e *Entity) Replace(c Component, force bool) error {
	if e.destroyed {
		return UseAfterDestroyError{Entity: e.id}
	}
	id, err := e.idOf(c)
	if err != nil {
		panic(err)
	}
	old, ok := e.components[id]
	if !ok {
		e.world.logger().Warnf("%v", ReplaceAbsentError{Entity: e.id, CompID: id})
		return nil
	}
	if !force && !isModifiable(old) && !isModifiable(c) && reflect.DeepEqual(old, c) {
		return nil
	}
	e.OnComponentBeforeModifying.Emit(ComponentEvent{Entity: e, CompID: id})
	e.components[id] = c
	e.OnComponentModified.Emit(ComponentEvent{Entity: e, CompID: id})
	return nil
}

func isModifiable(c any) bool {
	_, ok := c.(ModifiableComponent)
	return ok
}

// AddOrReplace dispatches to Add or Replace based on current presence.
func (e *Entity) AddOrReplace(c Component) error {
	id, err := e.idOf(c)
	if err != nil {
		panic(err)
	}
	if e.Has(id) {
		return e.Replace(c, false)
	}
	return e.Add(c)
}

// Remove clears comp_id, emitting before_removing/removed. If the entity now
// has no components it transitions to Destroy.
func (e *Entity) Remove(id CompID) error {
	if e.destroyed {
		return nil
	}
	if !e.Has(id) {
		return nil
	}
	willDestroy := len(e.components) == 1
	e.OnComponentBeforeRemoving.Emit(ComponentEvent{Entity: e, CompID: id, WillDestroy: willDestroy})
	delete(e.components, id)
	e.compMask.Unmark(uint32(id))
	e.OnComponentRemoved.Emit(RemoveEvent{Entity: e, CompID: id, WillDestroy: willDestroy})
	if willDestroy {
		e.Destroy()
	}
	return nil
}

// Destroy removes every present component (emitting before_removing/removed
// with CausedByDestroy=true for each), sets Destroyed, and fires
// on_entity_destroyed. Actual table cleanup is deferred to World's
// end-of-phase dispose pass. Idempotent.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	ids := e.Components()
	for _, id := range ids {
		e.OnComponentBeforeRemoving.Emit(ComponentEvent{Entity: e, CompID: id, WillDestroy: true})
		delete(e.components, id)
		e.compMask.Unmark(uint32(id))
		e.OnComponentRemoved.Emit(RemoveEvent{Entity: e, CompID: id, WillDestroy: true, CausedByDestroy: true})
	}
	e.destroyed = true
	e.OnEntityDestroyed.Emit(e.id)
	e.world.scheduleDestroy(e)
	for childID := range e.children {
		if child, ok := e.world.tryGetEntityAny(childID); ok {
			child.Destroy()
		}
	}
}

// Wipe performs a wholesale replace: every present component not declared
// keep_on_replace is removed (firing the ordinary before_removing/removed
// pair, not a destroy), then components is added under the same identity.
// Destroy is never triggered even if every current component is dropped
// before the new ones are added.
//
// Children-during-wipe behavior has no keep flag of its own to hang a
// choice on, so this implementation destroys every child unconditionally;
// a caller can re-parent onto the wiped entity's new identity afterward if
// it wants to preserve any of them.
func (e *Entity) Wipe(components []Component) error {
	if e.destroyed {
		return UseAfterDestroyError{Entity: e.id}
	}
	for _, childID := range e.childIDs() {
		if child, ok := e.world.tryGetEntityAny(childID); ok {
			child.Destroy()
		}
	}
	for _, id := range e.Components() {
		if e.world.ComponentMeta(id).KeepOnReplace {
			continue
		}
		e.OnComponentBeforeRemoving.Emit(ComponentEvent{Entity: e, CompID: id})
		delete(e.components, id)
		e.compMask.Unmark(uint32(id))
		e.OnComponentRemoved.Emit(RemoveEvent{Entity: e, CompID: id})
	}
	for _, c := range components {
		if err := e.AddOrReplace(c); err != nil {
			return err
		}
	}
	return nil
}

// Activate is idempotent; reactivates a deactivated entity, restoring
// exactly the descendants whose deactivation was caused by this entity.
func (e *Entity) Activate() {
	if !e.deactivated {
		return
	}
	e.deactivated = false
	e.deactivatedFromParent = false
	e.OnEntityActivated.Emit(e.id)
	for childID := range e.children {
		child, ok := e.world.tryGetEntityAny(childID)
		if !ok || !child.deactivatedFromParent {
			continue
		}
		child.activateFromParent()
	}
}

func (e *Entity) activateFromParent() {
	if !e.deactivated {
		return
	}
	e.deactivated = false
	e.deactivatedFromParent = false
	e.OnEntityActivated.Emit(e.id)
	for childID := range e.children {
		child, ok := e.world.tryGetEntityAny(childID)
		if !ok || !child.deactivatedFromParent {
			continue
		}
		child.activateFromParent()
	}
}

// Deactivate is idempotent; deactivating a parent cascades to every
// descendant, tagging each as DeactivatedFromParent unless it was already
// independently deactivated.
func (e *Entity) Deactivate() {
	if e.deactivated {
		return
	}
	e.deactivated = true
	e.OnEntityDeactivated.Emit(e.id)
	for childID := range e.children {
		child, ok := e.world.tryGetEntityAny(childID)
		if !ok || child.deactivated {
			continue
		}
		child.deactivateFromParent()
	}
}

func (e *Entity) deactivateFromParent() {
	if e.deactivated {
		return
	}
	e.deactivated = true
	e.deactivatedFromParent = true
	e.OnEntityDeactivated.Emit(e.id)
	for childID := range e.children {
		child, ok := e.world.tryGetEntityAny(childID)
		if !ok || child.deactivated {
			continue
		}
		child.deactivateFromParent()
	}
}

// Reparent detaches from any current parent and attaches to newParent. If
// newParent is already destroyed, the child is destroyed immediately.
func (e *Entity) Reparent(newParent *Entity) error {
	if e.hasParent {
		if old, ok := e.world.tryGetEntityAny(e.parent); ok {
			old.removeChildEntry(e.id)
		}
		e.hasParent = false
	}
	if newParent == nil {
		return nil
	}
	if newParent.destroyed {
		e.Destroy()
		return nil
	}
	e.parent = newParent.id
	e.hasParent = true
	return newParent.AddChild(e.id, "")
}

// Unparent detaches from the current parent, restoring parent=none.
func (e *Entity) Unparent() error {
	if !e.hasParent {
		return nil
	}
	if old, ok := e.world.tryGetEntityAny(e.parent); ok {
		old.removeChildEntry(e.id)
	}
	e.hasParent = false
	return nil
}

// Parent returns the parent's id and whether one is set.
func (e *Entity) Parent() (EntityID, bool) { return e.parent, e.hasParent }

// AddChild registers id (optionally named) as a child of e.
func (e *Entity) AddChild(id EntityID, name string) error {
	if e.children == nil {
		e.children = make(map[EntityID]string)
	}
	e.children[id] = name
	if name != "" {
		if e.byName == nil {
			e.byName = make(map[string]EntityID)
		}
		e.byName[name] = id
	}
	return nil
}

func (e *Entity) removeChildEntry(id EntityID) {
	name, ok := e.children[id]
	if !ok {
		return
	}
	delete(e.children, id)
	if name != "" {
		delete(e.byName, name)
	}
}

// RemoveChild detaches a child by id.
func (e *Entity) RemoveChild(id EntityID) {
	if child, ok := e.world.tryGetEntityAny(id); ok {
		child.hasParent = false
	}
	e.removeChildEntry(id)
}

// RemoveChildByName detaches a named child.
func (e *Entity) RemoveChildByName(name string) {
	id, ok := e.byName[name]
	if !ok {
		return
	}
	e.RemoveChild(id)
}

// HasChild reports whether id is a registered child of e.
func (e *Entity) HasChild(id EntityID) bool {
	_, ok := e.children[id]
	return ok
}

// TryFetchChildByID returns the child id (validated) and true if e has it.
func (e *Entity) TryFetchChildByID(id EntityID) (EntityID, bool) {
	_, ok := e.children[id]
	if !ok {
		return 0, false
	}
	return id, true
}

// TryFetchChildByName resolves a named child.
func (e *Entity) TryFetchChildByName(name string) (EntityID, bool) {
	id, ok := e.byName[name]
	return id, ok
}

// SendMessage stores msg under its CompID for this frame, fires on_message,
// and notifies the World that this entity has a pending message drain.
func (e *Entity) SendMessage(msg Message) error {
	if e.destroyed {
		return UseAfterDestroyError{Entity: e.id}
	}
	id, err := e.idOf(msg)
	if err != nil {
		panic(err)
	}
	e.messages[id] = msg
	e.msgMask.Mark(uint32(id))
	e.OnMessage.Emit(MessageEvent{Entity: e, CompID: id, Msg: msg})
	e.world.markSentMessages(e)
	return nil
}

// messageIDs lists the CompIDs of every message currently pending this
// frame, used by World to notify contexts before the messages are cleared.
func (e *Entity) messageIDs() []CompID {
	return collectKeys(e.messages)
}

// clearMessages drops every message sent this frame, called by World at the
// end of update.
func (e *Entity) clearMessages() {
	for id := range e.messages {
		delete(e.messages, id)
		e.msgMask.Unmark(uint32(id))
	}
}

// Dispose unparents, removes every remaining component (firing
// notifications so listeners can clean up), and clears every event channel.
// Called once by World at the end of the phase in which the entity was
// destroyed.
func (e *Entity) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	_ = e.Unparent()
	for _, childID := range e.childIDs() {
		e.removeChildEntry(childID)
	}
	for id := range e.components {
		e.OnComponentBeforeRemoving.Emit(ComponentEvent{Entity: e, CompID: id, WillDestroy: true})
		delete(e.components, id)
		e.compMask.Unmark(uint32(id))
		e.OnComponentRemoved.Emit(RemoveEvent{Entity: e, CompID: id, WillDestroy: true, CausedByDestroy: true})
	}
	e.clearMessages()
	e.OnComponentAdded.Clear()
	e.OnComponentBeforeModifying.Clear()
	e.OnComponentModified.Clear()
	e.OnComponentBeforeRemoving.Clear()
	e.OnComponentRemoved.Clear()
	e.OnEntityActivated.Clear()
	e.OnEntityDeactivated.Clear()
	e.OnEntityDestroyed.Clear()
	e.OnMessage.Clear()
}

func (e *Entity) childIDs() []EntityID {
	return collectKeys(e.children)
}
