package ecs

// Component is a value object attached to an entity. Any Go type — struct,
// pointer to struct, or otherwise — can be used as a component; identity is
// derived from its reflect.Type by the ComponentIndex, not from an embedded
// marker interface (an archetype-table engine requires components to
// implement an ElementType marker so tables can move them between rows;
// this module's entities own their components in place, so no such marker is
// needed).
type Component any

// Message is a Component-like value delivered only for the frame in which it
// was sent. A concrete Go type is either a component type or a message type
// for the lifetime of a World — never both.
type Message any

// StateMachineComponent is the marker for the reserved tracked id 0. A
// state-machine component subsystem built on this marker is out of scope
// for this module; this module carries the reserved id and the marker
// interface so host-defined state-machine components resolve to a stable,
// shared CompID the way an interface implementer resolves under
// ComponentIndex.ID. The marker method is exported so a host package,
// outside ecs, can implement it on its own component types.
type StateMachineComponent interface {
	Component
	IsStateMachineComponent() bool
}

// InteractiveComponent is the marker for the reserved tracked id 1.
type InteractiveComponent interface {
	Component
	IsInteractiveComponent() bool
}

// TransformComponent is the marker for the reserved tracked id 2.
type TransformComponent interface {
	Component
	IsTransformComponent() bool
}

// ModifiableComponent is an opt-out marker:
// a component implementing it is never treated as unchanged by structural
// comparison during Entity.Replace, even when force is false, because its
// value may embed mutable state a reflect.DeepEqual snapshot can't see
// changing (e.g. a slice header that's identical while its backing array was
// mutated in place).
type ModifiableComponent interface {
	Component
	IsModifiableComponent() bool
}

// ComponentMeta carries the per-component flags a host can declare:
// unique (at most one entity in the world may carry it), KeepOnReplace
// (survives Entity.Wipe's wholesale component removal), and Requires
// (diagnostics-only warning, never auto-added).
type ComponentMeta struct {
	Unique        bool
	KeepOnReplace bool
	Requires      []CompID
}
