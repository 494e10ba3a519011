package ecs

import "fmt"

// MissingComponentError is raised by Entity.Get when the requested component
// is absent. It is a programmer error: callers that want a non-fatal lookup
// should use TryGet instead.
type MissingComponentError struct {
	Entity EntityID
	CompID CompID
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("entity %d: missing component %d", e.Entity, e.CompID)
}

// InvalidTypeError is raised when a type is registered with the
// ComponentIndex that is neither a Component nor a Message.
type InvalidTypeError struct {
	TypeName string
}

func (e InvalidTypeError) Error() string {
	return fmt.Sprintf("type %s is neither a component nor a message type", e.TypeName)
}

// DuplicateAddError is the warning raised by Entity.Add when the component
// is already present. It is logged, not returned, but is still a named type
// so Logger implementations and tests can pattern-match on it.
type DuplicateAddError struct {
	Entity EntityID
	CompID CompID
}

func (e DuplicateAddError) Error() string {
	return fmt.Sprintf("entity %d: component %d already present, use Replace", e.Entity, e.CompID)
}

// ReplaceAbsentError is the warning raised by Entity.Replace when the target
// component is absent.
type ReplaceAbsentError struct {
	Entity EntityID
	CompID CompID
}

func (e ReplaceAbsentError) Error() string {
	return fmt.Sprintf("entity %d: cannot replace absent component %d, use Add", e.Entity, e.CompID)
}

// UseAfterDestroyError is returned by Entity.Add, Replace, Wipe and
// SendMessage when called on an already-destroyed entity; the call changes
// nothing. Entity.Remove on a destroyed entity returns nil instead.
type UseAfterDestroyError struct {
	Entity EntityID
}

func (e UseAfterDestroyError) Error() string {
	return fmt.Sprintf("entity %d: use after destroy", e.Entity)
}

// SystemMissingError is returned by World.ActivateSystem/DeactivateSystem
// when the given system was never registered.
type SystemMissingError struct {
	SystemName string
}

func (e SystemMissingError) Error() string {
	return fmt.Sprintf("system %q is not registered", e.SystemName)
}

// BadMetadataError is raised at registration time when a system declares a
// capability without the metadata it requires (Reactive without a watcher
// list, Messager without a messager list).
type BadMetadataError struct {
	SystemName string
	Reason     string
}

func (e BadMetadataError) Error() string {
	return fmt.Sprintf("system %q has invalid metadata: %s", e.SystemName, e.Reason)
}

// UniquenessViolationError fires, in diagnostics mode only, when GetUnique
// finds more than one non-destroyed entity carrying a component declared
// unique.
type UniquenessViolationError struct {
	TypeName string
	Count    int
}

func (e UniquenessViolationError) Error() string {
	return fmt.Sprintf("uniqueness violation: %d live entities carry unique component %s", e.Count, e.TypeName)
}

// MissingRequiredComponentError is the diagnostics-only warning raised when a
// component declares a `requires` dependency that the entity
// doesn't carry. The engine never auto-adds the dependency; this is purely
// advisory and only logged when diagnostics mode is on.
type MissingRequiredComponentError struct {
	Entity   EntityID
	CompID   CompID
	Requires CompID
}

func (e MissingRequiredComponentError) Error() string {
	return fmt.Sprintf("entity %d: component %d requires component %d, which is absent", e.Entity, e.CompID, e.Requires)
}

// EntityMissingError is raised by World.GetEntity for an id that was never
// allocated, already destroyed and disposed, or (for an explicit id passed
// to AddEntity) already in use. World.TryGetEntity returns ok=false instead
// of this error.
type EntityMissingError struct {
	Entity EntityID
}

func (e EntityMissingError) Error() string {
	return fmt.Sprintf("entity %d is not present in this world", e.Entity)
}
