package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
)

// CompID is a stable, non-negative, small integer identity for a component
// or message type, valid for the lifetime of the World that assigned it.
type CompID uint32

// tier records where in the assignment order a CompID falls, so
// ComponentIndex can answer "is this a component id or a message id"
// without a second lookup table.
type tier uint8

const (
	tierComponent tier = iota
	tierMessage
	tierUntracked
)

type indexEntry struct {
	typ  reflect.Type
	id   CompID
	tier tier
}

// ComponentIndex is the per-World mapping Type -> CompID. Ids are assigned
// in three tiers: three reserved marker interfaces (StateMachine=0,
// Interactive=1, Transform=2), then registered
// component types in declaration order, then message types in declaration
// order; ids requested afterwards for types never seen are assigned lazily
// above both ranges ("untracked").
type ComponentIndex struct {
	byType map[reflect.Type]*indexEntry
	all    []*indexEntry

	// trackedInterfaces are checked, in registration order, against any
	// concrete type that isn't itself a registered key: a match means the
	// concrete type "inherits" the interface's id, so filters over the
	// interface match every implementer.
	trackedInterfaces []*indexEntry

	nextUntracked CompID
}

var (
	stateMachineIfaceType = reflect.TypeOf((*StateMachineComponent)(nil)).Elem()
	interactiveIfaceType  = reflect.TypeOf((*InteractiveComponent)(nil)).Elem()
	transformIfaceType    = reflect.TypeOf((*TransformComponent)(nil)).Elem()
)

// NewComponentIndex builds a ComponentIndex for a World, reserving ids 0-2
// for the StateMachine/Interactive/Transform markers, then assigning ids to
// componentTypes and messageTypes in the given order. componentTypes and
// messageTypes must be disjoint from each other.
func NewComponentIndex(componentTypes, messageTypes []reflect.Type) (*ComponentIndex, error) {
	idx := &ComponentIndex{
		byType: make(map[reflect.Type]*indexEntry),
	}

	reserve := func(t reflect.Type) *indexEntry {
		e := &indexEntry{typ: t, id: CompID(len(idx.all)), tier: tierComponent}
		idx.all = append(idx.all, e)
		idx.byType[t] = e
		idx.trackedInterfaces = append(idx.trackedInterfaces, e)
		return e
	}
	reserve(stateMachineIfaceType)
	reserve(interactiveIfaceType)
	reserve(transformIfaceType)

	for _, t := range componentTypes {
		if err := requireStructLike(t); err != nil {
			return nil, err
		}
		if _, exists := idx.byType[t]; exists {
			continue
		}
		e := &indexEntry{typ: t, id: CompID(len(idx.all)), tier: tierComponent}
		idx.all = append(idx.all, e)
		idx.byType[t] = e
	}

	for _, t := range messageTypes {
		if err := requireStructLike(t); err != nil {
			return nil, err
		}
		if _, exists := idx.byType[t]; exists {
			return nil, InvalidTypeError{TypeName: t.String() + " (registered as both component and message)"}
		}
		e := &indexEntry{typ: t, id: CompID(len(idx.all)), tier: tierMessage}
		idx.all = append(idx.all, e)
		idx.byType[t] = e
	}

	idx.nextUntracked = CompID(len(idx.all))
	return idx, nil
}

func requireStructLike(t reflect.Type) error {
	if t == nil {
		return InvalidTypeError{TypeName: "<nil>"}
	}
	k := t.Kind()
	if k == reflect.Struct {
		return nil
	}
	if k == reflect.Ptr && t.Elem().Kind() == reflect.Struct {
		return nil
	}
	if k == reflect.Interface {
		return nil
	}
	return InvalidTypeError{TypeName: t.String()}
}

// ID returns the canonical CompID for t, assigning a new untracked id on
// first query if t was not registered at construction and does not
// implement one of the reserved tracked interfaces.
func (idx *ComponentIndex) ID(t reflect.Type) (CompID, error) {
	if err := requireStructLike(t); err != nil {
		return 0, err
	}
	if e, ok := idx.byType[t]; ok {
		return e.id, nil
	}
	if t.Kind() != reflect.Interface {
		for _, iface := range idx.trackedInterfaces {
			if t.Implements(iface.typ) {
				return iface.id, nil
			}
		}
	}
	e := &indexEntry{typ: t, id: idx.nextUntracked, tier: tierUntracked}
	idx.nextUntracked++
	idx.all = append(idx.all, e)
	idx.byType[t] = e
	return e.id, nil
}

// IsMessage reports whether id was assigned to a message type.
func (idx *ComponentIndex) IsMessage(id CompID) bool {
	for _, e := range idx.all {
		if e.id == id {
			return e.tier == tierMessage
		}
	}
	return false
}

// AllUnderInterface enumerates tracked concrete component types whose type
// is a subtype of iface.
func (idx *ComponentIndex) AllUnderInterface(iface reflect.Type) []struct {
	Type reflect.Type
	ID   CompID
} {
	var out []struct {
		Type reflect.Type
		ID   CompID
	}
	for _, e := range idx.all {
		if e.tier != tierComponent {
			continue
		}
		if e.typ.Kind() == reflect.Interface {
			continue
		}
		if e.typ.Implements(iface) {
			out = append(out, struct {
				Type reflect.Type
				ID   CompID
			}{e.typ, e.id})
		}
	}
	return out
}

// TotalIndices returns the number of CompIDs assigned so far.
func (idx *ComponentIndex) TotalIndices() int {
	return len(idx.all)
}

// singleBit builds a mask.Mask with exactly one bit set, for testing a single
// CompID's membership via the ContainsAll/ContainsAny/ContainsNone
// vocabulary. Nothing in the package calls it at present.
func singleBit(id CompID) mask.Mask {
	var m mask.Mask
	m.Mark(uint32(id))
	return m
}

// maskFrom ORs a set of CompIDs into one mask.Mask.
func maskFrom(ids []CompID) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		m.Mark(uint32(id))
	}
	return m
}
