package ecs

import (
	"reflect"
	"testing"
)

func TestContextAllOfAnyOfNoneOfPredicate(t *testing.T) {
	w := newTestWorld(t, posVelTypes())
	posID, _ := w.index.ID(reflect.TypeOf(Position{}))
	velID, _ := w.index.ID(reflect.TypeOf(Velocity{}))
	healthID, _ := w.index.ID(reflect.TypeOf(Health{}))

	ctx := w.getOrCreateContext(map[FilterKind][]CompID{
		AllOf:  {posID},
		AnyOf:  {velID, healthID},
		NoneOf: {healthID},
	})

	both, err := w.AddEntity([]Component{Position{}, Velocity{}})
	if err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	if !ctx.isMember(both.id) {
		t.Errorf("entity with Position+Velocity should match all_of[Position] any_of[Velocity,Health] none_of[Health]")
	}

	withHealth, err := w.AddEntity([]Component{Position{}, Velocity{}, Health{}})
	if err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	if ctx.isMember(withHealth.id) {
		t.Errorf("entity carrying the none_of component must not match")
	}

	onlyPos, err := w.AddEntity([]Component{Position{}})
	if err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	if ctx.isMember(onlyPos.id) {
		t.Errorf("entity missing every any_of component must not match")
	}
}

func TestContextNoneKindMatchesNothing(t *testing.T) {
	w := newTestWorld(t, posVelTypes())
	ctx := w.getOrCreateContext(map[FilterKind][]CompID{NoneKind: nil})

	e, err := w.AddEntity([]Component{Position{}})
	if err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	if ctx.isMember(e.id) {
		t.Errorf("a none-kind context must never match any entity")
	}
}

func TestContextSharingByCanonicalForm(t *testing.T) {
	w := newTestWorld(t, posVelTypes())
	posID, _ := w.index.ID(reflect.TypeOf(Position{}))
	velID, _ := w.index.ID(reflect.TypeOf(Velocity{}))

	ctxA := w.getOrCreateContext(map[FilterKind][]CompID{AllOf: {posID, velID}})
	ctxB := w.getOrCreateContext(map[FilterKind][]CompID{AllOf: {velID, posID}})

	if ctxA != ctxB {
		t.Fatalf("two filters differing only in declared type order must resolve to the same Context")
	}
	if ctxA.id != hashContextID(map[FilterKind][]CompID{AllOf: {posID, velID}}) {
		t.Errorf("context id must equal the id computed from the canonical ordering")
	}
}

func TestContextMembershipUpdatesOnComponentAddAndRemove(t *testing.T) {
	w := newTestWorld(t, posVelTypes())
	posID, _ := w.index.ID(reflect.TypeOf(Position{}))
	velID, _ := w.index.ID(reflect.TypeOf(Velocity{}))
	ctx := w.getOrCreateContext(map[FilterKind][]CompID{AllOf: {posID, velID}})

	e, _ := w.AddEntity([]Component{Position{}})
	if ctx.isMember(e.id) {
		t.Fatalf("entity missing Velocity must not yet match")
	}

	_ = e.Add(Velocity{})
	if !ctx.isMember(e.id) {
		t.Fatalf("entity should be admitted once it gains the missing all_of component")
	}

	_ = e.Remove(velID)
	if ctx.isMember(e.id) {
		t.Fatalf("entity should be evicted once it loses a required all_of component")
	}
}

func TestContextMembershipTracksActivation(t *testing.T) {
	w := newTestWorld(t, posVelTypes())
	posID, _ := w.index.ID(reflect.TypeOf(Position{}))
	ctx := w.getOrCreateContext(map[FilterKind][]CompID{AllOf: {posID}})

	e, _ := w.AddEntity([]Component{Position{}})
	if ctx.Len() != 1 {
		t.Fatalf("expected one active member, got %d", ctx.Len())
	}

	e.Deactivate()
	if ctx.Len() != 0 {
		t.Errorf("deactivated entity must leave the active member set")
	}
	if _, ok := ctx.deactivatedMembers[e.id]; !ok {
		t.Errorf("deactivated entity should be weakly tracked in deactivatedMembers")
	}

	e.Activate()
	if ctx.Len() != 1 {
		t.Errorf("reactivated entity should return to the active member set")
	}
}

func TestContextAccessKindsMergesAcrossSharedSystemsWriteWins(t *testing.T) {
	idx, err := NewComponentIndex(posVelTypes(), nil)
	if err != nil {
		t.Fatalf("NewComponentIndex: %v", err)
	}
	posID, _ := idx.ID(reflect.TypeOf(Position{}))

	var ran []string
	readReg := newPhaseRegistration("reader", CapUpdate, &ran, func(m *SystemMeta) {
		m.Filters = []FilterDecl{{Kind: AllOf, Access: Read, Types: []CompID{posID}}}
	})
	writeReg := newPhaseRegistration("writer", CapUpdate, &ran, func(m *SystemMeta) {
		m.Filters = []FilterDecl{{Kind: AllOf, Access: Write, Types: []CompID{posID}}}
	})

	w, err := NewWorld(posVelTypes(), nil, []SystemRegistration{readReg, writeReg}, WithLogger(noopLogger{}))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}

	ctx := w.systemsByName["reader"].ctx
	if ctx != w.systemsByName["writer"].ctx {
		t.Fatalf("reader and writer should share one Context for an identical AllOf[Position] filter")
	}
	if got := ctx.AccessKinds()[Write]; len(got) != 1 || got[0] != posID {
		t.Errorf("Write must win once any system declares it, got %v", ctx.AccessKinds())
	}
	if got := ctx.AccessKinds()[Read]; len(got) != 0 {
		t.Errorf("Position must not remain under Read once a writer is registered, got %v", got)
	}
}
