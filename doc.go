/*
Package ecs provides an Entity-Component-System runtime: a World that owns
entities, their components, the systems that operate on them, and the
reactive plumbing that notifies systems when components change.

Unlike an archetype/column-table ECS, entities here are stable,
independently addressable objects: components are mutated in place and every
mutation fires a multicast event in subscription order. A System observes a
Context — the canonical, shared subset of entities matching its declared
filter — and may additionally declare a Reactive watch over specific
component types, coalescing add/remove/modify/enable/disable notifications
for delivery once per phase.

Core Concepts:

  - Entity: an identified container of components, addressable through the World.
  - Component: a value tagged by type, stored on an entity, queryable by a stable small-integer id.
  - Context: the shared, canonical subset of entities matching a filter expression.
  - ComponentWatcher: an observer over one component id within one context, coalescing per-frame events.
  - System: a code unit invoked by the World on phase events, operating on the entities of a Context.

Basic Usage:

	type Position struct{ X, Y float64 }

	registrations := []ecs.SystemRegistration{
		{
			Meta: ecs.SystemMeta{
				Name:         "movement",
				Capabilities: ecs.CapUpdate,
				Filters:      []ecs.FilterDecl{{Kind: ecs.AllOf, Types: []ecs.CompID{3}}}, // Position; ids 0-2 are reserved
			},
			Handlers:        movementSystem{},
			InitiallyActive: true,
		},
	}

	world, _ := ecs.NewWorld(
		[]reflect.Type{reflect.TypeOf(Position{})},
		nil,
		registrations,
	)

	world.AddEntity([]ecs.Component{Position{X: 0, Y: 0}})
	world.Update()

ecs is a library, embedded by a host application that owns the frame loop;
it does not perform rendering or IO of its own.
*/
package ecs
