package ecs

import "reflect"

// factory is a package-level Factory singleton: a single low-ceremony entry
// point for the handful of constructors a host needs, instead of requiring
// an import of every concrete constructor by name.
type factory struct{}

// Factory is the package's constructor entry point.
var Factory factory

// NewWorld builds a World from component/message types and system
// registrations. See NewWorld's own doc for details.
func (f factory) NewWorld(componentTypes, messageTypes []reflect.Type, registrations []SystemRegistration, opts ...WorldOption) (*World, error) {
	return NewWorld(componentTypes, messageTypes, registrations, opts...)
}

// NewComponentIndex builds a standalone ComponentIndex, useful for a host
// that wants to resolve CompIDs (e.g. to build an ad-hoc Context) before a
// World exists.
func (f factory) NewComponentIndex(componentTypes, messageTypes []reflect.Type) (*ComponentIndex, error) {
	return NewComponentIndex(componentTypes, messageTypes)
}

// FactoryNewCache builds a capacity-bounded Cache[T], used by
// metadata_yaml.go and available to hosts for their own name-interning
// needs.
func FactoryNewCache[T any](capacity int) Cache[T] {
	return NewSimpleCache[T](capacity)
}
