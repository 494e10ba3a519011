package ecs

import (
	"reflect"
	"testing"
)

func typesByNameFor(types ...reflect.Type) map[string]reflect.Type {
	out := make(map[string]reflect.Type, len(types))
	for _, t := range types {
		out[t.Name()] = t
	}
	return out
}

func TestLoadSystemMetadataYAMLResolvesFiltersAndWatcher(t *testing.T) {
	idx, err := NewComponentIndex(posVelTypes(), nil)
	if err != nil {
		t.Fatalf("NewComponentIndex: %v", err)
	}
	names := typesByNameFor(reflect.TypeOf(Position{}), reflect.TypeOf(Velocity{}), reflect.TypeOf(Health{}))

	doc := []byte(`
- name: movement
  capabilities: [update, reactive]
  filters:
    - kind: all_of
      access: write
      types: [Position, Velocity]
    - kind: none_of
      types: [Health]
  watcher: [Velocity]
  include_on_pause: true
`)

	metas, err := LoadSystemMetadataYAML(doc, idx, names)
	if err != nil {
		t.Fatalf("LoadSystemMetadataYAML: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("expected 1 system meta, got %d", len(metas))
	}
	m := metas[0]

	if m.Name != "movement" {
		t.Errorf("Name = %q, want movement", m.Name)
	}
	if !m.Capabilities.Has(CapUpdate) || !m.Capabilities.Has(CapReactive) {
		t.Errorf("Capabilities = %v, want Update|Reactive", m.Capabilities)
	}
	if !m.IncludeOnPause {
		t.Errorf("IncludeOnPause should be true")
	}

	posID, _ := idx.ID(reflect.TypeOf(Position{}))
	velID, _ := idx.ID(reflect.TypeOf(Velocity{}))
	healthID, _ := idx.ID(reflect.TypeOf(Health{}))

	if len(m.Filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(m.Filters))
	}
	allOf := m.Filters[0]
	if allOf.Kind != AllOf || allOf.Access != Write {
		t.Errorf("filter[0] = %+v, want kind=AllOf access=Write", allOf)
	}
	if len(allOf.Types) != 2 || allOf.Types[0] != posID || allOf.Types[1] != velID {
		t.Errorf("filter[0].Types = %v, want [%d %d]", allOf.Types, posID, velID)
	}
	noneOf := m.Filters[1]
	if noneOf.Kind != NoneOf || len(noneOf.Types) != 1 || noneOf.Types[0] != healthID {
		t.Errorf("filter[1] = %+v, want kind=NoneOf types=[%d]", noneOf, healthID)
	}

	if len(m.Watcher.Types) != 1 || m.Watcher.Types[0] != velID {
		t.Errorf("Watcher.Types = %v, want [%d]", m.Watcher.Types, velID)
	}
}

func TestLoadSystemMetadataYAMLMalformedYAMLErrors(t *testing.T) {
	idx, err := NewComponentIndex(posVelTypes(), nil)
	if err != nil {
		t.Fatalf("NewComponentIndex: %v", err)
	}
	_, err = LoadSystemMetadataYAML([]byte("not: [valid"), idx, nil)
	if err == nil {
		t.Fatal("expected an error for malformed YAML, got nil")
	}
}

func TestLoadSystemMetadataYAMLUnknownTypeNameErrors(t *testing.T) {
	idx, err := NewComponentIndex(posVelTypes(), nil)
	if err != nil {
		t.Fatalf("NewComponentIndex: %v", err)
	}
	names := typesByNameFor(reflect.TypeOf(Position{}))

	doc := []byte(`
- name: movement
  capabilities: [update]
  filters:
    - kind: all_of
      types: [Nonexistent]
`)
	_, err = LoadSystemMetadataYAML(doc, idx, names)
	if err == nil {
		t.Fatal("expected an error resolving an unknown type name, got nil")
	}
}

func TestLoadSystemMetadataYAMLUnknownCapabilityErrors(t *testing.T) {
	idx, err := NewComponentIndex(posVelTypes(), nil)
	if err != nil {
		t.Fatalf("NewComponentIndex: %v", err)
	}
	doc := []byte(`
- name: movement
  capabilities: [not_a_real_capability]
`)
	_, err = LoadSystemMetadataYAML(doc, idx, nil)
	if err == nil {
		t.Fatal("expected a BadMetadataError for an unknown capability, got nil")
	}
	if _, ok := err.(BadMetadataError); !ok {
		t.Errorf("expected BadMetadataError, got %T: %v", err, err)
	}
}

func TestLoadComponentMetadataYAMLResolvesRequires(t *testing.T) {
	idx, err := NewComponentIndex(posVelTypes(), nil)
	if err != nil {
		t.Fatalf("NewComponentIndex: %v", err)
	}
	names := typesByNameFor(reflect.TypeOf(Position{}), reflect.TypeOf(Velocity{}))

	doc := []byte(`
Velocity:
  unique: true
  keep_on_replace: true
  requires: [Position]
`)
	metas, err := LoadComponentMetadataYAML(doc, idx, names)
	if err != nil {
		t.Fatalf("LoadComponentMetadataYAML: %v", err)
	}
	velMeta, ok := metas["Velocity"]
	if !ok {
		t.Fatalf("expected a Velocity entry, got %v", metas)
	}
	if !velMeta.Unique || !velMeta.KeepOnReplace {
		t.Errorf("Velocity meta = %+v, want Unique=true KeepOnReplace=true", velMeta)
	}
	posID, _ := idx.ID(reflect.TypeOf(Position{}))
	if len(velMeta.Requires) != 1 || velMeta.Requires[0] != posID {
		t.Errorf("Velocity.Requires = %v, want [%d]", velMeta.Requires, posID)
	}
}

func TestLoadComponentMetadataYAMLMalformedYAMLErrors(t *testing.T) {
	idx, err := NewComponentIndex(posVelTypes(), nil)
	if err != nil {
		t.Fatalf("NewComponentIndex: %v", err)
	}
	_, err = LoadComponentMetadataYAML([]byte("{not valid"), idx, nil)
	if err == nil {
		t.Fatal("expected an error for malformed YAML, got nil")
	}
}

func TestLoadComponentMetadataYAMLUnknownTypeNameErrors(t *testing.T) {
	idx, err := NewComponentIndex(posVelTypes(), nil)
	if err != nil {
		t.Fatalf("NewComponentIndex: %v", err)
	}
	doc := []byte(`
Velocity:
  requires: [Nonexistent]
`)
	_, err = LoadComponentMetadataYAML(doc, idx, nil)
	if err == nil {
		t.Fatal("expected an error resolving an unknown type name, got nil")
	}
}
