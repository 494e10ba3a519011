package ecs

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// yamlFilterDecl mirrors FilterDecl with string type names in place of
// resolved CompIDs, for declarative loading.
type yamlFilterDecl struct {
	Kind   string   `yaml:"kind"`
	Access string   `yaml:"access"`
	Types  []string `yaml:"types"`
}

type yamlSystemMeta struct {
	Name           string           `yaml:"name"`
	Capabilities   []string         `yaml:"capabilities"`
	Filters        []yamlFilterDecl `yaml:"filters"`
	Watcher        []string         `yaml:"watcher"`
	Messager       []string         `yaml:"messager"`
	DoNotPause     bool             `yaml:"do_not_pause"`
	IncludeOnPause bool             `yaml:"include_on_pause"`
	OnPause        bool             `yaml:"on_pause"`
}

type yamlComponentMeta struct {
	Unique        bool     `yaml:"unique"`
	KeepOnReplace bool     `yaml:"keep_on_replace"`
	Requires      []string `yaml:"requires"`
}

var capabilityByName = map[string]Capability{
	"early_startup":       CapEarlyStartup,
	"startup":             CapStartup,
	"exit":                CapExit,
	"update":              CapUpdate,
	"late_update":         CapLateUpdate,
	"fixed_update":        CapFixedUpdate,
	"render":              CapRender,
	"reactive":            CapReactive,
	"messager":            CapMessager,
	"activation_listener": CapActivationListener,
}

var filterKindByName = map[string]FilterKind{
	"all_of":  AllOf,
	"any_of":  AnyOf,
	"none_of": NoneOf,
	"none":    NoneKind,
}

var accessKindByName = map[string]AccessKind{
	"read":       Read,
	"write":      Write,
	"read_write": ReadWrite,
}

// nameResolver resolves a YAML type name to a CompID, interning the lookup
// in a Cache so a metadata file referencing the same name many times (e.g.
// across several systems' filters) only resolves it once.
type nameResolver struct {
	idx        *ComponentIndex
	typesByName map[string]reflect.Type
	cache      Cache[CompID]
}

func newNameResolver(idx *ComponentIndex, typesByName map[string]reflect.Type) *nameResolver {
	return &nameResolver{
		idx:         idx,
		typesByName: typesByName,
		cache:       NewSimpleCache[CompID](len(typesByName) + 1),
	}
}

func (r *nameResolver) resolve(name string) (CompID, error) {
	if i, ok := r.cache.GetIndex(name); ok {
		return *r.cache.GetItem(i), nil
	}
	t, ok := r.typesByName[name]
	if !ok {
		return 0, fmt.Errorf("ecs: unknown component/message type name %q", name)
	}
	id, err := r.idx.ID(t)
	if err != nil {
		return 0, err
	}
	if _, err := r.cache.Register(name, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *nameResolver) resolveAll(names []string) ([]CompID, error) {
	out := make([]CompID, 0, len(names))
	for _, n := range names {
		id, err := r.resolve(n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// LoadSystemMetadataYAML parses a list of declarative system metadata
// records. Component/message names are resolved against idx via
// typesByName; the engine itself never reflects over a system's live
// fields.
func LoadSystemMetadataYAML(data []byte, idx *ComponentIndex, typesByName map[string]reflect.Type) ([]SystemMeta, error) {
	var raw []yamlSystemMeta
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ecs: parsing system metadata yaml: %w", err)
	}

	resolver := newNameResolver(idx, typesByName)
	out := make([]SystemMeta, 0, len(raw))
	for _, rs := range raw {
		meta := SystemMeta{
			Name:           rs.Name,
			DoNotPause:     rs.DoNotPause,
			IncludeOnPause: rs.IncludeOnPause,
			OnPause:        rs.OnPause,
		}
		for _, c := range rs.Capabilities {
			bit, ok := capabilityByName[c]
			if !ok {
				return nil, BadMetadataError{SystemName: rs.Name, Reason: fmt.Sprintf("unknown capability %q", c)}
			}
			meta.Capabilities |= bit
		}
		for _, f := range rs.Filters {
			kind, ok := filterKindByName[f.Kind]
			if !ok {
				return nil, BadMetadataError{SystemName: rs.Name, Reason: fmt.Sprintf("unknown filter kind %q", f.Kind)}
			}
			access := ReadWrite
			if f.Access != "" {
				a, ok := accessKindByName[f.Access]
				if !ok {
					return nil, BadMetadataError{SystemName: rs.Name, Reason: fmt.Sprintf("unknown access kind %q", f.Access)}
				}
				access = a
			}
			ids, err := resolver.resolveAll(f.Types)
			if err != nil {
				return nil, err
			}
			meta.Filters = append(meta.Filters, FilterDecl{Kind: kind, Access: access, Types: ids})
		}
		if len(rs.Watcher) > 0 {
			ids, err := resolver.resolveAll(rs.Watcher)
			if err != nil {
				return nil, err
			}
			meta.Watcher = WatcherDecl{Types: ids}
		}
		if len(rs.Messager) > 0 {
			ids, err := resolver.resolveAll(rs.Messager)
			if err != nil {
				return nil, err
			}
			meta.Messager = MessagerDecl{Types: ids}
		}
		out = append(out, meta)
	}
	return out, nil
}

// LoadComponentMetadataYAML parses per-component flags (unique,
// keep_on_replace, requires) keyed by type name.
func LoadComponentMetadataYAML(data []byte, idx *ComponentIndex, typesByName map[string]reflect.Type) (map[string]ComponentMeta, error) {
	var raw map[string]yamlComponentMeta
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ecs: parsing component metadata yaml: %w", err)
	}

	resolver := newNameResolver(idx, typesByName)
	out := make(map[string]ComponentMeta, len(raw))
	for name, rc := range raw {
		ids, err := resolver.resolveAll(rc.Requires)
		if err != nil {
			return nil, err
		}
		out[name] = ComponentMeta{
			Unique:        rc.Unique,
			KeepOnReplace: rc.KeepOnReplace,
			Requires:      ids,
		}
	}
	return out, nil
}
