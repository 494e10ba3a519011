package ecs

// Cache is a generic name/index interning table, a Cache[T] abstraction
// originally used to intern archetype/component registration keys. Here it
// backs metadata_yaml.go's resolution of YAML-declared
// component/message names to indices without re-scanning a name table on
// every lookup.
type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	Register(string, T) (int, error)
}
