package ecs

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ContextID identifies a Context; equal target_components, reduced to
// canonical form, always hash to the same ContextID, which is what lets
// systems declared with byte-equal filters share one Context object.
type ContextID uint64

// WatcherID identifies a ComponentWatcher or MessageWatcher.
type WatcherID uint64

// canonicalContextForm builds the sequence:
// "[-kind, id+1, id+1, ...] for each kind, iterated in ascending kind order,
// with ids sorted within a kind". The negative kind markers keep an id from
// ever being confused with a kind tag; the exact hash used over this
// sequence is not load-bearing so long as the canonical form
// is — this module uses xxhash rather than a hand-rolled multiply/xor mix.
func canonicalContextForm(targets map[FilterKind][]CompID) []int64 {
	kinds := make([]FilterKind, 0, len(targets))
	for k := range targets {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var seq []int64
	for _, k := range kinds {
		ids := append([]CompID(nil), targets[k]...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		seq = append(seq, -int64(k))
		for _, id := range ids {
			seq = append(seq, int64(id)+1)
		}
	}
	return seq
}

// hashContextID computes the ContextID for a set of per-kind target
// component ids.
func hashContextID(targets map[FilterKind][]CompID) ContextID {
	seq := canonicalContextForm(targets)
	h := xxhash.New()
	buf := make([]byte, 8)
	for _, v := range seq {
		binary.LittleEndian.PutUint64(buf, uint64(v))
		_, _ = h.Write(buf)
	}
	return ContextID(h.Sum64())
}

// hashComponentWatcherID computes hash(context_id, target_comp_id).
func hashComponentWatcherID(ctxID ContextID, target CompID) WatcherID {
	h := xxhash.New()
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(ctxID))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(target))
	_, _ = h.Write(buf)
	return WatcherID(h.Sum64())
}

// hashMessageWatcherID computes hash(context_id, hash(sorted target message
// ids)).
func hashMessageWatcherID(ctxID ContextID, targets []CompID) WatcherID {
	sorted := append([]CompID(nil), targets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	inner := xxhash.New()
	buf := make([]byte, 8)
	for _, id := range sorted {
		binary.LittleEndian.PutUint64(buf, uint64(id))
		_, _ = inner.Write(buf)
	}
	innerSum := inner.Sum64()

	outer := xxhash.New()
	binary.LittleEndian.PutUint64(buf, uint64(ctxID))
	_, _ = outer.Write(buf)
	binary.LittleEndian.PutUint64(buf, innerSum)
	_, _ = outer.Write(buf)
	return WatcherID(outer.Sum64())
}
