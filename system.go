package ecs

// FilterKind is one of the four filter kinds a system's context can combine.
type FilterKind int

const (
	AllOf FilterKind = iota
	AnyOf
	NoneOf
	NoneKind
)

func (k FilterKind) String() string {
	switch k {
	case AllOf:
		return "all_of"
	case AnyOf:
		return "any_of"
	case NoneOf:
		return "none_of"
	case NoneKind:
		return "none"
	default:
		return "unknown"
	}
}

// AccessKind tags a filter's declared read/write intent. It is metadata for
// a future parallel scheduler and is never consulted by this module's
// sequential execution.
type AccessKind int

const (
	Read AccessKind = iota
	Write
	ReadWrite
)

// FilterDecl is one filter clause in a system's metadata.
// ReadWrite collapses to Write when a Context resolves its AccessKinds.
type FilterDecl struct {
	Kind  FilterKind
	Access AccessKind
	Types []CompID
}

// NotificationKind is one of the five reactive event kinds a
// ComponentWatcher coalesces.
type NotificationKind int

const (
	NotifyRemoved NotificationKind = iota
	NotifyAdded
	NotifyModified
	NotifyEnabled
	NotifyDisabled
)

// dispatchOrder is the fixed order the World dispatches notification kinds
// within one system's bucket during the reactive drain:
// "removed, added, modified, enabled, disabled" so a component removed and
// re-added in the same frame fires remove then add.
var dispatchOrder = [...]NotificationKind{
	NotifyRemoved, NotifyAdded, NotifyModified, NotifyEnabled, NotifyDisabled,
}

// SystemID is a system's declaration index, stable for the life of the
// World.
type SystemID int

// Capability is a bit in a system's declared capability set.
type Capability uint32

const (
	CapEarlyStartup Capability = 1 << iota
	CapStartup
	CapExit
	CapUpdate
	CapLateUpdate
	CapFixedUpdate
	CapRender
	CapReactive
	CapMessager
	CapActivationListener
)

func (c Capability) Has(bit Capability) bool { return c&bit == bit }

// WatcherDecl declares the Reactive watch targets. Registration creates one
// ComponentWatcher per listed CompID exactly as given; the id of a tracked
// interface is not expanded to the ids of registered concrete implementers.
type WatcherDecl struct {
	Types []CompID
}

// MessagerDecl declares the message types a Messager system listens for.
type MessagerDecl struct {
	Types []CompID
}

// SystemMeta is the plain data record supplied per system at registration.
// It carries no behavior; the handler interfaces below carry the callable
// capability surface.
type SystemMeta struct {
	Name             string
	Capabilities     Capability
	Filters          []FilterDecl
	Watcher          WatcherDecl
	Messager         MessagerDecl
	DoNotPause       bool
	IncludeOnPause   bool
	OnPause          bool
}

// PhaseSystem is implemented by a system for any of the Context-taking
// phases: EarlyStartup, Startup, Exit, Update, LateUpdate, FixedUpdate.
type PhaseSystem interface {
	Run(ctx *Context)
}

// ReactiveSystem is implemented by a system declaring the Reactive
// capability. Each method receives the World and the coalesced entity set
// for one NotificationKind, batched reactive drain.
type ReactiveSystem interface {
	OnAdded(w *World, entities []*Entity)
	OnRemoved(w *World, entities []*Entity)
	OnModified(w *World, entities []*Entity)
	OnActivated(w *World, entities []*Entity)
	OnDeactivated(w *World, entities []*Entity)
}

// BeforeReactiveSystem is the optional synchronous-callback half of
// Reactive: before_removing/before_modifying fire immediately, not queued
// for the batched reactive drain.
type BeforeReactiveSystem interface {
	OnBeforeRemoving(w *World, entity *Entity, comp CompID)
	OnBeforeModifying(w *World, entity *Entity, comp CompID)
}

// MessagerSystem is implemented by a system declaring the Messager
// capability; OnMessage fires synchronously at send time.
type MessagerSystem interface {
	OnMessage(w *World, entity *Entity, comp CompID, msg Message)
}

// ActivationListenerSystem is implemented by a system declaring the
// ActivationListener capability; it observes activate/deactivate for
// entities in its own Context, independent of Reactive watchers.
type ActivationListenerSystem interface {
	OnActivated(ctx *Context)
	OnDeactivated(ctx *Context)
}

// registeredSystem bundles a SystemMeta with the callable interfaces it
// implements and the World-assigned resources (Context, watchers) it was
// wired to at registration.
type registeredSystem struct {
	id       SystemID
	meta     SystemMeta
	handlers any // one of the *System interfaces above, boxed

	ctx        *Context
	compWatchers []*ComponentWatcher
	msgWatcher   *MessageWatcher

	active bool

	// pausable/playOnPause are derived once at registration from the
	// system's pause policy precedence.
	pausable    bool
	playOnPause bool

	// wasActiveBeforePause records whether pause() deactivated this system,
	// so resume() knows to reactivate exactly the systems pause() touched.
	wasActiveBeforePause bool
}
