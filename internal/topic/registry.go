// Package topic implements the HORUS topic registry (spec component C2):
// the mapping from a topic name to its message type and backing channel.
// The registry's mutex is held only during bind, teardown and the
// introspection reads (Names, Describe); publishers and subscribers talk to
// the channel directly afterward.
package topic

import (
	"errors"
	"sync"
	"unicode"

	"github.com/horus-rt/horus/internal/catalog"
	"github.com/horus-rt/horus/internal/channel"
)

var (
	// ErrTypeMismatch is returned when a name already exists bound to a
	// different TypeID.
	ErrTypeMismatch = errors.New("topic: type mismatch")
	// ErrDuplicatePublisher is returned when a second publisher tries to
	// bind to a name that already has one.
	ErrDuplicatePublisher = errors.New("topic: duplicate publisher")
	// ErrTooManySubscribers is returned once a topic's subscriber count
	// reaches its configured maximum.
	ErrTooManySubscribers = errors.New("topic: too many subscribers")
	// ErrNameInvalid is returned for an empty or malformed topic name.
	ErrNameInvalid = errors.New("topic: invalid name")
)

type entry struct {
	typeID          catalog.TypeID
	channel         any // *channel.Channel[T], boxed
	slots           int
	maxSubs         int
	publisherBound  bool
	subscriberCount int
}

// Registry owns every bound topic's channel for one scheduler instance.
type Registry struct {
	mu             sync.Mutex
	topics         map[string]*entry
	defaultSlots   int
	defaultMaxSubs int
}

// NewRegistry returns an empty registry with the given per-topic defaults,
// used whenever a bind creates a topic's channel for the first time.
func NewRegistry(defaultSlots, defaultMaxSubs int) *Registry {
	return &Registry{
		topics:         make(map[string]*entry),
		defaultSlots:   defaultSlots,
		defaultMaxSubs: defaultMaxSubs,
	}
}

// maxNameBytes is the topic name length bound: at most 63 bytes of valid
// UTF-8 containing no whitespace and no C0/DEL control byte (so no embedded
// NUL).
const maxNameBytes = 63

func validName(name string) bool {
	if name == "" || len(name) > maxNameBytes {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) || r < 0x20 || r == 0x7f || r == unicode.ReplacementChar {
			return false
		}
	}
	return true
}

// BindPublisher reserves the publisher slot on name for messages of type T,
// creating the channel on first bind. Only one publisher may ever be bound
// to a given name.
func BindPublisher[T any](r *Registry, name string, typeID catalog.TypeID) (*channel.Channel[T], error) {
	if !validName(name) {
		return nil, ErrNameInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.topics[name]
	if !ok {
		e = &entry{typeID: typeID, channel: channel.New[T](r.defaultSlots), slots: r.defaultSlots, maxSubs: r.defaultMaxSubs}
		r.topics[name] = e
	}
	if e.typeID != typeID {
		return nil, ErrTypeMismatch
	}
	if e.publisherBound {
		return nil, ErrDuplicatePublisher
	}
	ch, ok := e.channel.(*channel.Channel[T])
	if !ok {
		return nil, ErrTypeMismatch
	}
	e.publisherBound = true
	return ch, nil
}

// BindSubscriber reserves a subscriber slot on name for messages of type T.
// If name is unknown, a waiting channel of the given type is created so
// subscribers may bind before any publisher exists.
func BindSubscriber[T any](r *Registry, name string, typeID catalog.TypeID) (*channel.Channel[T], error) {
	if !validName(name) {
		return nil, ErrNameInvalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.topics[name]
	if !ok {
		e = &entry{typeID: typeID, channel: channel.New[T](r.defaultSlots), slots: r.defaultSlots, maxSubs: r.defaultMaxSubs}
		r.topics[name] = e
	}
	if e.typeID != typeID {
		return nil, ErrTypeMismatch
	}
	if e.subscriberCount >= e.maxSubs {
		return nil, ErrTooManySubscribers
	}
	ch, ok := e.channel.(*channel.Channel[T])
	if !ok {
		return nil, ErrTypeMismatch
	}
	e.subscriberCount++
	return ch, nil
}

// Names returns the currently bound topic names, for introspection.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.topics))
	for n := range r.topics {
		names = append(names, n)
	}
	return names
}

// Describe returns introspection details for a bound topic.
func (r *Registry) Describe(name string) (typeID catalog.TypeID, subscribers int, hasPublisher bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.topics[name]
	if !found {
		return 0, 0, false, false
	}
	return e.typeID, e.subscriberCount, e.publisherBound, true
}

// Teardown releases every bound topic's channel reference. Called once
// when the owning scheduler is destroyed.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = make(map[string]*entry)
}
