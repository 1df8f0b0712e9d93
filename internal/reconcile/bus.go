package reconcile

import "github.com/espalier-dev/espalier/pkg/domain"

// Bus is a publish/subscribe channel scoped to one step's reconciliation
// context. Leaf renderers publish into it; the coordinator subscribes.
// Scoping the bus to the step (instead of a process-wide broadcast) keeps
// listeners from leaking across coexisting forms.
//
// Dispatch is synchronous and in subscription order, which preserves the
// arrival-order guarantee for discrete signals.
type Bus struct {
	changeSubs []func(domain.ResponseChange)
	toggleSubs []func(domain.OptionToggle)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// SubscribeChanges registers a handler for coarse response-changed signals.
func (b *Bus) SubscribeChanges(fn func(domain.ResponseChange)) {
	b.changeSubs = append(b.changeSubs, fn)
}

// SubscribeToggles registers a handler for checkbox option toggles.
func (b *Bus) SubscribeToggles(fn func(domain.OptionToggle)) {
	b.toggleSubs = append(b.toggleSubs, fn)
}

// PublishChange broadcasts a response change to all subscribers.
func (b *Bus) PublishChange(ev domain.ResponseChange) {
	for _, fn := range b.changeSubs {
		fn(ev)
	}
}

// PublishToggle broadcasts an option toggle to all subscribers.
func (b *Bus) PublishToggle(ev domain.OptionToggle) {
	for _, fn := range b.toggleSubs {
		fn(ev)
	}
}
