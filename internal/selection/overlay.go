package selection

import "net/url"

// NavState is the navigation framework's two-state pending fact: idle, or
// pending with a known destination. It is passed in explicitly so the overlay
// stays testable without a running navigation stack.
type NavState struct {
	destination *url.URL
}

// Idle reports no navigation in flight.
func Idle() NavState { return NavState{} }

// PendingNav reports an in-flight navigation towards dest.
func PendingNav(dest *url.URL) NavState { return NavState{destination: dest} }

// Pending reports whether a navigation is in flight.
func (n NavState) Pending() bool { return n.destination != nil }

// Destination returns the pending destination, nil when idle.
func (n NavState) Destination() *url.URL { return n.destination }

// DisplaySelection projects the selection the UI should show: the destination
// parameters while a navigation is pending, the committed URL's otherwise.
// A read-side projection only; committed navigation state is never touched,
// and once the navigation settles the committed URL is the source of truth.
func DisplaySelection(nav NavState, current *url.URL) Params {
	if nav.Pending() {
		return DecodeQuery(nav.destination.RawQuery)
	}
	if current == nil {
		return Params{}
	}
	return DecodeQuery(current.RawQuery)
}
