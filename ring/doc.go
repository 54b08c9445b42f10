// Package ring implements a fixed-capacity circular FIFO for passing
// fixed-size records between an interrupt-like producer and foreground code.
//
// # Slots
//
// Storage is one arena allocation of Capacity slots. Each slot is the
// payload followed by a visited byte and a hidden byte. A slot moves through
// the states Empty, Hidden, Visible and Visited; Next holds the transition
// table every operation goes through:
//
//	Empty   --Push-------> Visible
//	Empty   --PushHidden-> Hidden
//	Hidden  --Unhide-----> Visible
//	Visible --ShadowRead-> Visited
//	Visible --Pop--------> Empty
//	Visited --Pop--------> Empty
//	Visited --PopIfVisited-> Empty
//
// A hidden slot refuses Pop and shadow reads.
//
// # Roles
//
// One producer pushes. One owner retires elements with Pop or PopIfVisited,
// reveals them with UnhideIfHidden, and may Reset. Any number of shadow
// readers peek with ReadShadow or ReadShadowPtr and check IsNodeVisited.
// A typical hand-off: readers shadow read the oldest element, the owner
// retires it once IsNodeVisited reports true.
//
// # Overwrite
//
// A ring created with infinite set never refuses a push: when full, the
// oldest element is unhidden if needed and discarded. Nobody is told;
// Stats().Evicted counts it.
//
//	r := ring.New[Sample](a, 16, false)
//	if !r.IsGood() {
//		return
//	}
//	defer r.Close()
//	r.Push(Sample{ID: 1})
//	var s Sample
//	r.Pop(&s)
package ring
