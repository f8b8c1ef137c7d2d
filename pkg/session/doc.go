// Package session holds the single aggregate that owns a concept map while
// a user works on it: the committed graph, its undo history, the expansion
// set and the in-flight request guard.
//
// # Mutations
//
// Four operations ask the oracle for a fragment and commit the result:
//
//   - [Session.Regenerate]: build a whole new map from the source text
//   - [Session.RefineGlobal]: the same, with a correction prompt as the lens
//   - [Session.Dive]: add children below a node, never removing anything
//   - [Session.Refine]: replace everything below a node
//
// Each call moves the session from Idle to Requesting, calls the oracle
// without holding any lock, validates and merges the fragment into a new
// value, then publishes graph, history and expansion set together. A
// second request while one is in flight fails with MUTATION_IN_FLIGHT. A
// failed request leaves every piece of state exactly as it was.
//
// Responses that arrive after an [Session.Undo] or [Session.Load] are
// discarded with STALE_RESPONSE.
//
// # Reading
//
// [Session.Visible] and [Session.Layout] derive the viewer's picture from
// the committed graph and expansion set. [Session.Expand] and
// [Session.Collapse] only touch the expansion set.
//
// # Persistence
//
// [Session.Export] returns the committed graph with no transient state;
// [Session.Load] takes exactly that shape back and starts a fresh history.
package session
