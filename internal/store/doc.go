// Package store is the persisted state container for CommunityVoice.
//
// A Store holds the content collections (ideas, petitions, polls,
// projects), the cached user profile and the preferences record. Every
// mutation is followed by a synchronous save of the whole state as one
// JSON blob through a storage.Backend.
//
// # Durability
//
// Saves are best effort. When a save fails the error is logged, the host
// is alerted, and the in-memory mutation is kept. Initialize never leaves
// the store half-loaded: on any load or seed failure it falls back to the
// empty default state.
//
// # Identity Rules
//
//   - Item ids are assigned by Add and never change afterwards.
//   - Membership sets (upvotes, signatures, votes, votedBy, team) never
//     hold the same user twice.
//   - A user is in a poll's votedBy exactly when one option holds their vote.
//
// # Ownership
//
// Returned items are live references into the store. The store is not
// safe for concurrent use; all calls are expected to come from the router
// loop goroutine.
package store
