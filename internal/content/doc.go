// Package content defines the CommunityVoice data model.
//
// Content items come in four variants (ideas, petitions, polls and
// projects). Every variant embeds Record, which carries the identity,
// authorship and comment thread shared by all of them.
//
// This package contains types and pure helpers only. It imports nothing
// internal, so the store, the seed loader and the views can all share it.
//
// Key invariants:
//   - Record.ID is assigned once by the store and never changes
//   - MemberSet never holds the same user twice
//   - A user is in Poll.VotedBy iff exactly one option's Votes holds them
//   - Comments are append-only; slice order is display order
//
// JSON field names are camelCase so persisted blobs and seed documents
// share one format.
package content
