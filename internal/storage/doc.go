// Package storage provides durable backends for the application state blob.
//
// The whole application state is one JSON document saved under one fixed
// key. A Backend only stores and returns opaque bytes; it never inspects
// the document. Two implementations exist:
//
//   - SQLite: a single-file database, one row per key, with a revision
//     counter bumped on every save.
//   - Memory: an in-process map used by tests and dry runs, with hooks
//     for injecting load and save failures.
package storage
