// Package storage implements durable persistence for one account's OAuth credential record.
//
// The credential document lives outside the process so ephemeral compute
// instances share state. The [Store] interface is a whole-document contract:
// [Store.Load] fetches and deserializes the current record, [Store.Save]
// overwrites it. Writes are last-writer-wins; no optimistic concurrency.
//
// Implementations:
//   - [GistStore] : the primary backend, one file inside a GitHub Gist
//   - [FileStore] : local JSON file for development and offline use
//   - [MemoryStore] : in-process store for tests and ephemeral runs
//
// The store is agnostic to token semantics. It never inspects expiry or
// validates token shape beyond JSON schema presence; that is the token
// manager's job. Unknown fields in the stored document are preserved across
// a load/save cycle so externally added fields survive rewrites.
package storage
