// Package store persists shopping lists in DynamoDB.
//
// Every list is a single item keyed by its owner, so reads and writes are
// always scoped to one owner. The item sequence of a list is stored as a
// whole and replaced as a whole on every update.
//
// # Table layout
//
//	pk          owner#<owner id>#<shard>   (partition key)
//	sk          list#<list id>             (sort key)
//	id, owner_id, name, items, created_at, updated_at, version, ttl
//
// Lists are spread over NumShards partitions per owner. [Store.ListAll]
// queries every shard in parallel and merges the results newest first.
// Because the owner is part of the key, a list id guessed by another owner
// resolves to a different item and the update fails with [ErrNotFound].
//
// # Deletes
//
// Deletes are soft: the ttl attribute is set to now and DynamoDB expires the
// item later. Reads filter out items whose ttl has passed, and updates refuse
// to touch them. The stream package turns these changes into events.
//
// # Concurrency
//
// Updates carry no version precondition. Two writers replacing the same
// list's items concurrently both succeed and the later write wins. The
// version attribute is still incremented on every write so readers can
// tell snapshots apart.
//
// # Errors
//
//   - [ErrNotFound] - list doesn't exist, is deleted, or belongs to another owner
//   - [ErrAlreadyExists] - list with the generated id already exists
//   - [ErrInvalidRecord] - stored item could not be decoded
//
// [Memory] implements the same contract in memory for tests and local runs.
package store
