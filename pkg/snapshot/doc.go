// Package snapshot persists serialized live trees.
//
// A Store maps tree ids to opaque bytes. The tree server writes the rendered
// HTML of a tree after every change and reads it back on startup, so trees
// survive restarts when a durable backend is configured:
//
//	store := snapshot.Compressed(snapshot.NewRedisStore(client, "morph:"))
//	err := store.Put(ctx, id, []byte(html))
//
// Backends: MemoryStore, RedisStore, S3Store. Compressed wraps any of them
// with a zstd envelope.
package snapshot
