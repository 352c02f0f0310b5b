// Package redisstore persists sessions in Redis through go-redis.
//
// # Record layout
//
// One string record per session:
//
//	Key:   "<cookie name>_<identity>"
//	Value: the encoded data mapping (JSON under the default codec)
//	TTL:   the session's max age; zero max age stores without expiry
//
// Expiry is delegated entirely to Redis. A key that outlived its TTL is
// indistinguishable from one that never existed, and both load as a fresh
// session.
//
// # Architecture boundaries
//
// This package owns only the record I/O: one GET on load, one SET on save.
// Cookie handling, key generation, and the data codec live in the embedded
// [httpsession.Base].
//
// # What this package must NOT do
//
//   - Own the Redis client lifetime. [Store.Close] never tears down the client.
//   - Mask transport failures as misses. Only redis.Nil means no record.
//   - Retry or buffer failed writes.
package redisstore
