// Package memcachestore persists sessions in memcached through gomemcache.
//
// Records share the key layout of the other server-side backends
// ("<cookie name>_<identity>"). Memcached caps keys at 250 bytes; the
// default hex identities leave ample room for any sane cookie name.
//
// The session's max age maps to the item Expiration. Memcached reads
// values above thirty days as absolute unix timestamps, so longer TTLs are
// converted before the write. Zero max age stores without expiry, though
// memcached may still evict under memory pressure; treat this backend as a
// cache, not durable storage.
//
// The store talks to a [Client] rather than *memcache.Client directly so
// tests can substitute an in-process fake; memcached has no miniredis
// equivalent.
package memcachestore
