// Package httpsession provides cookie-based HTTP session management with
// pluggable storage backends: Redis, Postgres, memcached, in-process memory,
// and stateless cookie variants (plain, secretbox-sealed, JWT).
//
// A [Storage] recovers a [Session] from the inbound request (looked up by a
// cookie-carried key), hands it to the application, and persists it on the
// way out, reissuing the cookie. [Middleware] wires that contract into a
// net/http handler chain; handlers obtain the request's session with [Get]
// and mutate it in place. Only a changed session is written back.
//
// # Architecture boundaries
//
// httpsession is the shared surface. It owns the [Session] model, the
// [Storage] contract, the cookie machinery ([Base]), the middleware, and the
// metrics core. Backend packages (redisstore, pgstore, memcachestore, ...)
// embed [Base] and add only their record I/O.
//
// # What this package must NOT do
//
//   - Import any backend package (backends import httpsession, never the
//     reverse).
//   - Own client or pool lifetimes. Clients are borrowed from the host
//     application; a backend's Close never tears them down.
//   - Retry, buffer, or mask store failures. Transport errors surface to the
//     caller; only corrupt record payloads are recovered locally.
package httpsession
