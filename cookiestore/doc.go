// Package cookiestore carries the session payload in the cookie itself.
//
// There is no server-side record: save encodes the data mapping, base64url
// wraps it (net/http strips quotes and commas from cookie values), and the
// result becomes the cookie value. Load reverses that. Sessions restored
// this way have no identity; key generation never runs.
//
// A cookie that fails to decode is dropped and loads fresh. With no server
// record there is no key worth keeping, and a malformed client payload is
// not worth trusting.
//
// # What this package must NOT do
//
//   - Store anything server-side.
//   - Authenticate or encrypt the payload. Clients can read and forge it;
//     use naclstore when that matters.
//   - Exceed the browser cookie budget silently. Oversized payloads fail
//     the save with [ErrValueTooLong].
package cookiestore
