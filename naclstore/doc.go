// Package naclstore carries the session payload in the cookie, sealed with
// NaCl secretbox (XSalsa20-Poly1305).
//
// The cookie value is base64url(nonce || box): a fresh 24-byte random nonce
// followed by the authenticated ciphertext of the encoded data mapping.
// Clients cannot read or forge the payload without the 32-byte key.
//
// A cookie that fails to open, for any reason (tampering, truncation, key
// rotation), loads as a fresh session. Authentication failures are
// indistinguishable from corruption by construction, so no distinction is
// surfaced.
//
// # What this package must NOT do
//
//   - Store anything server-side.
//   - Log plaintext payloads or key material.
//   - Accept keys of the wrong size. [New] fails with [ErrKeySize] rather
//     than stretching or truncating.
package naclstore
