// Package jwtstore carries the session payload in the cookie as a signed
// JWT (HS256).
//
// The data mapping travels in the "dat" claim; the session's max age maps
// to the "exp" claim, so expiry is enforced by signature-checked token
// validation rather than by a store. Sessions are symmetric by nature (the
// same process issues and reads them), so only HS256 is offered.
//
// Tokens that fail validation load as a fresh session: bad signatures and
// malformed tokens count as corrupt, expired tokens as a miss.
//
// The configured encoder and decoder are not used by this backend; JWT
// claims serialization is the codec.
//
// # What this package must NOT do
//
//   - Store anything server-side. Revocation before expiry is impossible;
//     use a server-backed store when logout must be immediate.
//   - Accept tokens signed with any method other than HS256, including
//     "none".
//   - Encrypt the payload. Claims are readable by the client; use naclstore
//     when confidentiality matters.
package jwtstore
