// Package protocol defines the wire format between the live client and
// the server session.
//
// Every message is a frame: a fixed 6-byte header followed by a
// payload.
//
//	┌────────────┬────────────┬─────────────────────────────┐
//	│ Type       │ Flags      │ Payload Length              │
//	│ (1 byte)   │ (1 byte)   │ (4 bytes, big-endian)       │
//	└────────────┴────────────┴─────────────────────────────┘
//	│ Payload (variable)                                     │
//	└────────────────────────────────────────────────────────┘
//
// Patch payloads are binary: length-prefixed strings and varints keep
// the steady-state traffic small, since patches are by far the most
// frequent frames. Handshake, event, control and error payloads are
// JSON; they are rare, tiny, and JSON keeps the browser side trivial.
//
// Decoding is defensive. Length prefixes are checked against both the
// remaining buffer and an allocation ceiling, collection counts are
// bounded, and node trees have a maximum depth, so a malicious client
// cannot make the server allocate or recurse without bound.
package protocol
