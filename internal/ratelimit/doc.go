// Package ratelimit is per-IP HTTP rate limiting for the public listener.
//
// It is in-memory and per instance. It stops a single address from flooding
// the page, the API or the cursor websocket handshake; it does nothing for
// distributed floods, which belong to an upstream CDN or WAF.
//
// The tracked address set is capped. Once full, unknown addresses are
// refused until idle entries are evicted, so memory stays bounded when the
// source addresses are spoofed or rotating.
package ratelimit
