// Package httpmw provides HTTP middleware for the public site listener.
//
// httpserver.NewHandler composes it outermost first: security headers,
// recovery, request ID, client IP, rate limiting, tracing, profile headers,
// metrics, request logger, then the chi router with access logging inside.
//
// Query strings, user agents and other client-supplied headers stay out of
// the logs.
package httpmw
