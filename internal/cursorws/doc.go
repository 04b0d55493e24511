// Package cursorws streams a smoothed cursor follower over a websocket.
//
// Each connection gets its own pointer.Tracker. The browser sends raw
// pointer signals as JSON text messages:
//
//	{"type":"move","x":120,"y":48}
//	{"type":"touch","x":"120","y":48}
//	{"type":"enter"}
//	{"type":"leave"}
//
// and receives one frame per tick:
//
//	{"x":101.3,"y":40.8,"active":true}
//
// Inbound messages are rate limited per session and anything malformed is
// dropped and reported as a security event. Outbound frames are latest-wins,
// so a slow client sees fewer frames rather than a growing backlog.
package cursorws
