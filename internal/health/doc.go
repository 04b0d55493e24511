// Package health provides the probes behind the liveness and readiness
// endpoints and the handlers that serve them.
//
// [ShutdownGate] fails readiness as soon as a drain starts so load balancers
// stop routing new traffic before in-flight requests finish.
package health
