// Package driving provides interfaces implemented by the core services
// and consumed by entry points (primary/inbound ports).
package driving
