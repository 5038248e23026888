// Package metrics exposes Prometheus collectors for HTTP traffic and
// prediction outcomes. Collectors live on a private registry so tests and
// multiple servers in one process do not collide.
package metrics
