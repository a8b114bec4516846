/*
Package observability provides Prometheus instrumentation for the session client.

Metrics is a bundle of collectors shared by the key-value middleware, the session
store and the auth layer. Register it once on any prometheus.Registerer and pass
it to the components through their WithMetrics options; a nil *Metrics is valid
and records nothing.
*/
package observability
