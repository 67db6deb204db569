// Package server exposes fib_dispatch over HTTP:
//
//	GET /dispatch?index=N[&algo=name]  JSON result of one dispatch
//	GET /health                        liveness and resource usage
//	GET /metrics                       Prometheus metrics
//
// Every route goes through SecurityMiddleware and the metrics middleware.
package server
