// Package provider defines the request/response contract shared by
// restadapter's transports and the middleware that decorates it.
//
// A RequestResponse[I, O] takes one input and returns one output; the HTTP
// adapter is a RequestResponse[*httpadapter.Request, *httpadapter.Response].
// Providers holding resources also implement Closeable.
//
// # Middleware
//
// Middleware[I, O] wraps a RequestResponse. Chain composes several, the
// first being outermost:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithTracing[In, Out]("restadapter"),
//	)(adapter)
//
// Adapt bridges a provider to different input and output types.
package provider
