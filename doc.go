// Package httpmw defines the composition contract shared by every layer in
// this module: a uniform handler abstraction and the primitive that wraps
// one handler in another.
//
// Go has no async poll_ready/future split, so the contract is expressed on
// top of net/http directly:
//
//   - A Layer is func(http.Handler) http.Handler. Applying a layer to an
//     inner handler produces an outer handler; the outer handler's logic
//     runs first on the request path and last on the response path.
//   - Chain composes a sequence of layers the way spec callers expect:
//     Chain(L1, L2, ..., Ln)(H) builds L1(L2(...Ln(H))) — L1 is outermost.
//   - Readiness / backpressure (the Rust contract's poll_ready permit
//     acquisition) is modeled per-layer: a layer that needs a permit before
//     accepting a request acquires it synchronously at the top of its
//     returned http.HandlerFunc, and arranges for release on every exit
//     path. headers.ConcurrencyLimiter releases in a defer, since ServeHTTP
//     does not return until the response is written; package body's
//     permit-holding adapter (body.WithPermit) ties release to a Body's
//     EOF, error or Close instead.
//
// Every other package in this module (body, encoding, compression, classify,
// trace, followredirect, headers, auth, cors, fileserver, gateway)
// implements one component of the spec in terms of Layer and Chain.
package httpmw
