package httpmw

import "net/http"

// Layer wraps an inner http.Handler with outer behavior. It is the single
// composition primitive every middleware in this module implements.
type Layer func(http.Handler) http.Handler

// Chain builds L1(L2(...Ln(H))) from a sequence of layers: the first layer
// given is outermost, so its pre-call logic runs first and its post-call
// logic runs last. An empty Chain is the identity layer.
func Chain(layers ...Layer) Layer {
	return func(h http.Handler) http.Handler {
		for i := len(layers) - 1; i >= 0; i-- {
			h = layers[i](h)
		}
		return h
	}
}

// Wrap applies a chain of layers to an inner handler in one call:
// Wrap(h, L1, L2) == Chain(L1, L2)(h).
func Wrap(h http.Handler, layers ...Layer) http.Handler {
	return Chain(layers...)(h)
}

// HandlerFunc adapts a plain function to http.Handler, matching the rest of
// this module's style of returning http.HandlerFunc literals from layers.
type HandlerFunc = http.HandlerFunc
