package client

import (
	"context"
	"reflect"
	"sync"
)

// UserDefinedHandler names the layer installed from the baseline "handler"
// option. It always sits closest to the transport.
const UserDefinedHandler = "userDefined"

// Handler performs one request.
type Handler func(ctx context.Context, method, url string, opts Options) (*Response, error)

// Middleware wraps a downstream handler and returns a handler with the same
// signature.
type Middleware interface {
	Wrap(next Handler) Handler
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(next Handler) Handler

// Wrap implements Middleware.
func (f MiddlewareFunc) Wrap(next Handler) Handler {
	return f(next)
}

// Layer is one registered middleware.
type Layer struct {
	Name       string
	Middleware Middleware
}

// Chain is an ordered, append-only list of middlewares.
type Chain struct {
	mu     sync.RWMutex
	layers []Layer
}

// Add appends an anonymous middleware. Adding the same middleware twice runs
// it twice. Nil, including a typed nil, is ignored.
func (c *Chain) Add(m Middleware) {
	c.AddNamed("", m)
}

// AddNamed appends a middleware under name.
func (c *Chain) AddNamed(name string, m Middleware) {
	if isNil(m) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers = append(c.layers, Layer{Name: name, Middleware: m})
}

// List returns a copy of the registered layers in registration order.
func (c *Chain) List() []Layer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Layer, len(c.layers))
	copy(out, c.layers)
	return out
}

// Len returns the number of registered layers.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.layers)
}

// Build composes the chain around base.
//
// Order:
//   - with layers [a, b, c] the result is a(b(c(base)))
//   - a valid baseline handler h makes it a(b(c(h(base))))
//
// A layer whose Wrap returns nil is skipped.
func (c *Chain) Build(base Handler, baseline Options) Handler {
	h := base
	if user := BaselineHandler(baseline); user != nil {
		h = wrap(user, h)
	}
	layers := c.List()
	for i := len(layers) - 1; i >= 0; i-- {
		if isNil(layers[i].Middleware) {
			continue
		}
		h = wrap(layers[i].Middleware, h)
	}
	return h
}

func wrap(m Middleware, next Handler) Handler {
	if h := m.Wrap(next); h != nil {
		return h
	}
	return next
}

// isNil reports whether m is nil or an interface holding a nil pointer,
// func, map, slice or channel.
func isNil(m Middleware) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// BaselineHandler returns the middleware stored under KeyHandler, or nil when
// the entry is absent or not a middleware. Invalid entries are ignored rather
// than rejected.
func BaselineHandler(baseline Options) Middleware {
	switch h := baseline[KeyHandler].(type) {
	case MiddlewareFunc:
		if h == nil {
			return nil
		}
		return h
	case Middleware:
		if isNil(h) {
			return nil
		}
		return h
	case func(Handler) Handler:
		if h == nil {
			return nil
		}
		return MiddlewareFunc(h)
	default:
		return nil
	}
}
