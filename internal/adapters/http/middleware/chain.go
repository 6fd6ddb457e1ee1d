// Package middleware
package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

type Chain struct {
	middlewares []Middleware
}

func New() *Chain {
	return &Chain{}
}

func (c *Chain) Use(m Middleware) {
	c.middlewares = append(c.middlewares, m)
}

// Then wraps h so that the first registered middleware runs first.
func (c *Chain) Then(h http.Handler) http.Handler {
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h
}

func (c *Chain) Apply(h http.Handler) http.Handler {
	return c.Then(h)
}
