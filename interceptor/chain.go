package interceptor

import (
	"sync"

	"github.com/MrEthical07/goPortal/session"
)

// EffectKind tags an [Effect].
type EffectKind uint8

const (
	// EffectNotify replaces the current notification.
	EffectNotify EffectKind = iota + 1
	// EffectLogout clears the session.
	EffectLogout
)

// Effect is a session mutation requested by a response interceptor.
type Effect struct {
	Kind         EffectKind
	Notification session.Notification
}

// Notify requests that n becomes the current notification.
func Notify(n session.Notification) Effect {
	return Effect{Kind: EffectNotify, Notification: n}
}

// Logout requests that the session be cleared.
func Logout() Effect {
	return Effect{Kind: EffectLogout}
}

// RequestInterceptor transforms a request before dispatch.
type RequestInterceptor func(Request) Request

// ResponseInterceptor inspects a response after receipt and may declare effects.
type ResponseInterceptor func(Request, Response) (Response, []Effect)

// SessionReader exposes the current user to request interceptors.
type SessionReader interface {
	User() *session.User
}

// SessionWriter receives the effects declared by response interceptors.
type SessionWriter interface {
	SetUser(*session.User)
	SetNotification(session.Notification)
}

// EffectObserver is told about every effect after it has been applied.
type EffectObserver func(req Request, resp Response, effect Effect)

// Chain runs interceptors in registration order. It is safe for concurrent
// use once configured.
type Chain struct {
	mu        sync.RWMutex
	requests  []RequestInterceptor
	responses []ResponseInterceptor
	sink      SessionWriter
	observers []EffectObserver
}

// NewChain creates an empty chain that applies effects to sink.
func NewChain(sink SessionWriter) *Chain {
	return &Chain{sink: sink}
}

// UseRequest appends request interceptors.
func (c *Chain) UseRequest(fns ...RequestInterceptor) *Chain {
	c.mu.Lock()
	c.requests = append(c.requests, fns...)
	c.mu.Unlock()
	return c
}

// UseResponse appends response interceptors.
func (c *Chain) UseResponse(fns ...ResponseInterceptor) *Chain {
	c.mu.Lock()
	c.responses = append(c.responses, fns...)
	c.mu.Unlock()
	return c
}

// Observe registers an effect observer (metrics, audit, logging).
func (c *Chain) Observe(fn EffectObserver) *Chain {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
	return c
}

// Request runs the request phase.
func (c *Chain) Request(req Request) Request {
	c.mu.RLock()
	fns := c.requests
	c.mu.RUnlock()

	for _, fn := range fns {
		req = fn(req)
	}
	return req
}

// Response runs the response phase and applies every declared effect to the
// sink, in emission order, before returning.
func (c *Chain) Response(req Request, resp Response) Response {
	c.mu.RLock()
	fns := c.responses
	observers := c.observers
	c.mu.RUnlock()

	for _, fn := range fns {
		var effects []Effect
		resp, effects = fn(req, resp)
		for _, effect := range effects {
			c.apply(effect)
			for _, observe := range observers {
				observe(req, resp, effect)
			}
		}
	}
	return resp
}

func (c *Chain) apply(effect Effect) {
	if c.sink == nil {
		return
	}
	switch effect.Kind {
	case EffectNotify:
		c.sink.SetNotification(effect.Notification)
	case EffectLogout:
		c.sink.SetUser(nil)
	}
}
