package bridge

import (
	"net/http"

	"github.com/goliatone/go-tplbridge/internal/lazy"
	"github.com/goliatone/go-tplbridge/pkg/engine"
	"github.com/goliatone/go-tplbridge/pkg/instrument"
)

// Context keys the bridge injects when a request is supplied. Caller keys
// with these names are overwritten.
const (
	// RequestKey carries the *http.Request.
	RequestKey = "request"
	// CSRFTokenKey carries the lazily computed security token.
	CSRFTokenKey = "csrf_token"
	// TokenNotProvided is the sentinel rendered when the host yields no
	// token for the request.
	TokenNotProvided = "NOTPROVIDED"
)

// Template wraps a compiled template together with the backend that owns
// it. Handles hold no ownership over the backend; the backend outlives
// them.
type Template struct {
	tmpl    engine.Template
	backend *Engine
	debug   bool
}

// Name reports the compiled template's lookup name.
func (t *Template) Name() string { return t.tmpl.Name() }

// Render assembles the render context and dispatches to the compiled
// template.
//
// The caller's context is copied, never mutated. When a request is
// supplied the bridge overlays "request" and a lazily computed
// "csrf_token" (the token provider runs on first read, not at assembly
// time, because the request's security state may not be ready yet), then
// merges each context processor's contribution in registration order.
// Later processors overwrite earlier keys and the base values.
//
// When the handle has debug enabled and the backend carries an
// instrumentation bus, a "template rendered" event is published with a
// layered compatibility view of the context. The event is purely for
// external observers and never alters the returned output.
func (t *Template) Render(context map[string]any, req *http.Request) (string, error) {
	ctx := make(map[string]any, len(context)+2)
	for key, value := range context {
		ctx[key] = value
	}

	if req != nil {
		ctx[RequestKey] = req
		ctx[CSRFTokenKey] = lazy.Deferred(func() string {
			token, ok := t.backend.token(req)
			if !ok {
				return TokenNotProvided
			}
			return token
		})

		for _, processor := range t.backend.processors {
			for key, value := range processor(req) {
				ctx[key] = value
			}
		}
	}

	if t.debug && t.backend.bus != nil {
		view := instrument.LayeredContext(ctx)
		t.backend.bus.Publish(instrument.Event{
			Sender:   t,
			Template: t,
			Context:  view,
		})
	}

	return t.tmpl.Render(ctx)
}
