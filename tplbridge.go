// Package tplbridge re-exports the bridge surface so callers can wire a
// backend with a single import. The implementation lives in pkg/bridge;
// compiler backends live under pkg/engine.
package tplbridge

import (
	"github.com/goliatone/go-tplbridge/pkg/bridge"
	"github.com/goliatone/go-tplbridge/pkg/settings"
)

// Core types, aliased for single-import callers.
type (
	Engine           = bridge.Engine
	Template         = bridge.Template
	Params           = bridge.Params
	Config           = bridge.Config
	Option           = bridge.Option
	Registry         = bridge.Registry
	EngineSource     = bridge.EngineSource
	ContextProcessor = bridge.ContextProcessor
	TokenFunc        = bridge.TokenFunc
)

// New constructs a bridge backend. See bridge.New.
func New(params Params, opts ...Option) (*Engine, error) {
	return bridge.New(params, opts...)
}

// NewRegistry builds the process-wide backend registry, subscribed to the
// host settings when st is non-nil. See bridge.NewRegistry.
func NewRegistry(source EngineSource, st *settings.Settings) *Registry {
	return bridge.NewRegistry(source, st)
}
