package app

import (
	"subtitle_platform_service/internal/notification/domain"
)

// HandlerFactory builds a Handler bound to one team's settings
type HandlerFactory func(settings *domain.TeamNotificationSettings, sender Sender) domain.Handler

// Registry maps a settings type string to a handler factory. The mapping is
// copied at construction and never mutated afterwards; tests build their own
// registry instead of patching a shared one.
type Registry struct {
	factories map[string]HandlerFactory
}

// NewRegistry create a Registry from an explicit mapping
func NewRegistry(factories map[string]HandlerFactory) *Registry {
	copied := make(map[string]HandlerFactory, len(factories))
	for name, factory := range factories {
		copied[name] = factory
	}
	return &Registry{factories: copied}
}

// DefaultRegistry the handler types shipped with the platform
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]HandlerFactory{
		TypeGenericWebhook: NewWebhookHandler,
	})
}

// Lookup resolve the factory for a settings type
func (r *Registry) Lookup(settingsType string) (HandlerFactory, bool) {
	factory, ok := r.factories[settingsType]
	return factory, ok
}
