package notify

import (
	"context"
	"fmt"

	"github.com/benchrig/rigcheck/internal/config"
)

// Registry stores notifiers by ID and gates dispatch on the run outcome.
type Registry struct {
	items         map[string]Notifier
	onlyOnFailure bool
}

// NewRegistry creates an empty registry.
func NewRegistry(onlyOnFailure bool) *Registry {
	return &Registry{
		items:         map[string]Notifier{},
		onlyOnFailure: onlyOnFailure,
	}
}

// Add stores a notifier.
func (r *Registry) Add(n Notifier) error {
	if _, exists := r.items[n.ID()]; exists {
		return fmt.Errorf("duplicate notifier %q", n.ID())
	}
	r.items[n.ID()] = n
	return nil
}

// Get returns the notifier by id.
func (r *Registry) Get(id string) (Notifier, bool) {
	n, ok := r.items[id]
	return n, ok
}

// Items returns a map copy.
func (r *Registry) Items() map[string]Notifier {
	out := make(map[string]Notifier, len(r.items))
	for k, v := range r.items {
		out[k] = v
	}
	return out
}

// Len returns the number of registered notifiers.
func (r *Registry) Len() int { return len(r.items) }

// Dispatch sends the event to every notifier. Passing runs are dropped when
// the registry only reports failures. Delivery errors are collected so one
// failing sink cannot block the others.
func (r *Registry) Dispatch(ctx context.Context, event Event) []error {
	if r.onlyOnFailure && !event.Failed() {
		return nil
	}
	var errs []error
	for _, n := range r.items {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notifier %q: %w", n.ID(), err))
		}
	}
	return errs
}

// Build constructs the registry from the notify config block.
func Build(cfg config.NotifyConfig) (*Registry, error) {
	reg := NewRegistry(cfg.OnlyOnFailure)
	if cfg.Email != nil {
		n, err := NewEmail(*cfg.Email)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(n); err != nil {
			return nil, err
		}
	}
	if cfg.Webhook != nil {
		n, err := NewWebhook(*cfg.Webhook)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(n); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
