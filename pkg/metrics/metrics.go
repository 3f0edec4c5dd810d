package metrics

import (
	"context"

	"github.com/goliatone/go-dimensions/pkg/activity"
	"github.com/prometheus/client_golang/prometheus"
)

// Hook counts resolution events. It implements activity.ActivityHook so it
// can be attached to a resolver with WithActivityHooks.
type Hook struct {
	resolutions *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
}

// NewHook builds the resolution counters without registering them.
func NewHook() *Hook {
	return &Hook{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_dimension_resolutions_total",
			Help: "Dimension resolutions by outcome",
		}, []string{"outcome"}), // outcome: matched|fallback|empty
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_dimension_fallbacks_total",
			Help: "Dimension resolutions that fell back to defaults, by reason",
		}, []string{"reason"}),
	}
}

// Register registers the counters on reg (or the default registerer if nil).
// Counters already registered by an equal collector are reused.
func (h *Hook) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	if h.resolutions, err = registerCounterVec(reg, h.resolutions); err != nil {
		return err
	}
	if h.fallbacks, err = registerCounterVec(reg, h.fallbacks); err != nil {
		return err
	}
	return nil
}

// Notify implements activity.ActivityHook.
func (h *Hook) Notify(_ context.Context, event activity.Event) error {
	if event.ObjectType != activity.ObjectType {
		return nil
	}
	outcome := activity.OutcomeOf(event)
	if outcome == "" {
		return nil
	}
	h.resolutions.WithLabelValues(outcome).Inc()
	if reason, ok := event.Metadata["fallback_reason"].(string); ok && reason != "" {
		h.fallbacks.WithLabelValues(reason).Inc()
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		return existing, nil
	}
	return vec, nil
}
