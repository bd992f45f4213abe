package gologgeradapter

import (
	"context"
	"strings"

	"github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-autobuild/activity"
	"github.com/goliatone/go-autobuild/value"
)

// Hook logs resolve and registry update events using go-logger.
type Hook struct {
	logger         glog.Logger
	resolveLevel   string
	updateLevel    string
	failureLevel   string
	resolveMessage string
	updateMessage  string
	withValues     bool
}

// Option customizes the logger hook.
type Option func(*Hook)

// New builds a logging hook for resolve/update events.
func New(logger glog.Logger, opts ...Option) *Hook {
	hook := &Hook{
		logger:         logger,
		resolveLevel:   "trace",
		updateLevel:    "debug",
		failureLevel:   "warn",
		resolveMessage: "autobuild.resolve",
		updateMessage:  "autobuild.update",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(hook)
		}
	}
	return hook
}

// WithResolveLevel sets the log level for resolve events.
func WithResolveLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.resolveLevel = strings.ToLower(strings.TrimSpace(level))
	}
}

// WithUpdateLevel sets the log level for update events.
func WithUpdateLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.updateLevel = strings.ToLower(strings.TrimSpace(level))
	}
}

// WithFailureLevel sets the log level for events carrying an error.
func WithFailureLevel(level string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.failureLevel = strings.ToLower(strings.TrimSpace(level))
	}
}

// WithResolveMessage overrides the resolve log message.
func WithResolveMessage(message string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.resolveMessage = message
	}
}

// WithUpdateMessage overrides the update log message.
func WithUpdateMessage(message string) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.updateMessage = message
	}
}

// WithValues includes resolved values in resolve records.
func WithValues(enabled bool) Option {
	return func(hook *Hook) {
		if hook == nil {
			return
		}
		hook.withValues = enabled
	}
}

// OnResolve implements value.ResolveHook.
func (h *Hook) OnResolve(ctx context.Context, event value.ResolveEvent) {
	if h == nil || h.logger == nil {
		return
	}
	fields := map[string]any{
		"autobuild_name":   event.Name,
		"autobuild_depth":  event.Depth,
		"autobuild_source": event.Source,
	}
	if event.Type != nil {
		fields["autobuild_type"] = event.Type.String()
	}
	if event.Label != "" {
		fields["autobuild_label"] = event.Label
	}
	if h.withValues && event.Error == nil {
		fields["autobuild_value"] = event.Value
	}
	level := h.resolveLevel
	if event.Error != nil {
		fields["autobuild_error"] = event.Error.Error()
		level = h.failureLevel
	}
	h.log(ctx, level, h.resolveMessage, fields)
}

// OnUpdate implements activity.Hook.
func (h *Hook) OnUpdate(ctx context.Context, event activity.UpdateEvent) {
	if h == nil || h.logger == nil {
		return
	}
	fields := map[string]any{
		"autobuild_action": string(event.Action),
	}
	if event.Name != "" {
		fields["autobuild_name"] = event.Name
	}
	if event.Type != nil {
		fields["autobuild_type"] = event.Type.String()
	}
	if event.Resolver != "" {
		fields["autobuild_resolver"] = event.Resolver
	}
	if event.Plugin != "" {
		fields["autobuild_plugin"] = event.Plugin
	}
	if len(event.Annotations) > 0 {
		fields["autobuild_annotations"] = event.Annotations
	}
	level := h.updateLevel
	if event.Error != nil {
		fields["autobuild_error"] = event.Error.Error()
		level = h.failureLevel
	}
	h.log(ctx, level, h.updateMessage, fields)
}

func (h *Hook) log(ctx context.Context, level string, message string, fields map[string]any) {
	logger := h.logger
	if logger == nil {
		return
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(glog.FieldsLogger); ok && len(fields) > 0 {
		logger = fieldsLogger.WithFields(fields)
	}
	switch level {
	case "trace":
		logger.Trace(message)
	case "debug":
		logger.Debug(message)
	case "warn":
		logger.Warn(message)
	case "error":
		logger.Error(message)
	case "fatal":
		// a failed build must not exit the test binary
		logger.Error(message)
	default:
		logger.Info(message)
	}
}

var _ value.ResolveHook = (*Hook)(nil)
var _ activity.Hook = (*Hook)(nil)
