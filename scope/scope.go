package scope

import (
	"context"
	"strings"
)

type contextKey string

const (
	maxDepthKey contextKey = "autobuild.max_depth"
	labelKey    contextKey = "autobuild.label"
)

// WithMaxDepth overrides the recursion limit for builds using ctx. Values
// below one are ignored.
func WithMaxDepth(ctx context.Context, depth int) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if depth <= 0 {
		return ctx
	}
	return context.WithValue(ctx, maxDepthKey, depth)
}

// MaxDepth extracts the recursion limit from context.
func MaxDepth(ctx context.Context) (int, bool) {
	if ctx == nil {
		return 0, false
	}
	depth, ok := ctx.Value(maxDepthKey).(int)
	if !ok || depth <= 0 {
		return 0, false
	}
	return depth, true
}

// WithLabel tags builds using ctx; the label is attached to resolve events
// and available to placeholder templates.
func WithLabel(ctx context.Context, label string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return ctx
	}
	return context.WithValue(ctx, labelKey, label)
}

// ClearLabel removes the build label from context.
func ClearLabel(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, labelKey, "")
}

// Label extracts the build label from context.
func Label(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(labelKey).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
