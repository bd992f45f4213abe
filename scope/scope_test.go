package scope

import (
	"context"
	"testing"
)

func TestMaxDepth(t *testing.T) {
	ctx := context.Background()
	if _, ok := MaxDepth(ctx); ok {
		t.Fatalf("expected no depth on empty context")
	}
	ctx = WithMaxDepth(ctx, 12)
	if got, ok := MaxDepth(ctx); !ok || got != 12 {
		t.Fatalf("MaxDepth() = %d, %v, want 12", got, ok)
	}
	ctx = WithMaxDepth(ctx, 0)
	if got, _ := MaxDepth(ctx); got != 12 {
		t.Fatalf("MaxDepth() after no-op = %d, want 12", got)
	}
}

func TestLabelNoopAndClear(t *testing.T) {
	ctx := WithLabel(context.Background(), "  checkout ")
	if got := Label(ctx); got != "checkout" {
		t.Fatalf("Label() = %q, want %q", got, "checkout")
	}
	ctx = WithLabel(ctx, "\t")
	if got := Label(ctx); got != "checkout" {
		t.Fatalf("Label() after no-op = %q, want %q", got, "checkout")
	}
	ctx = ClearLabel(ctx)
	if got := Label(ctx); got != "" {
		t.Fatalf("Label() after clear = %q, want empty", got)
	}
}

func TestNilContext(t *testing.T) {
	var ctx context.Context
	if Label(ctx) != "" {
		t.Fatalf("expected empty label")
	}
	if _, ok := MaxDepth(ctx); ok {
		t.Fatalf("expected no depth")
	}
	if got := Label(WithLabel(ctx, "x")); got != "x" {
		t.Fatalf("expected label on background context, got %q", got)
	}
}
