package embedding

import (
	"context"
	"math"
	"testing"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x * x)
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	var d float64
	for i := range a {
		d += float64(a[i] * b[i])
	}
	return d
}

func TestMockEmbedderDeterministicAndNormalized(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "python programming tutorial")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "python programming tutorial")

	if len(a) != 64 {
		t.Fatalf("dimension: got %d", len(a))
	}
	if math.Abs(norm(a)-1.0) > 1e-4 {
		t.Errorf("norm: got %v", norm(a))
	}
	if math.Abs(dot(a, b)-1.0) > 1e-4 {
		t.Errorf("same text should embed identically, similarity %v", dot(a, b))
	}
}

func TestMockEmbedderRelatedTextsScoreHigher(t *testing.T) {
	e := NewMockEmbedder(384)
	ctx := context.Background()

	a, _ := e.Embed(ctx, "python programming tutorial")
	b, _ := e.Embed(ctx, "python programming for beginners")
	c, _ := e.Embed(ctx, "watercolor painting basics")

	if dot(a, b) <= dot(a, c) {
		t.Errorf("overlapping text should score higher: related=%v unrelated=%v", dot(a, b), dot(a, c))
	}
}

func TestMockEmbedderEmptyText(t *testing.T) {
	e := NewMockEmbedder(16)
	v, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(norm(v)-1.0) > 1e-4 {
		t.Errorf("empty text should still produce a unit vector, norm %v", norm(v))
	}
}
