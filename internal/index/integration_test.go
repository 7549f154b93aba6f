//go:build integration
// +build integration

package index

import (
	"context"
	"testing"
	"time"

	"github.com/firebase/genkit/go/genkit"

	"github.com/zynfvr/sih2/internal/argo"
	"github.com/zynfvr/sih2/internal/testutil"
)

// axisVector returns a unit vector pointing along one axis, so cosine
// similarity between test documents is exactly 0 or 1.
func axisVector(axis int) []float32 {
	vec := make([]float32, VectorDimension)
	vec[axis] = 1
	return vec
}

func testCycle(pn string, num int32, lat, lon float64) argo.Cycle {
	return argo.Cycle{
		PlatformNumber: pn,
		CycleNumber:    num,
		ProfileNumber:  num,
		Date:           time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC),
		Latitude:       lat,
		Longitude:      lon,
		PositionQC:     "1",
		Direction:      "A",
		DataMode:       "D",
	}
}

func TestIndexBuildAndSearch(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	g := genkit.Init(ctx)
	mock := testutil.NewMockEmbedder(int(VectorDimension))
	embedder := mock.RegisterEmbedder(g)

	c1 := testCycle("2902746", 1, 15.2, 64.5)
	c2 := testCycle("1901349", 7, -10.0, 80.0)
	mock.SetVector(c1.Summary(), axisVector(0))
	mock.SetVector(c2.Summary(), axisVector(1))
	mock.SetVector("query near first", axisVector(0))

	// cycle_documents has no FK, but insert parents anyway for realism.
	for _, c := range []argo.Cycle{c1, c2} {
		if _, err := db.Pool.Exec(ctx,
			`INSERT INTO floats (platform_number) VALUES ($1) ON CONFLICT DO NOTHING`,
			c.PlatformNumber); err != nil {
			t.Fatalf("inserting float: %v", err)
		}
	}

	ix, err := New(db.Pool, embedder, testutil.QuietLogger())
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	n, err := ix.Build(ctx, []argo.Cycle{c1, c2})
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("Build() indexed %d documents, want 2", n)
	}

	count, err := ix.Count(ctx)
	if err != nil {
		t.Fatalf("Count() unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	results, err := ix.Search(ctx, "query near first", 2)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}
	if results[0].Content != c1.Summary() {
		t.Errorf("nearest result = %q, want summary of 2902746", results[0].Content)
	}
	if results[0].Similarity < 0.99 {
		t.Errorf("nearest similarity = %v, want ~1", results[0].Similarity)
	}
	if results[0].Metadata["platform_number"] != "2902746" {
		t.Errorf("metadata platform_number = %q", results[0].Metadata["platform_number"])
	}
	if results[0].Metadata["cycle_number"] != "1" {
		t.Errorf("metadata cycle_number = %q", results[0].Metadata["cycle_number"])
	}
}

func TestIndexRebuildReplaces(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	g := genkit.Init(ctx)
	mock := testutil.NewMockEmbedder(int(VectorDimension))
	embedder := mock.RegisterEmbedder(g)

	ix, err := New(db.Pool, embedder, testutil.QuietLogger())
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if _, err := ix.Build(ctx, []argo.Cycle{
		testCycle("2902746", 1, 15, 64),
		testCycle("2902746", 2, 15, 64),
	}); err != nil {
		t.Fatalf("first Build() unexpected error: %v", err)
	}

	if _, err := ix.Build(ctx, []argo.Cycle{testCycle("1901349", 1, -10, 80)}); err != nil {
		t.Fatalf("second Build() unexpected error: %v", err)
	}

	count, err := ix.Count(ctx)
	if err != nil {
		t.Fatalf("Count() unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("Count() after rebuild = %d, want 1 (truncate then replace)", count)
	}
}

func TestIndexSearchValidation(t *testing.T) {
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	g := genkit.Init(context.Background())
	mock := testutil.NewMockEmbedder(int(VectorDimension))
	ix, err := New(db.Pool, mock.RegisterEmbedder(g), testutil.QuietLogger())
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if _, err := ix.Search(context.Background(), "anything", 0); err == nil {
		t.Error("Search(k=0) expected error, got nil")
	}
}
