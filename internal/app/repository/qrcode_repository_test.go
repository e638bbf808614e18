package repository

import (
	"fmt"
	"testing"
)

func TestChunkIDs(t *testing.T) {
	ids := make([]string, 0, 1203)
	for i := 0; i < 1203; i++ {
		ids = append(ids, fmt.Sprintf("id-%d", i))
	}

	chunks := chunkIDs(ids, BatchLimit)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != BatchLimit || len(chunks[1]) != BatchLimit {
		t.Fatalf("expected full chunks of %d, got %d and %d", BatchLimit, len(chunks[0]), len(chunks[1]))
	}
	if len(chunks[2]) != 203 {
		t.Fatalf("expected trailing chunk of 203, got %d", len(chunks[2]))
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total != len(ids) {
		t.Fatalf("chunks lost elements: %d != %d", total, len(ids))
	}
}

func TestChunkIDs_Empty(t *testing.T) {
	if chunks := chunkIDs(nil, BatchLimit); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
}

func TestChunkIDs_SmallInput(t *testing.T) {
	chunks := chunkIDs([]string{"a", "b"}, BatchLimit)
	if len(chunks) != 1 || len(chunks[0]) != 2 {
		t.Fatalf("expected single chunk of 2, got %v", chunks)
	}
}
