package requestid_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"casting-api/internal/observability/requestid"

	"github.com/oklog/ulid"
)

func TestNewRequestID_Format(t *testing.T) {
	id := requestid.NewRequestID()

	if !strings.HasPrefix(id, "req_") {
		t.Errorf("expected ID to start with 'req_', got: %s", id)
	}

	// req_ + 26 char ULID
	if len(id) != 30 {
		t.Errorf("expected ID length 30, got: %d", len(id))
	}

	if _, err := ulid.Parse(strings.TrimPrefix(id, "req_")); err != nil {
		t.Errorf("expected a valid ULID suffix, got error: %v", err)
	}
}

func TestNewRequestID_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	const count = 1000

	for i := 0; i < count; i++ {
		id := requestid.NewRequestID()
		if ids[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != count {
		t.Errorf("expected %d unique IDs, got %d", count, len(ids))
	}
}

func TestNewRequestID_Sortable(t *testing.T) {
	first := requestid.NewRequestID()
	second := requestid.NewRequestID()

	if !(first < second) {
		t.Errorf("expected %q to sort before %q", first, second)
	}
}

func TestNewRequestID_Concurrent(t *testing.T) {
	var mu sync.Mutex
	ids := make(map[string]bool)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := requestid.NewRequestID()
				mu.Lock()
				ids[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(ids) != 800 {
		t.Errorf("expected 800 unique IDs, got %d", len(ids))
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	ctx := context.Background()
	id := requestid.GetRequestID(ctx)

	if id != "" {
		t.Errorf("expected empty string for empty context, got: %s", id)
	}
}

func TestSetRequestID_AndGet(t *testing.T) {
	ctx := context.Background()
	testID := "test-req-123"

	ctx = requestid.SetRequestID(ctx, testID)
	got := requestid.GetRequestID(ctx)

	if got != testID {
		t.Errorf("expected %q, got %q", testID, got)
	}
}

func TestSetRequestID_Overwrite(t *testing.T) {
	ctx := context.Background()

	ctx = requestid.SetRequestID(ctx, "first-id")
	ctx = requestid.SetRequestID(ctx, "second-id")

	got := requestid.GetRequestID(ctx)
	if got != "second-id" {
		t.Errorf("expected 'second-id', got %q", got)
	}
}

func BenchmarkNewRequestID(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = requestid.NewRequestID()
	}
}
