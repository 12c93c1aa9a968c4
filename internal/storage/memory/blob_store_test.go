package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestBlobStorePutObject(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	uri, err := store.PutObject(context.Background(), "exports/products.csv", "text/csv", bytes.NewReader([]byte("content")))
	if err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	if uri != "memory://exports/products.csv" {
		t.Fatalf("unexpected uri %s", uri)
	}
	got, ok := store.Object("exports/products.csv")
	if !ok || string(got) != "content" {
		t.Fatalf("unexpected stored object %q (found=%v)", got, ok)
	}
	got[0] = 'C'
	again, _ := store.Object("exports/products.csv")
	if string(again) != "content" {
		t.Fatalf("expected stored copy to be immutable, got %q", again)
	}
	if len(store.Paths()) != 1 {
		t.Fatalf("expected one path, got %v", store.Paths())
	}
}

func TestBlobStoreFailWith(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	boom := errors.New("quota exceeded")
	store.FailWith(boom)
	if _, err := store.PutObject(context.Background(), "x", "", bytes.NewReader(nil)); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}
