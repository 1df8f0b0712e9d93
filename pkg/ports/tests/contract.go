package tests

import (
	"context"
	"testing"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// ResponseStoreContractTest is a reusable suite that verifies an adapter
// complies with ports.ResponseStore semantics.
func ResponseStoreContractTest(t *testing.T, store ports.ResponseStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Unanswered", func(t *testing.T) {
		resp, err := store.Get(ctx, "never-answered")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp != nil {
			t.Errorf("expected nil response for unanswered question, got %+v", resp)
		}
	})

	t.Run("Set_Get_Roundtrip", func(t *testing.T) {
		want := &domain.Response{Value: "yes", Comment: "sure"}
		if err := store.Set(ctx, "q1", want); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		got, err := store.Get(ctx, "q1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got == nil || got.Value != "yes" || got.Comment != "sure" {
			t.Errorf("roundtrip mismatch: got %+v", got)
		}
	})

	t.Run("Set_Replaces", func(t *testing.T) {
		if err := store.Set(ctx, "q2", &domain.Response{Value: "a"}); err != nil {
			t.Fatal(err)
		}
		if err := store.Set(ctx, "q2", &domain.Response{Value: "b"}); err != nil {
			t.Fatal(err)
		}
		got, err := store.Get(ctx, "q2")
		if err != nil {
			t.Fatal(err)
		}
		if got.Value != "b" {
			t.Errorf("expected replaced value %q, got %v", "b", got.Value)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Set(ctx, "q3", &domain.Response{Value: "x"}); err != nil {
			t.Fatal(err)
		}
		if err := store.Delete(ctx, "q3"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		got, err := store.Get(ctx, "q3")
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Errorf("expected nil after delete, got %+v", got)
		}
	})

	t.Run("List", func(t *testing.T) {
		if err := store.Set(ctx, "q4", &domain.Response{Value: 1.0}); err != nil {
			t.Fatal(err)
		}
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		found := false
		for _, id := range ids {
			if id == "q4" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected q4 in list, got %v", ids)
		}
	})
}

// ViewTreeContractTest verifies an adapter complies with ports.ViewTree
// ordering semantics. makeNode must return a fresh, unattached node with the
// given view identity.
func ViewTreeContractTest(t *testing.T, tree ports.ViewTree, makeNode func(id string) ports.NodeRef) {
	t.Helper()

	a, b, c := makeNode("a"), makeNode("b"), makeNode("c")

	t.Run("QueryByID_Missing", func(t *testing.T) {
		if got := tree.QueryByID("a"); got != nil {
			t.Errorf("expected nil for unattached node, got %v", got)
		}
	})

	t.Run("Append_And_Query", func(t *testing.T) {
		if err := tree.Append(a); err != nil {
			t.Fatal(err)
		}
		if err := tree.Append(c); err != nil {
			t.Fatal(err)
		}
		if got := tree.QueryByID("a"); got == nil || got.NodeID() != "a" {
			t.Errorf("query a: got %v", got)
		}
	})

	t.Run("InsertBefore", func(t *testing.T) {
		if err := tree.InsertBefore(b, c); err != nil {
			t.Fatal(err)
		}
		if got := tree.NextSibling(a); got == nil || got.NodeID() != "b" {
			t.Errorf("expected b after a, got %v", got)
		}
		if got := tree.NextSibling(b); got == nil || got.NodeID() != "c" {
			t.Errorf("expected c after b, got %v", got)
		}
	})

	t.Run("NextSibling_Last", func(t *testing.T) {
		if got := tree.NextSibling(c); got != nil {
			t.Errorf("expected nil after last node, got %v", got)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := tree.Remove(b); err != nil {
			t.Fatal(err)
		}
		if got := tree.QueryByID("b"); got != nil {
			t.Errorf("expected nil after remove, got %v", got)
		}
		if got := tree.NextSibling(a); got == nil || got.NodeID() != "c" {
			t.Errorf("expected c after a once b removed, got %v", got)
		}
	})
}
