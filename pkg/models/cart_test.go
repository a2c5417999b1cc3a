package models

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestNormalizeItems(t *testing.T) {
	a := bson.NewObjectID()
	b := bson.NewObjectID()

	t.Run("merges duplicate products by summing quantities", func(t *testing.T) {
		got, err := NormalizeItems([]CartItem{
			{ProductID: a, Quantity: 2},
			{ProductID: b, Quantity: 1},
			{ProductID: a, Quantity: 3},
		})
		if err != nil {
			t.Fatalf("NormalizeItems failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 lines, got %d: %+v", len(got), got)
		}
		if got[0].ProductID != a || got[0].Quantity != 5 {
			t.Fatalf("expected first line %s qty 5, got %+v", a.Hex(), got[0])
		}
		if got[1].ProductID != b || got[1].Quantity != 1 {
			t.Fatalf("expected second line %s qty 1, got %+v", b.Hex(), got[1])
		}
	})

	t.Run("drops zero-quantity lines", func(t *testing.T) {
		got, err := NormalizeItems([]CartItem{
			{ProductID: a, Quantity: 0},
			{ProductID: b, Quantity: 2},
		})
		if err != nil {
			t.Fatalf("NormalizeItems failed: %v", err)
		}
		if len(got) != 1 || got[0].ProductID != b {
			t.Fatalf("expected only %s to survive, got %+v", b.Hex(), got)
		}
	})

	t.Run("rejects negative quantities", func(t *testing.T) {
		_, err := NormalizeItems([]CartItem{{ProductID: a, Quantity: -1}})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		got, err := NormalizeItems(nil)
		if err != nil || len(got) != 0 {
			t.Fatalf("expected empty result, got %v %v", got, err)
		}
	})
}

func TestPatchItems(t *testing.T) {
	a := bson.NewObjectID()
	b := bson.NewObjectID()

	t.Run("sets quantity instead of adding", func(t *testing.T) {
		got, err := PatchItems([]CartItem{{ProductID: a, Quantity: 2}}, a, 7)
		if err != nil {
			t.Fatalf("PatchItems failed: %v", err)
		}
		if len(got) != 1 || got[0].Quantity != 7 {
			t.Fatalf("expected qty 7, got %+v", got)
		}
	})

	t.Run("upserts a new line", func(t *testing.T) {
		got, err := PatchItems([]CartItem{{ProductID: a, Quantity: 2}}, b, 1)
		if err != nil {
			t.Fatalf("PatchItems failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 lines, got %+v", got)
		}
	})

	t.Run("zero removes the line", func(t *testing.T) {
		got, err := PatchItems([]CartItem{{ProductID: a, Quantity: 2}}, a, 0)
		if err != nil {
			t.Fatalf("PatchItems failed: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected empty cart, got %+v", got)
		}
	})

	t.Run("removing an absent line is a no-op", func(t *testing.T) {
		before := []CartItem{{ProductID: a, Quantity: 2}}
		got, err := PatchItems(before, b, 0)
		if err != nil {
			t.Fatalf("PatchItems failed: %v", err)
		}
		if len(got) != 1 || got[0] != before[0] {
			t.Fatalf("expected cart unchanged, got %+v", got)
		}
	})

	t.Run("rejects negative quantities", func(t *testing.T) {
		_, err := PatchItems(nil, a, -3)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})
}
