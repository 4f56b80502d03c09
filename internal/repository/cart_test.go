package repository

import (
	"context"
	"testing"

	"filemart/internal/model"
)

func TestCartAddIsIdempotentPerProduct(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Add(ctx, &model.CartItem{Email: "guest:g-1", ProductID: "p1"}); err != nil {
			t.Fatalf("add #%d: %v", i, err)
		}
	}

	items, err := repo.List(ctx, "guest:g-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("len = %d, want 1", len(items))
	}
}

func TestCartIsolationBetweenKeys(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	repo.Add(ctx, &model.CartItem{Email: "u@x.com", ProductID: "p1"})
	repo.Add(ctx, &model.CartItem{Email: "guest:g-1", ProductID: "p2"})

	// Guest rows stay keyed under guest:<id>; no merge on login.
	items, _ := repo.List(ctx, "u@x.com")
	if len(items) != 1 || items[0].ProductID != "p1" {
		t.Errorf("user cart = %+v", items)
	}

	items, _ = repo.List(ctx, "guest:g-1")
	if len(items) != 1 || items[0].ProductID != "p2" {
		t.Errorf("guest cart = %+v", items)
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	db := newTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	repo.Add(ctx, &model.CartItem{Email: "u@x.com", ProductID: "p1"})
	repo.Add(ctx, &model.CartItem{Email: "u@x.com", ProductID: "p2"})

	if err := repo.Remove(ctx, "u@x.com", "p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, _ := repo.List(ctx, "u@x.com")
	if len(items) != 1 || items[0].ProductID != "p2" {
		t.Errorf("after remove: %+v", items)
	}

	if err := repo.Clear(ctx, db, "u@x.com"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	items, _ = repo.List(ctx, "u@x.com")
	if len(items) != 0 {
		t.Errorf("after clear: %+v", items)
	}
}
