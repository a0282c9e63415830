package cart

import "testing"

func TestAddMergesMatchingLines(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	if _, err := svc.Add(1, Line{ProductID: 10, Size: "8", Quantity: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	items, err := svc.Add(1, Line{ProductID: 10, Size: "8", Quantity: 2})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d lines, want merged single line", len(items))
	}
	if items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", items[0].Quantity)
	}
}

func TestAddKeepsSizesAsSeparateLines(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	svc.Add(1, Line{ProductID: 10, Size: "8", Quantity: 1})
	items, err := svc.Add(1, Line{ProductID: 10, Size: "9", Quantity: 1})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("items = %d lines, want one per size", len(items))
	}
}

func TestNegativeQuantityRemovesLine(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	svc.Add(1, Line{ProductID: 10, Size: "8", Quantity: 2})
	items, err := svc.Add(1, Line{ProductID: 10, Size: "8", Quantity: -2})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %d lines, want empty cart", len(items))
	}
}

func TestZeroQuantityReturnsCartUnchanged(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	svc.Add(1, Line{ProductID: 10, Size: "8", Quantity: 2})
	items, err := svc.Add(1, Line{ProductID: 10, Size: "8", Quantity: 0})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Errorf("cart changed on zero quantity: %+v", items)
	}
}

func TestAddValidation(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	if _, err := svc.Add(1, Line{ProductID: 0, Size: "8", Quantity: 1}); err != ErrBadProduct {
		t.Errorf("err = %v, want ErrBadProduct", err)
	}
	if _, err := svc.Add(1, Line{ProductID: 10, Quantity: 1}); err != ErrNoSize {
		t.Errorf("err = %v, want ErrNoSize", err)
	}
	if _, err := svc.Add(0, Line{ProductID: 10, Size: "8", Quantity: 1}); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestClear(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	svc.Add(1, Line{ProductID: 10, Size: "8", Quantity: 2})
	if err := svc.Clear(1); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	items, _ := svc.Get(1)
	if len(items) != 0 {
		t.Errorf("cart not empty after clear: %+v", items)
	}
}
