package service

import (
	"errors"
	"testing"

	"github.com/poselog/internal/db"
)

func TestNextFreeOrderFillsGapFirst(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	asana := seedAsana(t, gdb, "yogi@example.com", true)
	seedImage(t, gdb, asana.ID, "yogi@example.com", 1)
	seedImage(t, gdb, asana.ID, "yogi@example.com", 3)

	slots := NewSlotAllocator(gdb)
	order, err := slots.NextFreeOrder(asana.ID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != 2 {
		t.Fatalf("expected first-fit order 2, got %d", order)
	}
}

func TestNextFreeOrderIdempotentWithoutWrites(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	asana := seedAsana(t, gdb, "yogi@example.com", true)
	seedImage(t, gdb, asana.ID, "yogi@example.com", 1)

	slots := NewSlotAllocator(gdb)
	first, err := slots.NextFreeOrder(asana.ID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := slots.NextFreeOrder(asana.ID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical result without intervening write, got %d then %d", first, second)
	}
}

func TestNextFreeOrderExhausted(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	asana := seedAsana(t, gdb, "yogi@example.com", true)
	seedImage(t, gdb, asana.ID, "yogi@example.com", 1)
	seedImage(t, gdb, asana.ID, "yogi@example.com", 2)
	seedImage(t, gdb, asana.ID, "yogi@example.com", 3)

	slots := NewSlotAllocator(gdb)
	if _, err := slots.NextFreeOrder(asana.ID, 3); !errors.Is(err, ErrSlotsExhausted) {
		t.Fatalf("expected ErrSlotsExhausted, got %v", err)
	}
}

func TestNextFreeOrderReadsLegacyColumn(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	asana := seedAsana(t, gdb, "yogi@example.com", true)
	legacyID := asana.ID
	legacy := db.AsanaImage{
		OwnerIdentity: "yogi@example.com",
		LegacyPoseID:  &legacyID,
		DisplayOrder:  1,
		URL:           "/static/uploads/legacy.jpg",
	}
	if err := gdb.Create(&legacy).Error; err != nil {
		t.Fatalf("failed to seed legacy image: %v", err)
	}

	slots := NewSlotAllocator(gdb)
	order, err := slots.NextFreeOrder(asana.ID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != 2 {
		t.Fatalf("expected legacy slot 1 to be seen as taken, got %d", order)
	}
}

func TestValidateOrderSet(t *testing.T) {
	cases := []struct {
		name   string
		orders []int
		want   bool
	}{
		{"empty set is valid", nil, true},
		{"full valid set", []int{1, 2, 3}, true},
		{"gap is valid", []int{1, 3}, true},
		{"duplicate", []int{1, 1}, false},
		{"zero", []int{0, 1}, false},
		{"above max", []int{1, 4}, false},
		{"negative", []int{-1}, false},
	}

	for _, tc := range cases {
		if got := ValidateOrderSet(tc.orders, 3); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
