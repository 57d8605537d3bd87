package service

import (
	"github.com/poselog/internal/db"
	"gorm.io/gorm"
)

// SlotAllocator computes free display-order slots for an asana's images.
type SlotAllocator struct {
	db *gorm.DB
}

// NewSlotAllocator creates a SlotAllocator instance.
func NewSlotAllocator(gdb *gorm.DB) *SlotAllocator {
	return &SlotAllocator{db: gdb}
}

// NextFreeOrder returns the smallest unused display order in [1, maxImages]
// for the asana, first-fit. Both the current and the legacy foreign-key
// column are considered. Returns ErrSlotsExhausted when every slot is taken,
// which capacity checks upstream should make unreachable.
func (s *SlotAllocator) NextFreeOrder(asanaID uint, maxImages int) (int, error) {
	return nextFreeOrder(s.db, asanaID, maxImages)
}

// nextFreeOrder is the allocator core, usable on a transaction handle so an
// admission can re-derive the slot under the same isolation as its writes.
func nextFreeOrder(gdb *gorm.DB, asanaID uint, maxImages int) (int, error) {
	var orders []int
	if err := gdb.Model(&db.AsanaImage{}).
		Where("asana_id = ? OR pose_id = ?", asanaID, asanaID).
		Pluck("display_order", &orders).Error; err != nil {
		return 0, err
	}

	used := make(map[int]bool, len(orders))
	for _, order := range orders {
		used[order] = true
	}

	for slot := 1; slot <= maxImages; slot++ {
		if !used[slot] {
			return slot, nil
		}
	}
	return 0, ErrSlotsExhausted
}

// ValidateOrderSet reports whether every order is unique and within
// [1, maxImages]. An empty set is valid. Pure; must pass before any
// reorder persistence is attempted.
func ValidateOrderSet(orders []int, maxImages int) bool {
	seen := make(map[int]bool, len(orders))
	for _, order := range orders {
		if order < 1 || order > maxImages {
			return false
		}
		if seen[order] {
			return false
		}
		seen[order] = true
	}
	return true
}
