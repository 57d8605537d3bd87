package service

import (
	"strconv"
	"strings"

	"github.com/poselog/internal/config"
	"github.com/poselog/internal/db"
	"gorm.io/gorm"
)

// ReorderService re-assigns display orders for the complete image set of one
// asana. All preconditions are checked before anything is written; the
// position updates then commit as a single transaction so no reader ever
// observes a partially applied assignment.
type ReorderService struct {
	db     *gorm.DB
	owners *OwnershipService
	limits config.ImageLimits
}

// ReorderEntry pairs an image id (wire form, string) with its new order.
type ReorderEntry struct {
	ImageID      string
	DisplayOrder int
}

// NewReorderService creates a ReorderService instance.
func NewReorderService(gdb *gorm.DB, owners *OwnershipService, limits config.ImageLimits) *ReorderService {
	return &ReorderService{db: gdb, owners: owners, limits: limits}
}

// Reorder applies a complete new position assignment and returns the
// record's images freshly read in ascending display order. Preconditions run
// strictly in sequence, each with its own failure:
// caller authenticated, input well-formed, order set valid, every image
// owned by the caller, every id resolvable, all images on one record, and
// the caller owning that record as final authority.
func (s *ReorderService) Reorder(ident Identity, entries []ReorderEntry) ([]db.AsanaImage, error) {
	if ident.IsZero() {
		return nil, ErrUnauthenticated
	}
	if len(entries) == 0 {
		return nil, invalidInput("images array is required")
	}
	for _, entry := range entries {
		if strings.TrimSpace(entry.ImageID) == "" {
			return nil, invalidInput("every entry needs an image id")
		}
	}

	orders := make([]int, 0, len(entries))
	seenIDs := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if seenIDs[entry.ImageID] {
			// 同一图片被指派两个槽位，等价于槽位重复
			return nil, ErrInvalidOrderSet
		}
		seenIDs[entry.ImageID] = true
		orders = append(orders, entry.DisplayOrder)
	}
	if !ValidateOrderSet(orders, s.limits.UserManaged) {
		return nil, ErrInvalidOrderSet
	}

	ids := make([]uint, 0, len(entries))
	assignment := make(map[uint]int, len(entries))
	for _, entry := range entries {
		parsed, err := strconv.ParseUint(strings.TrimSpace(entry.ImageID), 10, 32)
		if err != nil {
			// 无法解析的 id 不可能对应任何图片
			return nil, ErrImageNotFound
		}
		ids = append(ids, uint(parsed))
		assignment[uint(parsed)] = entry.DisplayOrder
	}

	var images []db.AsanaImage
	if err := s.db.Where("id IN ?", ids).Find(&images).Error; err != nil {
		return nil, err
	}

	// Image-level ownership is checked before existence so a probe mixing
	// foreign images with unknown ids reads as a denial, not a 404.
	for _, img := range images {
		if !ident.Matches(img.OwnerIdentity) {
			return nil, ErrOwnershipDenied
		}
	}
	if len(images) != len(ids) {
		return nil, ErrImageNotFound
	}

	var recordID *uint
	for _, img := range images {
		id := img.RecordID()
		if id == nil {
			return nil, invalidInput("images must belong to the same asana")
		}
		if recordID == nil {
			recordID = id
		} else if *recordID != *id {
			return nil, invalidInput("images must belong to the same asana")
		}
	}

	// Final authority: record-level ownership, independent of the per-image
	// owner column.
	if !s.owners.VerifyOwnership(*recordID, ident) {
		return nil, ErrOwnershipDenied
	}

	var total int64
	if err := s.db.Model(&db.AsanaImage{}).
		Where("asana_id = ? OR pose_id = ?", *recordID, *recordID).
		Count(&total).Error; err != nil {
		return nil, err
	}
	if int(total) != len(images) {
		return nil, invalidInput("reorder must include every image of the asana")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 两阶段写：先把槽位挪进负数区，再落最终值，避免中途触发唯一索引
		for _, img := range images {
			if err := tx.Model(&db.AsanaImage{}).
				Where("id = ?", img.ID).
				Update("display_order", -int(img.ID)).Error; err != nil {
				return err
			}
		}
		for _, img := range images {
			if err := tx.Model(&db.AsanaImage{}).
				Where("id = ?", img.ID).
				Update("display_order", assignment[img.ID]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var refreshed []db.AsanaImage
	if err := s.db.
		Where("asana_id = ? OR pose_id = ?", *recordID, *recordID).
		Order("display_order asc").
		Find(&refreshed).Error; err != nil {
		return nil, err
	}
	return refreshed, nil
}
