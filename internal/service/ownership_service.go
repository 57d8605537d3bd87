package service

import (
	"github.com/poselog/internal/config"
	"github.com/poselog/internal/db"
	"gorm.io/gorm"
)

// OwnershipService answers whether a caller may manage an asana's images.
// Every lookup failure is treated as "not authorized"; nothing here ever
// defaults to permissive.
type OwnershipService struct {
	db     *gorm.DB
	limits config.ImageLimits
}

// ImagePermissions describes what a caller may do with an asana's images.
// For a non-manageable record every capability is false while the count
// fields still reflect the record's real state.
type ImagePermissions struct {
	CanUpload      bool `json:"canUpload"`
	CanDelete      bool `json:"canDelete"`
	CanReorder     bool `json:"canReorder"`
	CanManage      bool `json:"canManage"`
	IsOwner        bool `json:"isOwner"`
	IsUserManaged  bool `json:"isUserManaged"`
	MaxImages      int  `json:"maxImages"`
	CurrentCount   int  `json:"currentCount"`
	RemainingSlots int  `json:"remainingSlots"`
}

// NewOwnershipService creates an OwnershipService instance.
func NewOwnershipService(gdb *gorm.DB, limits config.ImageLimits) *OwnershipService {
	return &OwnershipService{db: gdb, limits: limits}
}

// VerifyOwnership loads the asana and reports whether ident is its creator.
// Any lookup failure yields false.
func (s *OwnershipService) VerifyOwnership(asanaID uint, ident Identity) bool {
	var asana db.Asana
	if err := s.db.First(&asana, asanaID).Error; err != nil {
		return false
	}
	return ident.Matches(asana.CreatedBy)
}

// CanManageImages reports whether ident may mutate the asana's images.
// Ownership by identity match is sufficient; IsUserManaged is deliberately
// not required here since the flag can lag behind the creator column.
func (s *OwnershipService) CanManageImages(asana *db.Asana, ident Identity) bool {
	if asana == nil || ident.IsZero() {
		return false
	}
	return ident.Matches(asana.CreatedBy)
}

// Permissions projects the caller's capabilities over the asana's images.
func (s *OwnershipService) Permissions(asana *db.Asana, ident Identity) ImagePermissions {
	perms := ImagePermissions{}
	if asana == nil {
		return perms
	}

	perms.IsUserManaged = asana.IsUserManaged
	perms.MaxImages = s.limits.MaxFor(asana.IsUserManaged)
	perms.CurrentCount = asana.ImageCount
	perms.RemainingSlots = perms.MaxImages - perms.CurrentCount
	if perms.RemainingSlots < 0 {
		perms.RemainingSlots = 0
	}

	manage := s.CanManageImages(asana, ident)
	perms.IsOwner = manage
	perms.CanManage = manage
	perms.CanUpload = manage && perms.RemainingSlots > 0
	perms.CanDelete = manage && perms.CurrentCount > 0
	perms.CanReorder = manage && perms.CurrentCount > 1

	return perms
}
