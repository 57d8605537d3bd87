package service

import (
	"errors"
	"strings"

	"github.com/poselog/internal/db"
	"gorm.io/gorm"
)

var ErrAsanaNameMissing = errors.New("asana name is required")

// AsanaService handles asana record CRUD.
type AsanaService struct {
	db *gorm.DB
}

// AsanaInput represents fields accepted when creating or updating an asana.
type AsanaInput struct {
	Name        string
	Description string
}

// NewAsanaService creates an AsanaService instance.
func NewAsanaService(gdb *gorm.DB) *AsanaService {
	return &AsanaService{db: gdb}
}

// List returns all asanas ordered by recency.
func (s *AsanaService) List() ([]db.Asana, error) {
	var items []db.Asana
	if err := s.db.Order("created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches an asana by id.
func (s *AsanaService) Get(id uint) (*db.Asana, error) {
	var item db.Asana
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAsanaNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new user-managed asana owned by the caller. System
// records are seeded out of band, never through this path.
func (s *AsanaService) Create(ident Identity, input AsanaInput) (*db.Asana, error) {
	if ident.IsZero() {
		return nil, ErrUnauthenticated
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrAsanaNameMissing
	}

	item := db.Asana{
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		CreatedBy:     ident.String(),
		IsUserManaged: true,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Recount repairs a drifted image_count cache from the live rows. A crash
// between an upload's byte write and its metadata commit can leave the two
// inconsistent; this reconciles them explicitly instead of silently.
func (s *AsanaService) Recount(asanaID uint) (int, error) {
	var count int64
	if err := s.db.Model(&db.AsanaImage{}).
		Where("asana_id = ? OR pose_id = ?", asanaID, asanaID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if err := s.db.Model(&db.Asana{}).
		Where("id = ?", asanaID).
		UpdateColumn("image_count", int(count)).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
