package service

import (
	"errors"
	"image"
	"log"
	"mime/multipart"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/poselog/internal/config"
	"github.com/poselog/internal/db"
	"github.com/poselog/internal/storage"
	"gorm.io/gorm"
)

// UploadService admits new images for asana records and removes existing
// ones, keeping the cached image count on the record in step with the rows.
// The byte-store write happens outside the metadata transaction and is
// compensated when that transaction fails.
type UploadService struct {
	db     *gorm.DB
	store  *storage.LocalStore
	owners *OwnershipService
	slots  *SlotAllocator
	cfg    config.AppConfig
}

// UploadInput represents a single upload request.
type UploadInput struct {
	File         *multipart.FileHeader
	AltText      string
	AsanaID      *uint
	AsanaName    string
	ImageType    string
	DisplayOrder *int
}

// UploadResult is the created image plus quota feedback derived from the
// pre-call count, for immediate UI display without a second read.
type UploadResult struct {
	Image          db.AsanaImage
	TotalImages    int
	RemainingSlots int
}

// NewUploadService creates an UploadService instance.
func NewUploadService(gdb *gorm.DB, store *storage.LocalStore, owners *OwnershipService, slots *SlotAllocator, cfg config.AppConfig) *UploadService {
	return &UploadService{db: gdb, store: store, owners: owners, slots: slots, cfg: cfg}
}

// Upload validates and admits one new image. Attached uploads require the
// caller to be the asana's creator and respect the record's image cap; the
// capacity check is repeated inside the metadata transaction so two racing
// uploads cannot both slip past it.
func (s *UploadService) Upload(ident Identity, input UploadInput) (*UploadResult, error) {
	if ident.IsZero() {
		return nil, ErrUnauthenticated
	}
	if err := s.validateFile(input.File); err != nil {
		return nil, err
	}

	var asana *db.Asana
	preCount := 0
	maxImages := s.cfg.Limits.UserManaged

	if input.AsanaID != nil {
		loaded, err := s.loadAsana(*input.AsanaID)
		if err != nil {
			return nil, err
		}
		if loaded.IsSystem() {
			return nil, ErrSystemAsanaImmutable
		}
		if !ident.Matches(loaded.CreatedBy) {
			return nil, ErrOwnershipDenied
		}

		maxImages = s.cfg.Limits.MaxFor(loaded.IsUserManaged)
		count, err := s.liveImageCount(s.db, *input.AsanaID)
		if err != nil {
			return nil, err
		}
		if count >= maxImages {
			return nil, &CapacityError{Current: count, Limit: maxImages}
		}
		asana = loaded
		preCount = count
	}

	order, err := s.resolveOrder(input, maxImages)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Save(input.File)
	if err != nil {
		return nil, err
	}

	width, height := probeDimensions(input.File)

	img := db.AsanaImage{
		OwnerIdentity: ident.String(),
		AsanaID:       input.AsanaID,
		DisplayOrder:  order,
		URL:           saved.URL,
		Filename:      input.File.Filename,
		Size:          input.File.Size,
		Width:         width,
		Height:        height,
		AltText:       strings.TrimSpace(input.AltText),
		ImageType:     strings.TrimSpace(input.ImageType),
	}

	if err := s.commitImage(&img, input, maxImages); err != nil {
		if removeErr := s.store.Remove(saved.Path); removeErr != nil {
			log.Printf("upload: failed to clean up stored file %s: %v", saved.Path, removeErr)
		}
		return nil, err
	}

	result := &UploadResult{Image: img}
	if asana != nil {
		result.TotalImages = preCount + 1
		result.RemainingSlots = maxImages - result.TotalImages
		if result.RemainingSlots < 0 {
			result.RemainingSlots = 0
		}
	}
	return result, nil
}

// commitImage creates the metadata row and bumps the cached count as one
// atomic unit. On a duplicate-slot conflict an implicitly allocated order is
// re-derived once inside a fresh transaction; an explicit order surfaces the
// conflict to the caller.
func (s *UploadService) commitImage(img *db.AsanaImage, input UploadInput, maxImages int) error {
	for attempt := 0; attempt < 2; attempt++ {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if input.AsanaID != nil {
				count, err := s.liveImageCount(tx, *input.AsanaID)
				if err != nil {
					return err
				}
				if count >= maxImages {
					return &CapacityError{Current: count, Limit: maxImages}
				}
				if input.DisplayOrder == nil {
					order, err := nextFreeOrder(tx, *input.AsanaID, maxImages)
					if err != nil {
						return err
					}
					img.DisplayOrder = order
				}
				if err := tx.Create(img).Error; err != nil {
					return err
				}
				return tx.Model(&db.Asana{}).
					Where("id = ?", *input.AsanaID).
					UpdateColumn("image_count", gorm.Expr("image_count + 1")).Error
			}
			return tx.Create(img).Error
		})
		if err == nil {
			return nil
		}
		if !isDuplicateSlot(err) {
			return err
		}
		if input.DisplayOrder != nil {
			return invalidInput("display order %d is already taken", *input.DisplayOrder)
		}
		img.ID = 0
	}
	return ErrSlotsExhausted
}

// Delete removes an image, decrements the record's cached count and removes
// the stored bytes. Surviving images are never renumbered; a gap in the
// display orders is expected.
func (s *UploadService) Delete(ident Identity, imageID uint) error {
	if ident.IsZero() {
		return ErrUnauthenticated
	}

	var img db.AsanaImage
	if err := s.db.First(&img, imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}

	if recordID := img.RecordID(); recordID != nil {
		asana, err := s.loadAsana(*recordID)
		if err != nil {
			return ErrOwnershipDenied
		}
		if !s.owners.CanManageImages(asana, ident) {
			return ErrOwnershipDenied
		}
	} else if !ident.Matches(img.OwnerIdentity) {
		return ErrOwnershipDenied
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&db.AsanaImage{}, img.ID).Error; err != nil {
			return err
		}
		if recordID := img.RecordID(); recordID != nil {
			return tx.Model(&db.Asana{}).
				Where("id = ?", *recordID).
				UpdateColumn("image_count", gorm.Expr("MAX(image_count - 1, 0)")).Error
		}
		return nil
	})
	if err != nil {
		return err
	}

	if removeErr := s.store.RemoveURL(img.URL); removeErr != nil {
		log.Printf("delete: failed to remove stored file for image %d: %v", img.ID, removeErr)
	}
	return nil
}

// Quota reports the caller's upload allowance for an asana. Only the
// record's creator may query it.
func (s *UploadService) Quota(ident Identity, asanaID uint) (ImagePermissions, error) {
	if ident.IsZero() {
		return ImagePermissions{}, ErrUnauthenticated
	}
	asana, err := s.loadAsana(asanaID)
	if err != nil {
		return ImagePermissions{}, err
	}
	if !ident.Matches(asana.CreatedBy) {
		return ImagePermissions{}, ErrOwnershipDenied
	}
	return s.owners.Permissions(asana, ident), nil
}

// ListForAsana returns the asana's images sorted by display order.
func (s *UploadService) ListForAsana(asanaID uint) ([]db.AsanaImage, error) {
	var images []db.AsanaImage
	if err := s.db.
		Where("asana_id = ? OR pose_id = ?", asanaID, asanaID).
		Order("display_order asc").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (s *UploadService) validateFile(file *multipart.FileHeader) error {
	if file == nil {
		return invalidInput("an image file is required")
	}
	if file.Size <= 0 {
		return invalidInput("uploaded file is empty")
	}
	if file.Size > s.cfg.MaxUploadBytes {
		return invalidInput("file exceeds the %d byte limit", s.cfg.MaxUploadBytes)
	}

	contentType := strings.ToLower(strings.TrimSpace(file.Header.Get("Content-Type")))
	for _, allowed := range s.cfg.AllowedImageTypes {
		if contentType == allowed {
			return nil
		}
	}
	return invalidInput("file type %q is not allowed", contentType)
}

func (s *UploadService) loadAsana(asanaID uint) (*db.Asana, error) {
	var asana db.Asana
	if err := s.db.First(&asana, asanaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAsanaNotFound
		}
		// 存储层异常一律视为无权限，绝不放行
		return nil, ErrOwnershipDenied
	}
	return &asana, nil
}

func (s *UploadService) liveImageCount(gdb *gorm.DB, asanaID uint) (int, error) {
	var count int64
	if err := gdb.Model(&db.AsanaImage{}).
		Where("asana_id = ? OR pose_id = ?", asanaID, asanaID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// resolveOrder picks the display order before the transaction runs. An
// explicit caller-supplied order is validated against the current set rather
// than trusted as-is, closing the duplicate-slot gap the legacy flow had.
func (s *UploadService) resolveOrder(input UploadInput, maxImages int) (int, error) {
	if input.DisplayOrder != nil {
		order := *input.DisplayOrder
		if order < 1 || order > maxImages {
			return 0, invalidInput("display order must be between 1 and %d", maxImages)
		}
		if input.AsanaID != nil {
			var taken int64
			if err := s.db.Model(&db.AsanaImage{}).
				Where("(asana_id = ? OR pose_id = ?) AND display_order = ?", *input.AsanaID, *input.AsanaID, order).
				Count(&taken).Error; err != nil {
				return 0, err
			}
			if taken > 0 {
				return 0, invalidInput("display order %d is already taken", order)
			}
		}
		return order, nil
	}

	if input.AsanaID == nil {
		return 1, nil
	}
	return s.slots.NextFreeOrder(*input.AsanaID, maxImages)
}

// probeDimensions decodes just the image header for width/height metadata.
// Failures are tolerated; dimensions are best-effort descriptive data.
func probeDimensions(file *multipart.FileHeader) (int, int) {
	src, err := file.Open()
	if err != nil {
		return 0, 0
	}
	defer src.Close()

	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func isDuplicateSlot(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
