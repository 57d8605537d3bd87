package handler

import (
	"github.com/poselog/internal/config"
	"github.com/poselog/internal/service"
	"github.com/poselog/internal/storage"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	owners   *service.OwnershipService
	slots    *service.SlotAllocator
	uploads  *service.UploadService
	reorders *service.ReorderService
	asanas   *service.AsanaService
	cfg      config.AppConfig
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig) *API {
	store := storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPath)
	owners := service.NewOwnershipService(gdb, cfg.Limits)
	slots := service.NewSlotAllocator(gdb)

	return &API{
		db:       gdb,
		owners:   owners,
		slots:    slots,
		uploads:  service.NewUploadService(gdb, store, owners, slots, cfg),
		reorders: service.NewReorderService(gdb, owners, cfg.Limits),
		asanas:   service.NewAsanaService(gdb),
		cfg:      cfg,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
