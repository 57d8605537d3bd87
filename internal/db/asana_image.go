package db

import "time"

// AsanaImage 定义挂载在体式记录上的图片模型。
// 旧版数据通过 pose_id 关联体式，迁移期间两列并存，读取时需兼容；
// (asana_id, display_order) 上的唯一索引保证同一体式下槽位不重复。
type AsanaImage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OwnerIdentity string    `gorm:"index;not null" json:"ownerIdentity"`
	AsanaID       *uint     `gorm:"index;uniqueIndex:idx_asana_images_slot" json:"asanaId"`
	LegacyPoseID  *uint     `gorm:"column:pose_id;index" json:"-"`
	DisplayOrder  int       `gorm:"not null;uniqueIndex:idx_asana_images_slot" json:"displayOrder"`
	URL           string    `gorm:"not null" json:"url"`
	Filename      string    `json:"filename"`
	Size          int64     `json:"size"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	AltText       string    `json:"altText"`
	ImageType     string    `json:"imageType"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RecordID 返回图片实际关联的体式 ID，兼容旧版外键列。
func (i AsanaImage) RecordID() *uint {
	if i.AsanaID != nil {
		return i.AsanaID
	}
	return i.LegacyPoseID
}
