package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Video struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Title        string    `gorm:"type:varchar(255);not null"`
	Description  string    `gorm:"type:text"`
	ThumbnailURL *string   `gorm:"type:varchar(1024)"`
	VideoURL     *string   `gorm:"type:varchar(1024)"`
	VideoKey     *string   `gorm:"type:varchar(512)"` // object key behind VideoURL
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Video) TableName() string { return "videos" }

func (v *Video) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}

// Clone returns a copy that shares no pointers with v.
func (v *Video) Clone() *Video {
	c := *v
	c.ThumbnailURL = cloneString(v.ThumbnailURL)
	c.VideoURL = cloneString(v.VideoURL)
	c.VideoKey = cloneString(v.VideoKey)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
