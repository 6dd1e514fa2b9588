package model

import (
	"time"

	"gorm.io/gorm"
)

// Token stores the single active access/refresh pair of a user. The unique index on UserID keeps
// it at one row per user; issuing a new pair overwrites the previous one.
type Token struct {
	ID           string    `gorm:"type:char(24);primaryKey" json:"id"`
	UserID       string    `gorm:"type:char(24);uniqueIndex;not null" json:"userId"`
	User         *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AccessToken  string    `gorm:"type:text;not null" json:"accessToken"`
	RefreshToken string    `gorm:"type:text;not null;index" json:"refreshToken"`
	ExpiresAt    time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t *Token) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}
