package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Base заменяет gorm.Model, чтобы поля сериализовались в snake_case
type Base struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// IsDeleted reports whether the row is soft-deleted.
func (b Base) IsDeleted() bool {
	return b.DeletedAt.Valid
}

// UserProfile is created on the first successful identity exchange.
// Privilege is a bitmask decoded by the permissions package.
type UserProfile struct {
	Base
	Identity  string         `gorm:"uniqueIndex;size:64;not null" json:"-"`
	NickName  string         `json:"nick_name"`
	AvatarURL string         `json:"avatar_url"`
	Gender    int            `gorm:"default:0" json:"gender"`
	Phone     string         `json:"phone"`
	BirthDate *time.Time     `json:"birth_date,omitempty"`
	WeChat    string         `json:"wechat"`
	Mail      string         `json:"mail"`
	Country   string         `json:"country"`
	Province  string         `json:"province"`
	City      string         `json:"city"`
	Kind      string         `json:"kind"`
	Privilege int64          `gorm:"not null;default:0;index" json:"privilege"`
	SubField  datatypes.JSON `json:"sub_field"`
}

func (UserProfile) TableName() string { return "user_profiles" }

// IntervieweeView is the only part of a candidate profile an interviewer sees.
type IntervieweeView struct {
	ID       uint           `json:"id"`
	Province string         `json:"province"`
	SubField datatypes.JSON `json:"sub_field"`
}

func (u UserProfile) IntervieweeView() IntervieweeView {
	return IntervieweeView{ID: u.ID, Province: u.Province, SubField: u.SubField}
}

// FellowView is what members of the same enrollment cycle see of each other.
type FellowView struct {
	ID        uint   `json:"id"`
	NickName  string `json:"nick_name"`
	AvatarURL string `json:"avatar_url"`
	Gender    int    `json:"gender"`
	Province  string `json:"province"`
	City      string `json:"city"`
	Kind      string `json:"kind"`
}

func (u UserProfile) FellowView() FellowView {
	return FellowView{
		ID:        u.ID,
		NickName:  u.NickName,
		AvatarURL: u.AvatarURL,
		Gender:    u.Gender,
		Province:  u.Province,
		City:      u.City,
		Kind:      u.Kind,
	}
}
