package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/ledgerstack/ledgerstack/internal/utils"
)

// UserProfile holds the registered user and their Google credential. The
// identity itself lives with the external auth provider; we only keep its uid.
type UserProfile struct {
	ID            string `gorm:"column:id;type:varchar(50);primaryKey"`
	FirebaseUID   string `gorm:"column:firebase_uid;type:varchar(128);uniqueIndex;not null"`
	FullName      string `gorm:"column:full_name;type:varchar(100)"`
	Email         string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	Occupation    string `gorm:"column:occupation;type:varchar(100)"`
	Salary        int    `gorm:"column:salary"`
	MaritalStatus string `gorm:"column:marital_status;type:varchar(20)"`
	Gender        string `gorm:"column:gender;type:varchar(10)"`

	GoogleAccessToken  string `gorm:"column:google_access_token;type:text"`
	GoogleRefreshToken string `gorm:"column:google_refresh_token;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

func (u *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = utils.GenerateNanoIDWithPrefix("user", 24)
	}
	u.CreatedAt = utils.Now()
	return nil
}

// HasGoogleCredential reports whether the profile can be synced at all.
func (u *UserProfile) HasGoogleCredential() bool {
	return u.GoogleAccessToken != "" && u.GoogleRefreshToken != ""
}
