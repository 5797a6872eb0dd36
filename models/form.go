package models

import "time"

// Form is the owned collection of questions. FriendlyID is the public
// identifier used in URLs; it is generated once from the title and never
// regenerated.
type Form struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	PrimaryColor string    `gorm:"size:20" json:"primary_color"`
	Enable       bool      `gorm:"not null;default:false" json:"enable"`
	FriendlyID   string    `gorm:"size:255;uniqueIndex;not null" json:"friendly_id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Questions []Question `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"-"`
	Answers   []Answer   `gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" json:"-"`
}

// OwnedBy reports whether userID created the form.
func (f *Form) OwnedBy(userID uint) bool {
	return f.UserID != 0 && f.UserID == userID
}

// VisibleTo reports whether the form may be shown to userID (0 = anonymous).
func (f *Form) VisibleTo(userID uint) bool {
	return f.Enable || f.OwnedBy(userID)
}
