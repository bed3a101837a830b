package models

// Guest is a named seat inside an invitation group. A guest may optionally
// be claimed by a registered user; unclaimed guests are offered during
// registration.
type Guest struct {
	BaseModel

	GroupID string `gorm:"type:uuid;not null;index" json:"group_id"`
	Name    string `gorm:"not null" json:"name"`

	UserID *string `gorm:"type:uuid;index" json:"user_id"`
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	IsComing bool `gorm:"default:false" json:"is_coming"`

	FirstCourseID   *string `gorm:"type:uuid" json:"first_course_id"`
	MainCourseID    *string `gorm:"type:uuid" json:"main_course_id"`
	DessertCourseID *string `gorm:"type:uuid" json:"dessert_course_id"`
}
