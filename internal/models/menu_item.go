package models

// MenuCourse identifies which course a menu item belongs to.
type MenuCourse string

const (
	CourseStarter MenuCourse = "STARTER"
	CourseMain    MenuCourse = "MAIN"
	CourseDessert MenuCourse = "DESSERT"
)

// MenuItem is a dish guests can pick for one of their courses.
type MenuItem struct {
	BaseModel

	Course         MenuCourse `gorm:"not null;index" json:"course"`
	Name           string     `gorm:"not null" json:"name"`
	Description    string     `gorm:"size:1000" json:"description"`
	GlutenFree     bool       `gorm:"default:false" json:"gluten_free"`
	Vegetarian     bool       `gorm:"default:false" json:"vegetarian"`
	AdditionalInfo string     `gorm:"size:1000" json:"additional_info"`
}
