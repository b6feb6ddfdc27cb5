package models

// Department is reference data describing a hospital department patients can
// book against. It carries no workflow state.
type Department struct {
	BaseModel
	Name           string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Description    string `gorm:"type:text" json:"description"`
	HeadDoctor     string `gorm:"size:255" json:"headDoctor"`
	AvailableDays  string `gorm:"size:255;default:'Monday-Saturday'" json:"availableDays"`
	AvailableHours string `gorm:"size:255;default:'8:00 AM - 2:00 PM'" json:"availableHours"`
	IsActive       bool   `gorm:"default:true;index" json:"isActive"`
}
