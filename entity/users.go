package entity

type User struct {
	BaseEntity
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	FirstName  string `json:"firstName" gorm:"type:varchar(100)"`
	LastName   string `json:"lastName" gorm:"type:varchar(100)"`
	Bio        string `json:"bio" gorm:"type:text"`
	Avatar     string `json:"avatar,omitempty" gorm:"type:text"`
	IsVerified bool   `json:"isVerified" gorm:"default:false"`
}
