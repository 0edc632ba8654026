package entity

// Contact is one direction of a contact relation; adding a contact writes
// both directions.
type Contact struct {
	BaseEntity
	OwnerID   string `json:"ownerId" gorm:"type:varchar(36);not null;uniqueIndex:idx_contact_owner_contact"`
	ContactID string `json:"contactId" gorm:"type:varchar(36);not null;uniqueIndex:idx_contact_owner_contact;index"`

	ContactUser User `json:"-" gorm:"foreignKey:ContactID;references:ID;constraint:OnDelete:CASCADE;"`
}
