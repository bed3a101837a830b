package models

// InvitationType categorises how much of the event a group is invited to.
type InvitationType string

const (
	InvitationHouse   InvitationType = "HOUSE"
	InvitationWeekend InvitationType = "WEEKEND"
	InvitationDay     InvitationType = "DAY"
)

// ResponseType records a group's RSVP state.
type ResponseType string

const (
	ResponseNone      ResponseType = "NO_RESPONSE"
	ResponseConfirmed ResponseType = "CONFIRMED"
	ResponseDeclined  ResponseType = "DECLINED"
)

// InvitationGroup is the unit of invitation: a household or party sharing
// one registration code and one invitation.
type InvitationGroup struct {
	BaseModel

	FriendlyName     string `gorm:"uniqueIndex;not null" json:"name"`
	RegistrationCode string `gorm:"index;not null;size:16" json:"registration_code"`

	Invitation *Invitation `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"invitation,omitempty"`
	Guests     []Guest     `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"guests,omitempty"`
}

// Invitation holds a group's single RSVP.
type Invitation struct {
	BaseModel

	GroupID string `gorm:"type:uuid;not null;uniqueIndex" json:"group_id"`

	Type     InvitationType `gorm:"not null" json:"type"`
	Response ResponseType   `gorm:"not null;default:NO_RESPONSE" json:"response"`

	Requirements   string `gorm:"size:1000" json:"requirements"`
	StayingInHouse bool   `gorm:"default:false" json:"staying_in_house"`

	// Locked stops further guest edits once the couple finalises numbers.
	Locked bool `gorm:"default:false" json:"locked"`
}
