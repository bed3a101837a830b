package models

import "time"

// Token is the ledger record for an issued bearer token. Identity lives in
// the signed payload, not here; the ledger only answers whether this exact
// string is still usable. Rows are kept after revocation for audit.
type Token struct {
	BaseModel

	Token     string     `gorm:"uniqueIndex;not null;size:1024" json:"-"`
	Revoked   bool       `gorm:"default:false" json:"revoked"`
	RevokedOn *time.Time `json:"revoked_on"`
}
