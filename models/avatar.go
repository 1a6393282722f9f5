// models/avatar.go
package models

// Avatar kinds.
const (
	AvatarUpload   = "upload"
	AvatarInitials = "initials"
	AvatarIcon     = "icon"
)

// Avatar is a per-user profile image: a base64 data URL for uploads,
// the initials text or an icon name otherwise.
type Avatar struct {
	UserID          string `json:"userId"`
	Type            string `json:"type"`
	Data            string `json:"data"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// AvatarRequest sets an initials or icon avatar via JSON.
type AvatarRequest struct {
	Type            string `json:"type" validate:"required,oneof=initials icon"`
	Data            string `json:"data" validate:"required"`
	BackgroundColor string `json:"backgroundColor"`
}
