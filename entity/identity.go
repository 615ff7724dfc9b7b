package entity

// Identity is a verified user as returned by the identity provider.
type Identity struct {
	ID          string `json:"id" bson:"_id"`
	DisplayName string `json:"display_name" bson:"display_name"`
	Email       string `json:"email" bson:"email"`
}
