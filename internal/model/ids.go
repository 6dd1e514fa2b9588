package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh 24-character hex ObjectID string.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed 24-character hex ObjectID.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
