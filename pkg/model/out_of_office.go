package model

import "time"

// OutOfOffice marks an absence. Non-blocking entries (for example a delegated
// calendar) excuse the busy times they cover instead of adding new ones.
type OutOfOffice struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string    `json:"user_id" bson:"user_id"`
	StartTime time.Time `json:"start_time" bson:"start_time"`
	EndTime   time.Time `json:"end_time" bson:"end_time"`
	Blocking  bool      `json:"blocking" bson:"blocking"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
}
