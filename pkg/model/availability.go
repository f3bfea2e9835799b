package model

type CandidateUserRequest struct {
	ID    string `json:"id" validate:"required,min=1,max=128"`
	Fixed bool   `json:"fixed"`
}

type AvailabilityCheckRequest struct {
	EventTypeID string                 `json:"event_type_id" validate:"required,mongodb"`
	Start       string                 `json:"start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	End         string                 `json:"end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	TimeZone    string                 `json:"time_zone" validate:"omitempty,timezone"`
	Users       []CandidateUserRequest `json:"users" validate:"required,min=1,max=100,unique=ID,dive"`
}

type ValidateLengthRequest struct {
	EventTypeID string `json:"event_type_id" validate:"required,mongodb"`
	Start       string `json:"start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	End         string `json:"end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}
