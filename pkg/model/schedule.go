package model

import "time"

// WeeklyHours is a recurring block of availability. Days use time.Weekday
// numbering (0 = Sunday). An End of "00:00", or one not after Start, runs to
// the end of the day.
type WeeklyHours struct {
	Days  []int  `json:"days" bson:"days" validate:"required,min=1,max=7,dive,min=0,max=6"`
	Start string `json:"start" bson:"start" validate:"required,valid_clock"`
	End   string `json:"end" bson:"end" validate:"required,valid_clock"`
}

// DateOverride replaces the weekly hours of a single date. Equal Start and End
// mark the date as unavailable.
type DateOverride struct {
	Date  string `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Start string `json:"start" bson:"start" validate:"required,valid_clock"`
	End   string `json:"end" bson:"end" validate:"required,valid_clock"`
}

type Schedule struct {
	ID            string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID        string         `json:"user_id" bson:"user_id" validate:"required"`
	Name          string         `json:"name" bson:"name" validate:"omitempty,max=100"`
	TimeZone      string         `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	Availability  []WeeklyHours  `json:"availability" bson:"availability" validate:"omitempty,dive"`
	DateOverrides []DateOverride `json:"date_overrides,omitempty" bson:"date_overrides,omitempty" validate:"omitempty,dive"`
	IsDefault     bool           `json:"is_default" bson:"is_default"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}
