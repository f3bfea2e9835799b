package model

import "time"

type LimitPolicy struct {
	Scope    string `json:"scope" bson:"scope" validate:"omitempty,oneof=event_type user"`
	PerDay   int    `json:"per_day,omitempty" bson:"per_day,omitempty" validate:"omitempty,min=0"`
	PerWeek  int    `json:"per_week,omitempty" bson:"per_week,omitempty" validate:"omitempty,min=0"`
	PerMonth int    `json:"per_month,omitempty" bson:"per_month,omitempty" validate:"omitempty,min=0"`
	PerYear  int    `json:"per_year,omitempty" bson:"per_year,omitempty" validate:"omitempty,min=0"`
}

type RecurringRule struct {
	Frequency string `json:"frequency" bson:"frequency" validate:"required,oneof=daily weekly monthly"`
	Count     int    `json:"count" bson:"count" validate:"required,min=1,max=730"`
}

type EventType struct {
	ID                    string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title                 string         `json:"title" bson:"title" validate:"required,min=1,max=200"`
	LengthMin             int            `json:"length_min" bson:"length_min" validate:"required,min=1,max=525600"`
	MultipleDurationsMin  []int          `json:"multiple_durations_min,omitempty" bson:"multiple_durations_min,omitempty" validate:"omitempty,max=20,dive,min=1"`
	MultiDayEnabled       bool           `json:"multi_day_enabled" bson:"multi_day_enabled"`
	BeforeBufferMin       int            `json:"before_buffer_min" bson:"before_buffer_min" validate:"min=0,max=1440"`
	AfterBufferMin        int            `json:"after_buffer_min" bson:"after_buffer_min" validate:"min=0,max=1440"`
	SeatsPerTimeSlot      *int           `json:"seats_per_time_slot,omitempty" bson:"seats_per_time_slot,omitempty" validate:"omitempty,min=1,max=1000"`
	BookingLimits         *LimitPolicy   `json:"booking_limits,omitempty" bson:"booking_limits,omitempty" validate:"omitempty"`
	DurationLimits        *LimitPolicy   `json:"duration_limits,omitempty" bson:"duration_limits,omitempty" validate:"omitempty"`
	RestrictionScheduleID *string        `json:"restriction_schedule_id,omitempty" bson:"restriction_schedule_id,omitempty" validate:"omitempty,mongodb"`
	Recurring             *RecurringRule `json:"recurring,omitempty" bson:"recurring,omitempty" validate:"omitempty"`
	TimeZone              string         `json:"time_zone,omitempty" bson:"time_zone,omitempty" validate:"omitempty,timezone"`
	CreatedAt             time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}
