package validators

import "go.mongodb.org/mongo-driver/bson"

var limitPolicySchema = bson.M{
	"bsonType": "object",
	"properties": bson.M{
		"scope":     bson.M{"enum": []string{"event_type", "user"}},
		"per_day":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
		"per_week":  bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
		"per_month": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
		"per_year":  bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
	},
}

var EventTypeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"title", "length_min", "before_buffer_min", "after_buffer_min"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"length_min": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"multiple_durations_min": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items":    bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
			},

			"multi_day_enabled": bson.M{"bsonType": "bool"},

			"before_buffer_min": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  1440,
			},

			"after_buffer_min": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  1440,
			},

			"seats_per_time_slot": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"booking_limits":  limitPolicySchema,
			"duration_limits": limitPolicySchema,

			"restriction_schedule_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"recurring": bson.M{
				"bsonType": "object",
				"required": []string{"frequency", "count"},
				"properties": bson.M{
					"frequency": bson.M{"enum": []string{"daily", "weekly", "monthly"}},
					"count":     bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 730},
				},
			},

			"time_zone":  bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
