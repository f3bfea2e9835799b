package validators

import "go.mongodb.org/mongo-driver/bson"

const clockPattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`

var ScheduleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"user_id", "time_zone"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"time_zone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"availability": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"days", "start", "end"},
					"properties": bson.M{
						"days": bson.M{
							"bsonType": "array",
							"minItems": 1,
							"maxItems": 7,
							"items":    bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 6},
						},
						"start": bson.M{"bsonType": "string", "pattern": clockPattern},
						"end":   bson.M{"bsonType": "string", "pattern": clockPattern},
					},
				},
			},

			"date_overrides": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"date", "start", "end"},
					"properties": bson.M{
						"date":  bson.M{"bsonType": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
						"start": bson.M{"bsonType": "string", "pattern": clockPattern},
						"end":   bson.M{"bsonType": "string", "pattern": clockPattern},
					},
				},
			},

			"is_default": bson.M{"bsonType": "bool"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
