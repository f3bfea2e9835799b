package validators

import "go.mongodb.org/mongo-driver/bson"

var OutOfOfficeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"user_id", "start_time", "end_time", "blocking"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "objectId"},
			"user_id":    bson.M{"bsonType": "string", "minLength": 1},
			"start_time": bson.M{"bsonType": "date"},
			"end_time":   bson.M{"bsonType": "date"},
			"blocking":   bson.M{"bsonType": "bool"},
			"reason":     bson.M{"bsonType": "string", "maxLength": 200},
		},
	},
}
