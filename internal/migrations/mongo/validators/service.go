package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"provider_id",
			"title",
			"price",
			"is_active",
			"booking_count",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"provider_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"category": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			// Price is stored in cents.
			"price": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  0,
				"maximum":  999999999,
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"booking_count": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  0,
			},

			"version": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
