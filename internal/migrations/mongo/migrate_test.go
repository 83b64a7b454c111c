package mongo

import (
	"reflect"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"servicelink/internal/migrations/mongo/validators"
	"servicelink/pkg/auth"
	"servicelink/pkg/model"
)

// bsonFields returns the stored field names of a model.
func bsonFields(v any) map[string]bool {
	fields := make(map[string]bool)
	t := reflect.TypeOf(v)
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("bson"), ",")
		if name != "" && name != "-" {
			fields[name] = true
		}
	}
	return fields
}

func TestValidatorsMatchModels(t *testing.T) {
	models := map[string]any{
		"Services": model.Service{},
		"Bookings": model.Booking{},
		"Users":    model.User{},
	}

	for _, def := range Collections() {
		t.Run(def.Name, func(t *testing.T) {
			m, ok := models[def.Name]
			if !ok {
				t.Fatalf("no model registered for collection %s", def.Name)
			}
			fields := bsonFields(m)

			schema := def.Validator["$jsonSchema"].(bson.M)
			for _, required := range schema["required"].([]string) {
				if !fields[required] {
					t.Errorf("required field %q is not stored by the model", required)
				}
			}
			for prop := range schema["properties"].(bson.M) {
				if !fields[prop] {
					t.Errorf("schema property %q is not stored by the model", prop)
				}
			}
			if len(def.Indexes) == 0 {
				t.Error("collection has no indexes")
			}
		})
	}
}

func TestEnumsMatchCode(t *testing.T) {
	bookingProps := validators.BookingValidator["$jsonSchema"].(bson.M)["properties"].(bson.M)
	statuses := bookingProps["status"].(bson.M)["enum"].([]string)
	if len(statuses) != len(model.AllBookingStatuses) {
		t.Fatalf("expected %d statuses, got %d", len(model.AllBookingStatuses), len(statuses))
	}
	for i, s := range model.AllBookingStatuses {
		if statuses[i] != string(s) {
			t.Errorf("status %d: expected %s, got %s", i, s, statuses[i])
		}
	}

	userProps := validators.UserValidator["$jsonSchema"].(bson.M)["properties"].(bson.M)
	roles := userProps["roles"].(bson.M)["items"].(bson.M)["enum"].([]string)
	if len(roles) != len(auth.AllRoles) {
		t.Fatalf("expected %d roles, got %d", len(auth.AllRoles), len(roles))
	}
	for i, r := range auth.AllRoles {
		if roles[i] != string(r) {
			t.Errorf("role %d: expected %s, got %s", i, r, roles[i])
		}
	}
}
