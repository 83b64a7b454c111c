//go:build integration

package testutil

import (
	"fmt"
	"time"

	"servicelink/pkg/auth"
)

var (
	Provider      = &auth.Actor{ID: "it-provider-1", Email: "provider1@example.com", Roles: []auth.Role{auth.RoleUser, auth.RoleProvider}}
	OtherProvider = &auth.Actor{ID: "it-provider-2", Email: "provider2@example.com", Roles: []auth.Role{auth.RoleUser, auth.RoleProvider}}
	Customer      = &auth.Actor{ID: "it-customer-1", Email: "customer1@example.com", Roles: []auth.Role{auth.RoleUser}}
)

// ServiceBuilder produces create-service payloads.
type ServiceBuilder struct {
	body map[string]any
}

func NewServiceBuilder() *ServiceBuilder {
	return &ServiceBuilder{
		body: map[string]any{
			"title":       "Test Haircut",
			"description": "Wash and cut",
			"category":    "Hair",
			"price":       "25.00",
		},
	}
}

func (b *ServiceBuilder) WithTitle(title string) *ServiceBuilder {
	b.body["title"] = title
	return b
}

func (b *ServiceBuilder) WithPrice(price string) *ServiceBuilder {
	b.body["price"] = price
	return b
}

func (b *ServiceBuilder) Build() map[string]any {
	return b.body
}

// BookingRequest returns a request payload for serviceID daysAhead days
// from today (UTC).
func BookingRequest(serviceID string, daysAhead int) map[string]any {
	return map[string]any{
		"service_id":    serviceID,
		"requested_for": time.Now().UTC().AddDate(0, 0, daysAhead).Format("2006-01-02"),
		"notes":         fmt.Sprintf("integration booking +%dd", daysAhead),
	}
}
