package auth

import "servicelink/pkg/model"

type Action string

const (
	ActionCreateService   Action = "service:create"
	ActionListMyServices  Action = "service:list_mine"
	ActionEditService     Action = "service:edit"
	ActionDeleteService   Action = "service:delete"
	ActionRequestBooking  Action = "booking:request"
	ActionListMyBookings  Action = "booking:list_mine"
	ActionListIncoming    Action = "booking:list_incoming"
	ActionViewBooking     Action = "booking:view"
	ActionAcceptBooking   Action = "booking:accept"
	ActionRejectBooking   Action = "booking:reject"
	ActionCancelBooking   Action = "booking:cancel"
	ActionBookingDraft    Action = "booking:draft"
	ActionViewAllServices Action = "service:list"
)

// Resource is the ownership data an action is checked against.
type Resource struct {
	ProviderID string
	CustomerID string
}

var providerRoles = []Role{RoleProvider, RoleAdmin, RoleMasterDemo}
var elevatedRoles = []Role{RoleAdmin, RoleMasterDemo}

func ServiceResource(s *model.Service) Resource {
	return Resource{ProviderID: s.ProviderID}
}

func BookingResource(b *model.Booking) Resource {
	return Resource{ProviderID: b.ProviderID, CustomerID: b.CustomerID}
}

// CanAct is the single authorization predicate. Every private read and every
// mutation asks it before touching data.
func CanAct(actor *Actor, action Action, res Resource) bool {
	if action == ActionViewAllServices {
		return true
	}
	if !actor.IsAuthenticated() {
		return false
	}

	switch action {
	case ActionCreateService, ActionListIncoming:
		return actor.HasAnyRole(providerRoles...)

	case ActionListMyServices, ActionRequestBooking, ActionListMyBookings, ActionBookingDraft:
		return true

	case ActionEditService, ActionDeleteService:
		return actor.ID == res.ProviderID || actor.HasAnyRole(elevatedRoles...)

	case ActionAcceptBooking, ActionRejectBooking:
		// Admin/MasterDemo pass the role gate but must still own the booking.
		return actor.HasAnyRole(providerRoles...) && actor.ID == res.ProviderID

	case ActionCancelBooking:
		return actor.ID == res.CustomerID

	case ActionViewBooking:
		return actor.ID == res.CustomerID || actor.ID == res.ProviderID
	}

	return false
}
