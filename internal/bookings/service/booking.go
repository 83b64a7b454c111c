package service

import (
	"context"
	"errors"
	bookingserrors "servicelink/internal/bookings/errors"
	"servicelink/internal/bookings/repository"
	"servicelink/internal/bookings/validator"
	"servicelink/internal/events"
	serviceserrors "servicelink/internal/services/errors"
	"servicelink/pkg/auth"
	"servicelink/pkg/config"
	apperrors "servicelink/pkg/errors"
	"servicelink/pkg/metrics"
	"servicelink/pkg/model"
	"servicelink/pkg/sanitizer"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const publishTimeout = 5 * time.Second

type BookingLifecycle interface {
	Draft(ctx context.Context, actor *auth.Actor, serviceID string) (*model.BookingDraft, error)
	RequestBooking(ctx context.Context, actor *auth.Actor, req *model.BookingRequest) (*model.Booking, error)
	ListMine(ctx context.Context, actor *auth.Actor) ([]*model.BookingListItem, error)
	ListIncoming(ctx context.Context, actor *auth.Actor) ([]*model.BookingListItem, error)
	GetByID(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error)
	Accept(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error)
	Reject(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error)
	Cancel(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error)
}

// ServiceStore is the part of the service catalog storage bookings need.
type ServiceStore interface {
	FindByID(ctx context.Context, id string) (*model.Service, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Service, error)
	IncrementBookingCount(ctx context.Context, id string) error
}

type UserDirectory interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
}

type bookingLifecycle struct {
	repo      repository.BookingRepository
	services  ServiceStore
	users     UserDirectory
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingLifecycle(
	repo repository.BookingRepository,
	services ServiceStore,
	users UserDirectory,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingLifecycle {
	return &bookingLifecycle{
		repo:      repo,
		services:  services,
		users:     users,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// transition describes one way out of the pending state.
type transition struct {
	action    auth.Action
	to        model.BookingStatus
	forbidden string
	stale     string
}

var (
	acceptTransition = transition{
		action:    auth.ActionAcceptBooking,
		to:        model.BookingAccepted,
		forbidden: "Only the provider of this booking can accept it",
		stale:     "Only pending bookings can be accepted.",
	}
	rejectTransition = transition{
		action:    auth.ActionRejectBooking,
		to:        model.BookingRejected,
		forbidden: "Only the provider of this booking can reject it",
		stale:     "Only pending bookings can be rejected.",
	}
	cancelTransition = transition{
		action:    auth.ActionCancelBooking,
		to:        model.BookingCancelled,
		forbidden: "Only the customer who requested this booking can cancel it",
		stale:     "Only pending bookings can be cancelled.",
	}
)

func (s *bookingLifecycle) Draft(ctx context.Context, actor *auth.Actor, serviceID string) (*model.BookingDraft, error) {
	if !auth.CanAct(actor, auth.ActionBookingDraft, auth.Resource{}) {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	svc, err := s.loadService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, apperrors.InvalidOperation("This service is not accepting bookings")
	}

	tomorrow := model.DateOnly(s.now()).AddDate(0, 0, 1)
	return &model.BookingDraft{
		ServiceID:    svc.ID,
		ServiceTitle: svc.Title,
		RequestedFor: tomorrow.Format(model.DateLayout),
	}, nil
}

func (s *bookingLifecycle) RequestBooking(ctx context.Context, actor *auth.Actor, req *model.BookingRequest) (*model.Booking, error) {
	if !auth.CanAct(actor, auth.ActionRequestBooking, auth.Resource{}) {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if req == nil {
		return nil, apperrors.InvalidInput("Booking request cannot be empty")
	}

	req.Notes = sanitizer.NormalizeMultiline(req.Notes)
	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, s.validationError(err)
	}

	svc, err := s.loadService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	requestedFor, err := time.Parse(model.DateLayout, req.RequestedFor)
	if err != nil {
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	if err := s.validator.ValidateRequestedFor(requestedFor, now); err != nil {
		return nil, s.validationError(err)
	}

	if svc.ProviderID == "" {
		s.cfg.Log.Error("Service has no provider", "service_id", svc.ID)
		return nil, apperrors.InvalidOperation("This service has no provider and cannot be booked")
	}
	if !svc.IsActive {
		return nil, apperrors.InvalidOperation("This service is not accepting bookings")
	}

	booking := model.NewBooking(svc, actor.ID, requestedFor, req.Notes, now)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The transaction body may be retried; never reuse an id from a
		// previous attempt.
		booking.ID = ""
		if err := s.services.IncrementBookingCount(sessCtx, svc.ID); err != nil {
			return err
		}
		return s.repo.Create(sessCtx, booking)
	})
	if err != nil {
		switch {
		case errors.Is(err, serviceserrors.ErrNotBookable):
			return nil, apperrors.InvalidOperation("This service is not accepting bookings")
		case errors.Is(err, serviceserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Service", svc.ID)
		default:
			s.cfg.Log.Error("Failed to create booking",
				"service_id", svc.ID,
				"customer_id", actor.ID,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to create booking", err)
		}
	}

	metrics.IncBookingRequested()
	s.cfg.Log.Info("Booking requested",
		"id", booking.ID,
		"service_id", booking.ServiceID,
		"customer_id", booking.CustomerID,
		"provider_id", booking.ProviderID,
		"requested_for", req.RequestedFor,
	)
	s.publish(ctx, model.NewBookingEvent(model.EventBookingRequested, booking, svc.Title, now))

	return booking, nil
}

func (s *bookingLifecycle) ListMine(ctx context.Context, actor *auth.Actor) ([]*model.BookingListItem, error) {
	if !auth.CanAct(actor, auth.ActionListMyBookings, auth.Resource{}) {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	bookings, err := s.repo.FindByCustomer(ctx, actor.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to list customer bookings", "customer_id", actor.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	titles, err := s.serviceTitles(ctx, bookings)
	if err != nil {
		return nil, err
	}

	items := make([]*model.BookingListItem, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, listItem(b, titles[b.ServiceID], ""))
	}
	return items, nil
}

func (s *bookingLifecycle) ListIncoming(ctx context.Context, actor *auth.Actor) ([]*model.BookingListItem, error) {
	if !actor.IsAuthenticated() {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if !auth.CanAct(actor, auth.ActionListIncoming, auth.Resource{}) {
		return nil, apperrors.Forbidden("Only providers have incoming bookings")
	}

	bookings, err := s.repo.FindPendingByProvider(ctx, actor.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to list incoming bookings", "provider_id", actor.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	var titles map[string]string
	var emails map[string]string
	var errTitles error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		titles, errTitles = s.serviceTitles(ctx, bookings)
	}()

	go func() {
		defer wg.Done()
		emails = s.customerEmails(ctx, bookings)
	}()

	wg.Wait()
	if errTitles != nil {
		return nil, errTitles
	}

	items := make([]*model.BookingListItem, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, listItem(b, titles[b.ServiceID], emails[b.CustomerID]))
	}
	return items, nil
}

func (s *bookingLifecycle) GetByID(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
	if !actor.IsAuthenticated() {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAct(actor, auth.ActionViewBooking, auth.BookingResource(booking)) {
		return nil, apperrors.Forbidden("You cannot view this booking")
	}
	return booking, nil
}

func (s *bookingLifecycle) Accept(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
	return s.transition(ctx, actor, id, acceptTransition)
}

func (s *bookingLifecycle) Reject(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
	return s.transition(ctx, actor, id, rejectTransition)
}

func (s *bookingLifecycle) Cancel(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error) {
	return s.transition(ctx, actor, id, cancelTransition)
}

func (s *bookingLifecycle) transition(ctx context.Context, actor *auth.Actor, id string, t transition) (*model.Booking, error) {
	if !actor.IsAuthenticated() {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAct(actor, t.action, auth.BookingResource(booking)) {
		s.cfg.Log.Warn("Booking transition forbidden",
			"id", id,
			"action", t.action,
			"actor_id", actor.ID,
		)
		return nil, apperrors.Forbidden(t.forbidden)
	}

	if !booking.Status.CanTransitionTo(t.to) {
		metrics.IncBookingStale(string(t.action))
		return nil, apperrors.StaleState(t.stale)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	if err := s.repo.TransitionFromPending(ctx, id, t.to, now); err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrStatusChanged):
			metrics.IncBookingStale(string(t.action))
			s.cfg.Log.Warn("Booking changed before transition", "id", id, "action", t.action)
			return nil, apperrors.StaleState(t.stale)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		default:
			s.cfg.Log.Error("Failed to update booking status", "id", id, "to", t.to, "error", err)
			return nil, apperrors.Internal("Failed to update booking", err)
		}
	}

	booking.Status = t.to
	booking.UpdatedAt = now

	metrics.IncBookingTransition(string(t.to))
	s.cfg.Log.Info("Booking status changed",
		"id", id,
		"status", t.to,
		"actor_id", actor.ID,
	)

	title := ""
	if svc, err := s.services.FindByID(ctx, booking.ServiceID); err == nil {
		title = svc.Title
	}
	s.publish(ctx, model.NewBookingEvent(model.EventTypeForStatus(t.to), booking, title, now))

	return booking, nil
}

// --- Helpers ---

func (s *bookingLifecycle) load(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingLifecycle) loadService(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, serviceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, serviceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		s.cfg.Log.Error("Failed to retrieve service", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}
	return svc, nil
}

func (s *bookingLifecycle) serviceTitles(ctx context.Context, bookings []*model.Booking) (map[string]string, error) {
	titles := make(map[string]string)
	ids := uniqueIDs(bookings, func(b *model.Booking) string { return b.ServiceID })
	if len(ids) == 0 {
		return titles, nil
	}

	services, err := s.services.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to load services for bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	for _, svc := range services {
		titles[svc.ID] = svc.Title
	}
	return titles, nil
}

// customerEmails is best effort: a missing directory entry leaves the email
// blank rather than failing the listing.
func (s *bookingLifecycle) customerEmails(ctx context.Context, bookings []*model.Booking) map[string]string {
	emails := make(map[string]string)
	ids := uniqueIDs(bookings, func(b *model.Booking) string { return b.CustomerID })
	if len(ids) == 0 {
		return emails
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Warn("Failed to load customers for bookings", "error", err)
		return emails
	}
	for _, u := range users {
		emails[u.ID] = u.Email
	}
	return emails
}

// publish runs after the booking is committed. Failures are logged and
// never change the outcome of the request.
func (s *bookingLifecycle) publish(ctx context.Context, event model.BookingEvent) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"booking_id", event.BookingID,
			"event_type", event.Type,
			"error", err,
		)
	}
}

func (s *bookingLifecycle) validationError(err error) error {
	s.cfg.Log.Warn("Booking validation failed", "error", err)
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		return apperrors.Validation("Booking validation failed", map[string]any{"fields": fields})
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}

func listItem(b *model.Booking, title, email string) *model.BookingListItem {
	return &model.BookingListItem{
		BookingID:     b.ID,
		ServiceID:     b.ServiceID,
		ServiceTitle:  title,
		RequestedFor:  b.RequestedFor,
		CreatedAt:     b.CreatedAt,
		Status:        b.Status,
		Notes:         b.Notes,
		CustomerEmail: email,
	}
}

func uniqueIDs(bookings []*model.Booking, key func(*model.Booking) string) []string {
	seen := make(map[string]struct{}, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		id := key(b)
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
