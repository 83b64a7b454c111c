package service

import (
	"context"
	"errors"
	serviceserrors "servicelink/internal/services/errors"
	"servicelink/internal/services/repository"
	"servicelink/internal/services/validator"
	"servicelink/pkg/auth"
	"servicelink/pkg/config"
	apperrors "servicelink/pkg/errors"
	"servicelink/pkg/metrics"
	"servicelink/pkg/model"
	"servicelink/pkg/sanitizer"
	"time"
)

type ServiceCatalog interface {
	Create(ctx context.Context, actor *auth.Actor, input *model.ServiceInput) (*model.Service, error)
	List(ctx context.Context) ([]*model.Service, error)
	GetByID(ctx context.Context, id string) (*model.Service, error)
	ListMine(ctx context.Context, actor *auth.Actor) ([]*model.Service, error)
	Edit(ctx context.Context, actor *auth.Actor, id string, update *model.ServiceUpdate) (*model.Service, error)
	Delete(ctx context.Context, actor *auth.Actor, id string) error
}

type serviceCatalog struct {
	repo      repository.ServiceRepository
	validator *validator.ServiceValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewServiceCatalog(
	repo repository.ServiceRepository,
	validator *validator.ServiceValidator,
	cfg *config.Config,
) ServiceCatalog {
	return &serviceCatalog{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *serviceCatalog) Create(ctx context.Context, actor *auth.Actor, input *model.ServiceInput) (*model.Service, error) {
	if !actor.IsAuthenticated() {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if !auth.CanAct(actor, auth.ActionCreateService, auth.Resource{}) {
		s.cfg.Log.Warn("Service creation forbidden", "actor_id", actorID(actor))
		return nil, apperrors.Forbidden("Only providers can create services")
	}
	if input == nil {
		return nil, apperrors.InvalidInput("Service input cannot be empty")
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	svc := &model.Service{
		ProviderID:  actor.ID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Price:       input.Price,
		IsActive:    true,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.sanitize(svc)
	if err := s.validate(svc); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create service", "provider_id", actor.ID, "error", err)
		return nil, apperrors.Internal("Failed to create service", err)
	}

	metrics.IncServiceCreated()
	s.cfg.Log.Info("Service created successfully",
		"id", svc.ID,
		"provider_id", svc.ProviderID,
		"title", svc.Title,
	)
	return svc, nil
}

func (s *serviceCatalog) List(ctx context.Context) ([]*model.Service, error) {
	services, err := s.repo.FindActive(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list services", "error", err)
		return nil, apperrors.Internal("Failed to retrieve services", err)
	}
	return services, nil
}

func (s *serviceCatalog) GetByID(ctx context.Context, id string) (*model.Service, error) {
	return s.load(ctx, id)
}

func (s *serviceCatalog) ListMine(ctx context.Context, actor *auth.Actor) ([]*model.Service, error) {
	if !auth.CanAct(actor, auth.ActionListMyServices, auth.Resource{}) {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	services, err := s.repo.FindByProvider(ctx, actor.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to list provider services", "provider_id", actor.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve services", err)
	}
	return services, nil
}

func (s *serviceCatalog) Edit(ctx context.Context, actor *auth.Actor, id string, update *model.ServiceUpdate) (*model.Service, error) {
	if update == nil || update.IsEmpty() {
		return nil, apperrors.InvalidInput("Update must change at least one field")
	}

	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAct(actor, auth.ActionEditService, auth.ServiceResource(existing)) {
		s.cfg.Log.Warn("Service edit forbidden", "id", id, "actor_id", actorID(actor))
		return nil, apperrors.Forbidden("You cannot edit this service")
	}

	expectedVersion := existing.Version
	if update.Version != nil {
		expectedVersion = *update.Version
	}

	merged := update.ApplyTo(existing)
	merged.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateIfVersion(ctx, merged, expectedVersion); err != nil {
		switch {
		case errors.Is(err, serviceserrors.ErrVersionMismatch):
			metrics.IncServiceConflict("version")
			s.cfg.Log.Warn("Service edit lost a concurrent update",
				"id", id,
				"expected_version", expectedVersion,
			)
			return nil, apperrors.ConcurrencyConflict("The service was changed by someone else. Reload and try again.")
		case errors.Is(err, serviceserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Service", id)
		default:
			s.cfg.Log.Error("Failed to update service", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to update service", err)
		}
	}

	s.cfg.Log.Info("Service updated successfully", "id", id, "version", merged.Version)
	return merged, nil
}

func (s *serviceCatalog) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanAct(actor, auth.ActionDeleteService, auth.ServiceResource(existing)) {
		s.cfg.Log.Warn("Service delete forbidden", "id", id, "actor_id", actorID(actor))
		return apperrors.Forbidden("You cannot delete this service")
	}

	if err := s.repo.DeleteIfUnreferenced(ctx, id); err != nil {
		switch {
		case errors.Is(err, serviceserrors.ErrHasBookings):
			metrics.IncServiceConflict("has_bookings")
			s.cfg.Log.Warn("Service delete blocked by bookings", "id", id)
			return apperrors.Conflict("This service has bookings and cannot be deleted. Deactivate it instead.")
		case errors.Is(err, serviceserrors.ErrNotFound):
			return apperrors.NotFoundWithID("Service", id)
		default:
			s.cfg.Log.Error("Failed to delete service", "id", id, "error", err)
			return apperrors.Internal("Failed to delete service", err)
		}
	}

	metrics.IncServiceDeleted()
	s.cfg.Log.Info("Service deleted successfully", "id", id, "actor_id", actor.ID)
	return nil
}

// --- Helpers ---

func (s *serviceCatalog) load(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, id)
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

func (s *serviceCatalog) sanitize(svc *model.Service) {
	svc.Title = sanitizer.NormalizeTitle(svc.Title)
	svc.Description = sanitizer.NormalizeMultiline(svc.Description)
	svc.Category = sanitizer.NormalizeCategory(svc.Category)
}

func (s *serviceCatalog) validate(svc *model.Service) error {
	if err := s.validator.Validate(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed", "error", err)
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			return apperrors.Validation("Service validation failed", map[string]any{"fields": fields})
		}
		return apperrors.Validation("Service validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func actorID(actor *auth.Actor) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}
