package handler

import (
	"errors"
	"fmt"
	"net/http"

	"servicelink/internal/services/service"
	"servicelink/internal/services/validator"
	"servicelink/pkg/auth"
	apperrors "servicelink/pkg/errors"
	httputil "servicelink/pkg/http"
	"servicelink/pkg/logger"
	"servicelink/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ServiceHandler struct {
	service service.ServiceCatalog
	auth    *auth.Middleware
	log     *logger.Logger
}

func NewServiceHandler(service service.ServiceCatalog, authMiddleware *auth.Middleware, log *logger.Logger) *ServiceHandler {
	return &ServiceHandler{
		service: service,
		auth:    authMiddleware,
		log:     log,
	}
}

func (h *ServiceHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/services", h.List)
	router.GET("/api/v1/services/mine", h.auth.Require(h.ListMine))
	router.GET("/api/v1/services/id/:id", h.GetByID)
	router.POST("/api/v1/services", h.auth.Require(h.Create))
	router.PATCH("/api/v1/services/id/:id", h.auth.Require(h.Edit))
	router.DELETE("/api/v1/services/id/:id", h.auth.Require(h.Delete))
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input model.ServiceInput
	if err := decodeServiceBody(r, &input); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	svc, err := h.service.Create(r.Context(), auth.ActorFromContext(r.Context()), &input)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, svc); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteList(w, services, len(services)); err != nil {
		h.log.Error("failed to write list response", "handler", "List", "operation", "WriteList", "error", err)
	}
}

func (h *ServiceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ServiceHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services, err := h.service.ListMine(r.Context(), auth.ActorFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteList(w, services, len(services)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListMine", "operation", "WriteList", "error", err)
	}
}

func (h *ServiceHandler) Edit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.ServiceUpdate
	if err := decodeServiceBody(r, &update); err != nil {
		h.writeError(w, "Edit", err)
		return
	}

	svc, err := h.service.Edit(r.Context(), auth.ActorFromContext(r.Context()), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Edit", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "Edit", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), auth.ActorFromContext(r.Context()), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

// decodeServiceBody reports an unparseable price as a field error, the same
// way the validator reports an out-of-range one.
func decodeServiceBody(r *http.Request, dst any) error {
	err := httputil.DecodeJSON(r, dst)
	if err == nil || !errors.Is(err, model.ErrInvalidMoney) {
		return err
	}
	return apperrors.Validation("Service validation failed", map[string]any{
		"fields": validator.ValidationErrors{{
			Field:   "price",
			Message: fmt.Sprintf("price must be an amount between %s and %s with at most two decimal places", model.MinPrice, model.MaxPrice),
		}},
	})
}

func (h *ServiceHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
