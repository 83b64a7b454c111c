package handler

import (
	"context"
	"net/http"

	"servicelink/internal/bookings/service"
	"servicelink/pkg/auth"
	httputil "servicelink/pkg/http"
	"servicelink/pkg/logger"
	"servicelink/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingLifecycle
	auth    *auth.Middleware
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingLifecycle, authMiddleware *auth.Middleware, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		auth:    authMiddleware,
		log:     log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/services/id/:id/booking-draft", h.auth.Require(h.Draft))
	router.POST("/api/v1/bookings", h.auth.Require(h.RequestBooking))
	router.GET("/api/v1/bookings/mine", h.auth.Require(h.ListMine))
	router.GET("/api/v1/bookings/incoming", h.auth.Require(h.ListIncoming))
	router.GET("/api/v1/bookings/id/:id", h.auth.Require(h.GetByID))
	router.POST("/api/v1/bookings/id/:id/accept", h.auth.Require(h.Accept))
	router.POST("/api/v1/bookings/id/:id/reject", h.auth.Require(h.Reject))
	router.POST("/api/v1/bookings/id/:id/cancel", h.auth.Require(h.Cancel))
}

func (h *BookingHandler) Draft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	draft, err := h.service.Draft(r.Context(), auth.ActorFromContext(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Draft", err)
		return
	}

	if err := httputil.WriteSuccess(w, draft); err != nil {
		h.log.Error("failed to write success response", "handler", "Draft", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RequestBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "RequestBooking", err)
		return
	}

	booking, err := h.service.RequestBooking(r.Context(), auth.ActorFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "RequestBooking", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "RequestBooking", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	items, err := h.service.ListMine(r.Context(), auth.ActorFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteList(w, items, len(items)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListMine", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) ListIncoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	items, err := h.service.ListIncoming(r.Context(), auth.ActorFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "ListIncoming", err)
		return
	}

	if err := httputil.WriteList(w, items, len(items)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListIncoming", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), auth.ActorFromContext(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Accept", h.service.Accept)
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Reject", h.service.Reject)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Cancel", h.service.Cancel)
}

type transitionFunc func(ctx context.Context, actor *auth.Actor, id string) (*model.Booking, error)

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params, name string, fn transitionFunc) {
	booking, err := fn(r.Context(), auth.ActorFromContext(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
