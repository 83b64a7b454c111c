package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"servicelink/pkg/auth"
	apperrors "servicelink/pkg/errors"
	"servicelink/pkg/logger"
	"servicelink/pkg/model"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockServiceCatalog struct {
	createFunc func(ctx context.Context, actor *auth.Actor, input *model.ServiceInput) (*model.Service, error)
	listFunc   func(ctx context.Context) ([]*model.Service, error)
	editFunc   func(ctx context.Context, actor *auth.Actor, id string, update *model.ServiceUpdate) (*model.Service, error)
	deleteFunc func(ctx context.Context, actor *auth.Actor, id string) error
}

func (m *mockServiceCatalog) Create(ctx context.Context, actor *auth.Actor, input *model.ServiceInput) (*model.Service, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, actor, input)
	}
	return &model.Service{ID: "s1", ProviderID: actor.ID, Title: input.Title}, nil
}

func (m *mockServiceCatalog) List(ctx context.Context) ([]*model.Service, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*model.Service{}, nil
}

func (m *mockServiceCatalog) GetByID(ctx context.Context, id string) (*model.Service, error) {
	return nil, apperrors.NotFoundWithID("Service", id)
}

func (m *mockServiceCatalog) ListMine(ctx context.Context, actor *auth.Actor) ([]*model.Service, error) {
	return []*model.Service{}, nil
}

func (m *mockServiceCatalog) Edit(ctx context.Context, actor *auth.Actor, id string, update *model.ServiceUpdate) (*model.Service, error) {
	if m.editFunc != nil {
		return m.editFunc(ctx, actor, id, update)
	}
	return &model.Service{ID: id}, nil
}

func (m *mockServiceCatalog) Delete(ctx context.Context, actor *auth.Actor, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, actor, id)
	}
	return nil
}

type stubVerifier map[string]*auth.Actor

func (v stubVerifier) Verify(token string) (*auth.Actor, error) {
	if actor, ok := v[token]; ok {
		return actor, nil
	}
	return nil, auth.ErrInvalidToken
}

var providerActor = &auth.Actor{ID: "provider-1", Roles: []auth.Role{auth.RoleProvider}}

func newTestRouter(svc *mockServiceCatalog) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	mw := auth.NewMiddleware(stubVerifier{"provider-token": providerActor}, log)

	router := httprouter.New()
	NewServiceHandler(svc, mw, log).RegisterRoutes(router)
	return router
}

func doRequest(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestList_IsPublic(t *testing.T) {
	router := newTestRouter(&mockServiceCatalog{
		listFunc: func(ctx context.Context) ([]*model.Service, error) {
			return []*model.Service{{ID: "s1", Title: "Haircut", Price: 2500, IsActive: true}}, nil
		},
	})

	w := doRequest(router, http.MethodGet, "/api/v1/services", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data []struct {
			ID    string `json:"id"`
			Price string `json:"price"`
		} `json:"data"`
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Data[0].Price != "25.00" {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(&mockServiceCatalog{})

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/v1/services", `{"title":"X"}`},
		{http.MethodGet, "/api/v1/services/mine", ""},
		{http.MethodPatch, "/api/v1/services/id/s1", `{"title":"X"}`},
		{http.MethodDelete, "/api/v1/services/id/s1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.path, "bad-token", tt.body)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestCreate_PassesActorAndReturns201(t *testing.T) {
	var gotActor *auth.Actor
	var gotInput *model.ServiceInput
	router := newTestRouter(&mockServiceCatalog{
		createFunc: func(ctx context.Context, actor *auth.Actor, input *model.ServiceInput) (*model.Service, error) {
			gotActor, gotInput = actor, input
			return &model.Service{ID: "s1", ProviderID: actor.ID, Title: input.Title, Price: input.Price}, nil
		},
	})

	w := doRequest(router, http.MethodPost, "/api/v1/services", "provider-token", `{"title":"Haircut","price":"25.50"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotActor == nil || gotActor.ID != providerActor.ID {
		t.Errorf("actor not propagated: %+v", gotActor)
	}
	if gotInput.Price != 2550 {
		t.Errorf("expected price 2550 cents, got %d", gotInput.Price)
	}
}

func TestCreate_RejectsMalformedBody(t *testing.T) {
	router := newTestRouter(&mockServiceCatalog{})

	tests := []string{
		`{"title":`,
		`{"title":"X","unknown":1}`,
	}
	for _, body := range tests {
		w := doRequest(router, http.MethodPost, "/api/v1/services", "provider-token", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestCreateAndEdit_BadPriceIsFieldValidationError(t *testing.T) {
	router := newTestRouter(&mockServiceCatalog{
		createFunc: func(ctx context.Context, actor *auth.Actor, input *model.ServiceInput) (*model.Service, error) {
			t.Error("service must not be called with an unparseable price")
			return nil, nil
		},
		editFunc: func(ctx context.Context, actor *auth.Actor, id string, update *model.ServiceUpdate) (*model.Service, error) {
			t.Error("service must not be called with an unparseable price")
			return nil, nil
		},
	})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"three decimals", http.MethodPost, "/api/v1/services", `{"title":"X","price":"1.234"}`},
		{"number with three decimals", http.MethodPost, "/api/v1/services", `{"title":"X","price":12.345}`},
		{"beyond int64", http.MethodPost, "/api/v1/services", `{"title":"X","price":"99999999999999999999"}`},
		{"edit with letters", http.MethodPatch, "/api/v1/services/id/s1", `{"price":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.path, "provider-token", tt.body)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
			}

			var resp struct {
				Code    string `json:"code"`
				Details struct {
					Fields []struct {
						Field string `json:"field"`
					} `json:"fields"`
				} `json:"details"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != apperrors.CodeValidation {
				t.Errorf("expected %s, got %s", apperrors.CodeValidation, resp.Code)
			}
			if len(resp.Details.Fields) != 1 || resp.Details.Fields[0].Field != "price" {
				t.Errorf("expected a price field error, got %+v", resp.Details.Fields)
			}
		})
	}
}

func TestEdit_MapsConcurrencyConflict(t *testing.T) {
	router := newTestRouter(&mockServiceCatalog{
		editFunc: func(ctx context.Context, actor *auth.Actor, id string, update *model.ServiceUpdate) (*model.Service, error) {
			if update.Version == nil || *update.Version != 2 {
				t.Errorf("version token not decoded: %+v", update.Version)
			}
			return nil, apperrors.ConcurrencyConflict("changed")
		},
	})

	w := doRequest(router, http.MethodPatch, "/api/v1/services/id/s1", "provider-token", `{"title":"New","version":2}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), apperrors.CodeConcurrencyConflict) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestDelete_Responses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"has bookings", apperrors.Conflict("has bookings"), http.StatusConflict},
		{"forbidden", apperrors.Forbidden("no"), http.StatusForbidden},
		{"unexpected", errors.New("driver exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockServiceCatalog{
				deleteFunc: func(ctx context.Context, actor *auth.Actor, id string) error {
					return tt.err
				},
			})
			w := doRequest(router, http.MethodDelete, "/api/v1/services/id/s1", "provider-token", "")
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
			if strings.Contains(w.Body.String(), "driver exploded") {
				t.Error("internal error details leaked to the client")
			}
		})
	}
}
