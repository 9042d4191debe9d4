package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Marstach-svg/maple/internal/middleware"
	"github.com/Marstach-svg/maple/internal/model"
	"github.com/Marstach-svg/maple/internal/pin"
)

type mockPinService struct {
	createFn      func(ctx context.Context, userID, groupID string, input pin.CreateInput) (*model.PinWithAuthor, error)
	listByGroupFn func(ctx context.Context, groupID string) ([]*model.PinWithAuthor, error)
	getFn         func(ctx context.Context, userID, pinID string) (*model.PinWithAuthor, error)
	updateFn      func(ctx context.Context, userID, pinID string, input pin.UpdateInput) (*model.PinWithAuthor, error)
	deleteFn      func(ctx context.Context, userID, pinID string) error
}

func (m *mockPinService) Create(ctx context.Context, userID, groupID string, input pin.CreateInput) (*model.PinWithAuthor, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, groupID, input)
	}
	return nil, nil
}
func (m *mockPinService) ListByGroup(ctx context.Context, groupID string) ([]*model.PinWithAuthor, error) {
	if m.listByGroupFn != nil {
		return m.listByGroupFn(ctx, groupID)
	}
	return nil, nil
}
func (m *mockPinService) Get(ctx context.Context, userID, pinID string) (*model.PinWithAuthor, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, pinID)
	}
	return nil, nil
}
func (m *mockPinService) Update(ctx context.Context, userID, pinID string, input pin.UpdateInput) (*model.PinWithAuthor, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, pinID, input)
	}
	return nil, nil
}
func (m *mockPinService) Delete(ctx context.Context, userID, pinID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, pinID)
	}
	return nil
}

func testPinWithAuthor() *model.PinWithAuthor {
	now := time.Now()
	return &model.PinWithAuthor{
		Pin: model.Pin{
			ID:          "pin-1",
			GroupID:     "group-1",
			CreatedByID: "user-1",
			Title:       "金閣寺",
			Latitude:    35.0394,
			Longitude:   135.7292,
			Prefecture:  "京都府",
			VisitedAt:   now,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		AuthorEmail: "a@example.com",
		AuthorName:  "A",
	}
}

// TestPinHandler_Create_Success はX-Group-Idヘッダー付きの作成が201を
// 返すことを検証する。
func TestPinHandler_Create_Success(t *testing.T) {
	service := &mockPinService{
		createFn: func(ctx context.Context, userID, groupID string, input pin.CreateInput) (*model.PinWithAuthor, error) {
			if groupID != "group-1" {
				t.Errorf("groupID = %q, want group-1", groupID)
			}
			if input.Title != "金閣寺" {
				t.Errorf("title = %q, want 金閣寺", input.Title)
			}
			return testPinWithAuthor(), nil
		},
	}
	h := NewPinHandler(service, nil)

	req := authedJSONRequest(http.MethodPost, "/api/pins",
		`{"title":"金閣寺","latitude":35.0394,"longitude":135.7292,"prefecture":"京都府"}`, "user-1")
	req.Header.Set("X-Group-Id", "group-1")

	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	if data["prefecture"] != "京都府" {
		t.Errorf("prefecture = %v, want 京都府", data["prefecture"])
	}
	createdBy := data["createdBy"].(map[string]any)
	if createdBy["email"] != "a@example.com" {
		t.Errorf("createdBy.email = %v, want a@example.com", createdBy["email"])
	}
}

// TestPinHandler_Create_MissingGroupHeader はX-Group-Idなしの作成が
// 400でGROUP_ID_REQUIREDになることを検証する。
func TestPinHandler_Create_MissingGroupHeader(t *testing.T) {
	h := NewPinHandler(&mockPinService{}, nil)

	req := authedJSONRequest(http.MethodPost, "/api/pins", `{"title":"金閣寺"}`, "user-1")

	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	body := decodeEnvelope(t, rec)
	if body["code"] != model.ErrCodeGroupIDRequired {
		t.Errorf("code = %v, want %v", body["code"], model.ErrCodeGroupIDRequired)
	}
}

// TestPinHandler_Get_NotFound は存在しないピンが404になることを検証する。
func TestPinHandler_Get_NotFound(t *testing.T) {
	service := &mockPinService{
		getFn: func(ctx context.Context, userID, pinID string) (*model.PinWithAuthor, error) {
			return nil, model.NewPinNotFoundError(pinID)
		},
	}
	h := NewPinHandler(service, nil)

	r := chi.NewRouter()
	r.Get("/api/pins/{id}", h.Get)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedJSONRequest(http.MethodGet, "/api/pins/no-such-pin", "", "user-1"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestPinHandler_Get_Forbidden は他グループのピンへのアクセスが403に
// なることを検証する。
func TestPinHandler_Get_Forbidden(t *testing.T) {
	service := &mockPinService{
		getFn: func(ctx context.Context, userID, pinID string) (*model.PinWithAuthor, error) {
			return nil, model.NewForbiddenError()
		},
	}
	h := NewPinHandler(service, nil)

	r := chi.NewRouter()
	r.Get("/api/pins/{id}", h.Get)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedJSONRequest(http.MethodGet, "/api/pins/pin-1", "", "outsider"))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

// TestPinHandler_Update_PartialBody は省略フィールドがnilとして
// サービスに渡ることを検証する。
func TestPinHandler_Update_PartialBody(t *testing.T) {
	var gotInput pin.UpdateInput
	service := &mockPinService{
		updateFn: func(ctx context.Context, userID, pinID string, input pin.UpdateInput) (*model.PinWithAuthor, error) {
			gotInput = input
			return testPinWithAuthor(), nil
		},
	}
	h := NewPinHandler(service, nil)

	r := chi.NewRouter()
	r.Put("/api/pins/{id}", h.Update)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedJSONRequest(http.MethodPut, "/api/pins/pin-1", `{"title":"銀閣寺"}`, "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotInput.Title == nil || *gotInput.Title != "銀閣寺" {
		t.Error("title should be set")
	}
	if gotInput.Description != nil || gotInput.Latitude != nil || gotInput.VisitedAt != nil {
		t.Error("omitted fields should remain nil")
	}
}

// TestPinHandler_Delete_Success は削除成功が200を返すことを検証する。
func TestPinHandler_Delete_Success(t *testing.T) {
	var deletedID string
	service := &mockPinService{
		deleteFn: func(ctx context.Context, userID, pinID string) error {
			deletedID = pinID
			return nil
		},
	}
	h := NewPinHandler(service, nil)

	r := chi.NewRouter()
	r.Delete("/api/pins/{id}", h.Delete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authedJSONRequest(http.MethodDelete, "/api/pins/pin-1", "", "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if deletedID != "pin-1" {
		t.Errorf("deleted pin = %q, want pin-1", deletedID)
	}
}

// TestPinHandler_ListByGroup はミドルウェア検証済みグループのピン一覧が
// 返ることを検証する。
func TestPinHandler_ListByGroup(t *testing.T) {
	service := &mockPinService{
		listByGroupFn: func(ctx context.Context, groupID string) ([]*model.PinWithAuthor, error) {
			return []*model.PinWithAuthor{testPinWithAuthor()}, nil
		},
	}
	h := NewPinHandler(service, nil)

	r := chi.NewRouter()
	r.With(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.ContextWithAuthUser(req.Context(), &middleware.AuthUser{ID: "user-1"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}, middleware.NewGroupMemberMiddleware(staticMember("user-1", "group-1"))).
		Get("/api/pins/group/{groupId}", h.ListByGroup)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pins/group/group-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := decodeEnvelope(t, rec)
	pins := body["data"].([]any)
	if len(pins) != 1 {
		t.Fatalf("len(pins) = %d, want 1", len(pins))
	}
}
