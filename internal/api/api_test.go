package api

import (
	"alcyxob/training-planner/internal/domain"
	"alcyxob/training-planner/internal/repository/memory"
	"alcyxob/training-planner/internal/service"
	"alcyxob/training-planner/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStorage accepts every upload and presigns predictable URLs.
type fakeStorage struct{}

func (fakeStorage) PutObject(context.Context, string, string, []byte) error { return nil }

func (fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

func (fakeStorage) DeleteObject(context.Context, string) error { return nil }

type testServer struct {
	router    *gin.Engine
	auth      service.AuthService
	exercises []domain.Exercise
}

func newTestServer(t *testing.T, fileStorage storage.FileStorage) *testServer {
	t.Helper()
	logger := zap.NewNop()
	pagination := service.Pagination{DefaultLimit: 20, MaxLimit: 100}

	users := memory.NewUserRepository()
	exercises := memory.NewExerciseRepository()
	profiles := memory.NewProfileRepository()
	plans := memory.NewPlanRepository()
	generations := memory.NewPlanGenerationRepository()

	exerciseService := service.NewExerciseService(exercises, pagination, logger)
	_, err := exerciseService.SeedExercises(context.Background(), []service.ExerciseSeed{
		{Name: "Back Squat"},
		{Name: "Bench Press"},
		{Name: "Deadlift"},
		{Name: "Pull-Up"},
	})
	require.NoError(t, err)
	library, err := exercises.ListAll(context.Background())
	require.NoError(t, err)

	srv := &testServer{
		router:    gin.New(),
		auth:      service.NewAuthService(users, "test-secret", time.Hour),
		exercises: library,
	}
	SetupRoutes(srv.router, Services{
		Auth:           srv.auth,
		Profiles:       service.NewProfileService(profiles),
		Exercises:      exerciseService,
		PlanGeneration: service.NewPlanGenerationService(generations, profiles, exercises, logger),
		Plans:          service.NewPlanService(plans, exercises, fileStorage, 10, pagination, logger),
	}, logger)
	return srv
}

// login registers a fresh account and returns its bearer token.
func (s *testServer) login(t *testing.T) string {
	t.Helper()
	email := fmt.Sprintf("user-%d@example.com", time.Now().UnixNano())
	_, err := s.auth.Register(context.Background(), email, "password123")
	require.NoError(t, err)
	token, _, err := s.auth.Login(context.Background(), email, "password123")
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func planBody(exerciseID string) map[string]any {
	return map[string]any{
		"title": "Full body",
		"training_days": []map[string]any{{
			"label": "Day 1",
			"notes": "",
			"slots": []map[string]any{{
				"slotNotes": "",
				"exercises": []map[string]any{{
					"exerciseId":    exerciseID,
					"sets":          3,
					"repetitions":   8,
					"restSeconds":   90,
					"tempo":         "31X1",
					"exerciseNotes": "",
				}},
			}},
		}},
	}
}

func TestPing(t *testing.T) {
	srv := newTestServer(t, fakeStorage{})
	w := srv.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t, fakeStorage{})

	w := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "dana@example.com", "password": "password123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[UserResponse](t, w)
	assert.Equal(t, "dana@example.com", user.Email)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "dana@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "not-an-email", "password": "short"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decode[ApiError](t, w)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.ElementsMatch(t, []domain.FieldError{
		{Field: "email", Message: "must be a valid email address"},
		{Field: "password", Message: "must be at least 8 characters"},
	}, apiErr.Details)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "dana@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "dana@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[LoginResponse](t, w)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, user.ID, login.User.ID)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, fakeStorage{})

	w := srv.do(t, http.MethodGet, "/api/v1/plans", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, decode[ApiError](t, w).Message, "Authorization header")

	w = srv.do(t, http.MethodGet, "/api/v1/plans", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileEndpoints(t *testing.T) {
	srv := newTestServer(t, fakeStorage{})
	token := srv.login(t)

	w := srv.do(t, http.MethodGet, "/api/v1/profiles/me", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/profiles", token, map[string]any{"age": 10, "sex": "robot"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	apiErr := decode[ApiError](t, w)
	assert.ElementsMatch(t, []domain.FieldError{
		{Field: "age", Message: "must be at least 13"},
		{Field: "sex", Message: "must be one of: male, female, other"},
	}, apiErr.Details)

	w = srv.do(t, http.MethodPost, "/api/v1/profiles", token, map[string]any{
		"age":                 34,
		"height_cm":           178,
		"experience_level":    "beginner",
		"primary_goal":        "strength",
		"available_equipment": []string{"barbell"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[ProfileDto](t, w)
	require.NotNil(t, created.Age)
	assert.Equal(t, 34, *created.Age)
	assert.Nil(t, created.WeightKG)

	w = srv.do(t, http.MethodPost, "/api/v1/profiles", token, map[string]any{})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPatch, "/api/v1/profiles/me", token, `{"age": null, "weight_kg": 80}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[ProfileDto](t, w)
	assert.Nil(t, updated.Age)
	require.NotNil(t, updated.WeightKG)
	assert.Equal(t, 80.0, *updated.WeightKG)
	require.NotNil(t, updated.HeightCM)

	w = srv.do(t, http.MethodPatch, "/api/v1/profiles/me", token, `{"age": 200}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPatch, "/api/v1/profiles/me", token, `{"age": "x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []domain.FieldError{{Field: "age", Message: "must be of type int"}}, decode[ApiError](t, w).Details)

	// A cleared equipment list reads back as null, not []
	w = srv.do(t, http.MethodPatch, "/api/v1/profiles/me", token, `{"available_equipment": null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	row := decode[map[string]any](t, w)
	require.Contains(t, row, "available_equipment")
	assert.Nil(t, row["available_equipment"])

	w = srv.do(t, http.MethodDelete, "/api/v1/profiles/me", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = srv.do(t, http.MethodGet, "/api/v1/profiles/me", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExerciseEndpoints(t *testing.T) {
	srv := newTestServer(t, fakeStorage{})
	token := srv.login(t)

	w := srv.do(t, http.MethodGet, "/api/v1/exercises?limit=2&offset=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[ExercisesListDto](t, w)
	assert.Equal(t, int64(4), list.Total)
	assert.Equal(t, 2, list.Limit)
	assert.Equal(t, 1, list.Offset)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "Bench Press", list.Data[0].Name)

	w = srv.do(t, http.MethodGet, "/api/v1/exercises?limit=500", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ex := srv.exercises[0]
	w = srv.do(t, http.MethodGet, "/api/v1/exercises/"+ex.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%q,"name":"Back Squat","slug":"back-squat"}`, ex.ID), w.Body.String())

	w = srv.do(t, http.MethodGet, "/api/v1/exercises/unknown", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanGenerationEndpoints(t *testing.T) {
	srv := newTestServer(t, fakeStorage{})
	token := srv.login(t)

	w := srv.do(t, http.MethodPost, "/api/v1/plan-generations", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "generation needs a profile")

	w = srv.do(t, http.MethodPost, "/api/v1/profiles", token, map[string]any{"experience_level": "intermediate", "session_length": "30min"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/plan-generations", token, map[string]any{"override_frequency": 9})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "override_frequency", decode[ApiError](t, w).Details[0].Field)

	w = srv.do(t, http.MethodPost, "/api/v1/plan-generations", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	draft := decode[PlanGenerationDto](t, w)
	assert.Len(t, draft.TrainingDays, 4)

	w = srv.do(t, http.MethodPost, "/api/v1/plan-generations", token, map[string]any{"override_frequency": 2, "override_primary_goal": "endurance"})
	require.Equal(t, http.StatusCreated, w.Code)
	draft = decode[PlanGenerationDto](t, w)
	require.Len(t, draft.TrainingDays, 2)

	w = srv.do(t, http.MethodPatch, "/api/v1/plan-generations/accept", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	accepted := decode[PlanGenerationAcceptResponse](t, w)
	assert.Equal(t, domain.GenerationAccepted, accepted.Status)
	assert.Equal(t, draft.TrainingDays, accepted.TrainingDays)

	w = srv.do(t, http.MethodPatch, "/api/v1/plan-generations/accept", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The accepted draft can be saved as a plan
	w = srv.do(t, http.MethodPost, "/api/v1/plans", token, map[string]any{"training_days": accepted.TrainingDays})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = srv.do(t, http.MethodPost, "/api/v1/plan-generations", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = srv.do(t, http.MethodDelete, "/api/v1/plan-generations", token, map[string]any{"reason": strings.Repeat("x", 501)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = srv.do(t, http.MethodDelete, "/api/v1/plan-generations", token, map[string]any{"reason": "not for me"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = srv.do(t, http.MethodDelete, "/api/v1/plan-generations", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanEndpoints(t *testing.T) {
	srv := newTestServer(t, fakeStorage{})
	token := srv.login(t)
	other := srv.login(t)
	exID := srv.exercises[0].ID

	w := srv.do(t, http.MethodPost, "/api/v1/plans", token, planBody(exID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	plan := decode[PlanDto](t, w)
	assert.Equal(t, "Full body", *plan.Title)
	assert.NotContains(t, w.Body.String(), "owner_id")
	assert.NotContains(t, w.Body.String(), "deleted_at")

	w = srv.do(t, http.MethodGet, "/api/v1/plans/"+plan.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/plans/"+plan.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodPut, "/api/v1/plans/"+plan.ID, token, `{"title": 5}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []domain.FieldError{{Field: "title", Message: "must be of type string"}}, decode[ApiError](t, w).Details)

	w = srv.do(t, http.MethodPut, "/api/v1/plans/"+plan.ID, token, `{"title": null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decode[PlanDto](t, w).Title)

	w = srv.do(t, http.MethodGet, "/api/v1/plans?sort=updated_at&limit=5", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[PlansListDto](t, w)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 5, list.Limit)
	require.Len(t, list.Data, 1)
	assert.Equal(t, plan.ID, list.Data[0].ID)

	w = srv.do(t, http.MethodGet, "/api/v1/plans?sort=title", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "sort", decode[ApiError](t, w).Details[0].Field)

	w = srv.do(t, http.MethodGet, "/api/v1/plans/"+plan.ID+"/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	export := decode[PlanExportResponse](t, w)
	assert.True(t, strings.HasPrefix(export.URL, "https://storage.test/exports/"), export.URL)
	assert.True(t, strings.HasSuffix(export.URL, "/"+plan.ID+".json"), export.URL)
	assert.True(t, export.ExpiresAt.After(time.Now()))

	w = srv.do(t, http.MethodDelete, "/api/v1/plans/"+plan.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = srv.do(t, http.MethodGet, "/api/v1/plans/"+plan.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePlanValidation(t *testing.T) {
	srv := newTestServer(t, fakeStorage{})
	token := srv.login(t)

	body := planBody(srv.exercises[0].ID)
	exercise := body["training_days"].([]map[string]any)[0]["slots"].([]map[string]any)[0]["exercises"].([]map[string]any)[0]
	exercise["tempo"] = "0X11"
	exercise["sets"] = 0

	w := srv.do(t, http.MethodPost, "/api/v1/plans", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []domain.FieldError{
		{Field: "training_days[0].slots[0].exercises[0].sets", Message: "must be at least 1"},
		{Field: "training_days[0].slots[0].exercises[0].tempo", Message: "must be 4 characters, each 1-9 or X"},
	}, decode[ApiError](t, w).Details)

	w = srv.do(t, http.MethodPost, "/api/v1/plans", token, planBody("no-such-exercise"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "references an unknown exercise", decode[ApiError](t, w).Details[0].Message)

	w = srv.do(t, http.MethodPost, "/api/v1/plans", token, map[string]any{"training_days": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/plans", token, `{"training_days": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanLimit(t *testing.T) {
	srv := newTestServer(t, fakeStorage{})
	token := srv.login(t)
	body := planBody(srv.exercises[0].ID)

	for i := 0; i < 10; i++ {
		w := srv.do(t, http.MethodPost, "/api/v1/plans", token, body)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := srv.do(t, http.MethodPost, "/api/v1/plans", token, body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExportWithoutStorage(t *testing.T) {
	srv := newTestServer(t, storage.NewDisabledStorage())
	token := srv.login(t)

	w := srv.do(t, http.MethodPost, "/api/v1/plans", token, planBody(srv.exercises[0].ID))
	require.Equal(t, http.StatusCreated, w.Code)
	plan := decode[PlanDto](t, w)

	w = srv.do(t, http.MethodGet, "/api/v1/plans/"+plan.ID+"/export", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMistypedField(t *testing.T) {
	var cmd ProfileUpdateCommand
	assert.Equal(t, "height_cm", mistypedField([]byte(`{"age": 30, "height_cm": "tall"}`), &cmd))
	assert.Equal(t, "", mistypedField([]byte(`{"age": 30}`), &cmd))
	assert.Equal(t, "", mistypedField([]byte(`not json`), &cmd))
}
