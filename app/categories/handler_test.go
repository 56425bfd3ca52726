package categories

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/juicebar/pos-backend/models"
)

// --- Mock Repository ---

type MockCategoryRepo struct {
	Categories []models.Category
	CreateErr  error
	ListErr    error
	UpdateErr  error
	DeleteErr  error
	LastSaved  *models.Category
	LastUpdate models.CategoryUpdate
	LastID     string
}

func (m *MockCategoryRepo) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Categories, nil
}

func (m *MockCategoryRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	m.LastSaved = cat
	if m.CreateErr == nil && cat.ID == "" {
		cat.ID = "generated"
	}
	return m.CreateErr
}

func (m *MockCategoryRepo) UpdateCategory(ctx context.Context, id string, u models.CategoryUpdate) (*models.Category, error) {
	m.LastID = id
	m.LastUpdate = u
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	c := models.Category{ID: id, Name: "Old", Icon: u.Icon}
	if u.Name != nil {
		c.Name = *u.Name
	}
	return &c, nil
}

func (m *MockCategoryRepo) DeleteCategory(ctx context.Context, id string) error {
	m.LastID = id
	return m.DeleteErr
}

func storageDown() error {
	return fmt.Errorf("list categories: %w: %w", models.ErrPersistence, fmt.Errorf("db down"))
}

// --- Tests: GET /categories ---

func TestHandleGetAll(t *testing.T) {
	icon := "blender"
	testCases := []struct {
		name               string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Success with multiple categories",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					Categories: []models.Category{
						{ID: "cold-press", Name: "Cold Press"},
						{ID: "smoothies", Name: "Smoothies", Icon: &icon},
					},
				}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 2)
				assert.Equal(t, "cold-press", resp[0].ID)
				assert.Equal(t, "Smoothies", resp[1].Name)
				assert.Equal(t, "blender", *resp[1].Icon)
			},
		},
		{
			name: "Success with empty list",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					Categories: []models.Category{},
				}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 0)
			},
		},
		{
			name: "Repository error",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					ListErr: storageDown(),
				}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "storage unavailable", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo, nil)
			req := httptest.NewRequest("GET", "/categories", nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetAll(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

// --- Tests: POST /categories ---

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		requestBody        string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockCategoryRepo)
	}{
		{
			name:        "Success",
			requestBody: `{"name":"Add-Ons","icon":"plus"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusCreated,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp CategoryResponse
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, "generated", resp.ID)
				assert.Equal(t, "Add-Ons", resp.Name)
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.NotNil(t, repo.LastSaved)
				assert.Equal(t, "Add-Ons", repo.LastSaved.Name)
				assert.Equal(t, "plus", *repo.LastSaved.Icon)
			},
		},
		{
			name:        "Invalid JSON body",
			requestBody: `{invalid json`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "Invalid JSON body", errResp["error"])
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Nil(t, repo.LastSaved, "CreateCategory should not be called with invalid JSON")
			},
		},
		{
			name:        "Missing required fields (name)",
			requestBody: `{"id":"missing-name"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{}
			},
			expectedStatusCode: http.StatusBadRequest,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "Missing name", errResp["error"])
			},
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.Nil(t, repo.LastSaved, "CreateCategory should not be called with missing fields")
			},
		},
		{
			name:        "Duplicate name",
			requestBody: `{"name":"Shots"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{CreateErr: models.ErrDuplicateCategory}
			},
			expectedStatusCode: http.StatusConflict,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, models.ErrDuplicateCategory.Error(), errResp["error"])
			},
		},
		{
			name:        "Repository error on create",
			requestBody: `{"id":"toys","name":"Toys"}`,
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{CreateErr: storageDown()}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkRepoCall: func(t *testing.T, repo *MockCategoryRepo) {
				assert.NotNil(t, repo.LastSaved, "CreateCategory should have been called")
				assert.Equal(t, "toys", repo.LastSaved.ID)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCategoryHandler(mockRepo, nil)
			req := httptest.NewRequest("POST", "/categories", strings.NewReader(tc.requestBody))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			// Act
			handler.HandleCreate(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}

// --- Tests: PATCH and DELETE /categories/{id} ---

func TestHandleUpdate(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		updateErr          error
		expectedStatusCode int
	}{
		{"Rename", `{"name":"Fresh Shots"}`, nil, http.StatusOK},
		{"Unknown category", `{"name":"X"}`, models.ErrCategoryNotFound, http.StatusNotFound},
		{"Name taken", `{"name":"Smoothies"}`, models.ErrDuplicateCategory, http.StatusConflict},
		{"Blank name", `{"name":"  "}`, models.ErrInvalidCategory, http.StatusBadRequest},
		{"Unknown field", `{"colour":"red"}`, nil, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &MockCategoryRepo{UpdateErr: tc.updateErr}
			handler := NewCategoryHandler(mockRepo, nil)
			req := httptest.NewRequest(http.MethodPatch, "/categories/shots", strings.NewReader(tc.body))
			req.SetPathValue("id", "shots")
			rec := httptest.NewRecorder()

			handler.HandleUpdate(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
		})
	}
}

func TestHandleDelete(t *testing.T) {
	mockRepo := &MockCategoryRepo{}
	handler := NewCategoryHandler(mockRepo, nil)
	req := httptest.NewRequest(http.MethodDelete, "/categories/shots", nil)
	req.SetPathValue("id", "shots")
	rec := httptest.NewRecorder()

	handler.HandleDelete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "shots", mockRepo.LastID)

	mockRepo.DeleteErr = models.ErrCategoryNotFound
	rec = httptest.NewRecorder()
	handler.HandleDelete(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
