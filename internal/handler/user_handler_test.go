package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"planboard/internal/config"
	"planboard/internal/handler"
	"planboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func setupTest() (*gin.Engine, *MockUserRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockUserRepository)
	cfg := &config.Config{JWTSecret: "test-secret", TokenExpiryHours: 24}
	userHandler := handler.NewUserHandler(mockRepo, cfg)

	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	return r, mockRepo
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegister_Success(t *testing.T) {
	// Arrange
	router, mockRepo := setupTest()

	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	// Act
	resp := postJSON(router, "/register", gin.H{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, "Test User", response["name"])
	assert.Equal(t, "test@example.com", response["email"])
	assert.NotEmpty(t, response["id"])

	mockRepo.AssertExpectations(t)
}

func TestRegister_UserAlreadyExists(t *testing.T) {
	// Arrange
	router, mockRepo := setupTest()

	existingUser := &model.User{
		ID:             uuid.NewString(),
		Email:          "existing@example.com",
		HashedPassword: "hashed_password",
		Name:           "Existing User",
	}
	mockRepo.On("FindByEmail", mock.Anything, "existing@example.com").Return(existingUser, nil)

	// Act
	resp := postJSON(router, "/register", gin.H{
		"name":     "Test User",
		"email":    "existing@example.com",
		"password": "password123",
	})

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	mockRepo.AssertExpectations(t)
}

func TestRegister_InvalidInput(t *testing.T) {
	// Arrange
	router, _ := setupTest()

	// Act: password below the minimum length
	resp := postJSON(router, "/register", gin.H{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "123",
	})

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	router, mockRepo := setupTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:             uuid.NewString(),
		Email:          "test@example.com",
		HashedPassword: string(hash),
		Name:           "Test User",
	}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	// Act
	resp := postJSON(router, "/login", gin.H{
		"email":    "test@example.com",
		"password": "password123",
	})

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, user.ID, response.User.ID)

	mockRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	// Arrange
	router, mockRepo := setupTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:             uuid.NewString(),
		Email:          "test@example.com",
		HashedPassword: string(hash),
		Name:           "Test User",
	}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	// Act
	resp := postJSON(router, "/login", gin.H{
		"email":    "test@example.com",
		"password": "wrong-password",
	})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	mockRepo.AssertExpectations(t)
}

func TestLogin_UnknownUser(t *testing.T) {
	// Arrange
	router, mockRepo := setupTest()
	mockRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	// Act
	resp := postJSON(router, "/login", gin.H{
		"email":    "ghost@example.com",
		"password": "password123",
	})

	// Assert
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	mockRepo.AssertExpectations(t)
}
