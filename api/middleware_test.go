package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/courtflow/court-case-api/databases/mocks"
	"github.com/courtflow/court-case-api/models"
)

func staffAccount(t *testing.T, email, password string, capabilities []string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	assert.NoError(t, err)
	return models.User{
		ID: primitive.NewObjectID(),
		Details: models.UserDetails{
			Email:        email,
			Password:     string(hash),
			Capabilities: capabilities,
			Active:       true,
		},
	}
}

func TestCreateTokenRejectsWrongPassword(t *testing.T) {
	user := staffAccount(t, "clerk@example.org", "open-sesame", []string{models.CapabilityClerk})

	mockDB := mocks.NewUserDatabase(t)
	mockDB.On("Find", mock.Anything, bson.M{"user.email": "clerk@example.org"}).
		Return([]models.User{user}, nil)

	m := MiddlewareDB{DB: mockDB}
	m.SetupGoGuardian()
	handler := Middleware(http.HandlerFunc(m.CreateToken))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil)
	req.SetBasicAuth("clerk@example.org", "totally-wrong-password")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotContains(t, rr.Body.String(), "token")
}

func TestCreateTokenIssuesBearerForValidCredentials(t *testing.T) {
	user := staffAccount(t, "clerk@example.org", "open-sesame", []string{models.CapabilityClerk})

	mockDB := mocks.NewUserDatabase(t)
	mockDB.On("Find", mock.Anything, bson.M{"user.email": "clerk@example.org"}).
		Return([]models.User{user}, nil)

	m := MiddlewareDB{DB: mockDB}
	m.SetupGoGuardian()
	handler := Middleware(http.HandlerFunc(m.CreateToken))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil)
	req.SetBasicAuth("clerk@example.org", "open-sesame")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.NotEmpty(t, resp["token"])
	assert.Equal(t, user.ID.Hex(), resp["_id"])

	// the minted bearer token must authenticate and carry the capabilities
	var principal Principal
	var authenticated bool
	protected := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, authenticated = PrincipalFromContext(r.Context())
	}))

	bearerReq := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
	bearerReq.Header.Set("Authorization", "Bearer "+resp["token"])
	bearerRR := httptest.NewRecorder()
	protected.ServeHTTP(bearerRR, bearerReq)

	assert.Equal(t, http.StatusOK, bearerRR.Code)
	assert.True(t, authenticated)
	assert.Equal(t, user.ID.Hex(), principal.ID)
	assert.True(t, principal.HasCapability(models.CapabilityClerk))
}

func TestCreateTokenRejectsUnknownEmail(t *testing.T) {
	mockDB := mocks.NewUserDatabase(t)
	mockDB.On("Find", mock.Anything, bson.M{"user.email": "ghost@example.org"}).
		Return([]models.User{}, nil)

	m := MiddlewareDB{DB: mockDB}
	m.SetupGoGuardian()
	handler := Middleware(http.HandlerFunc(m.CreateToken))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil)
	req.SetBasicAuth("ghost@example.org", "anything")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
