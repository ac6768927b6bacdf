package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/courtflow/court-case-api/api"
	"github.com/courtflow/court-case-api/databases/mocks"
	"github.com/courtflow/court-case-api/models"
	"github.com/courtflow/court-case-api/services"
)

func authenticated(req *http.Request, userID string) *http.Request {
	return req.WithContext(api.WithPrincipal(req.Context(), api.Principal{ID: userID, Email: "user@example.org"}))
}

func TestAddBookmarkHandlerRequiresAuth(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/bookmarks", bytes.NewBufferString(`{}`))
	rr := httptest.NewRecorder()

	Bookmark{}.AddBookmarkHandler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAddBookmarkHandlerConflictOnDuplicate(t *testing.T) {
	caseID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	caseDB := mocks.NewCaseDatabase(t)
	caseDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).Return(&models.Case{ID: caseID}, nil)

	bookmarkDB := mocks.NewBookmarkDatabase(t)
	bookmarkDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Bookmark{ID: primitive.NewObjectID()}, nil)

	svc := &services.BookmarkService{Bookmarks: bookmarkDB, Cases: caseDB}

	body := bytes.NewBufferString(`{"caseId": "` + caseID.Hex() + `"}`)
	req := authenticated(httptest.NewRequest("POST", "/api/v1/bookmarks", body), userID)
	rr := httptest.NewRecorder()

	Bookmark{DB: bookmarkDB, Service: svc}.AddBookmarkHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAddBookmarkHandlerCreated(t *testing.T) {
	caseID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	caseDB := mocks.NewCaseDatabase(t)
	caseDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).Return(&models.Case{ID: caseID}, nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	bookmarkDB := mocks.NewBookmarkDatabase(t)
	bookmarkDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)
	bookmarkDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	svc := &services.BookmarkService{Bookmarks: bookmarkDB, Cases: caseDB}

	body := bytes.NewBufferString(`{"caseId": "` + caseID.Hex() + `", "notes": "review"}`)
	req := authenticated(httptest.NewRequest("POST", "/api/v1/bookmarks", body), userID)
	rr := httptest.NewRecorder()

	Bookmark{DB: bookmarkDB, Service: svc}.AddBookmarkHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestRemoveBookmarkByCaseHandler(t *testing.T) {
	caseID := primitive.NewObjectID()
	bookmarkID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	bookmarkDB := mocks.NewBookmarkDatabase(t)
	bookmarkDB.On("FindOne", mock.Anything, bson.M{"bookmark.userID": userID, "bookmark.caseID": caseID.Hex()}).
		Return(&models.Bookmark{ID: bookmarkID, Details: models.BookmarkDetails{UserID: userID, CaseID: caseID.Hex()}}, nil)
	bookmarkDB.On("DeleteOne", mock.Anything, bson.M{"_id": bookmarkID}).Return(nil)

	caseDB := mocks.NewCaseDatabase(t)
	caseDB.On("UpdateOne", mock.Anything, bson.M{"_id": caseID},
		bson.M{"$inc": bson.M{"case.bookmarkCount": -1}}).Return(nil)

	svc := &services.BookmarkService{Bookmarks: bookmarkDB, Cases: caseDB}

	req := authenticated(httptest.NewRequest("DELETE", "/api/v1/case/"+caseID.Hex()+"/bookmark", nil), userID)
	req = mux.SetURLVars(req, map[string]string{"case_id": caseID.Hex()})
	rr := httptest.NewRecorder()

	Bookmark{DB: bookmarkDB, Service: svc}.RemoveBookmarkByCaseHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
