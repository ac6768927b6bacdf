package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/courtflow/court-case-api/databases/mocks"
	"github.com/courtflow/court-case-api/models"
)

func TestAddBookmarkIncrementsCounter(t *testing.T) {
	caseID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	caseDB := mocks.NewCaseDatabase(t)
	caseDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).
		Return(&models.Case{ID: caseID}, nil)
	caseDB.On("UpdateOne", mock.Anything, bson.M{"_id": caseID},
		bson.M{"$inc": bson.M{"case.bookmarkCount": 1}}).Return(nil)

	bookmarkDB := mocks.NewBookmarkDatabase(t)
	bookmarkDB.On("FindOne", mock.Anything, bson.M{"bookmark.userID": userID, "bookmark.caseID": caseID.Hex()}).
		Return(nil, mongo.ErrNoDocuments)
	bookmarkDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	svc := &BookmarkService{Bookmarks: bookmarkDB, Cases: caseDB}

	bookmark, err := svc.Add(context.Background(), userID, caseID.Hex(), "follow up")

	assert.NoError(t, err)
	assert.Equal(t, userID, bookmark.Details.UserID)
	assert.Equal(t, caseID.Hex(), bookmark.Details.CaseID)
}

func TestAddBookmarkDuplicatePairConflicts(t *testing.T) {
	caseID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	caseDB := mocks.NewCaseDatabase(t)
	caseDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).
		Return(&models.Case{ID: caseID}, nil)

	bookmarkDB := mocks.NewBookmarkDatabase(t)
	bookmarkDB.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Bookmark{ID: primitive.NewObjectID()}, nil)

	svc := &BookmarkService{Bookmarks: bookmarkDB, Cases: caseDB}

	_, err := svc.Add(context.Background(), userID, caseID.Hex(), "")

	assert.ErrorIs(t, err, ErrConflict)
	bookmarkDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	caseDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddBookmarkDuplicateKeyInsertConflicts(t *testing.T) {
	caseID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	caseDB := mocks.NewCaseDatabase(t)
	caseDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).
		Return(&models.Case{ID: caseID}, nil)

	// a concurrent insert can slip past the pair check; the unique index
	// rejects it and the caller still sees a conflict, not an outage
	dupErr := mongo.WriteException{WriteErrors: []mongo.WriteError{
		{Code: 11000, Message: "E11000 duplicate key error"},
	}}

	bookmarkDB := mocks.NewBookmarkDatabase(t)
	bookmarkDB.On("FindOne", mock.Anything, mock.Anything).
		Return(nil, mongo.ErrNoDocuments)
	bookmarkDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, dupErr)

	svc := &BookmarkService{Bookmarks: bookmarkDB, Cases: caseDB}

	_, err := svc.Add(context.Background(), userID, caseID.Hex(), "")

	assert.ErrorIs(t, err, ErrConflict)
	caseDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddBookmarkMissingCase(t *testing.T) {
	caseDB := mocks.NewCaseDatabase(t)
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	svc := &BookmarkService{Bookmarks: mocks.NewBookmarkDatabase(t), Cases: caseDB}

	_, err := svc.Add(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), "")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddBookmarkCounterFailureRollsBack(t *testing.T) {
	caseID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	caseDB := mocks.NewCaseDatabase(t)
	caseDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).
		Return(&models.Case{ID: caseID}, nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("write concern failure"))

	bookmarkDB := mocks.NewBookmarkDatabase(t)
	bookmarkDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)
	bookmarkDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	bookmarkDB.On("DeleteOne", mock.Anything, mock.Anything).Return(nil)

	svc := &BookmarkService{Bookmarks: bookmarkDB, Cases: caseDB}

	_, err := svc.Add(context.Background(), userID, caseID.Hex(), "")

	assert.ErrorIs(t, err, ErrUnavailable)
	bookmarkDB.AssertCalled(t, "DeleteOne", mock.Anything, mock.Anything)
}

func TestRemoveBookmarkDecrementsCounter(t *testing.T) {
	caseID := primitive.NewObjectID()
	bookmarkID := primitive.NewObjectID()

	bookmarkDB := mocks.NewBookmarkDatabase(t)
	bookmarkDB.On("FindOne", mock.Anything, bson.M{"_id": bookmarkID}).
		Return(&models.Bookmark{ID: bookmarkID, Details: models.BookmarkDetails{CaseID: caseID.Hex()}}, nil)
	bookmarkDB.On("DeleteOne", mock.Anything, bson.M{"_id": bookmarkID}).Return(nil)

	caseDB := mocks.NewCaseDatabase(t)
	caseDB.On("UpdateOne", mock.Anything, bson.M{"_id": caseID},
		bson.M{"$inc": bson.M{"case.bookmarkCount": -1}}).Return(nil)

	svc := &BookmarkService{Bookmarks: bookmarkDB, Cases: caseDB}

	err := svc.Remove(context.Background(), bookmarkID.Hex())

	assert.NoError(t, err)
}

func TestRemoveByCaseRestoresOnCounterFailure(t *testing.T) {
	caseID := primitive.NewObjectID()
	bookmarkID := primitive.NewObjectID()
	userID := primitive.NewObjectID().Hex()

	bookmark := &models.Bookmark{ID: bookmarkID, Details: models.BookmarkDetails{
		UserID: userID,
		CaseID: caseID.Hex(),
	}}

	bookmarkDB := mocks.NewBookmarkDatabase(t)
	bookmarkDB.On("FindOne", mock.Anything, bson.M{"bookmark.userID": userID, "bookmark.caseID": caseID.Hex()}).
		Return(bookmark, nil)
	bookmarkDB.On("DeleteOne", mock.Anything, bson.M{"_id": bookmarkID}).Return(nil)
	bookmarkDB.On("InsertOne", mock.Anything, *bookmark).Return(nil, nil)

	caseDB := mocks.NewCaseDatabase(t)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("write concern failure"))

	svc := &BookmarkService{Bookmarks: bookmarkDB, Cases: caseDB}

	err := svc.RemoveByCase(context.Background(), userID, caseID.Hex())

	assert.ErrorIs(t, err, ErrUnavailable)
	bookmarkDB.AssertCalled(t, "InsertOne", mock.Anything, *bookmark)
}
