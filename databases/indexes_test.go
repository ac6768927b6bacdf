package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/databases/mocks"
)

func uniqueIndexOn(keys ...string) func([]mongo.IndexModel) bool {
	return func(indexModels []mongo.IndexModel) bool {
		if len(indexModels) != 1 {
			return false
		}
		m := indexModels[0]
		if m.Options == nil || m.Options.Unique == nil || !*m.Options.Unique {
			return false
		}
		indexKeys, ok := m.Keys.(bson.D)
		if !ok || len(indexKeys) != len(keys) {
			return false
		}
		for i, key := range keys {
			if indexKeys[i].Key != key {
				return false
			}
		}
		return true
	}
}

func TestEnsureIndexesCreatesUniqueConstraints(t *testing.T) {
	caseColl := mocks.NewCollectionHelper(t)
	caseColl.On("CreateIndexes", mock.Anything,
		mock.MatchedBy(uniqueIndexOn("case.caseNumber"))).Return(nil)

	bookmarkColl := mocks.NewCollectionHelper(t)
	bookmarkColl.On("CreateIndexes", mock.Anything,
		mock.MatchedBy(uniqueIndexOn("bookmark.userID", "bookmark.caseID"))).Return(nil)

	dbHelper := mocks.NewDatabaseHelper(t)
	dbHelper.On("Collection", "cases").Return(caseColl)
	dbHelper.On("Collection", "bookmarks").Return(bookmarkColl)

	err := databases.EnsureIndexes(context.Background(), dbHelper)

	assert.NoError(t, err)
}

func TestEnsureIndexesPropagatesFailure(t *testing.T) {
	caseColl := mocks.NewCollectionHelper(t)
	caseColl.On("CreateIndexes", mock.Anything, mock.Anything).
		Return(errors.New("mocked-error"))

	dbHelper := mocks.NewDatabaseHelper(t)
	dbHelper.On("Collection", "cases").Return(caseColl)

	err := databases.EnsureIndexes(context.Background(), dbHelper)

	assert.EqualError(t, err, "mocked-error")
}
