package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes the write paths rely on. The
// application-level duplicate checks only narrow the race window; these
// indexes are what actually enforce uniqueness.
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	err := db.Collection(caseCollectionName).CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "case.caseNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	return db.Collection(bookmarkCollectionName).CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "bookmark.userID", Value: 1},
				{Key: "bookmark.caseID", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	})
}
