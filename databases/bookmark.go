package databases

// go generate: mockery --name BookmarkDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courtflow/court-case-api/models"
)

const bookmarkCollectionName = "bookmarks"

// BookmarkDatabase contains the methods to use with the bookmark database
type BookmarkDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Bookmark, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Bookmark, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
}

type bookmarkDatabase struct {
	db DatabaseHelper
}

// NewBookmarkDatabase initializes a new instance of bookmark database with the provided db connection
func NewBookmarkDatabase(db DatabaseHelper) BookmarkDatabase {
	return &bookmarkDatabase{
		db: db,
	}
}

func (b *bookmarkDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Bookmark, error) {
	bookmark := &models.Bookmark{}
	err := b.db.Collection(bookmarkCollectionName).FindOne(ctx, filter, opts...).Decode(&bookmark)
	if err != nil {
		return nil, err
	}
	return bookmark, nil
}

func (b *bookmarkDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	curr, err := b.db.Collection(bookmarkCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &bookmarks)
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

func (b *bookmarkDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return b.db.Collection(bookmarkCollectionName).CountDocuments(ctx, filter, opts...)
}

func (b *bookmarkDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := b.db.Collection(bookmarkCollectionName).InsertOne(ctx, document, opts...)
	return res, err
}

func (b *bookmarkDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	_, err := b.db.Collection(bookmarkCollectionName).DeleteOne(ctx, filter, opts...)
	return err
}
