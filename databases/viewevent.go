package databases

// go generate: mockery --name ViewEventDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"
)

const viewEventCollectionName = "viewevents"

// ViewEventDatabase contains the methods to use with the view event database
type ViewEventDatabase interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (CursorHelper, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type viewEventDatabase struct {
	db DatabaseHelper
}

// NewViewEventDatabase initializes a new instance of view event database with the provided db connection
func NewViewEventDatabase(db DatabaseHelper) ViewEventDatabase {
	return &viewEventDatabase{
		db: db,
	}
}

func (v *viewEventDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := v.db.Collection(viewEventCollectionName).InsertOne(ctx, document, opts...)
	return res, err
}

func (v *viewEventDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return v.db.Collection(viewEventCollectionName).CountDocuments(ctx, filter, opts...)
}

func (v *viewEventDatabase) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (CursorHelper, error) {
	return v.db.Collection(viewEventCollectionName).Aggregate(ctx, pipeline, opts...)
}

func (v *viewEventDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	res, err := v.db.Collection(viewEventCollectionName).DeleteMany(ctx, filter, opts...)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
