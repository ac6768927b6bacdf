package databases

// go generate: mockery --name CaseDocumentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courtflow/court-case-api/models"
)

const caseDocumentCollectionName = "casedocuments"

// CaseDocumentDatabase contains the methods to use with the case document database
type CaseDocumentDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseDocument, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseDocument, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type caseDocumentDatabase struct {
	db DatabaseHelper
}

// NewCaseDocumentDatabase initializes a new instance of case document database with the provided db connection
func NewCaseDocumentDatabase(db DatabaseHelper) CaseDocumentDatabase {
	return &caseDocumentDatabase{
		db: db,
	}
}

func (d *caseDocumentDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseDocument, error) {
	doc := &models.CaseDocument{}
	err := d.db.Collection(caseDocumentCollectionName).FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *caseDocumentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseDocument, error) {
	var docs []models.CaseDocument
	curr, err := d.db.Collection(caseDocumentCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &docs)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (d *caseDocumentDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := d.db.Collection(caseDocumentCollectionName).InsertOne(ctx, document, opts...)
	return res, err
}
