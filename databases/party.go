package databases

// go generate: mockery --name CasePartyDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courtflow/court-case-api/models"
)

const casePartyCollectionName = "caseparties"

// CasePartyDatabase contains the methods to use with the case party database
type CasePartyDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseParty, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseParty, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
}

type casePartyDatabase struct {
	db DatabaseHelper
}

// NewCasePartyDatabase initializes a new instance of case party database with the provided db connection
func NewCasePartyDatabase(db DatabaseHelper) CasePartyDatabase {
	return &casePartyDatabase{
		db: db,
	}
}

func (p *casePartyDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseParty, error) {
	party := &models.CaseParty{}
	err := p.db.Collection(casePartyCollectionName).FindOne(ctx, filter, opts...).Decode(&party)
	if err != nil {
		return nil, err
	}
	return party, nil
}

func (p *casePartyDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseParty, error) {
	var parties []models.CaseParty
	curr, err := p.db.Collection(casePartyCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &parties)
	if err != nil {
		return nil, err
	}
	return parties, nil
}

func (p *casePartyDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := p.db.Collection(casePartyCollectionName).InsertOne(ctx, document, opts...)
	return res, err
}

func (p *casePartyDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	_, err := p.db.Collection(casePartyCollectionName).DeleteOne(ctx, filter, opts...)
	return err
}
