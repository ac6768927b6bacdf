package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
)

// BookmarkService keeps a case's denormalized bookmarkCount in lockstep with
// bookmark creates and deletes
type BookmarkService struct {
	Bookmarks databases.BookmarkDatabase
	Cases     databases.CaseDatabase
}

// Add creates a bookmark for the (user, case) pair and increments the case's
// bookmarkCount. A pair that already exists fails with Conflict and leaves
// the counter unchanged. If the counter increment fails the bookmark is
// removed again so the pair and the counter never diverge.
func (s *BookmarkService) Add(ctx context.Context, userID, caseID, notes string) (*models.Bookmark, error) {
	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, fmt.Errorf("invalid case id %q: %w", caseID, ErrInvalidArgument)
	}
	if userID == "" {
		return nil, fmt.Errorf("user id required: %w", ErrInvalidArgument)
	}
	if _, err := s.Cases.FindOne(ctx, bson.M{"_id": cID}); err != nil {
		return nil, storeErr("case", err)
	}

	pairFilter := bson.M{"bookmark.userID": userID, "bookmark.caseID": caseID}
	_, err = s.Bookmarks.FindOne(ctx, pairFilter)
	if err == nil {
		return nil, fmt.Errorf("bookmark for case %s already exists: %w", caseID, ErrConflict)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storeErr("bookmark", err)
	}

	bookmark := models.Bookmark{
		ID: primitive.NewObjectID(),
		Details: models.BookmarkDetails{
			UserID:    userID,
			CaseID:    caseID,
			Notes:     notes,
			CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
		},
	}
	if _, err := s.Bookmarks.InsertOne(ctx, bookmark); err != nil {
		return nil, storeErr("bookmark", err)
	}

	err = s.Cases.UpdateOne(ctx, bson.M{"_id": cID}, bson.M{"$inc": bson.M{"case.bookmarkCount": 1}})
	if err != nil {
		// undo the insert so the counter and the pair stay paired
		if delErr := s.Bookmarks.DeleteOne(ctx, bson.M{"_id": bookmark.ID}); delErr != nil {
			zap.S().Errorw("failed to undo bookmark after counter failure",
				"bookmarkId", bookmark.ID.Hex(),
				"caseId", caseID,
				"error", delErr,
			)
		}
		return nil, storeErr("case", err)
	}
	return &bookmark, nil
}

// Remove deletes the bookmark by id and decrements the owning case's
// bookmarkCount
func (s *BookmarkService) Remove(ctx context.Context, bookmarkID string) error {
	bID, err := primitive.ObjectIDFromHex(bookmarkID)
	if err != nil {
		return fmt.Errorf("invalid bookmark id %q: %w", bookmarkID, ErrInvalidArgument)
	}
	bookmark, err := s.Bookmarks.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		return storeErr("bookmark", err)
	}
	return s.remove(ctx, bookmark)
}

// RemoveByCase deletes the bookmark for the (user, case) pair and decrements
// the owning case's bookmarkCount
func (s *BookmarkService) RemoveByCase(ctx context.Context, userID, caseID string) error {
	bookmark, err := s.Bookmarks.FindOne(ctx, bson.M{"bookmark.userID": userID, "bookmark.caseID": caseID})
	if err != nil {
		return storeErr("bookmark", err)
	}
	return s.remove(ctx, bookmark)
}

func (s *BookmarkService) remove(ctx context.Context, bookmark *models.Bookmark) error {
	cID, err := primitive.ObjectIDFromHex(bookmark.Details.CaseID)
	if err != nil {
		return fmt.Errorf("invalid case id %q: %w", bookmark.Details.CaseID, ErrInvalidArgument)
	}
	if err := s.Bookmarks.DeleteOne(ctx, bson.M{"_id": bookmark.ID}); err != nil {
		return storeErr("bookmark", err)
	}
	err = s.Cases.UpdateOne(ctx, bson.M{"_id": cID}, bson.M{"$inc": bson.M{"case.bookmarkCount": -1}})
	if err != nil {
		// put the bookmark back so the delete and the decrement stay paired
		if _, insErr := s.Bookmarks.InsertOne(ctx, *bookmark); insErr != nil {
			zap.S().Errorw("failed to restore bookmark after counter failure",
				"bookmarkId", bookmark.ID.Hex(),
				"caseId", bookmark.Details.CaseID,
				"error", insErr,
			)
		}
		return storeErr("case", err)
	}
	return nil
}
