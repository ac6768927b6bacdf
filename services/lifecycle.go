package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
	"github.com/courtflow/court-case-api/services/notifier"
)

// Notifier hands a case event off to the background fan-out. Implementations
// must return immediately; delivery happens detached from the caller.
type Notifier interface {
	FanOut(c *models.Case, event notifier.Event, payload map[string]interface{})
}

// CaseService owns case status transitions and their side effects
type CaseService struct {
	Cases    databases.CaseDatabase
	Notifier Notifier
}

// Transition assigns newStatus to the case. Any status from the fixed set may
// be assigned over any other, including the one already held; a repeated
// transition re-fires notifications but never overwrites an admission or
// judgment date that is already stamped.
func (s *CaseService) Transition(ctx context.Context, caseID, newStatus string) (*models.Case, error) {
	if !models.ValidCaseStatus(newStatus) {
		return nil, fmt.Errorf("unknown case status %q: %w", newStatus, ErrInvalidArgument)
	}
	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return nil, fmt.Errorf("invalid case id %q: %w", caseID, ErrInvalidArgument)
	}

	existing, err := s.Cases.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		return nil, storeErr("case", err)
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	set := bson.M{
		"case.status":    newStatus,
		"case.updatedAt": now,
	}
	// $ifNull keeps an already stamped date, so concurrent transitions to
	// the same status cannot overwrite each other's timestamp
	switch newStatus {
	case models.CaseStatusAdmitted:
		set["case.admissionDate"] = bson.M{"$ifNull": bson.A{"$case.admissionDate", now}}
	case models.CaseStatusJudgment:
		set["case.judgmentDate"] = bson.M{"$ifNull": bson.A{"$case.judgmentDate", now}}
	}

	after := options.After
	updated, err := s.Cases.FindOneAndUpdate(ctx, bson.M{"_id": cID},
		mongo.Pipeline{{{Key: "$set", Value: set}}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after})
	if err != nil {
		return nil, storeErr("case", err)
	}

	zap.S().Infow("case status updated",
		"caseId", caseID,
		"from", existing.Details.Status,
		"to", newStatus,
	)

	if s.Notifier != nil {
		s.Notifier.FanOut(updated, notifier.EventStatusChanged, map[string]interface{}{
			"previousStatus": existing.Details.Status,
			"newStatus":      newStatus,
		})
	}
	return updated, nil
}
