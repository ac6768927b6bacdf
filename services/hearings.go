package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
	"github.com/courtflow/court-case-api/services/notifier"
)

// HearingService schedules hearings and mirrors scheduling effects onto the
// parent case's denormalized fields
type HearingService struct {
	Hearings databases.HearingDatabase
	Cases    databases.CaseDatabase
	Users    databases.UserDatabase
	Notifier Notifier
}

// HearingStatusUpdate carries the optional fields of an UpdateStatus call;
// nil pointers leave the stored value untouched
type HearingStatusUpdate struct {
	Status            string
	Notes             *string
	NextHearingDate   *time.Time
	AdjournmentReason *string
}

// Create validates the case and judge references, persists the hearing, then
// increments the case's hearingCount and overwrites its nextHearingDate with
// the new hearing's date. The overwrite is last-write-wins: scheduling an
// earlier hearing after a later one leaves the earlier date on the case.
func (s *HearingService) Create(ctx context.Context, details models.HearingDetails) (*models.Hearing, error) {
	cID, err := primitive.ObjectIDFromHex(details.CaseID)
	if err != nil {
		return nil, fmt.Errorf("invalid case id %q: %w", details.CaseID, ErrInvalidArgument)
	}
	parent, err := s.Cases.FindOne(ctx, bson.M{"_id": cID})
	if err != nil {
		return nil, storeErr("case", err)
	}

	jID, err := primitive.ObjectIDFromHex(details.JudgeID)
	if err != nil {
		return nil, fmt.Errorf("invalid judge id %q: %w", details.JudgeID, ErrInvalidArgument)
	}
	judge, err := s.Users.FindOne(ctx, bson.M{"_id": jID})
	if err != nil {
		return nil, storeErr("judge", err)
	}
	if !judge.HasCapability(models.CapabilityJudge) {
		return nil, fmt.Errorf("user %s does not hold judge capability: %w", details.JudgeID, ErrInvalidArgument)
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	if details.Status == "" {
		details.Status = models.HearingStatusScheduled
	}
	details.CreatedAt = now
	details.UpdatedAt = now

	hearing := models.Hearing{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := s.Hearings.InsertOne(ctx, hearing); err != nil {
		return nil, storeErr("hearing", err)
	}

	// The case mirror is eventually consistent with the hearing write; a
	// failed mirror update is logged for reconciliation, not surfaced.
	err = s.Cases.UpdateOne(ctx, bson.M{"_id": cID}, bson.M{
		"$inc": bson.M{"case.hearingCount": 1},
		"$set": bson.M{
			"case.nextHearingDate": details.HearingDate,
			"case.updatedAt":       now,
		},
	})
	if err != nil {
		zap.S().Errorw("failed to mirror hearing onto case",
			"caseId", details.CaseID,
			"hearingId", hearing.ID.Hex(),
			"error", err,
		)
	}

	if s.Notifier != nil {
		s.Notifier.FanOut(parent, notifier.EventHearingScheduled, map[string]interface{}{
			"hearingId":   hearing.ID.Hex(),
			"hearingDate": details.HearingDate.Time().Format(time.RFC3339),
			"courtRoom":   details.CourtRoom,
			"purpose":     details.Purpose,
		})
	}
	return &hearing, nil
}

// UpdateStatus persists the supplied fields on the hearing. A supplied
// nextHearingDate propagates the same last-write-wins overwrite to the case.
func (s *HearingService) UpdateStatus(ctx context.Context, hearingID string, update HearingStatusUpdate) (*models.Hearing, error) {
	hID, err := primitive.ObjectIDFromHex(hearingID)
	if err != nil {
		return nil, fmt.Errorf("invalid hearing id %q: %w", hearingID, ErrInvalidArgument)
	}
	hearing, err := s.Hearings.FindOne(ctx, bson.M{"_id": hID})
	if err != nil {
		return nil, storeErr("hearing", err)
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	set := bson.M{
		"hearing.status":    update.Status,
		"hearing.updatedAt": now,
	}
	if update.Notes != nil {
		set["hearing.notes"] = *update.Notes
	}
	if update.AdjournmentReason != nil {
		set["hearing.adjournmentReason"] = *update.AdjournmentReason
	}
	var nextDate primitive.DateTime
	if update.NextHearingDate != nil {
		nextDate = primitive.NewDateTimeFromTime(*update.NextHearingDate)
		set["hearing.nextHearingDate"] = nextDate
	}
	if err := s.Hearings.UpdateOne(ctx, bson.M{"_id": hID}, bson.M{"$set": set}); err != nil {
		return nil, storeErr("hearing", err)
	}

	cID, cErr := primitive.ObjectIDFromHex(hearing.Details.CaseID)
	if update.NextHearingDate != nil && cErr == nil {
		err = s.Cases.UpdateOne(ctx, bson.M{"_id": cID}, bson.M{
			"$set": bson.M{
				"case.nextHearingDate": nextDate,
				"case.updatedAt":       now,
			},
		})
		if err != nil {
			zap.S().Errorw("failed to mirror next hearing date onto case",
				"caseId", hearing.Details.CaseID,
				"hearingId", hearingID,
				"error", err,
			)
		}
	}

	updated, err := s.Hearings.FindOne(ctx, bson.M{"_id": hID})
	if err != nil {
		return nil, storeErr("hearing", err)
	}

	if s.Notifier != nil && cErr == nil {
		if parent, err := s.Cases.FindOne(ctx, bson.M{"_id": cID}); err == nil {
			s.Notifier.FanOut(parent, notifier.EventHearingUpdated, map[string]interface{}{
				"hearingId": hearingID,
				"status":    update.Status,
			})
		}
	}
	return updated, nil
}

// Delete removes the hearing and decrements the case's hearingCount. The
// case's nextHearingDate is not recomputed from the remaining hearings and
// can go stale; see DESIGN.md.
func (s *HearingService) Delete(ctx context.Context, hearingID string) error {
	hID, err := primitive.ObjectIDFromHex(hearingID)
	if err != nil {
		return fmt.Errorf("invalid hearing id %q: %w", hearingID, ErrInvalidArgument)
	}
	hearing, err := s.Hearings.FindOne(ctx, bson.M{"_id": hID})
	if err != nil {
		return storeErr("hearing", err)
	}
	if err := s.Hearings.DeleteOne(ctx, bson.M{"_id": hID}); err != nil {
		return storeErr("hearing", err)
	}

	if cID, cErr := primitive.ObjectIDFromHex(hearing.Details.CaseID); cErr == nil {
		err = s.Cases.UpdateOne(ctx, bson.M{"_id": cID}, bson.M{
			"$inc": bson.M{"case.hearingCount": -1},
			"$set": bson.M{"case.updatedAt": primitive.NewDateTimeFromTime(time.Now())},
		})
		if err != nil {
			zap.S().Errorw("failed to decrement hearing count",
				"caseId", hearing.Details.CaseID,
				"hearingId", hearingID,
				"error", err,
			)
		}
	}
	return nil
}
