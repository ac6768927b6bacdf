package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
	"github.com/courtflow/court-case-api/services/notifier"
)

// Notifier hands reminder events off to the background fan-out
type Notifier interface {
	FanOut(c *models.Case, event notifier.Event, payload map[string]interface{})
}

// Scheduler handles periodic background jobs: pruning old view events and
// sending next-day hearing reminders
type Scheduler struct {
	cron     *cron.Cron
	Views    databases.ViewEventDatabase
	Hearings databases.HearingDatabase
	Cases    databases.CaseDatabase
	Notifier Notifier

	// RetentionDays bounds the append-only view event log; 0 disables pruning
	RetentionDays int
}

// NewScheduler creates a new scheduler instance
func NewScheduler(views databases.ViewEventDatabase, hearings databases.HearingDatabase, cases databases.CaseDatabase, n Notifier, retentionDays int) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		Views:         views,
		Hearings:      hearings,
		Cases:         cases,
		Notifier:      n,
		RetentionDays: retentionDays,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Prune old view events daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.pruneViewEvents)
	if err != nil {
		zap.S().Errorw("failed to register view event retention job", "error", err)
	}

	// Send hearing reminders daily at 6 AM UTC
	_, err = s.cron.AddFunc("0 6 * * *", s.sendHearingReminders)
	if err != nil {
		zap.S().Errorw("failed to register hearing reminder job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("case scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("case scheduler stopped")
}

// pruneViewEvents deletes view events older than the retention horizon
func (s *Scheduler) pruneViewEvents() {
	if s.RetentionDays <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	horizon := primitive.NewDateTimeFromTime(time.Now().AddDate(0, 0, -s.RetentionDays))
	deleted, err := s.Views.DeleteMany(ctx, bson.M{"viewEvent.viewedAt": bson.M{"$lt": horizon}})
	if err != nil {
		zap.S().Errorw("failed to prune view events", "error", err)
		return
	}
	if deleted > 0 {
		zap.S().Infow("pruned view events",
			"deleted", deleted,
			"retentionDays", s.RetentionDays,
		)
	}
}

// sendHearingReminders fans out a reminder for every hearing scheduled in
// the next 24 hours
func (s *Scheduler) sendHearingReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	filter := bson.M{
		"hearing.status": models.HearingStatusScheduled,
		"hearing.hearingDate": bson.M{
			"$gte": primitive.NewDateTimeFromTime(now),
			"$lt":  primitive.NewDateTimeFromTime(now.Add(24 * time.Hour)),
		},
	}
	hearings, err := s.Hearings.Find(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to find upcoming hearings", "error", err)
		return
	}

	for _, hearing := range hearings {
		cID, err := primitive.ObjectIDFromHex(hearing.Details.CaseID)
		if err != nil {
			continue
		}
		parent, err := s.Cases.FindOne(ctx, bson.M{"_id": cID})
		if err != nil {
			zap.S().Errorw("failed to load case for hearing reminder",
				"caseId", hearing.Details.CaseID,
				"hearingId", hearing.ID.Hex(),
				"error", err,
			)
			continue
		}
		s.Notifier.FanOut(parent, notifier.EventHearingReminder, map[string]interface{}{
			"hearingId":   hearing.ID.Hex(),
			"hearingDate": hearing.Details.HearingDate.Time().Format(time.RFC3339),
			"courtRoom":   hearing.Details.CourtRoom,
		})
	}
	if len(hearings) > 0 {
		zap.S().Infow("hearing reminders dispatched", "count", len(hearings))
	}
}
