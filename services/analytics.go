package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
)

// AnalyticsService records case view events and computes read-side
// aggregations over the append-only event log
type AnalyticsService struct {
	Views databases.ViewEventDatabase
	Cases databases.CaseDatabase

	// Now is swappable for deterministic trending windows in tests
	Now func() time.Time
}

// NewAnalyticsService wires the analytics engine against the given stores
func NewAnalyticsService(views databases.ViewEventDatabase, cases databases.CaseDatabase) *AnalyticsService {
	return &AnalyticsService{Views: views, Cases: cases, Now: time.Now}
}

type rankedRow struct {
	CaseID    string   `bson:"_id"`
	ViewCount int      `bson:"viewCount"`
	Viewers   []string `bson:"viewers"`
}

type peakHourRow struct {
	Hour  int `bson:"_id"`
	Count int `bson:"count"`
}

type dayRow struct {
	Date      string   `bson:"_id"`
	Count     int      `bson:"count"`
	Viewers   []string `bson:"viewers"`
	Anonymous int      `bson:"anonymous"`
}

// TrackView appends one view event for the case and bumps its denormalized
// viewCount. There is no deduplication window; repeated rapid views all count.
func (s *AnalyticsService) TrackView(ctx context.Context, caseID, userID, ipAddress, userAgent string) error {
	cID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		return fmt.Errorf("invalid case id %q: %w", caseID, ErrInvalidArgument)
	}
	if _, err := s.Cases.FindOne(ctx, bson.M{"_id": cID}); err != nil {
		return storeErr("case", err)
	}

	event := models.ViewEvent{
		ID: primitive.NewObjectID(),
		Details: models.ViewEventDetails{
			CaseID:    caseID,
			UserID:    userID,
			IPAddress: ipAddress,
			UserAgent: userAgent,
			ViewedAt:  primitive.NewDateTimeFromTime(s.Now()),
		},
	}
	if _, err := s.Views.InsertOne(ctx, event); err != nil {
		return storeErr("view event", err)
	}

	err = s.Cases.UpdateOne(ctx, bson.M{"_id": cID}, bson.M{"$inc": bson.M{"case.viewCount": 1}})
	if err != nil {
		zap.S().Errorw("failed to bump case view count", "caseId", caseID, "error", err)
	}
	return nil
}

// Trending ranks cases by view volume inside a rolling window of windowDays,
// ties broken by case id for reproducible ordering
func (s *AnalyticsService) Trending(ctx context.Context, windowDays, limit int) ([]models.TrendingCase, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("window days must be positive: %w", ErrInvalidArgument)
	}
	cutoff := primitive.NewDateTimeFromTime(s.Now().AddDate(0, 0, -windowDays))
	match := bson.D{{Key: "$match", Value: bson.M{"viewEvent.viewedAt": bson.M{"$gte": cutoff}}}}
	return s.rank(ctx, &match, limit)
}

// MostViewed ranks cases by all-time view volume
func (s *AnalyticsService) MostViewed(ctx context.Context, limit int) ([]models.TrendingCase, error) {
	return s.rank(ctx, nil, limit)
}

func (s *AnalyticsService) rank(ctx context.Context, match *bson.D, limit int) ([]models.TrendingCase, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive: %w", ErrInvalidArgument)
	}

	pipeline := mongo.Pipeline{}
	if match != nil {
		pipeline = append(pipeline, *match)
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.M{
			"_id":       "$viewEvent.caseID",
			"viewCount": bson.M{"$sum": 1},
			"viewers":   bson.M{"$addToSet": bson.M{"$ifNull": bson.A{"$viewEvent.userID", ""}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "viewCount", Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$limit", Value: int64(limit)}},
	)

	cursor, err := s.Views.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr("view events", err)
	}
	defer cursor.Close(ctx)

	var rows []rankedRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr("view events", err)
	}

	results := make([]models.TrendingCase, 0, len(rows))
	for _, row := range rows {
		results = append(results, models.TrendingCase{
			CaseID:            row.CaseID,
			ViewCount:         row.ViewCount,
			UniqueViewerCount: countRegistered(row.Viewers),
		})
	}
	s.attachSummaries(ctx, results)
	return results, nil
}

// attachSummaries decorates ranking rows with case number/title/status. The
// rankings themselves stand even when the summary lookup fails.
func (s *AnalyticsService) attachSummaries(ctx context.Context, rows []models.TrendingCase) {
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		if id, err := primitive.ObjectIDFromHex(row.CaseID); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	cases, err := s.Cases.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		zap.S().Errorw("failed to load case summaries for ranking", "error", err)
		return
	}
	byID := make(map[string]models.Case, len(cases))
	for _, c := range cases {
		byID[c.ID.Hex()] = c
	}
	for i := range rows {
		if c, ok := byID[rows[i].CaseID]; ok {
			rows[i].CaseNumber = c.Details.CaseNumber
			rows[i].Title = c.Details.Title
			rows[i].Status = c.Details.Status
		}
	}
}

// PeakHours buckets all-time view events by hour of day, busiest first.
// Hours with no views are omitted rather than zero-filled.
func (s *AnalyticsService) PeakHours(ctx context.Context) ([]models.PeakHour, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$hour": "$viewEvent.viewedAt"},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := s.Views.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr("view events", err)
	}
	defer cursor.Close(ctx)

	var rows []peakHourRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr("view events", err)
	}

	hours := make([]models.PeakHour, 0, len(rows))
	for _, row := range rows {
		hours = append(hours, models.PeakHour{Hour: row.Hour, Count: row.Count})
	}
	return hours, nil
}

// DateRangeStatistics aggregates view activity between start and end
// inclusive, bucketed per day
func (s *AnalyticsService) DateRangeStatistics(ctx context.Context, start, end time.Time) (*models.DateRangeStats, error) {
	if start.After(end) {
		return nil, fmt.Errorf("start date after end date: %w", ErrInvalidArgument)
	}
	from := primitive.NewDateTimeFromTime(start.UTC().Truncate(24 * time.Hour))
	until := primitive.NewDateTimeFromTime(end.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour))

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"viewEvent.viewedAt": bson.M{"$gte": from, "$lt": until},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$viewEvent.viewedAt"}},
			"count":   bson.M{"$sum": 1},
			"viewers": bson.M{"$addToSet": bson.M{"$ifNull": bson.A{"$viewEvent.userID", ""}}},
			"anonymous": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{bson.M{"$ifNull": bson.A{"$viewEvent.userID", ""}}, ""}}, 1, 0,
			}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := s.Views.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr("view events", err)
	}
	defer cursor.Close(ctx)

	var rows []dayRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr("view events", err)
	}

	stats := &models.DateRangeStats{PerDay: make([]models.DayCount, 0, len(rows))}
	uniqueUsers := make(map[string]struct{})
	for _, row := range rows {
		stats.Total += row.Count
		stats.AnonymousViews += row.Anonymous
		for _, viewer := range row.Viewers {
			if viewer != "" {
				uniqueUsers[viewer] = struct{}{}
			}
		}
		stats.PerDay = append(stats.PerDay, models.DayCount{Date: row.Date, Count: row.Count})
	}
	stats.UniqueUsers = len(uniqueUsers)
	sort.Slice(stats.PerDay, func(i, j int) bool { return stats.PerDay[i].Date < stats.PerDay[j].Date })
	return stats, nil
}

func countRegistered(viewers []string) int {
	n := 0
	for _, v := range viewers {
		if v != "" {
			n++
		}
	}
	return n
}
