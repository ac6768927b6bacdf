package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/courtflow/court-case-api/databases/mocks"
	"github.com/courtflow/court-case-api/models"
	"github.com/courtflow/court-case-api/services/notifier"
)

type recordedFanOut struct {
	c       *models.Case
	event   notifier.Event
	payload map[string]interface{}
}

// fanOutRecorder captures fan-out calls synchronously for assertions
type fanOutRecorder struct {
	calls []recordedFanOut
}

func (f *fanOutRecorder) FanOut(c *models.Case, event notifier.Event, payload map[string]interface{}) {
	f.calls = append(f.calls, recordedFanOut{c: c, event: event, payload: payload})
}

// pipelineSet unwraps the $set stage of a pipeline update
func pipelineSet(update interface{}) (bson.M, bool) {
	pipeline, ok := update.(mongo.Pipeline)
	if !ok || len(pipeline) != 1 || len(pipeline[0]) != 1 || pipeline[0][0].Key != "$set" {
		return nil, false
	}
	set, ok := pipeline[0][0].Value.(bson.M)
	return set, ok
}

// dateGuard reports whether the $set stamps the field only when it is
// still unset, by routing it through $ifNull on its current value
func dateGuard(set bson.M, field string) bool {
	guard, ok := set[field].(bson.M)
	if !ok {
		return false
	}
	ifNull, ok := guard["$ifNull"].(bson.A)
	return ok && len(ifNull) == 2 && ifNull[0] == "$"+field
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	svc := &CaseService{Cases: mocks.NewCaseDatabase(t)}

	_, err := svc.Transition(context.Background(), primitive.NewObjectID().Hex(), "bogus")

	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTransitionRejectsMalformedCaseID(t *testing.T) {
	svc := &CaseService{Cases: mocks.NewCaseDatabase(t)}

	_, err := svc.Transition(context.Background(), "not-a-hex-id", models.CaseStatusAdmitted)

	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTransitionMissingCase(t *testing.T) {
	mockDB := mocks.NewCaseDatabase(t)
	mockDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	svc := &CaseService{Cases: mockDB}
	_, err := svc.Transition(context.Background(), primitive.NewObjectID().Hex(), models.CaseStatusClosed)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionStampsAdmissionDateOnce(t *testing.T) {
	caseID := primitive.NewObjectID()
	existing := &models.Case{ID: caseID, Details: models.CaseDetails{Status: models.CaseStatusFiled}}
	updated := &models.Case{ID: caseID, Details: models.CaseDetails{Status: models.CaseStatusAdmitted}}

	mockDB := mocks.NewCaseDatabase(t)
	mockDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).Return(existing, nil)
	mockDB.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": caseID}, mock.MatchedBy(func(update interface{}) bool {
		set, ok := pipelineSet(update)
		return ok && dateGuard(set, "case.admissionDate") && set["case.status"] == models.CaseStatusAdmitted
	}), mock.Anything).Return(updated, nil)

	recorder := &fanOutRecorder{}
	svc := &CaseService{Cases: mockDB, Notifier: recorder}

	got, err := svc.Transition(context.Background(), caseID.Hex(), models.CaseStatusAdmitted)

	assert.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.Len(t, recorder.calls, 1)
	assert.Equal(t, notifier.EventStatusChanged, recorder.calls[0].event)
	assert.Equal(t, models.CaseStatusFiled, recorder.calls[0].payload["previousStatus"])
}

func TestTransitionRepeatDoesNotRestampButRenotifies(t *testing.T) {
	caseID := primitive.NewObjectID()
	stamped := primitive.NewDateTimeFromTime(time.Now().Add(-24 * time.Hour))
	existing := &models.Case{ID: caseID, Details: models.CaseDetails{
		Status:        models.CaseStatusAdmitted,
		AdmissionDate: &stamped,
	}}

	mockDB := mocks.NewCaseDatabase(t)
	mockDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).Return(existing, nil)
	mockDB.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": caseID}, mock.MatchedBy(func(update interface{}) bool {
		// the stamp must defer to the stored date even when this writer
		// believes the date is already set, so a racing first transition
		// cannot be overwritten
		set, ok := pipelineSet(update)
		return ok && dateGuard(set, "case.admissionDate")
	}), mock.Anything).Return(existing, nil)

	recorder := &fanOutRecorder{}
	svc := &CaseService{Cases: mockDB, Notifier: recorder}

	_, err := svc.Transition(context.Background(), caseID.Hex(), models.CaseStatusAdmitted)

	assert.NoError(t, err)
	assert.Len(t, recorder.calls, 1, "a no-op transition still notifies")
}

func TestTransitionStampsJudgmentDate(t *testing.T) {
	caseID := primitive.NewObjectID()
	existing := &models.Case{ID: caseID, Details: models.CaseDetails{Status: models.CaseStatusHearing}}

	mockDB := mocks.NewCaseDatabase(t)
	mockDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).Return(existing, nil)
	mockDB.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": caseID}, mock.MatchedBy(func(update interface{}) bool {
		set, ok := pipelineSet(update)
		return ok && dateGuard(set, "case.judgmentDate")
	}), mock.Anything).Return(existing, nil)

	svc := &CaseService{Cases: mockDB, Notifier: &fanOutRecorder{}}

	_, err := svc.Transition(context.Background(), caseID.Hex(), models.CaseStatusJudgment)

	assert.NoError(t, err)
}

func TestTransitionPlainStatusLeavesDatesAlone(t *testing.T) {
	caseID := primitive.NewObjectID()
	existing := &models.Case{ID: caseID, Details: models.CaseDetails{Status: models.CaseStatusAdmitted}}

	mockDB := mocks.NewCaseDatabase(t)
	mockDB.On("FindOne", mock.Anything, bson.M{"_id": caseID}).Return(existing, nil)
	mockDB.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": caseID}, mock.MatchedBy(func(update interface{}) bool {
		set, ok := pipelineSet(update)
		if !ok {
			return false
		}
		_, admission := set["case.admissionDate"]
		_, judgment := set["case.judgmentDate"]
		return !admission && !judgment && set["case.status"] == models.CaseStatusClosed
	}), mock.Anything).Return(existing, nil)

	svc := &CaseService{Cases: mockDB, Notifier: &fanOutRecorder{}}

	_, err := svc.Transition(context.Background(), caseID.Hex(), models.CaseStatusClosed)

	assert.NoError(t, err)
}
