package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/courtflow/court-case-api/databases/mocks"
	"github.com/courtflow/court-case-api/models"
)

// captureMailer records every send and can be told to fail for one address
type captureMailer struct {
	mu      sync.Mutex
	sends   []string
	failFor string
	done    chan struct{}
	expect  int
}

func newCaptureMailer(expect int) *captureMailer {
	return &captureMailer{done: make(chan struct{}), expect: expect}
}

func (m *captureMailer) Send(ctx context.Context, address, template string, data map[string]interface{}) error {
	m.mu.Lock()
	m.sends = append(m.sends, address)
	if len(m.sends) == m.expect {
		close(m.done)
	}
	m.mu.Unlock()
	if address == m.failFor {
		return errors.New("smtp rejected")
	}
	return nil
}

func (m *captureMailer) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %d sends, got %v", m.expect, m.sends)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sends...)
}

func testCase(filerID string) *models.Case {
	return &models.Case{
		ID: primitive.NewObjectID(),
		Details: models.CaseDetails{
			CaseNumber: "CRL-42",
			Title:      "State v. Roe",
			Status:     models.CaseStatusAdmitted,
			FilerID:    filerID,
		},
	}
}

func TestFanOutReachesFilerAndParties(t *testing.T) {
	filerID := primitive.NewObjectID()
	linkedID := primitive.NewObjectID()
	c := testCase(filerID.Hex())

	userDB := mocks.NewUserDatabase(t)
	userDB.On("FindOne", mock.Anything, bson.M{"_id": filerID}).
		Return(&models.User{ID: filerID, Details: models.UserDetails{Email: "filer@example.org"}}, nil)
	userDB.On("FindOne", mock.Anything, bson.M{"_id": linkedID}).
		Return(&models.User{ID: linkedID, Details: models.UserDetails{Email: "linked@example.org"}}, nil)

	partyDB := mocks.NewCasePartyDatabase(t)
	partyDB.On("Find", mock.Anything, bson.M{"party.caseID": c.ID.Hex()}).
		Return([]models.CaseParty{
			{Details: models.CasePartyDetails{Name: "Linked", UserID: linkedID.Hex(), Email: "stale@example.org"}},
			{Details: models.CasePartyDetails{Name: "Freeform", Email: "freeform@example.org"}},
			{Details: models.CasePartyDetails{Name: "Unreachable"}},
		}, nil)

	mailer := newCaptureMailer(3)
	d := &Dispatcher{Parties: partyDB, Users: userDB, Mailer: mailer, Workers: 2}
	d.Start()
	defer d.Stop()

	d.FanOut(c, EventStatusChanged, map[string]interface{}{"newStatus": "admitted"})

	sends := mailer.wait(t)
	assert.ElementsMatch(t, []string{"filer@example.org", "linked@example.org", "freeform@example.org"}, sends)
}

func TestFanOutFailureDoesNotBlockOthers(t *testing.T) {
	filerID := primitive.NewObjectID()
	c := testCase(filerID.Hex())

	userDB := mocks.NewUserDatabase(t)
	userDB.On("FindOne", mock.Anything, bson.M{"_id": filerID}).
		Return(&models.User{ID: filerID, Details: models.UserDetails{Email: "filer@example.org"}}, nil)

	partyDB := mocks.NewCasePartyDatabase(t)
	partyDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.CaseParty{
			{Details: models.CasePartyDetails{Name: "A", Email: "a@example.org"}},
			{Details: models.CasePartyDetails{Name: "B", Email: "b@example.org"}},
		}, nil)

	mailer := newCaptureMailer(3)
	mailer.failFor = "a@example.org"
	d := &Dispatcher{Parties: partyDB, Users: userDB, Mailer: mailer, Workers: 1}
	d.Start()
	defer d.Stop()

	d.FanOut(c, EventStatusChanged, nil)

	sends := mailer.wait(t)
	assert.ElementsMatch(t, []string{"filer@example.org", "a@example.org", "b@example.org"}, sends)
}

func TestFanOutDeduplicatesSharedAddress(t *testing.T) {
	c := testCase("")

	partyDB := mocks.NewCasePartyDatabase(t)
	partyDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.CaseParty{
			{Details: models.CasePartyDetails{Name: "Counsel A", Email: "chambers@example.org"}},
			{Details: models.CasePartyDetails{Name: "Counsel B", Email: "chambers@example.org"}},
		}, nil)

	mailer := newCaptureMailer(1)
	d := &Dispatcher{Parties: partyDB, Users: mocks.NewUserDatabase(t), Mailer: mailer, Workers: 1}
	d.Start()
	defer d.Stop()

	d.FanOut(c, EventHearingScheduled, nil)

	sends := mailer.wait(t)
	assert.Equal(t, []string{"chambers@example.org"}, sends)
}

func TestFanOutConfidentialDocumentSuppressed(t *testing.T) {
	c := testCase("")

	mailer := newCaptureMailer(1)
	d := &Dispatcher{Parties: mocks.NewCasePartyDatabase(t), Users: mocks.NewUserDatabase(t), Mailer: mailer, Workers: 1}
	d.Start()
	defer d.Stop()

	d.FanOut(c, EventDocumentUploaded, map[string]interface{}{"isConfidential": true})

	select {
	case <-mailer.done:
		t.Fatal("confidential document must not fan out")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFanOutBeforeStartIsNoOp(t *testing.T) {
	d := &Dispatcher{}
	// must not panic
	d.FanOut(testCase(""), EventStatusChanged, nil)
}

func TestFanOutPushesToLinkedUsers(t *testing.T) {
	linkedID := primitive.NewObjectID()
	c := testCase("")

	userDB := mocks.NewUserDatabase(t)
	userDB.On("FindOne", mock.Anything, bson.M{"_id": linkedID}).
		Return(&models.User{ID: linkedID, Details: models.UserDetails{Email: "linked@example.org"}}, nil)

	partyDB := mocks.NewCasePartyDatabase(t)
	partyDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.CaseParty{
			{Details: models.CasePartyDetails{Name: "Linked", UserID: linkedID.Hex()}},
		}, nil)

	pushed := make(chan string, 1)
	mailer := newCaptureMailer(1)
	d := &Dispatcher{
		Parties: partyDB,
		Users:   userDB,
		Mailer:  mailer,
		Pusher:  pusherFunc(func(userID string, payload interface{}) { pushed <- userID }),
		Workers: 1,
	}
	d.Start()
	defer d.Stop()

	d.FanOut(c, EventStatusChanged, nil)
	mailer.wait(t)

	select {
	case userID := <-pushed:
		assert.Equal(t, linkedID.Hex(), userID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an in-app push for the linked party")
	}
}

type pusherFunc func(userID string, payload interface{})

func (f pusherFunc) Push(userID string, payload interface{}) { f(userID, payload) }

func TestResolveAddressPrefersLinkedAccount(t *testing.T) {
	linked := map[string]string{"u1": "account@example.org"}

	address, ok := ResolveAddress(models.CasePartyDetails{UserID: "u1", Email: "freeform@example.org"}, linked)

	assert.True(t, ok)
	assert.Equal(t, "account@example.org", address)
}

func TestResolveAddressFallsBackToFreeform(t *testing.T) {
	address, ok := ResolveAddress(models.CasePartyDetails{UserID: "u2", Email: "freeform@example.org"}, map[string]string{})

	assert.True(t, ok)
	assert.Equal(t, "freeform@example.org", address)
}

func TestResolveAddressNoContact(t *testing.T) {
	_, ok := ResolveAddress(models.CasePartyDetails{Name: "No Contact"}, nil)

	assert.False(t, ok)
}

func TestFanOutFilerLookupFailureSkipsFiler(t *testing.T) {
	filerID := primitive.NewObjectID()
	c := testCase(filerID.Hex())

	userDB := mocks.NewUserDatabase(t)
	userDB.On("FindOne", mock.Anything, bson.M{"_id": filerID}).
		Return(nil, mongo.ErrNoDocuments)

	partyDB := mocks.NewCasePartyDatabase(t)
	partyDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.CaseParty{
			{Details: models.CasePartyDetails{Name: "A", Email: "a@example.org"}},
		}, nil)

	mailer := newCaptureMailer(1)
	d := &Dispatcher{Parties: partyDB, Users: userDB, Mailer: mailer, Workers: 1}
	d.Start()
	defer d.Stop()

	d.FanOut(c, EventStatusChanged, nil)

	sends := mailer.wait(t)
	assert.Equal(t, []string{"a@example.org"}, sends)
}
