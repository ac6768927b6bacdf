package notifier

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
)

// Event names a case happening that fans out to stakeholders
type Event string

// Events the dispatcher knows how to deliver
const (
	EventStatusChanged    Event = "case.status_changed"
	EventHearingScheduled Event = "case.hearing_scheduled"
	EventHearingUpdated   Event = "case.hearing_updated"
	EventDocumentUploaded Event = "case.document_uploaded"
	EventHearingReminder  Event = "case.hearing_reminder"
)

// Mailer is the outbound mail transport. Send must honor ctx so a slow
// transport cannot starve the worker pool.
type Mailer interface {
	Send(ctx context.Context, address, template string, data map[string]interface{}) error
}

// Pusher delivers an in-app payload to a connected registered user
type Pusher interface {
	Push(userID string, payload interface{})
}

type delivery struct {
	address string
	userID  string
	event   Event
	caseID  string
	data    map[string]interface{}
}

// Dispatcher fans one case event out to all stakeholders through a bounded
// worker pool. FanOut returns immediately; delivery failures are terminal
// here and only logged, so the triggering operation never sees them.
type Dispatcher struct {
	Parties databases.CasePartyDatabase
	Users   databases.UserDatabase
	Mailer  Mailer
	Pusher  Pusher // optional in-app push alongside email

	Workers     int           // worker pool size, default 4
	QueueSize   int           // pending delivery buffer, default 64
	SendTimeout time.Duration // per-send budget, default 10s

	queue chan delivery
	wg    sync.WaitGroup
	once  sync.Once
}

// Start spins up the worker pool. Must be called before FanOut.
func (d *Dispatcher) Start() {
	d.once.Do(func() {
		if d.Workers <= 0 {
			d.Workers = 4
		}
		if d.QueueSize <= 0 {
			d.QueueSize = 64
		}
		if d.SendTimeout <= 0 {
			d.SendTimeout = 10 * time.Second
		}
		d.queue = make(chan delivery, d.QueueSize)
		for i := 0; i < d.Workers; i++ {
			d.wg.Add(1)
			go d.worker()
		}
	})
}

// Stop drains the queue and waits for in-flight sends to finish
func (d *Dispatcher) Stop() {
	if d.queue == nil {
		return
	}
	close(d.queue)
	d.wg.Wait()
}

// FanOut dispatches the event to the case's filer and parties. It never
// blocks the caller: recipient resolution and delivery run detached.
// A confidential document suppresses the entire fan-out.
func (d *Dispatcher) FanOut(c *models.Case, event Event, payload map[string]interface{}) {
	if c == nil || d.queue == nil {
		return
	}
	if event == EventDocumentUploaded {
		if confidential, _ := payload["isConfidential"].(bool); confidential {
			zap.S().Infow("confidential document, fan-out suppressed", "caseId", c.ID.Hex())
			return
		}
	}
	snapshot := *c
	go d.resolveAndEnqueue(&snapshot, event, payload)
}

func (d *Dispatcher) resolveAndEnqueue(c *models.Case, event Event, payload map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data := map[string]interface{}{
		"caseId":     c.ID.Hex(),
		"caseNumber": c.Details.CaseNumber,
		"caseTitle":  c.Details.Title,
	}
	for k, v := range payload {
		data[k] = v
	}

	for address, userID := range d.recipients(ctx, c) {
		d.queue <- delivery{
			address: address,
			userID:  userID,
			event:   event,
			caseID:  c.ID.Hex(),
			data:    data,
		}
	}
}

// recipients resolves the case's filer and parties into a set of delivery
// addresses, deduplicated by address. The map value is the recipient's user
// id when one is linked, for in-app push.
func (d *Dispatcher) recipients(ctx context.Context, c *models.Case) map[string]string {
	out := make(map[string]string)

	linked := make(map[string]string) // userID -> email
	if c.Details.FilerID != "" {
		d.lookupEmail(ctx, c.Details.FilerID, linked)
		if email := linked[c.Details.FilerID]; email != "" {
			out[email] = c.Details.FilerID
		}
	}

	parties, err := d.Parties.Find(ctx, bson.M{"party.caseID": c.ID.Hex()})
	if err != nil {
		zap.S().Errorw("failed to load case parties for fan-out", "caseId", c.ID.Hex(), "error", err)
		return out
	}
	for _, p := range parties {
		if p.Details.UserID != "" {
			d.lookupEmail(ctx, p.Details.UserID, linked)
		}
	}
	for _, p := range parties {
		address, ok := ResolveAddress(p.Details, linked)
		if !ok {
			continue
		}
		if _, dup := out[address]; dup {
			continue
		}
		out[address] = p.Details.UserID
	}
	return out
}

func (d *Dispatcher) lookupEmail(ctx context.Context, userID string, into map[string]string) {
	if _, ok := into[userID]; ok {
		return
	}
	oid, err := objectID(userID)
	if err != nil {
		return
	}
	user, err := d.Users.FindOne(ctx, bson.M{"_id": oid})
	if err != nil {
		zap.S().Debugw("linked account lookup failed", "userId", userID, "error", err)
		into[userID] = ""
		return
	}
	into[userID] = user.Details.Email
}

// ResolveAddress picks the delivery address for a party: a linked registered
// account's email wins over the party's own freeform email; a party lacking
// both contributes no recipient.
func ResolveAddress(p models.CasePartyDetails, linkedEmails map[string]string) (string, bool) {
	if p.UserID != "" {
		if email := linkedEmails[p.UserID]; email != "" {
			return email, true
		}
	}
	if p.Email != "" {
		return p.Email, true
	}
	return "", false
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.SendTimeout)
		err := d.Mailer.Send(ctx, job.address, templateFor(job.event), job.data)
		cancel()
		if err != nil {
			// logged with enough context to reconcile later; no retry
			zap.S().Errorw("notification delivery failed",
				"caseId", job.caseID,
				"recipient", job.address,
				"event", string(job.event),
				"error", err,
			)
		}
		if d.Pusher != nil && job.userID != "" {
			d.Pusher.Push(job.userID, map[string]interface{}{
				"event": string(job.event),
				"data":  job.data,
			})
		}
	}
}

func objectID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}

func templateFor(e Event) string {
	switch e {
	case EventStatusChanged:
		return "case-status-changed"
	case EventHearingScheduled:
		return "hearing-scheduled"
	case EventHearingUpdated:
		return "hearing-updated"
	case EventDocumentUploaded:
		return "document-uploaded"
	case EventHearingReminder:
		return "hearing-reminder"
	}
	return "case-update"
}
