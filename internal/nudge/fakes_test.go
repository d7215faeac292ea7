package nudge

import (
	"context"
	"time"

	"tripscout/internal/models"
	"tripscout/pkg/mailer"

	"gorm.io/gorm"
)

type fakeTrips struct {
	trips []models.Trip
	err   error
}

func (f *fakeTrips) ListActiveWithDates() ([]models.Trip, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Trip
	for _, t := range f.trips {
		if t.Status == "active" && t.DatesStart != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTrips) GetByID(id uint) (*models.Trip, error) {
	for i := range f.trips {
		if f.trips[i].ID == id {
			return &f.trips[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeTasks struct {
	tasks   map[uint][]models.Task
	stamped []uint
	err     error
}

func (f *fakeTasks) ListOpenByTrip(tripID uint) ([]models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Task
	for _, t := range f.tasks[tripID] {
		if t.Open() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) StampReminder(id uint, at time.Time) error {
	f.stamped = append(f.stamped, id)
	return nil
}

type fakeParticipants struct {
	participants []models.Participant
	missing      map[uint]bool // ids that vanish between scan and dispatch
}

func (f *fakeParticipants) ListConfirmed(tripID uint) ([]models.Participant, error) {
	var out []models.Participant
	for _, p := range f.participants {
		if p.TripID == tripID && p.Status == "confirmed" {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipants) GetByID(id uint) (*models.Participant, error) {
	if f.missing[id] {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range f.participants {
		if f.participants[i].ID == id {
			return &f.participants[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeLedger struct {
	records   []*models.Notification
	nextID    uint
	insertErr error
}

func (l *fakeLedger) Insert(n *models.Notification) (bool, error) {
	if l.insertErr != nil {
		return false, l.insertErr
	}
	if n.DedupKey != nil {
		for _, r := range l.records {
			if r.DedupKey != nil && *r.DedupKey == *n.DedupKey {
				return false, nil
			}
		}
	}
	l.nextID++
	n.ID = l.nextID
	if n.CreatedAt.IsZero() {
		if !n.ScheduledAt.IsZero() {
			n.CreatedAt = n.ScheduledAt
		} else {
			n.CreatedAt = time.Now().UTC()
		}
	}
	l.records = append(l.records, n)
	return true, nil
}

func (l *fakeLedger) IsDuplicate(tripID uint, taskID *uint, triggerType string, participantID uint, since time.Time) (bool, error) {
	for _, r := range l.records {
		if r.TripID != tripID || r.TriggerType != triggerType || r.ParticipantID != participantID {
			continue
		}
		if taskID != nil && (r.TaskID == nil || *r.TaskID != *taskID) {
			continue
		}
		if r.Status != "sent" && r.Status != "pending" {
			continue
		}
		if r.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) CountSentSince(participantID uint, since time.Time) (int64, error) {
	var count int64
	for _, r := range l.records {
		if r.ParticipantID == participantID && r.Status == "sent" && r.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (l *fakeLedger) find(id uint) *models.Notification {
	for _, r := range l.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (l *fakeLedger) MarkSent(id uint, messageID string) error {
	if r := l.find(id); r != nil {
		now := time.Now().UTC()
		r.Status = "sent"
		r.SentAt = &now
	}
	return nil
}

func (l *fakeLedger) MarkFailed(id uint, errMsg string) error {
	if r := l.find(id); r != nil {
		r.Status = "failed"
		r.Error = errMsg
	}
	return nil
}

func (l *fakeLedger) MarkSkipped(id uint, reason string) error {
	if r := l.find(id); r != nil {
		r.Status = "skipped"
		r.Error = reason
	}
	return nil
}

// byStatus filters ledger records by channel and status.
func (l *fakeLedger) byStatus(channel, status string) []*models.Notification {
	var out []*models.Notification
	for _, r := range l.records {
		if r.Channel == channel && r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

type sentEmail struct {
	TemplateKey string
	To          string
	Vars        map[string]string
}

type fakeMailer struct {
	sent    []sentEmail
	failFor map[string]string // recipient address -> error string
}

func (m *fakeMailer) SendTemplate(ctx context.Context, templateKey, to string, vars map[string]string) mailer.Result {
	m.sent = append(m.sent, sentEmail{TemplateKey: templateKey, To: to, Vars: vars})
	if msg, ok := m.failFor[to]; ok {
		return mailer.Result{Error: msg}
	}
	return mailer.Result{Success: true, MessageID: "re_123"}
}

type fakeGenerator struct {
	msg    Message
	err    error
	inputs []MessageInput
}

func (g *fakeGenerator) Generate(ctx context.Context, in MessageInput) (Message, error) {
	g.inputs = append(g.inputs, in)
	if g.err != nil {
		return Message{}, g.err
	}
	return g.msg, nil
}

type loggedEvent struct {
	TripID    uint
	EventType string
	Actor     string
}

type fakeEvents struct {
	logged []loggedEvent
	err    error
}

func (f *fakeEvents) Log(tripID uint, eventType, actor string, actorID *uint, payload map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.logged = append(f.logged, loggedEvent{TripID: tripID, EventType: eventType, Actor: actor})
	return nil
}

type fakeSettingsSource struct {
	values map[string]string
	err    error
	calls  int
}

func (f *fakeSettingsSource) GetAll() (map[string]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

// testEnv bundles an engine with all its fakes.
type testEnv struct {
	engine       *Engine
	trips        *fakeTrips
	tasks        *fakeTasks
	participants *fakeParticipants
	ledger       *fakeLedger
	mailer       *fakeMailer
	gen          *fakeGenerator
	events       *fakeEvents
	source       *fakeSettingsSource
	now          time.Time
}

func newTestEnv(now time.Time, settings map[string]string) *testEnv {
	if settings == nil {
		settings = SeedDefaults()
	}
	env := &testEnv{
		trips:        &fakeTrips{},
		tasks:        &fakeTasks{tasks: map[uint][]models.Task{}},
		participants: &fakeParticipants{},
		ledger:       &fakeLedger{},
		mailer:       &fakeMailer{},
		gen:          &fakeGenerator{msg: Message{Subject: "Trip reminder", Body: "Time to get ready."}},
		events:       &fakeEvents{},
		source:       &fakeSettingsSource{values: settings},
		now:          now,
	}
	env.engine = NewEngine(Deps{
		Settings:     NewSettingsCache(env.source, func() time.Time { return env.now }),
		Trips:        env.trips,
		Tasks:        env.tasks,
		Participants: env.participants,
		Ledger:       env.ledger,
		Events:       env.events,
		Generator:    env.gen,
		Mailer:       env.mailer,
		Now:          func() time.Time { return env.now },
	})
	return env
}

func (env *testEnv) addTrip(id uint, title string, startInDays int) {
	start := env.now.Add(time.Duration(startInDays) * 24 * time.Hour)
	env.trips.trips = append(env.trips.trips, models.Trip{
		ID:         id,
		Slug:       title,
		Title:      title,
		Status:     "active",
		Region:     "Florida Keys",
		DatesStart: &start,
	})
}

func (env *testEnv) addParticipant(id, tripID uint, name, email, role, status string) {
	env.participants.participants = append(env.participants.participants, models.Participant{
		ID: id, TripID: tripID, Name: name, Email: email, Role: role, Status: status,
	})
}

// newSentRecord fabricates a prior sent ledger row for rate-limit setups.
func newSentRecord(tripID, participantID uint, trigger string, at time.Time) *models.Notification {
	sentAt := at
	return &models.Notification{
		TripID:        tripID,
		ParticipantID: participantID,
		TriggerType:   trigger,
		Channel:       "in_app",
		Status:        "sent",
		ScheduledAt:   at,
		SentAt:        &sentAt,
		CreatedAt:     at,
	}
}

// newClaimedRecord fabricates a row holding a dedup claim without being
// visible to the read-side pre-check (status skipped).
func newClaimedRecord(key string) *models.Notification {
	return &models.Notification{
		Channel:  "in_app",
		Status:   "skipped",
		DedupKey: &key,
	}
}

func (env *testEnv) addTask(id, tripID uint, title string, deadlineInDays int, assignedTo *uint) {
	deadline := env.now.Add(time.Duration(deadlineInDays) * 24 * time.Hour)
	env.tasks.tasks[tripID] = append(env.tasks.tasks[tripID], models.Task{
		ID: id, TripID: tripID, Type: "booking", Title: title,
		Deadline: &deadline, Status: "pending", AssignedTo: assignedTo,
	})
}
