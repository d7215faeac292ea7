package nudge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"tripscout/internal/domain"
	"tripscout/internal/models"
	"tripscout/pkg/mailer"

	"gorm.io/gorm"
)

// dedupWindow is how far back the ledger pre-check looks for an existing
// sent/pending record of the same (trip, task, trigger, recipient).
const dedupWindow = 20 * time.Hour

// Ledger is the engine's view of the notification table: the system of
// record for dedup and audit.
type Ledger interface {
	Insert(n *models.Notification) (bool, error)
	IsDuplicate(tripID uint, taskID *uint, triggerType string, participantID uint, since time.Time) (bool, error)
	CountSentSince(participantID uint, since time.Time) (int64, error)
	MarkSent(id uint, messageID string) error
	MarkFailed(id uint, errMsg string) error
	MarkSkipped(id uint, reason string) error
}

// EventLog appends to a trip's external audit stream. Best-effort.
type EventLog interface {
	Log(tripID uint, eventType, actor string, actorID *uint, payload map[string]interface{}) error
}

// Mailer delivers templated email. Never returns a Go error; failures come
// back inside the Result.
type Mailer interface {
	SendTemplate(ctx context.Context, templateKey, to string, vars map[string]string) mailer.Result
}

// CycleResult is the aggregate outcome of one engine cycle.
type CycleResult struct {
	Processed     int      `json:"processed"`
	Notifications []string `json:"notifications"`
	Errors        []string `json:"errors"`
}

// EventRequest is a one-off nudge submitted outside the scanner (trip
// activated, invitations sent).
type EventRequest struct {
	TripID    uint
	EventType string
	EventText string
}

// Deps wires the engine's collaborators.
type Deps struct {
	Settings     *SettingsCache
	Trips        TripStore
	Tasks        TaskStore
	Participants ParticipantStore
	Ledger       Ledger
	Events       EventLog
	Generator    Generator
	Mailer       Mailer
	Now          func() time.Time
	QueueSize    int
}

// Engine is the nudge engine: scans active trips, decides who is due a
// reminder, and dispatches through the in-app and email channels while
// recording every decision in the ledger.
type Engine struct {
	settings     *SettingsCache
	scanner      *Scanner
	trips        TripStore
	tasks        TaskStore
	participants ParticipantStore
	ledger       Ledger
	events       EventLog
	gen          Generator
	mailer       Mailer
	now          func() time.Time
	eventCh      chan EventRequest
}

func NewEngine(d Deps) *Engine {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.QueueSize <= 0 {
		d.QueueSize = 64
	}
	return &Engine{
		settings:     d.Settings,
		scanner:      NewScanner(d.Trips, d.Tasks, d.Participants),
		trips:        d.Trips,
		tasks:        d.Tasks,
		participants: d.Participants,
		ledger:       d.Ledger,
		events:       d.Events,
		gen:          d.Generator,
		mailer:       d.Mailer,
		now:          d.Now,
		eventCh:      make(chan EventRequest, d.QueueSize),
	}
}

// RunCycle executes one full scan-and-dispatch pass. Safe to call from both
// the scheduler tick and the manual trigger; the ledger's dedup claim keeps
// overlapping invocations from double-sending.
func (e *Engine) RunCycle(ctx context.Context) CycleResult {
	result := CycleResult{Notifications: []string{}, Errors: []string{}}

	settings := e.settings.Load()
	if !settings.Enabled {
		log.Printf("[NudgeCron] Disabled via settings")
		return result
	}

	now := e.now().UTC()
	if inQuietHours(settings, now) {
		log.Printf("[NudgeCron] Quiet hours, skipping")
		return result
	}

	candidates, scanErrs := e.scanner.Scan(now, settings)
	result.Errors = append(result.Errors, scanErrs...)
	log.Printf("[NudgeCron] %d candidates", len(candidates))

	for i := range candidates {
		cand := &candidates[i]
		for _, participantID := range cand.RecipientIDs {
			e.dispatchPair(ctx, settings, cand, participantID, &result)
		}
	}

	log.Printf("[NudgeCron] Done: %d processed, %d emails, %d errors",
		result.Processed, len(result.Notifications), len(result.Errors))
	return result
}

// dispatchPair runs the per-(candidate, recipient) policy: dedup, rate
// limit, resolve, generate, persist, send, record. Errors are contained to
// the pair.
func (e *Engine) dispatchPair(ctx context.Context, settings Settings, cand *Candidate, participantID uint, result *CycleResult) {
	now := e.now().UTC()

	dup, err := e.ledger.IsDuplicate(cand.TripID, cand.TaskID, cand.TriggerType, participantID, now.Add(-dedupWindow))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: dedup check: %v", cand.TriggerType, cand.TripTitle, err))
		return
	}
	if dup {
		return
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sentToday, err := e.ledger.CountSentSince(participantID, dayStart)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: rate limit check: %v", cand.TriggerType, cand.TripTitle, err))
		return
	}
	if sentToday >= int64(settings.MaxPerDay) {
		skipped := &models.Notification{
			TripID:        cand.TripID,
			TaskID:        cand.TaskID,
			ParticipantID: participantID,
			TriggerType:   cand.TriggerType,
			Channel:       domain.ChannelInApp,
			Status:        domain.NotificationSkipped,
			ScheduledAt:   now,
			Error:         "daily_limit_reached",
			Metadata:      marshalContext(cand.Context),
		}
		if _, err := e.ledger.Insert(skipped); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: record skip: %v", cand.TriggerType, cand.TripTitle, err))
		}
		return
	}

	participant, err := e.participants.GetByID(participantID)
	if err != nil {
		// Recipient vanished mid-cycle: abandon the pair, no ledger write.
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: participant %d: %v", cand.TriggerType, cand.TripTitle, participantID, err))
		}
		return
	}

	msg := e.generate(ctx, MessageInput{
		TriggerType:     cand.TriggerType,
		AutomationMode:  cand.AutomationMode,
		TripTitle:       cand.TripTitle,
		TripRegion:      cand.Context["trip_region"],
		TripDates:       cand.Context["trip_dates"],
		TargetSpecies:   cand.Context["target_species"],
		TaskTitle:       cand.TaskTitle,
		TaskType:        cand.Context["task_type"],
		Days:            absInt(cand.DaysUntil),
		HasDays:         true,
		ParticipantName: participant.Name,
	})

	// In-app: creation is delivery. The dedup key makes this insert the
	// atomic claim on the (trip, task, trigger, recipient, day) slot.
	key := dedupKey(cand.TripID, cand.TaskID, cand.TriggerType, participantID, now)
	sentAt := now
	inApp := &models.Notification{
		TripID:        cand.TripID,
		TaskID:        cand.TaskID,
		ParticipantID: participantID,
		TriggerType:   cand.TriggerType,
		Channel:       domain.ChannelInApp,
		Status:        domain.NotificationSent,
		ScheduledAt:   now,
		SentAt:        &sentAt,
		Subject:       msg.Subject,
		Body:          msg.Body,
		Metadata:      marshalContext(cand.Context),
		DedupKey:      &key,
	}
	inserted, err := e.ledger.Insert(inApp)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: ledger insert: %v", cand.TriggerType, cand.TripTitle, err))
		return
	}
	if !inserted {
		// Lost the claim to a concurrent cycle.
		return
	}

	if participant.Email != "" {
		e.sendEmail(ctx, cand.TripID, cand.TaskID, cand.TriggerType, participant, msg, cand.Context, result)
	}

	if cand.TaskID != nil {
		if err := e.tasks.StampReminder(*cand.TaskID, now); err != nil {
			log.Printf("[Nudge] stamp reminder on task %d: %v", *cand.TaskID, err)
		}
	}

	result.Processed++
}

// sendEmail creates the email-channel ledger record and attempts delivery.
// A failure here never rolls back the in-app record.
func (e *Engine) sendEmail(ctx context.Context, tripID uint, taskID *uint, triggerType string, participant *models.Participant, msg Message, candContext map[string]string, result *CycleResult) {
	emailRec := &models.Notification{
		TripID:        tripID,
		TaskID:        taskID,
		ParticipantID: participant.ID,
		TriggerType:   triggerType,
		Channel:       domain.ChannelEmail,
		Status:        domain.NotificationPending,
		ScheduledAt:   e.now().UTC(),
		Subject:       msg.Subject,
		Body:          msg.Body,
		Metadata:      marshalContext(candContext),
	}
	if _, err := e.ledger.Insert(emailRec); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s->%s: email record: %v", triggerType, participant.Email, err))
		return
	}

	templateKey := "nudge_" + triggerType
	vars := make(map[string]string, len(candContext)+3)
	for k, v := range candContext {
		vars[k] = v
	}
	vars["subject"] = msg.Subject
	vars["body"] = msg.Body
	vars["participant_name"] = participant.Name

	res := e.mailer.SendTemplate(ctx, templateKey, participant.Email, vars)
	if res.Success {
		if err := e.ledger.MarkSent(emailRec.ID, res.MessageID); err != nil {
			log.Printf("[Nudge] mark sent %d: %v", emailRec.ID, err)
		}
		result.Notifications = append(result.Notifications, fmt.Sprintf("%s->%s", triggerType, participant.Email))
	} else {
		if err := e.ledger.MarkFailed(emailRec.ID, res.Error); err != nil {
			log.Printf("[Nudge] mark failed %d: %v", emailRec.ID, err)
		}
		result.Errors = append(result.Errors, fmt.Sprintf("%s->%s: %s", templateKey, participant.Email, res.Error))
	}
}

// generate wraps the generator with the canned fallback so a generation
// failure can never abort a cycle.
func (e *Engine) generate(ctx context.Context, in MessageInput) Message {
	if e.gen == nil {
		return FallbackMessage(in.TriggerType)
	}
	msg, err := e.gen.Generate(ctx, in)
	if err != nil || msg.Subject == "" || msg.Body == "" {
		if err != nil {
			log.Printf("[NudgeAI] Generation failed: %v", err)
		}
		return FallbackMessage(in.TriggerType)
	}
	return msg
}

// TriggerEvent submits a one-off event nudge. Fire-and-forget: the request
// is queued for the event worker and failures never reach the caller.
func (e *Engine) TriggerEvent(tripID uint, eventType, eventText string) {
	if eventText == "" {
		eventText = eventType
	}
	select {
	case e.eventCh <- EventRequest{TripID: tripID, EventType: eventType, EventText: eventText}:
	default:
		log.Printf("[Nudge] event queue full, dropping %s for trip %d", eventType, tripID)
	}
}

// runEventWorker drains the event queue until the context is cancelled.
// Started by the scheduler.
func (e *Engine) runEventWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-e.eventCh:
			e.ProcessEvent(ctx, req)
		}
	}
}

// ProcessEvent handles one queued event synchronously: dedup per confirmed
// participant, generate, record in-app + email, then append to the trip's
// event stream. All failures are logged and swallowed.
func (e *Engine) ProcessEvent(ctx context.Context, req EventRequest) {
	settings := e.settings.Load()
	if !settings.Enabled {
		return
	}

	trip, err := e.trips.GetByID(req.TripID)
	if err != nil {
		log.Printf("[Nudge] triggerEvent: trip %d: %v", req.TripID, err)
		return
	}
	participants, err := e.participants.ListConfirmed(req.TripID)
	if err != nil {
		log.Printf("[Nudge] triggerEvent: participants for trip %d: %v", req.TripID, err)
		return
	}

	now := e.now().UTC()
	for i := range participants {
		p := &participants[i]

		dup, err := e.ledger.IsDuplicate(req.TripID, nil, domain.TriggerEvent, p.ID, now.Add(-dedupWindow))
		if err != nil {
			log.Printf("[Nudge] triggerEvent: dedup for participant %d: %v", p.ID, err)
			continue
		}
		if dup {
			continue
		}

		msg := e.generate(ctx, MessageInput{
			TriggerType:     domain.TriggerEvent,
			AutomationMode:  domain.AutomationModeRemind,
			TripTitle:       trip.Title,
			TripRegion:      trip.Region,
			ParticipantName: p.Name,
			EventText:       req.EventText,
		})

		meta := marshalContext(map[string]string{
			"event_type": req.EventType,
			"event_text": req.EventText,
		})
		key := dedupKey(req.TripID, nil, domain.TriggerEvent, p.ID, now)
		sentAt := now
		inApp := &models.Notification{
			TripID:        req.TripID,
			ParticipantID: p.ID,
			TriggerType:   domain.TriggerEvent,
			Channel:       domain.ChannelInApp,
			Status:        domain.NotificationSent,
			ScheduledAt:   now,
			SentAt:        &sentAt,
			Subject:       msg.Subject,
			Body:          msg.Body,
			Metadata:      meta,
			DedupKey:      &key,
		}
		inserted, err := e.ledger.Insert(inApp)
		if err != nil {
			log.Printf("[Nudge] triggerEvent: insert for participant %d: %v", p.ID, err)
			continue
		}
		if !inserted {
			continue
		}

		if p.Email != "" {
			var discard CycleResult
			e.sendEmail(ctx, req.TripID, nil, domain.TriggerEvent, p, msg, map[string]string{
				"trip_slug":        trip.Slug,
				"participant_name": p.Name,
			}, &discard)
			for _, errMsg := range discard.Errors {
				log.Printf("[Nudge] triggerEvent: %s", errMsg)
			}
		}
	}

	if err := e.events.Log(req.TripID, req.EventType, domain.ActorSystem, nil, map[string]interface{}{
		"nudge":      true,
		"event_text": req.EventText,
	}); err != nil {
		log.Printf("[Nudge] triggerEvent: event log: %v", err)
	}
}

// Settings exposes the current snapshot for the settings endpoint.
func (e *Engine) Settings() Settings {
	return e.settings.Load()
}

// inQuietHours reports whether the given UTC instant falls inside the
// configured window. Supports wrap-around ranges (22 -> 8). Equal start and
// end means no quiet window.
func inQuietHours(settings Settings, now time.Time) bool {
	hour := now.UTC().Hour()
	start, end := settings.QuietHoursStart, settings.QuietHoursEnd
	if start == end {
		return false
	}
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// dedupKey builds the unique claim key for the UTC day bucket.
func dedupKey(tripID uint, taskID *uint, triggerType string, participantID uint, now time.Time) string {
	var task uint
	if taskID != nil {
		task = *taskID
	}
	return fmt.Sprintf("%d:%d:%s:%d:%s", tripID, task, triggerType, participantID, now.UTC().Format("20060102"))
}

func marshalContext(ctx map[string]string) string {
	if len(ctx) == 0 {
		return "{}"
	}
	b, _ := json.Marshal(ctx)
	return string(b)
}
