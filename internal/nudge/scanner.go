package nudge

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"tripscout/internal/domain"
	"tripscout/internal/models"
)

// Candidate is one (trigger, recipients) pair eligible for notification in
// the current cycle, before dedup and rate-limit filtering. Ephemeral; never
// persisted.
type Candidate struct {
	TripID         uint
	TripTitle      string
	TripSlug       string
	TaskID         *uint
	TaskTitle      string
	TriggerType    string
	AutomationMode string
	RecipientIDs   []uint
	DaysUntil      int // signed: negative means overdue
	Context        map[string]string
}

// TripStore is the read side of the trip table the scanner needs.
type TripStore interface {
	ListActiveWithDates() ([]models.Trip, error)
	GetByID(id uint) (*models.Trip, error)
}

// TaskStore reads open tasks and stamps reminder times.
type TaskStore interface {
	ListOpenByTrip(tripID uint) ([]models.Task, error)
	StampReminder(id uint, at time.Time) error
}

// ParticipantStore resolves nudge recipients.
type ParticipantStore interface {
	ListConfirmed(tripID uint) ([]models.Participant, error)
	GetByID(id uint) (*models.Participant, error)
}

// Scanner computes the per-cycle candidate set from active trips and their
// outstanding tasks.
type Scanner struct {
	trips        TripStore
	tasks        TaskStore
	participants ParticipantStore
}

func NewScanner(trips TripStore, tasks TaskStore, participants ParticipantStore) *Scanner {
	return &Scanner{trips: trips, tasks: tasks, participants: participants}
}

// Scan runs one pass. Per-trip read failures are collected and scanning
// continues with the remaining trips.
func (s *Scanner) Scan(now time.Time, settings Settings) ([]Candidate, []string) {
	var candidates []Candidate
	var errs []string

	trips, err := s.trips.ListActiveWithDates()
	if err != nil {
		return nil, []string{fmt.Sprintf("scan trips: %v", err)}
	}

	for i := range trips {
		trip := &trips[i]
		tripCandidates, tripErrs := s.scanTrip(trip, now, settings)
		candidates = append(candidates, tripCandidates...)
		errs = append(errs, tripErrs...)
	}
	return candidates, errs
}

func (s *Scanner) scanTrip(trip *models.Trip, now time.Time, settings Settings) ([]Candidate, []string) {
	participants, err := s.participants.ListConfirmed(trip.ID)
	if err != nil {
		return nil, []string{fmt.Sprintf("scan participants for trip %d: %v", trip.ID, err)}
	}
	if len(participants) == 0 {
		return nil, nil
	}

	tasks, err := s.tasks.ListOpenByTrip(trip.ID)
	if err != nil {
		return nil, []string{fmt.Sprintf("scan tasks for trip %d: %v", trip.ID, err)}
	}

	var organizer *models.Participant
	for i := range participants {
		if participants[i].Role == domain.RoleOrganizer {
			organizer = &participants[i]
			break
		}
	}

	tripDates := trip.FormatDates()
	baseContext := func() map[string]string {
		return map[string]string{
			"trip_title":     trip.Title,
			"trip_region":    trip.Region,
			"trip_dates":     tripDates,
			"target_species": trip.TargetSpecies,
			"trip_slug":      trip.Slug,
		}
	}

	var candidates []Candidate

	// Countdown: whole-day distance to trip start, all confirmed recipients.
	// At most one per trip per cycle.
	daysUntilTrip := daysBetween(now, *trip.DatesStart)
	if daysUntilTrip >= 0 && containsInt(settings.CountdownDays, daysUntilTrip) {
		recipients := make([]uint, 0, len(participants))
		for _, p := range participants {
			recipients = append(recipients, p.ID)
		}
		ctx := baseContext()
		ctx["days"] = strconv.Itoa(daysUntilTrip)
		candidates = append(candidates, Candidate{
			TripID:         trip.ID,
			TripTitle:      trip.Title,
			TripSlug:       trip.Slug,
			TriggerType:    domain.TriggerCountdown,
			AutomationMode: domain.AutomationModeRemind,
			RecipientIDs:   recipients,
			DaysUntil:      daysUntilTrip,
			Context:        ctx,
		})
	}

	// Deadline / overdue per open task. daysUntil is either >= 0 or < 0, so a
	// task yields at most one of the two per cycle.
	for i := range tasks {
		task := &tasks[i]
		if task.Deadline == nil {
			continue
		}
		daysUntil := daysBetween(now, *task.Deadline)

		if daysUntil >= 0 && containsInt(settings.DeadlineDays, daysUntil) {
			var recipients []uint
			if task.AssignedTo != nil {
				recipients = []uint{*task.AssignedTo}
			} else if organizer != nil {
				recipients = []uint{organizer.ID}
			}
			if len(recipients) > 0 {
				candidates = append(candidates, s.taskCandidate(trip, task, domain.TriggerDeadline, recipients, daysUntil, baseContext()))
			}
			continue
		}

		daysOverdue := -daysUntil
		if daysOverdue > 0 && containsInt(settings.OverdueDays, daysOverdue) {
			var recipients []uint
			if task.AssignedTo != nil {
				recipients = append(recipients, *task.AssignedTo)
			}
			if organizer != nil && (task.AssignedTo == nil || organizer.ID != *task.AssignedTo) {
				recipients = append(recipients, organizer.ID)
			}
			if len(recipients) > 0 {
				candidates = append(candidates, s.taskCandidate(trip, task, domain.TriggerOverdue, recipients, daysUntil, baseContext()))
			}
		}
	}

	return candidates, nil
}

func (s *Scanner) taskCandidate(trip *models.Trip, task *models.Task, trigger string, recipients []uint, daysUntil int, ctx map[string]string) Candidate {
	taskID := task.ID
	ctx["task_title"] = task.Title
	ctx["task_type"] = task.Type
	ctx["days"] = strconv.Itoa(absInt(daysUntil))
	mode := task.AutomationMode
	if mode == "" {
		mode = domain.AutomationModeRemind
	}
	return Candidate{
		TripID:         trip.ID,
		TripTitle:      trip.Title,
		TripSlug:       trip.Slug,
		TaskID:         &taskID,
		TaskTitle:      task.Title,
		TriggerType:    trigger,
		AutomationMode: mode,
		RecipientIDs:   recipients,
		DaysUntil:      daysUntil,
		Context:        ctx,
	}
}

// daysBetween is the whole-day difference between two instants, rounded, in
// UTC. Matches the half-up rounding the reminder offsets are tuned for.
func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
