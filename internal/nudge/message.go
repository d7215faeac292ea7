package nudge

import (
	"context"

	"tripscout/internal/domain"
)

// Message is a generated subject/body pair for one notification.
type Message struct {
	Subject string
	Body    string
}

// MessageInput is the trigger context handed to the generator.
type MessageInput struct {
	TriggerType     string
	AutomationMode  string
	TripTitle       string
	TripRegion      string
	TripDates       string
	TargetSpecies   string
	TaskTitle       string
	TaskType        string
	Days            int // absolute day count; meaningful only when HasDays
	HasDays         bool
	ParticipantName string
	EventText       string
}

// Generator produces human-readable nudge copy. May fail; callers must fall
// back to the canned table.
type Generator interface {
	Generate(ctx context.Context, in MessageInput) (Message, error)
}

var fallbackMessages = map[string]Message{
	domain.TriggerDeadline: {
		Subject: "Task reminder for your fishing trip",
		Body:    "You have an upcoming task deadline. Check your trip plan for details.",
	},
	domain.TriggerCountdown: {
		Subject: "Your fishing trip is coming up!",
		Body:    "Your trip is approaching. Make sure everything is ready!",
	},
	domain.TriggerOverdue: {
		Subject: "Overdue task on your fishing trip",
		Body:    "You have an overdue task. Please take action soon.",
	},
	domain.TriggerEvent: {
		Subject: "Update on your fishing trip",
		Body:    "There's a new update on your trip. Check the details.",
	},
}

// FallbackMessage returns the canned copy for a trigger type. Unknown types
// get the generic event copy, so the result is never empty.
func FallbackMessage(triggerType string) Message {
	if m, ok := fallbackMessages[triggerType]; ok {
		return m
	}
	return fallbackMessages[domain.TriggerEvent]
}
