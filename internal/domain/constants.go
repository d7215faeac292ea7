package domain

const (
	TripStatusDraft     = "draft"
	TripStatusActive    = "active"
	TripStatusCompleted = "completed"
	TripStatusCancelled = "cancelled"
	TripStatusArchived  = "archived"
)

const (
	TaskStatusPending         = "pending"
	TaskStatusInProgress      = "in_progress"
	TaskStatusWaitingResponse = "waiting_response"
	TaskStatusCompleted       = "completed"
	TaskStatusSkipped         = "skipped"
	TaskStatusOverdue         = "overdue"
)

const (
	RoleOrganizer   = "organizer"
	RoleParticipant = "participant"
)

const (
	ParticipantInvited   = "invited"
	ParticipantConfirmed = "confirmed"
	ParticipantDeclined  = "declined"
)

// Trigger types: why a nudge fires.
const (
	TriggerDeadline  = "deadline"
	TriggerCountdown = "countdown"
	TriggerOverdue   = "overdue"
	TriggerEvent     = "event"
)

const (
	ChannelEmail = "email"
	ChannelInApp = "in_app"
)

const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)

const (
	ActorUser   = "user"
	ActorSystem = "system"
	ActorAgent  = "agent"
	ActorVendor = "vendor"
)

const AutomationModeRemind = "remind"
