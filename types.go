package linesight

import (
	"io"
	"time"

	"github.com/linesight-io/linesight/credstore"
	"github.com/linesight-io/linesight/internal/events"
)

// UserRecord is the denormalized identity snapshot reported by the server.
// All fields are display and authorization hints; the server re-validates
// every privileged action independently.
type UserRecord = credstore.UserRecord

// PermissionKey names a server-side capability flag used to gate UI
// features. The set is closed: the server only answers for known keys.
type PermissionKey string

const (
	// PermissionViewDashboard is an exported constant or variable used by the session client.
	PermissionViewDashboard PermissionKey = "view-dashboard"
	// PermissionUploadDayPlan is an exported constant or variable used by the session client.
	PermissionUploadDayPlan PermissionKey = "upload-day-plan"
	// PermissionRecordQuality is an exported constant or variable used by the session client.
	PermissionRecordQuality PermissionKey = "record-quality"
	// PermissionManageUsers is an exported constant or variable used by the session client.
	PermissionManageUsers PermissionKey = "manage-users"
	// PermissionAutoRefresh is an exported constant or variable used by the session client.
	PermissionAutoRefresh PermissionKey = "auto-refresh"
)

// LogoutReason identifies why a session ended. It is passed to the
// [Navigator] so the host UI can show the matching notice.
type LogoutReason string

const (
	// LogoutReasonUser is an exported constant or variable used by the session client.
	LogoutReasonUser LogoutReason = "user_logout"
	// LogoutReasonUnauthorized is an exported constant or variable used by the session client.
	LogoutReasonUnauthorized LogoutReason = "unauthorized"
	// LogoutReasonInactivity is an exported constant or variable used by the session client.
	LogoutReasonInactivity LogoutReason = "inactivity_timeout"
)

// Navigator is the narrow routing contract the session core drives. The SDK
// signals transitions; it never owns the routing table. Implementations must
// tolerate repeated NavigateToLogin calls (navigation is idempotent).
type Navigator interface {
	NavigateToLogin(reason LogoutReason)
	NavigateHome()
}

// NoopNavigator is a [Navigator] that ignores all signals. It is the default
// when no navigator is wired.
type NoopNavigator struct{}

// NavigateToLogin describes the navigatetologin operation and its observable behavior.
func (NoopNavigator) NavigateToLogin(LogoutReason) {}

// NavigateHome describes the navigatehome operation and its observable behavior.
func (NoopNavigator) NavigateHome() {}

// LoginResult is returned by [Client.Login] on success.
type LoginResult struct {
	Token string
	User  *UserRecord
}

// SessionInfo is a point-in-time snapshot of the local session state,
// returned by [Client.SessionInfo].
type SessionInfo struct {
	LoggedIn       bool
	User           *UserRecord
	LastActivity   time.Time
	IdleDeadline   time.Time
	TimeUntilIdle  time.Duration
	TokenExpiry    time.Time
	TokenExpiryOK  bool
}

// LineKPI is one production line's key figures in a dashboard snapshot.
type LineKPI struct {
	Line          string  `json:"line"`
	TargetPerHour int     `json:"target_per_hour"`
	ActualPerHour int     `json:"actual_per_hour"`
	EfficiencyPct float64 `json:"efficiency_pct"`
	DefectCount   int     `json:"defect_count"`
	ReworkCount   int     `json:"rework_count"`
}

// ProductionSnapshot is the line-level KPI payload served by the dashboard
// summary endpoint. It is the one typed data fetch the SDK provides; all
// other dashboard endpoints are consumed through [Client.GetJSON].
type ProductionSnapshot struct {
	Date        string    `json:"date"`
	GeneratedAt time.Time `json:"generated_at"`
	Lines       []LineKPI `json:"lines"`
}

// Event is a structured session event emitted by the client's dispatcher.
type Event = events.Event

// EventSink receives [Event] values from the client's event dispatcher.
type EventSink = events.Sink

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = events.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = events.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = events.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return events.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return events.NewJSONWriterSink(w)
}
