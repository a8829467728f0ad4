package linesight

import "context"

type stationIDContextKey struct{}
type noForcedLogoutContextKey struct{}

// WithStationID attaches a factory terminal identifier to ctx. The request
// pipeline forwards it as the X-Station-ID header so the server can
// attribute dashboard traffic to a physical kiosk.
func WithStationID(ctx context.Context, stationID string) context.Context {
	return context.WithValue(ctx, stationIDContextKey{}, stationID)
}

func stationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	stationID, _ := ctx.Value(stationIDContextKey{}).(string)
	return stationID
}

// withoutForcedLogout marks ctx so a 401 on this request does not trigger
// the forced-logout path. Used for the login call (a rejected credential is
// not a session expiry) and the best-effort server revoke, which runs while
// the session is already being torn down.
func withoutForcedLogout(ctx context.Context) context.Context {
	return context.WithValue(ctx, noForcedLogoutContextKey{}, true)
}

func forcedLogoutDisabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}

	disabled, _ := ctx.Value(noForcedLogoutContextKey{}).(bool)
	return disabled
}
