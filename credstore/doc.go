// Package credstore persists the session token and last-known user record.
//
// # Design
//
// A Store is the single source of truth for "is there a logged-in session,
// and who". Writes are atomic from the caller's perspective: after
// SetSession both token and user are visible, or neither; Clear removes
// both together and is idempotent. Reads and writes are synchronous.
//
// Three implementations cover the deployment shapes of the dashboard
// client: MemoryStore for embedding and tests, FileStore for a single
// operator terminal that must survive process restarts, and RedisStore for
// wall-board installations where several display terminals share one
// operator session.
//
// # What this package must NOT do
//
//   - Perform network calls other than RedisStore's own key operations.
//   - Interpret the token: it is an opaque string owned by the server.
//   - Import the linesight root package.
package credstore
