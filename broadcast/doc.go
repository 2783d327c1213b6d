// Package broadcast implements the promotion broadcast dispatcher: it
// renders a promotion into a formatted message and fans it out to the
// configured department chats through a gateway.Caller.
//
// The pipeline per department is: resolve the configured chat identifier
// (numeric ids pass through, handles go through getChat), select the wire
// operation from the message shape (text, single photo, or media group),
// perform the call, and retry exactly once when the platform reports that
// the chat migrated to a new id. Departments are processed strictly in
// sequence; one failure never aborts the rest, and the caller receives a
// per-department BatchResult.
package broadcast
