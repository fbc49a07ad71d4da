// Package push implements the client for the upstream push gateway and the
// wire types it exchanges. The gateway accepts batched JSON posts of up to
// MaxBatchSize messages and answers with one delivery ticket per message, in
// request order. That positional correspondence is load-bearing: the
// dispatcher maps ticket N back to token N to decide revocation.
//
// Token-invalidity detection is centralized here (Classify): the gateway's
// structured deviceNotRegistered flag is authoritative, and only the
// gateway's documented terminal error identifiers are matched as a fallback.
// Loose substrings such as "invalid" are deliberately not matched — a
// transient "invalid request" body must never revoke a live token.
package push

// Priority hints for downstream delivery.
const (
	PriorityDefault = "default"
	PriorityNormal  = "normal"
	PriorityHigh    = "high"
)

// MaxBatchSize is the gateway's hard ceiling on messages per call.
// Exceeding it is a protocol violation, not merely inefficient.
const MaxBatchSize = 100

// Message is one addressed push notification in a gateway batch.
type Message struct {
	To       string            `json:"to"`
	Title    string            `json:"title,omitempty"`
	Body     string            `json:"body,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Priority string            `json:"priority,omitempty"`
	Badge    *int              `json:"badge,omitempty"`
}

// TicketDetails carries the gateway's structured error metadata.
type TicketDetails struct {
	Error               string `json:"error,omitempty"`
	DeviceNotRegistered bool   `json:"deviceNotRegistered,omitempty"`
}

// Ticket is the per-message delivery outcome. Status is "ok" or "error";
// Message holds the human-readable error text when Status is "error".
type Ticket struct {
	Status  string         `json:"status"`
	ID      string         `json:"id,omitempty"`
	Message string         `json:"message,omitempty"`
	Details *TicketDetails `json:"details,omitempty"`
}

// OK reports whether the ticket records a successful handoff.
func (t Ticket) OK() bool { return t.Status == "ok" }

// InvalidityClass enumerates the reasons a token is permanently
// undeliverable. Anything not in this set is treated as transient.
type InvalidityClass string

const (
	// InvalidityUnregistered: the device token is no longer registered with
	// the platform push service (app uninstalled, token rotated).
	InvalidityUnregistered InvalidityClass = "unregistered"
	// InvalidityCredentials: the gateway rejected our platform credentials
	// for this token's app. The token cannot be delivered to until fixed,
	// but the failure is on our side, so the token is NOT revoked.
	InvalidityCredentials InvalidityClass = "invalid_credentials"
)

// terminalErrors maps the gateway's documented error identifiers onto
// invalidity classes. Matching is exact, never substring.
var terminalErrors = map[string]InvalidityClass{
	"DeviceNotRegistered": InvalidityUnregistered,
	"InvalidCredentials":  InvalidityCredentials,
}

// Classify inspects an error ticket and reports whether it signals permanent
// token invalidity, and of which class. The structured flag wins over the
// error identifier string.
func Classify(t Ticket) (InvalidityClass, bool) {
	if t.OK() {
		return "", false
	}
	if t.Details != nil {
		if t.Details.DeviceNotRegistered {
			return InvalidityUnregistered, true
		}
		if c, ok := terminalErrors[t.Details.Error]; ok {
			return c, true
		}
	}
	return "", false
}

// ShouldRevoke reports whether the ticket's failure means the target token
// must be revoked. Only unregistered devices qualify; credential problems
// are ours, not the token's.
func ShouldRevoke(t Ticket) bool {
	c, ok := Classify(t)
	return ok && c == InvalidityUnregistered
}

// ErrorText returns the most specific error string available on the ticket.
func (t Ticket) ErrorText() string {
	if t.Details != nil && t.Details.Error != "" {
		return t.Details.Error
	}
	if t.Message != "" {
		return t.Message
	}
	return "delivery failed"
}
