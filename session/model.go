package session

// User is the locally held record of an authenticated user.
//
// Token and Expiry travel together in one value so they are always set and
// cleared as a pair.
type User struct {
	// Token is the opaque bearer credential.
	Token string `json:"token"`
	// Expiry is the credential expiry in epoch seconds; 0 means absent.
	Expiry int64 `json:"exp,omitempty"`
	// Username is the login identity carried in the credential claims.
	Username string `json:"id,omitempty"`
}

// HasToken reports whether u carries a credential.
func (u *User) HasToken() bool {
	return u != nil && u.Token != ""
}

// ExpiredAt reports whether the credential is expired at unix time now.
// A user without an expiry never expires locally.
func (u *User) ExpiredAt(now int64) bool {
	return u != nil && u.Expiry != 0 && u.Expiry <= now
}

// Severity classifies a [Notification].
type Severity string

const (
	// SeverityNone marks the empty notification.
	SeverityNone Severity = ""
	// SeveritySuccess is shown for successful backend operations.
	SeveritySuccess Severity = "success"
	// SeverityDanger is shown for failures and forced logouts.
	SeverityDanger Severity = "danger"
)

// Notification is a transient, single-slot user-facing message.
// The zero value is the empty notification.
type Notification struct {
	Severity Severity `json:"severity,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// Empty reports whether n is the cleared notification.
func (n Notification) Empty() bool {
	return n.Severity == SeverityNone && n.Message == ""
}

// Success builds a success notification.
func Success(message string) Notification {
	return Notification{Severity: SeveritySuccess, Message: message}
}

// Danger builds a danger notification.
func Danger(message string) Notification {
	return Notification{Severity: SeverityDanger, Message: message}
}
