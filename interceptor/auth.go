package interceptor

import (
	"net/http"

	"github.com/MrEthical07/goPortal/session"
)

// DefaultSessionExpiredMessage is the fixed text shown on a forced logout.
const DefaultSessionExpiredMessage = "Your session has expired. Please log in again."

// DefaultLoginPath is the backend login call exempt from forced logout.
const DefaultLoginPath = "/login"

// BearerAuth attaches the session token as "Authorization: Bearer <token>".
// Without a session (or with an empty token) the request is unchanged.
func BearerAuth(src SessionReader) RequestInterceptor {
	return func(req Request) Request {
		if src == nil {
			return req
		}
		user := src.User()
		if !user.HasToken() {
			return req
		}
		req.Header = req.Header.Set("Authorization", "Bearer "+user.Token)
		return req
	}
}

// NotifyFromMessage emits a notification for any response carrying a
// message: success on 200, danger on every other status.
func NotifyFromMessage() ResponseInterceptor {
	return func(_ Request, resp Response) (Response, []Effect) {
		if !resp.HasMessage() {
			return resp, nil
		}
		if resp.Status == http.StatusOK {
			return resp, []Effect{Notify(session.Success(resp.Message))}
		}
		return resp, []Effect{Notify(session.Danger(resp.Message))}
	}
}

// LogoutOnUnauthorized forces a logout and shows text when a request other
// than the login call comes back 401.
func LogoutOnUnauthorized(loginPath, text string) ResponseInterceptor {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if text == "" {
		text = DefaultSessionExpiredMessage
	}
	return func(req Request, resp Response) (Response, []Effect) {
		if resp.Status != http.StatusUnauthorized || req.Path == loginPath {
			return resp, nil
		}
		return resp, []Effect{Logout(), Notify(session.Danger(text))}
	}
}

// Store is what the standard chain needs from the session store.
type Store interface {
	SessionReader
	SessionWriter
}

// NewStandardChain builds the portal's chain: bearer auth on the way out,
// then message notification and forced logout on the way back, in that
// order, so the session-expired text is the notification left showing.
func NewStandardChain(store Store, loginPath, sessionExpiredText string) *Chain {
	return NewChain(store).
		UseRequest(BearerAuth(store)).
		UseResponse(
			NotifyFromMessage(),
			LogoutOnUnauthorized(loginPath, sessionExpiredText),
		)
}
