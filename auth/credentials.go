package auth

import "context"

// Credentials are the username and password of an account. They are immutable
// once a session exists; starting over with different credentials means
// establishing a new session.
//
// Password is a credential; never log it.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MultifactorChallenge is the server's request for a short out-of-band code
// during login. Field names follow the wire format.
type MultifactorChallenge struct {
	Version string `json:"mfaVersion"`
	// CodeLength is how many digits the expected code has.
	CodeLength int `json:"multiFactorCodeLength"`
	// Method is the delivery method the server chose (currently always
	// "email").
	Method string `json:"method"`
	// Methods lists the other available delivery methods.
	Methods []string `json:"methods"`
	// Email is the address the code was sent to, mostly blanked out.
	Email string `json:"email"`
}

// MultifactorHandler resolves a multifactor challenge to the code the user
// received. Returning an error aborts the login; the handler alone decides
// how often to retry after a rejected code and how long to wait for input.
type MultifactorHandler func(ctx context.Context, challenge MultifactorChallenge) (string, error)

// LoginBehavior specifies what the login flow may do when the existing
// session cannot simply be resumed from cookies.
type LoginBehavior struct {
	credentials *Credentials
	multifactor MultifactorHandler
}

// ResumeOnly forbids a fresh login: only cookie-based resumption is allowed.
func ResumeOnly() LoginBehavior {
	return LoginBehavior{}
}

// AllowLogin permits a credential login. A nil handler permits the credential
// rounds but fails a multifactor challenge with
// riot.SessionExpiredError{MFARequired: true}.
func AllowLogin(credentials Credentials, handler MultifactorHandler) LoginBehavior {
	return LoginBehavior{credentials: &credentials, multifactor: handler}
}
