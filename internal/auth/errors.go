package auth

// Error is an identity error with a stable code and a message fit for users
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrEmailInUse        = &Error{Code: "email-already-in-use", Message: "An account with this email already exists."}
	ErrInvalidCredential = &Error{Code: "invalid-credential", Message: "Incorrect email or password."}
	ErrWeakPassword      = &Error{Code: "weak-password", Message: "Password should be at least 6 characters."}
	ErrInvalidEmail      = &Error{Code: "invalid-email", Message: "The email address is badly formatted."}
	ErrUserNotFound      = &Error{Code: "user-not-found", Message: "No account found for this email."}
	ErrExpiredActionCode = &Error{Code: "expired-action-code", Message: "The password reset link is invalid or has expired."}
	ErrInvalidToken      = &Error{Code: "invalid-token", Message: "Your session has expired. Please sign in again."}
	ErrInvalidPhotoURL   = &Error{Code: "invalid-photo-url", Message: "Photo URL must be a direct link to an image."}
)
