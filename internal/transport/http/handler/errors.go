package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Invalid credentials"
	errTokenInvalid       = "Token is invalid or expired"
	errTokenNotRecognized = "Refresh token not recognized"
	errDuplicateUser      = "User with this email already exists"
	errNoteNotFound       = "Note not found"
)
