package handler

const (
	errInternalServer     = "Internal server error"
	errEmailInUse         = "Email in use"
	errInvalidCredentials = "Email or password is wrong"
	errUserNotFound       = "User not found"
	errAlreadyVerified    = "Verification has already been passed"
	errContactNotFound    = "Contact not found"
	errDuplicateContact   = "Contact with this email already exists"
	errNoAvatarFile       = "No file provided"
)
