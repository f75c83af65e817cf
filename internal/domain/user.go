package domain

import "time"

type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Subscription Subscription
	// SessionToken holds the currently active bearer token. Nil while
	// logged out. Exactly one session is valid at a time.
	SessionToken *string
	AvatarURL    string
	Verified     bool
	// VerificationToken is set on registration and cleared permanently
	// once the email is confirmed.
	VerificationToken *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
