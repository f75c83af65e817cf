// seed inserts a verified demo user and a handful of contacts into the
// local dev database. Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/nbatyrov/contactbook/internal/avatar"
	"github.com/nbatyrov/contactbook/internal/domain"
	"github.com/nbatyrov/contactbook/internal/infrastructure/postgres"
	"github.com/nbatyrov/contactbook/internal/password"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "seed-password"
)

type contactSpec struct {
	name     string
	email    string
	phone    string
	favorite bool
}

var contacts = []contactSpec{
	{"Allen Raymond", "nulla.ante@vestibul.co.uk", "(992) 914-3792", false},
	{"Chaim Lewis", "dui.in@egetlacus.ca", "(294) 840-6685", false},
	{"Kennedy Lane", "mattis.Cras@nonenimMauris.net", "(542) 451-7038", true},
	{"Wylie Pope", "est@utquamvel.net", "(692) 802-2949", false},
	{"Cyrus Jackson", "nibh@semsempererat.com", "(501) 472-5218", true},
	{"Abbot Franks", "scelerisque@magnis.org", "(186) 568-3720", true},
	{"Reuben Henry", "pharetra.ut@dictum.co.uk", "(715) 598-5792", false},
	{"Simon Morton", "dui.Fusce.diam@Donec.com", "(233) 738-2360", true},
	{"Thomas Lucas", "nec@Nulla.com", "(704) 398-7993", false},
	{"Alec Howard", "Donec.elementum@scelerisquescelerisquedui.net", "(748) 206-2688", false},
}

func main() {
	ctx := context.Background()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	if err := postgres.Migrate(ctx, databaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	contactRepo := postgres.NewContactRepository(pool)

	digest, err := password.NewBcrypt().Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	verificationToken := uuid.NewString()
	user, err := userRepo.Create(ctx, &domain.User{
		Email:             seedEmail,
		PasswordHash:      digest,
		Subscription:      domain.SubscriptionStarter,
		AvatarURL:         avatar.GravatarURL(seedEmail),
		VerificationToken: &verificationToken,
	})
	if errors.Is(err, domain.ErrEmailInUse) {
		log.Fatalf("seed user %s already exists; drop it first", seedEmail)
	}
	if err != nil {
		log.Fatalf("create user: %v", err)
	}

	// Seed users skip the email round-trip.
	if user.VerificationToken != nil {
		if _, err := userRepo.ClaimVerificationToken(ctx, *user.VerificationToken); err != nil {
			log.Fatalf("verify seed user: %v", err)
		}
	}

	for _, c := range contacts {
		if _, err := contactRepo.Create(ctx, &domain.Contact{
			OwnerID:  user.ID,
			Name:     c.name,
			Email:    c.email,
			Phone:    c.phone,
			Favorite: c.favorite,
		}); err != nil {
			log.Fatalf("create contact %q: %v", c.name, err)
		}
	}

	fmt.Printf("seeded %s (password %q) with %d contacts\n", seedEmail, seedPassword, len(contacts))
}
