package newslettersvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"rentique/model"
	"rentique/repository/mailer"
	subscriberrepo "rentique/repository/subscriber"
)

var ErrBadEmail = errors.New("invalid email")

type SubscribeResult struct {
	Subscriber        *model.Subscriber
	AlreadySubscribed bool
}

type Service interface {
	Subscribe(ctx context.Context, email string) (*SubscribeResult, error)
	Unsubscribe(ctx context.Context, email string) (bool, error)
	SMTPConfigured() bool

	// NotifyNewProduct satisfies productsvc.Notifier; delivery happens in the
	// background and is best effort.
	NotifyNewProduct(p model.Product)
}

type service struct {
	sr          subscriberrepo.Repo
	m           mailer.Mailer
	frontendURL string
	log         *slog.Logger
}

func New(sr subscriberrepo.Repo, m mailer.Mailer, frontendURL string, log *slog.Logger) Service {
	return &service{sr: sr, m: m, frontendURL: frontendURL, log: log}
}

func (s *service) Subscribe(ctx context.Context, email string) (*SubscribeResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrBadEmail
	}

	existing, err := s.sr.ByEmail(ctx, email)
	switch {
	case err == nil && existing.IsActive:
		return &SubscribeResult{Subscriber: existing, AlreadySubscribed: true}, nil
	case err == nil:
		if err := s.sr.Reactivate(ctx, existing.ID); err != nil {
			return nil, err
		}
		existing.IsActive = true
		s.sendWelcome(email)
		return &SubscribeResult{Subscriber: existing}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	sub := &model.Subscriber{Email: email, Source: "website"}
	if err := s.sr.Create(ctx, sub); err != nil {
		// Concurrent double-subscribe: the row exists now, report success.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if existing, ferr := s.sr.ByEmail(ctx, email); ferr == nil {
				return &SubscribeResult{Subscriber: existing, AlreadySubscribed: true}, nil
			}
		}
		return nil, err
	}

	s.sendWelcome(email)
	return &SubscribeResult{Subscriber: sub}, nil
}

func (s *service) Unsubscribe(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, ErrBadEmail
	}
	return s.sr.Deactivate(ctx, email)
}

func (s *service) SMTPConfigured() bool { return s.m.Configured() }

// sendWelcome delivers in the background; a failed welcome never fails the
// subscription itself.
func (s *service) sendWelcome(email string) {
	go func() {
		if err := s.m.Send(email, "Welcome to Rentique!", s.welcomeHTML()); err != nil {
			s.log.Error("welcome email failed", "to", email, "err", err)
		}
	}()
}

func (s *service) NotifyNewProduct(p model.Product) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		subs, err := s.sr.ListActive(ctx)
		if err != nil {
			s.log.Error("list subscribers failed", "err", err)
			return
		}
		if len(subs) == 0 {
			return
		}

		subject := "New Arrival: " + p.Name
		body := s.newProductHTML(p)
		var notified []int64
		for _, sub := range subs {
			if err := s.m.Send(sub.Email, subject, body); err != nil {
				continue
			}
			notified = append(notified, sub.ID)
		}
		if len(notified) > 0 {
			if err := s.sr.MarkNotified(ctx, notified, time.Now().UTC()); err != nil {
				s.log.Error("mark notified failed", "err", err)
			}
		}
	}()
}

func (s *service) welcomeHTML() string {
	return fmt.Sprintf(`
		<h2>Welcome to Rentique!</h2>
		<p>Thank you for subscribing. You'll be the first to hear about new
		arrivals, exclusive offers and styling tips.</p>
		<p><a href="%s/products">Browse the collection</a></p>
		<p>Happy renting,<br>The Rentique Team</p>`, s.frontendURL)
}

func (s *service) newProductHTML(p model.Product) string {
	return fmt.Sprintf(`
		<h2>New arrival: %s</h2>
		<p>%s</p>
		<p><strong>Brand:</strong> %s<br>
		<strong>Category:</strong> %s<br>
		<strong>Rental price:</strong> %.2f/day</p>
		<p><a href="%s/products/%d">See it on Rentique</a></p>`,
		p.Name, p.Description, p.Brand, p.Category, p.RentalPrice, s.frontendURL, p.ID)
}
