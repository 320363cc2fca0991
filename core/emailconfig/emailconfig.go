// Package emailconfig holds the sender identity each school uses for outgoing emails.
package emailconfig

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
)

// TestTemplate is the template of the message sent by SendTest.
const TestTemplate = "test_email"

var ErrDisabled = core.NewConflictError("email is disabled for this school")

type (
	Config struct {
		SchoolID    string    `json:"school_id" firestore:"-" db:"school_id"`
		FromName    string    `json:"from_name" firestore:"fromName" db:"from_name"`
		FromAddress string    `json:"from_address" firestore:"fromAddress" db:"from_address"`
		ReplyTo     string    `json:"reply_to" firestore:"replyTo" db:"reply_to"`
		Enabled     bool      `json:"enabled" firestore:"enabled" db:"enabled"`
		UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt" db:"updated_at"`
		UpdatedBy   string    `json:"updated_by" firestore:"updatedBy" db:"updated_by"`
	}

	Input struct {
		FromName    string `json:"from_name" validate:"required,notblank,max=100"`
		FromAddress string `json:"from_address" validate:"required,email"`
		ReplyTo     string `json:"reply_to" validate:"omitempty,email"`
		Enabled     bool   `json:"enabled"`
	}

	TestRequest struct {
		To string `json:"to" validate:"required,email"`
	}

	Repository interface {
		// GetEmailConfig returns ErrNotFound when the school never saved its settings.
		GetEmailConfig(ctx context.Context, schoolID string) (Config, error)
		UpsertEmailConfig(ctx context.Context, conf Config) (Config, error)
	}

	Service struct {
		repo   Repository
		mailer core.EmailService
		conf   *core.Config
	}
)

var ErrNotFound = core.NewNotFoundError("email config")

func (in *Input) Validate(validate *validator.Validate) error {
	in.FromName = core.CleanName(in.FromName)
	in.FromAddress = core.CleanString(in.FromAddress, true /* lower */)
	in.ReplyTo = core.CleanString(in.ReplyTo, true /* lower */)
	return validate.Struct(in)
}

func (tr *TestRequest) Validate(validate *validator.Validate) error {
	tr.To = core.CleanString(tr.To, true /* lower */)
	return validate.Struct(tr)
}

// Sender returns the From and Reply-To addresses of the school.
func (c Config) Sender() (from mail.Address, replyTo *mail.Address) {
	from = mail.Address{Name: c.FromName, Address: c.FromAddress}
	if c.ReplyTo != "" {
		replyTo = &mail.Address{Address: c.ReplyTo}
	}
	return from, replyTo
}

func NewService(repo Repository, mailer core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailer: mailer, conf: conf}
}

// Get returns the settings of the school, or the disabled platform defaults.
func (svc *Service) Get(ctx context.Context, schoolID string) (Config, error) {
	conf, err := svc.repo.GetEmailConfig(ctx, schoolID)
	if core.IsNotFound(err) {
		return Config{
			SchoolID:    schoolID,
			FromName:    svc.conf.DefaultFromName,
			FromAddress: svc.conf.DefaultFromAddress,
		}, nil
	}
	return conf, err
}

func (svc *Service) Upsert(ctx context.Context, schoolID, updatedBy string, in Input) (Config, error) {
	return svc.repo.UpsertEmailConfig(ctx, Config{
		SchoolID:    schoolID,
		FromName:    in.FromName,
		FromAddress: in.FromAddress,
		ReplyTo:     in.ReplyTo,
		Enabled:     in.Enabled,
		UpdatedAt:   core.NowFunc().UTC(),
		UpdatedBy:   updatedBy,
	})
}

// Apply sets the school sender identity on msgs when the school enabled its email settings.
// It reports whether the settings are enabled.
func (svc *Service) Apply(ctx context.Context, schoolID string, msgs ...*core.EmailMessage) (bool, error) {
	conf, err := svc.Get(ctx, schoolID)
	if err != nil {
		return false, err
	}
	if !conf.Enabled {
		return false, nil
	}
	from, replyTo := conf.Sender()
	for _, msg := range msgs {
		msg.From = &from
		msg.ReplyTo = replyTo
	}
	return true, nil
}

// SendTest sends the test template to `to` with the school sender identity.
func (svc *Service) SendTest(ctx context.Context, schoolID, schoolName, to string) error {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: to}},
		Subject:      "Test email from " + schoolName,
		TemplateName: TestTemplate,
		TemplateData: map[string]string{"SchoolName": schoolName},
	}
	enabled, err := svc.Apply(ctx, schoolID, msg)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrDisabled
	}
	svc.mailer.SendMessages(msg)
	return nil
}
