// Package scheduler runs the periodic platform jobs: license expiry and the overdue loans digest.
package scheduler

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/emailconfig"
	"github.com/acfjba/platformdigital-sub000/core/library"
	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/school"
)

// Job names
const (
	JobLicenseExpiry = "license-expiry"
	JobOverdueDigest = "overdue-digest"
)

// Email templates
const (
	tmplLicenseExpiring = "license_expiring"
	tmplOverdueDigest   = "overdue_digest"
)

const (
	defaultNoticeWindow = 14 * 24 * time.Hour
	jobTimeout          = 4 * time.Minute
)

type (
	Deps struct {
		Schools     *school.Service
		Licenses    *license.Service
		Library     *library.Service
		EmailConfig *emailconfig.Service
		Mailer      core.EmailService
	}

	// Jobs holds the job bodies. Each one can also be run on demand (ie: from the admin CLI).
	Jobs struct {
		Deps
		logger       core.Logger
		noticeWindow time.Duration
	}

	Scheduler struct {
		cron *cron.Cron
		jobs *Jobs
	}

	// LicenseRun reports what a run of the license-expiry job did.
	LicenseRun struct {
		Expired  []license.License
		Notified int
	}
)

func NewJobs(deps Deps, conf *core.Config, logger core.Logger) *Jobs {
	window := conf.Scheduler.NoticeWindow
	if window <= 0 {
		window = defaultNoticeWindow
	}
	return &Jobs{Deps: deps, logger: logger, noticeWindow: window}
}

// New registers the jobs on their cron specs. The scheduler is not started.
func New(conf *core.Config, jobs *Jobs, logger core.Logger) (*Scheduler, error) {
	cl := cronLogger{logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	licenseSpec := conf.Scheduler.LicenseSpec
	if licenseSpec == "" {
		licenseSpec = "@daily"
	}
	overdueSpec := conf.Scheduler.OverdueSpec
	if overdueSpec == "" {
		overdueSpec = "0 7 * * 1-5"
	}

	if _, err := c.AddFunc(licenseSpec, jobs.wrap(JobLicenseExpiry, func(ctx context.Context) error {
		_, err := jobs.ExpireLicenses(ctx)
		return err
	})); err != nil {
		return nil, errors.Wrapf(err, "scheduling %s (%q)", JobLicenseExpiry, licenseSpec)
	}
	if _, err := c.AddFunc(overdueSpec, jobs.wrap(JobOverdueDigest, func(ctx context.Context) error {
		_, err := jobs.SendOverdueDigests(ctx)
		return err
	})); err != nil {
		return nil, errors.Wrapf(err, "scheduling %s (%q)", JobOverdueDigest, overdueSpec)
	}
	return &Scheduler{cron: c, jobs: jobs}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for the running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries returns the number of scheduled jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (j *Jobs) wrap(name string, fn func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		j.logger.Info("job started", map[string]interface{}{"job": name})
		if err := fn(ctx); err != nil {
			j.logger.Error("job failed", err, map[string]interface{}{"job": name})
			return
		}
		j.logger.Info("job done", map[string]interface{}{"job": name, "took": time.Since(start).String()})
	}
}

// ExpireLicenses marks the lapsed licenses as expired, then warns the schools whose
// license expires within the notice window.
func (j *Jobs) ExpireLicenses(ctx context.Context) (LicenseRun, error) {
	now := core.NowFunc().UTC()

	expired, err := j.Licenses.ExpireDue(ctx, now)
	if err != nil {
		return LicenseRun{}, errors.Wrap(err, "expiring licenses")
	}
	run := LicenseRun{Expired: expired}
	for _, lic := range expired {
		j.logger.Info("license expired", map[string]interface{}{"school_id": lic.SchoolID, "expires_at": lic.ExpiresAt})
	}

	expiring, err := j.Licenses.ExpiringWithin(ctx, now, j.noticeWindow)
	if err != nil {
		return run, errors.Wrap(err, "querying expiring licenses")
	}
	for _, lic := range expiring {
		sent, err := j.notifyExpiring(ctx, lic, now)
		if err != nil {
			// one school must not stop the others
			j.logger.Error("notifying license expiry", err, map[string]interface{}{"school_id": lic.SchoolID})
			continue
		}
		if sent {
			run.Notified++
		}
	}
	return run, nil
}

func (j *Jobs) notifyExpiring(ctx context.Context, lic license.License, now time.Time) (bool, error) {
	sch, err := j.Schools.Get(ctx, lic.SchoolID)
	if err != nil {
		return false, errors.Wrap(err, "getting school")
	}
	if sch.Email == "" {
		return false, nil
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: sch.Name, Address: sch.Email}},
		Subject:      "Your license expires soon",
		TemplateName: tmplLicenseExpiring,
		TemplateData: map[string]interface{}{
			"SchoolName": sch.Name,
			"Plan":       lic.Plan,
			"ExpiresOn":  lic.ExpiresAt.Format(core.DateLayout),
			"DaysLeft":   lic.DaysLeft(now),
		},
	}
	// the platform identity is used when the school has no enabled settings
	if _, err = j.EmailConfig.Apply(ctx, sch.ID, msg); err != nil {
		return false, errors.Wrap(err, "applying email config")
	}
	j.Mailer.SendMessages(msg)
	return true, nil
}

// SendOverdueDigests emails the overdue loans of every active school with enabled email settings.
// It returns the number of digests sent.
func (j *Jobs) SendOverdueDigests(ctx context.Context) (int, error) {
	now := core.NowFunc().UTC()
	active := true
	schools, err := j.Schools.Query(ctx, school.QueryFilter{IsActive: &active})
	if err != nil {
		return 0, errors.Wrap(err, "querying schools")
	}

	var sent int
	for _, sch := range schools {
		ok, err := j.sendOverdueDigest(ctx, sch, now)
		if err != nil {
			j.logger.Error("sending overdue digest", err, map[string]interface{}{"school_id": sch.ID})
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

func (j *Jobs) sendOverdueDigest(ctx context.Context, sch school.School, now time.Time) (bool, error) {
	if sch.Email == "" {
		return false, nil
	}
	loans, err := j.Library.Overdue(ctx, sch.ID, now)
	if err != nil {
		return false, errors.Wrap(err, "listing overdue loans")
	}
	if len(loans) == 0 {
		return false, nil
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: sch.Name, Address: sch.Email}},
		Subject:      fmt.Sprintf("%d overdue library loan(s)", len(loans)),
		TemplateName: tmplOverdueDigest,
		TemplateData: map[string]interface{}{
			"SchoolName": sch.Name,
			"Count":      len(loans),
			"Loans":      loans,
		},
	}
	enabled, err := j.EmailConfig.Apply(ctx, sch.ID, msg)
	if err != nil {
		return false, errors.Wrap(err, "applying email config")
	}
	if !enabled {
		return false, nil
	}
	j.Mailer.SendMessages(msg)
	return true, nil
}

// cronLogger adapts core.Logger to cron.Logger.
type cronLogger struct {
	logger core.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, kvMap(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, err, kvMap(keysAndValues))
}

func kvMap(kv []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return m
}
