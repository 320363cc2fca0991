package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/apps"
	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/library"
	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/school"
	"github.com/acfjba/platformdigital-sub000/core/staff"
	"github.com/acfjba/platformdigital-sub000/core/student"
	"github.com/acfjba/platformdigital-sub000/core/user"
	emailsvc "github.com/acfjba/platformdigital-sub000/services/email"
	"github.com/acfjba/platformdigital-sub000/storage"
)

// Env is a fully wired application over the in-memory storage.
type Env struct {
	Conf       *core.Config
	Repos      *storage.Repositories
	Svcs       *apps.Services
	Mailer     core.EmailService
	Validate   *validator.Validate
	Translator ut.Translator
}

var validate, translator = apps.NewValidator()

func NewEnv(t *testing.T) *Env {
	t.Helper()
	conf := core.NewTestConfig()
	repos := storage.InMemory()
	mailer := emailsvc.NewConsoleServiceMock(conf)
	emailsvc.ResetSentMessages()
	t.Cleanup(emailsvc.ResetSentMessages)
	return &Env{
		Conf:       conf,
		Repos:      repos,
		Svcs:       apps.NewServices(repos, mailer, validate, translator, conf),
		Mailer:     mailer,
		Validate:   validate,
		Translator: translator,
	}
}

// FreezeTime sets core.NowFunc to now for the duration of the test.
func FreezeTime(t *testing.T, now time.Time) {
	t.Helper()
	prev := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = prev })
}

func CreateSchool(t *testing.T, env *Env, name, code, email string) school.School {
	t.Helper()
	sch, err := env.Svcs.Schools.Create(context.Background(), school.NewSchool{Name: name, Code: code, Email: email})
	if err != nil {
		t.Fatalf("createSchool() failed: %v", err)
	}
	return sch
}

func IssueLicense(t *testing.T, env *Env, schoolID, plan string, seats, months int) license.License {
	t.Helper()
	lic, err := env.Svcs.Licenses.Issue(context.Background(), schoolID, license.NewLicense{Plan: plan, Seats: seats, Months: months})
	if err != nil {
		t.Fatalf("issueLicense() failed: %v", err)
	}
	return lic
}

// CreateUser stores a user straight through the repository (no seat check).
func CreateUser(
	t *testing.T,
	repo user.Repository,
	schoolID, name, uname, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		SchoolID:  schoolID,
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, env *Env, schoolID, admissionNo, name, className string) student.Student {
	t.Helper()
	in := student.Input{AdmissionNo: admissionNo, Name: name, ClassName: className}
	in.Clean()
	std, err := env.Svcs.Students.Create(context.Background(), schoolID, in)
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func CreateStaff(t *testing.T, env *Env, schoolID, staffNo, name string) staff.Staff {
	t.Helper()
	in := staff.Input{StaffNo: staffNo, Name: name}
	in.Clean()
	st, err := env.Svcs.Staff.Create(context.Background(), schoolID, in)
	if err != nil {
		t.Fatalf("createStaff() failed: %v", err)
	}
	return st
}

func CreateBook(t *testing.T, env *Env, schoolID, title string, copies int) library.Book {
	t.Helper()
	b, err := env.Svcs.Library.AddBook(context.Background(), schoolID, library.BookInput{Title: title, TotalCopies: copies})
	if err != nil {
		t.Fatalf("createBook() failed: %v", err)
	}
	return b
}
