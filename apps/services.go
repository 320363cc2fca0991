package apps

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/attendance"
	"github.com/acfjba/platformdigital-sub000/core/dashboard"
	"github.com/acfjba/platformdigital-sub000/core/discipline"
	"github.com/acfjba/platformdigital-sub000/core/emailconfig"
	"github.com/acfjba/platformdigital-sub000/core/exam"
	"github.com/acfjba/platformdigital-sub000/core/importer"
	"github.com/acfjba/platformdigital-sub000/core/library"
	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/planning"
	"github.com/acfjba/platformdigital-sub000/core/school"
	"github.com/acfjba/platformdigital-sub000/core/staff"
	"github.com/acfjba/platformdigital-sub000/core/student"
	"github.com/acfjba/platformdigital-sub000/core/user"
	"github.com/acfjba/platformdigital-sub000/services/scheduler"
	"github.com/acfjba/platformdigital-sub000/storage"
)

// Services holds every domain service, built over one set of repositories.
type Services struct {
	Users       *user.Service
	Schools     *school.Service
	Licenses    *license.Service
	Staff       *staff.Service
	Students    *student.Service
	Attendance  *attendance.Service
	Exams       *exam.Service
	Discipline  *discipline.Service
	Library     *library.Service
	Planning    *planning.Service
	Importer    *importer.Service
	EmailConfig *emailconfig.Service
	Dashboard   *dashboard.Service
}

// NewValidator returns the validator with every custom validator and translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func NewServices(
	repos *storage.Repositories,
	mailer core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
	conf *core.Config,
) *Services {
	svcs := &Services{
		Schools:  school.NewService(repos.Schools, repos.Users),
		Licenses: license.NewService(repos.Licenses, repos.Schools),
		Staff:    staff.NewService(repos.Staff),
		Students: student.NewService(repos.Students),
		Planning: planning.NewService(repos.Planning),
	}
	svcs.Users = user.NewService(repos.Users, svcs.Licenses)
	svcs.Attendance = attendance.NewService(repos.Attendance, svcs.Students)
	svcs.Exams = exam.NewService(repos.Exams, svcs.Students)
	svcs.Discipline = discipline.NewService(repos.Incidents, svcs.Students)
	svcs.Library = library.NewService(repos.Library, svcs.Students, svcs.Staff)
	svcs.Importer = importer.NewService(validate, translator, svcs.Staff, svcs.Students)
	svcs.EmailConfig = emailconfig.NewService(repos.EmailConfig, mailer, conf)
	svcs.Dashboard = dashboard.NewService(dashboard.Deps{
		Schools:    svcs.Schools,
		Licenses:   svcs.Licenses,
		Staff:      svcs.Staff,
		Students:   svcs.Students,
		Attendance: svcs.Attendance,
		Discipline: svcs.Discipline,
		Planning:   svcs.Planning,
		Library:    svcs.Library,
	}, conf)
	return svcs
}

// Jobs returns the scheduled jobs over svcs.
func (svcs *Services) Jobs(mailer core.EmailService, conf *core.Config, logger core.Logger) *scheduler.Jobs {
	return scheduler.NewJobs(scheduler.Deps{
		Schools:     svcs.Schools,
		Licenses:    svcs.Licenses,
		Library:     svcs.Library,
		EmailConfig: svcs.EmailConfig,
		Mailer:      mailer,
	}, conf, logger)
}
