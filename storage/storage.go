// Package storage wires the repositories of the configured database engine.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/acfjba/platformdigital-sub000/core"
	"github.com/acfjba/platformdigital-sub000/core/attendance"
	"github.com/acfjba/platformdigital-sub000/core/discipline"
	"github.com/acfjba/platformdigital-sub000/core/emailconfig"
	"github.com/acfjba/platformdigital-sub000/core/exam"
	"github.com/acfjba/platformdigital-sub000/core/library"
	"github.com/acfjba/platformdigital-sub000/core/license"
	"github.com/acfjba/platformdigital-sub000/core/planning"
	"github.com/acfjba/platformdigital-sub000/core/school"
	"github.com/acfjba/platformdigital-sub000/core/staff"
	"github.com/acfjba/platformdigital-sub000/core/student"
	"github.com/acfjba/platformdigital-sub000/core/user"
	"github.com/acfjba/platformdigital-sub000/storage/database"
	inmemdb "github.com/acfjba/platformdigital-sub000/storage/database/inmem"
	sqlxrepos "github.com/acfjba/platformdigital-sub000/storage/database/sqlx"
	firestoredb "github.com/acfjba/platformdigital-sub000/storage/firestore"
)

type Repositories struct {
	Users       user.Repository
	Schools     school.Repository
	Licenses    license.Repository
	Staff       staff.Repository
	Students    student.Repository
	Attendance  attendance.Repository
	Exams       exam.Repository
	Incidents   discipline.Repository
	Library     library.Repository
	Planning    planning.Repository
	EmailConfig emailconfig.Repository

	// Close releases the underlying connection.
	Close func() error
}

// Open connects to the engine of conf.Database and returns its repositories.
func Open(ctx context.Context, conf *core.Config) (*Repositories, error) {
	switch conf.Database.Engine {
	case core.EngineMemory:
		return InMemory(), nil

	case core.EnginePostgres:
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Users:       sqlxrepos.NewUserRepository(db),
			Schools:     sqlxrepos.NewSchoolRepository(db),
			Licenses:    sqlxrepos.NewLicenseRepository(db),
			Staff:       sqlxrepos.NewStaffRepository(db),
			Students:    sqlxrepos.NewStudentRepository(db),
			Attendance:  sqlxrepos.NewAttendanceRepository(db),
			Exams:       sqlxrepos.NewExamRepository(db),
			Incidents:   sqlxrepos.NewIncidentRepository(db),
			Library:     sqlxrepos.NewLibraryRepository(db),
			Planning:    sqlxrepos.NewPlanningRepository(db),
			EmailConfig: sqlxrepos.NewEmailConfigRepository(db),
			Close:       db.Close,
		}, nil

	case core.EngineFirestore:
		client, err := firestoredb.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Users:       firestoredb.NewUserRepository(client),
			Schools:     firestoredb.NewSchoolRepository(client),
			Licenses:    firestoredb.NewLicenseRepository(client),
			Staff:       firestoredb.NewStaffRepository(client),
			Students:    firestoredb.NewStudentRepository(client),
			Attendance:  firestoredb.NewAttendanceRepository(client),
			Exams:       firestoredb.NewExamRepository(client),
			Incidents:   firestoredb.NewIncidentRepository(client),
			Library:     firestoredb.NewLibraryRepository(client),
			Planning:    firestoredb.NewPlanningRepository(client),
			EmailConfig: firestoredb.NewEmailConfigRepository(client),
			Close:       client.Close,
		}, nil
	}
	return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

// InMemory returns repositories sharing a fresh in-memory database.
func InMemory() *Repositories {
	db := inmemdb.Open()
	return &Repositories{
		Users:       inmemdb.NewUserRepository(db),
		Schools:     inmemdb.NewSchoolRepository(db),
		Licenses:    inmemdb.NewLicenseRepository(db),
		Staff:       inmemdb.NewStaffRepository(db),
		Students:    inmemdb.NewStudentRepository(db),
		Attendance:  inmemdb.NewAttendanceRepository(db),
		Exams:       inmemdb.NewExamRepository(db),
		Incidents:   inmemdb.NewIncidentRepository(db),
		Library:     inmemdb.NewLibraryRepository(db),
		Planning:    inmemdb.NewPlanningRepository(db),
		EmailConfig: inmemdb.NewEmailConfigRepository(db),
		Close:       func() error { return nil },
	}
}
