// Package inmemdb stores every entity in mutex-guarded maps. Used by tests and local demos.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

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
)

type (
	DB struct {
		user         *table[user.User]
		school       *table[school.School]
		license      *table[license.License] // keyed by school ID
		staff        *table[staff.Staff]
		student      *table[student.Student]
		attendance   *table[attendance.Record]
		exam         *table[exam.Result]
		incident     *table[discipline.Incident]
		book         *table[library.Book]
		loan         *table[library.Loan]
		lessonPlan   *table[planning.LessonPlan]
		workbookPlan *table[planning.WorkbookPlan]
		emailConfig  *table[emailconfig.Config] // keyed by school ID
	}

	table[T any] struct {
		sync.RWMutex
		rows map[string]T
	}
)

func Open() *DB {
	return &DB{
		user:         newTable[user.User](),
		school:       newTable[school.School](),
		license:      newTable[license.License](),
		staff:        newTable[staff.Staff](),
		student:      newTable[student.Student](),
		attendance:   newTable[attendance.Record](),
		exam:         newTable[exam.Result](),
		incident:     newTable[discipline.Incident](),
		book:         newTable[library.Book](),
		loan:         newTable[library.Loan](),
		lessonPlan:   newTable[planning.LessonPlan](),
		workbookPlan: newTable[planning.WorkbookPlan](),
		emailConfig:  newTable[emailconfig.Config](),
	}
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func newID() string {
	return uuid.New().String()
}

// filter returns the rows matching fn. Callers hold the lock.
func (t *table[T]) filter(fn func(T) bool) []T {
	rows := make([]T, 0)
	for _, row := range t.rows {
		if fn(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (t *table[T]) query(fn func(T) bool) []T {
	t.RLock()
	defer t.RUnlock()
	return t.filter(fn)
}

// get returns the row with key if visible (when set) accepts it.
func (t *table[T]) get(key string, visible func(T) bool) (T, bool) {
	t.RLock()
	defer t.RUnlock()
	row, ok := t.rows[key]
	if ok && visible != nil && !visible(row) {
		var zero T
		return zero, false
	}
	return row, ok
}

func (t *table[T]) put(key string, row T) T {
	t.Lock()
	defer t.Unlock()
	t.rows[key] = row
	return row
}

// replace stores row under an existing key only.
func (t *table[T]) replace(key string, row T) bool {
	t.Lock()
	defer t.Unlock()
	if _, ok := t.rows[key]; !ok {
		return false
	}
	t.rows[key] = row
	return true
}

// remove deletes the row with key if visible accepts it.
func (t *table[T]) remove(key string, visible func(T) bool) bool {
	t.Lock()
	defer t.Unlock()
	row, ok := t.rows[key]
	if !ok || (visible != nil && !visible(row)) {
		return false
	}
	delete(t.rows, key)
	return true
}
