// Package firestoredb implements the repositories on Cloud Firestore.
// Documents live in top-level collections; school scoping is a `schoolId` equality filter,
// the remaining filter fields are applied by the domain Match methods.
package firestoredb

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/acfjba/platformdigital-sub000/core"
)

// Collections
const (
	usersCol         = "users"
	schoolsCol       = "schools"
	licensesCol      = "licenses" // doc ID: school ID
	staffCol         = "staff"
	studentsCol      = "students"
	attendanceCol    = "attendance"
	examResultsCol   = "examResults"
	incidentsCol     = "incidents"
	booksCol         = "books"
	loansCol         = "loans"
	lessonPlansCol   = "lessonPlans"
	workbookPlansCol = "workbookPlans"
	emailConfigsCol  = "emailConfigs" // doc ID: school ID
)

const schoolField = "schoolId"

// Open connects to the project of conf.Firestore. FIRESTORE_EMULATOR_HOST is honoured by the client.
func Open(ctx context.Context, conf *core.Config) (*firestore.Client, error) {
	var opts []option.ClientOption
	if conf.Firestore.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Firestore.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.Firestore.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase app")
	}
	client, err := app.Firestore(ctx)
	return client, errors.Wrap(err, "opening firestore")
}

func newID() string {
	return uuid.New().String()
}

// keyID derives a stable document ID from a natural key.
func keyID(parts ...string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(parts, "|"))).String()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// collection reads and writes documents of type T, whose ID is not part of the stored data.
type collection[T any] struct {
	ref   *firestore.CollectionRef
	setID func(*T, string)
}

func newCollection[T any](client *firestore.Client, name string, setID func(*T, string)) collection[T] {
	return collection[T]{ref: client.Collection(name), setID: setID}
}

func (c collection[T]) decode(doc *firestore.DocumentSnapshot) (T, error) {
	var v T
	if err := doc.DataTo(&v); err != nil {
		return v, errors.Wrapf(err, "decoding %s", doc.Ref.Path)
	}
	c.setID(&v, doc.Ref.ID)
	return v, nil
}

// get returns the document with id if visible (when set) accepts it, notFound otherwise.
func (c collection[T]) get(ctx context.Context, id string, notFound error, visible func(T) bool) (T, error) {
	var zero T
	if id == "" {
		return zero, notFound
	}
	doc, err := c.ref.Doc(id).Get(ctx)
	if isNotFound(err) {
		return zero, notFound
	} else if err != nil {
		return zero, errors.Wrapf(err, "getting %s/%s", c.ref.ID, id)
	}
	v, err := c.decode(doc)
	if err != nil {
		return zero, err
	}
	if visible != nil && !visible(v) {
		return zero, notFound
	}
	return v, nil
}

// all runs q and returns the decoded documents matching fn.
func (c collection[T]) all(ctx context.Context, q firestore.Query, fn func(T) bool) ([]T, error) {
	rows := make([]T, 0)
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "querying %s", c.ref.ID)
		}
		v, err := c.decode(doc)
		if err != nil {
			return nil, err
		}
		if fn == nil || fn(v) {
			rows = append(rows, v)
		}
	}
	return rows, nil
}

// inSchool returns the query of the documents of schoolID, or of every school when empty.
func (c collection[T]) inSchool(schoolID string) firestore.Query {
	if schoolID == "" {
		return c.ref.Query
	}
	return c.ref.Where(schoolField, "==", schoolID)
}

func (c collection[T]) create(ctx context.Context, id string, v T) error {
	_, err := c.ref.Doc(id).Create(ctx, v)
	return err
}

func (c collection[T]) set(ctx context.Context, id string, v T) error {
	_, err := c.ref.Doc(id).Set(ctx, v)
	return errors.Wrapf(err, "writing %s/%s", c.ref.ID, id)
}

// replace overwrites an existing document only.
func (c collection[T]) replace(ctx context.Context, client *firestore.Client, id string, v T, notFound error, visible func(T) bool) error {
	if id == "" {
		return notFound
	}
	return client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := c.ref.Doc(id)
		doc, err := tx.Get(ref)
		if isNotFound(err) {
			return notFound
		} else if err != nil {
			return err
		}
		orig, err := c.decode(doc)
		if err != nil {
			return err
		}
		if visible != nil && !visible(orig) {
			return notFound
		}
		return tx.Set(ref, v)
	})
}

// remove deletes the document with id if visible accepts it.
func (c collection[T]) remove(ctx context.Context, client *firestore.Client, id string, notFound error, visible func(T) bool) error {
	if id == "" {
		return notFound
	}
	return client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref := c.ref.Doc(id)
		doc, err := tx.Get(ref)
		if isNotFound(err) {
			return notFound
		} else if err != nil {
			return err
		}
		v, err := c.decode(doc)
		if err != nil {
			return err
		}
		if visible != nil && !visible(v) {
			return notFound
		}
		return tx.Delete(ref)
	})
}
