package screens

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/hrapi"
)

// EmployeeList is the HR view over all employees or all managers. Each kind
// keeps its own collection so switching back shows the last fetch until the
// refetch lands.
type EmployeeList struct {
	api  PeopleAPI
	opts Options

	mu     sync.Mutex
	kind   PersonKind
	tables map[PersonKind]*personTable
	banner Banner
}

func NewEmployeeList(api PeopleAPI, opts Options) *EmployeeList {
	return &EmployeeList{
		api:  api,
		opts: opts.withDefaults(),
		kind: KindEmployee,
		tables: map[PersonKind]*personTable{
			KindEmployee: {},
			KindManager:  {},
		},
	}
}

func (l *EmployeeList) View() PeopleView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewLocked()
}

func (l *EmployeeList) viewLocked() PeopleView {
	return l.tables[l.kind].view(l.kind, l.banner, l.opts.Now())
}

// SetKind switches the list between employees and managers, clears the
// banner and refetches.
func (l *EmployeeList) SetKind(ctx context.Context, kind PersonKind) PeopleView {
	l.mu.Lock()
	if kind != KindManager {
		kind = KindEmployee
	}
	l.kind = kind
	l.banner.clear()
	l.mu.Unlock()
	return l.Load(ctx)
}

func (l *EmployeeList) Load(ctx context.Context) PeopleView {
	l.mu.Lock()
	kind := l.kind
	l.mu.Unlock()

	var (
		people []hrapi.Person
		err    error
	)
	if kind == KindManager {
		people, err = l.api.ListManagers(ctx)
	} else {
		people, err = l.api.ListUsers(ctx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.opts.Logger.WithError(err).WithField("kind", kind).Warn("fetch people failed")
		l.banner.fail(msgFetchFailed)
		return l.viewLocked()
	}
	l.tables[kind].reset(people)
	return l.viewLocked()
}

// EnsureLoaded fetches the current kind unless it has been fetched already.
// Mutations on a workspace rebuilt after a restart need the rows first.
func (l *EmployeeList) EnsureLoaded(ctx context.Context) {
	l.mu.Lock()
	loaded := l.tables[l.kind].loaded
	l.mu.Unlock()
	if !loaded {
		l.Load(ctx)
	}
}

func (l *EmployeeList) BeginEdit(id int64) (PeopleView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.tables[l.kind].beginEdit(id)
	return l.viewLocked(), err
}

func (l *EmployeeList) SetDraft(id int64, d PersonDraft) (PeopleView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.tables[l.kind].setDraft(id, d)
	return l.viewLocked(), err
}

func (l *EmployeeList) Cancel(id int64) (PeopleView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.tables[l.kind].cancel(id); err != nil {
		return l.viewLocked(), err
	}
	l.banner.Error = ""
	return l.viewLocked(), nil
}

// Save sends the row's draft to the HR API and patches the row in place on
// success. Every field, credentials included, must be filled.
func (l *EmployeeList) Save(ctx context.Context, id int64) (PeopleView, error) {
	l.mu.Lock()
	kind := l.kind
	d, _, err := l.tables[kind].draft(id)
	if err != nil {
		defer l.mu.Unlock()
		return l.viewLocked(), err
	}
	if d.blank(true) {
		defer l.mu.Unlock()
		l.banner.fail(msgFieldsRequired)
		return l.viewLocked(), fieldsRequired()
	}
	l.mu.Unlock()

	in := d.input()
	if kind == KindManager {
		err = l.api.EditManager(ctx, id, in)
	} else {
		err = l.api.EditUser(ctx, id, in)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.opts.Logger.WithError(err).WithFields(logrus.Fields{"kind": kind, "id": id}).Warn("update person failed")
		l.banner.fail(fmt.Sprintf("Failed to update %s. %s", kind, hrapi.Message(err)))
		return l.viewLocked(), nil
	}
	l.tables[kind].patch(id, in)
	l.banner.succeed(kind.title() + " details updated successfully!")
	return l.viewLocked(), nil
}

func (l *EmployeeList) Delete(ctx context.Context, id int64) (PeopleView, error) {
	l.mu.Lock()
	kind := l.kind
	if _, ok := l.tables[kind].find(id); !ok {
		defer l.mu.Unlock()
		return l.viewLocked(), ErrNotFound
	}
	l.mu.Unlock()

	var err error
	if kind == KindManager {
		err = l.api.DeleteManager(ctx, id)
	} else {
		err = l.api.DeleteUser(ctx, id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.opts.Logger.WithError(err).WithFields(logrus.Fields{"kind": kind, "id": id}).Warn("delete person failed")
		l.banner.fail(fmt.Sprintf("Failed to delete %s. %s", kind, hrapi.Message(err)))
		return l.viewLocked(), nil
	}
	l.tables[kind].remove(id)
	l.banner.succeed(kind.title() + " deleted successfully!")
	return l.viewLocked(), nil
}
