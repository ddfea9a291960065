package screens

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/hrapi"
)

// TeamList is a manager's view of their own employees. Only name, email,
// phone and role are editable; credentials are carried over from the row.
type TeamList struct {
	api       PeopleAPI
	opts      Options
	managerID int64

	mu     sync.Mutex
	table  personTable
	banner Banner
}

func NewTeamList(api PeopleAPI, managerID int64, opts Options) *TeamList {
	return &TeamList{api: api, opts: opts.withDefaults(), managerID: managerID}
}

func (l *TeamList) View() PeopleView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewLocked()
}

func (l *TeamList) viewLocked() PeopleView {
	return l.table.view("", l.banner, l.opts.Now())
}

func (l *TeamList) Load(ctx context.Context) PeopleView {
	people, err := l.api.ListUsersByManager(ctx, l.managerID)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.opts.Logger.WithError(err).WithField("manager_id", l.managerID).Warn("fetch team failed")
		l.banner.fail(msgFetchFailed)
		return l.viewLocked()
	}
	l.table.reset(people)
	return l.viewLocked()
}

func (l *TeamList) EnsureLoaded(ctx context.Context) {
	l.mu.Lock()
	loaded := l.table.loaded
	l.mu.Unlock()
	if !loaded {
		l.Load(ctx)
	}
}

func (l *TeamList) BeginEdit(id int64) (PeopleView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.table.beginEdit(id)
	return l.viewLocked(), err
}

func (l *TeamList) SetDraft(id int64, d PersonDraft) (PeopleView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, _, err := l.table.draft(id)
	if err != nil {
		return l.viewLocked(), err
	}
	d.Username = cur.Username
	d.Password = cur.Password
	err = l.table.setDraft(id, d)
	return l.viewLocked(), err
}

func (l *TeamList) Cancel(id int64) (PeopleView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.table.cancel(id); err != nil {
		return l.viewLocked(), err
	}
	l.banner.Error = ""
	return l.viewLocked(), nil
}

func (l *TeamList) Save(ctx context.Context, id int64) (PeopleView, error) {
	l.mu.Lock()
	d, _, err := l.table.draft(id)
	if err != nil {
		defer l.mu.Unlock()
		return l.viewLocked(), err
	}
	if d.blank(false) {
		defer l.mu.Unlock()
		l.banner.fail(msgFieldsRequired)
		return l.viewLocked(), fieldsRequired()
	}
	l.mu.Unlock()

	in := d.input()
	err = l.api.EditUser(ctx, id, in)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.opts.Logger.WithError(err).WithFields(logrus.Fields{"manager_id": l.managerID, "id": id}).Warn("update team member failed")
		l.banner.fail("Failed to update employee. " + hrapi.Message(err))
		return l.viewLocked(), nil
	}
	l.table.patch(id, in)
	l.banner.succeed("Employee details updated successfully!")
	return l.viewLocked(), nil
}

func (l *TeamList) Delete(ctx context.Context, id int64) (PeopleView, error) {
	l.mu.Lock()
	if _, ok := l.table.find(id); !ok {
		defer l.mu.Unlock()
		return l.viewLocked(), ErrNotFound
	}
	l.mu.Unlock()

	err := l.api.DeleteUser(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.opts.Logger.WithError(err).WithFields(logrus.Fields{"manager_id": l.managerID, "id": id}).Warn("delete team member failed")
		l.banner.fail("Failed to delete employee. " + hrapi.Message(err))
		return l.viewLocked(), nil
	}
	l.table.remove(id)
	l.banner.succeed("Employee deleted successfully!")
	return l.viewLocked(), nil
}
