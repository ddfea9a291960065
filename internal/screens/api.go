// Package screens holds the server-side state of every portal screen: the
// collections each screen fetched, per-row edit drafts, form contents and
// feedback banners. Mutations patch the held copy after the remote call
// succeeds; nothing is re-fetched.
package screens

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/hrapi"
)

var (
	ErrNotFound   = errors.New("item not found")
	ErrNotEditing = errors.New("item is not being edited")
)

type PeopleAPI interface {
	ListUsers(ctx context.Context) ([]hrapi.Person, error)
	ListManagers(ctx context.Context) ([]hrapi.Person, error)
	ListUsersByManager(ctx context.Context, managerID int64) ([]hrapi.Person, error)
	AddUser(ctx context.Context, in hrapi.PersonInput, hrID, managerID int64) error
	AddManager(ctx context.Context, in hrapi.PersonInput, hrID int64) error
	AddUserDetails(ctx context.Context, in hrapi.UserDetails) error
	EditUser(ctx context.Context, id int64, in hrapi.PersonInput) error
	EditManager(ctx context.Context, id int64, in hrapi.PersonInput) error
	DeleteUser(ctx context.Context, id int64) error
	DeleteManager(ctx context.Context, id int64) error
}

type TaskAPI interface {
	ListTasks(ctx context.Context, userID int64) ([]hrapi.Task, error)
	AddTask(ctx context.Context, userID int64, in hrapi.TaskInput) error
	CompleteTask(ctx context.Context, taskID int64) error
}

type LeaveAPI interface {
	ListLeaveRequests(ctx context.Context, scope hrapi.LeaveScope) ([]hrapi.LeaveRequest, error)
	ApproveLeave(ctx context.Context, scope hrapi.LeaveScope, id int64) error
	DenyLeave(ctx context.Context, scope hrapi.LeaveScope, id int64) error
}

// API is everything the screens need from the HR API; *hrapi.Client
// satisfies it.
type API interface {
	PeopleAPI
	TaskAPI
	LeaveAPI
}

type Options struct {
	// BannerTTL bounds how long form-screen banners stay visible.
	BannerTTL time.Duration
	Now       func() time.Time
	Logger    *logrus.Entry
}

func (o Options) withDefaults() Options {
	if o.BannerTTL <= 0 {
		o.BannerTTL = 3 * time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return o
}
