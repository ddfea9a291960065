package screens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"indus/hrportal/internal/hrapi"
)

// fakeAPI records every call and answers from its func fields. A nil func
// succeeds with zero values.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	listUsers          func() ([]hrapi.Person, error)
	listManagers       func() ([]hrapi.Person, error)
	listUsersByManager func(managerID int64) ([]hrapi.Person, error)
	addUser            func(in hrapi.PersonInput, hrID, managerID int64) error
	addManager         func(in hrapi.PersonInput, hrID int64) error
	addUserDetails     func(in hrapi.UserDetails) error
	editUser           func(id int64, in hrapi.PersonInput) error
	editManager        func(id int64, in hrapi.PersonInput) error
	deleteUser         func(id int64) error
	deleteManager      func(id int64) error
	listTasks          func(userID int64) ([]hrapi.Task, error)
	addTask            func(userID int64, in hrapi.TaskInput) error
	completeTask       func(id int64) error
	listLeave          func(scope hrapi.LeaveScope) ([]hrapi.LeaveRequest, error)
	approveLeave       func(scope hrapi.LeaveScope, id int64) error
	denyLeave          func(scope hrapi.LeaveScope, id int64) error
}

func (f *fakeAPI) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) ListUsers(context.Context) ([]hrapi.Person, error) {
	f.record("ListUsers")
	if f.listUsers == nil {
		return nil, nil
	}
	return f.listUsers()
}

func (f *fakeAPI) ListManagers(context.Context) ([]hrapi.Person, error) {
	f.record("ListManagers")
	if f.listManagers == nil {
		return nil, nil
	}
	return f.listManagers()
}

func (f *fakeAPI) ListUsersByManager(_ context.Context, managerID int64) ([]hrapi.Person, error) {
	f.record("ListUsersByManager %d", managerID)
	if f.listUsersByManager == nil {
		return nil, nil
	}
	return f.listUsersByManager(managerID)
}

func (f *fakeAPI) AddUser(_ context.Context, in hrapi.PersonInput, hrID, managerID int64) error {
	f.record("AddUser %s %d %d", in.Username, hrID, managerID)
	if f.addUser == nil {
		return nil
	}
	return f.addUser(in, hrID, managerID)
}

func (f *fakeAPI) AddManager(_ context.Context, in hrapi.PersonInput, hrID int64) error {
	f.record("AddManager %s %d", in.Username, hrID)
	if f.addManager == nil {
		return nil
	}
	return f.addManager(in, hrID)
}

func (f *fakeAPI) AddUserDetails(_ context.Context, in hrapi.UserDetails) error {
	f.record("AddUserDetails %s", in.Username)
	if f.addUserDetails == nil {
		return nil
	}
	return f.addUserDetails(in)
}

func (f *fakeAPI) EditUser(_ context.Context, id int64, in hrapi.PersonInput) error {
	f.record("EditUser %d", id)
	if f.editUser == nil {
		return nil
	}
	return f.editUser(id, in)
}

func (f *fakeAPI) EditManager(_ context.Context, id int64, in hrapi.PersonInput) error {
	f.record("EditManager %d", id)
	if f.editManager == nil {
		return nil
	}
	return f.editManager(id, in)
}

func (f *fakeAPI) DeleteUser(_ context.Context, id int64) error {
	f.record("DeleteUser %d", id)
	if f.deleteUser == nil {
		return nil
	}
	return f.deleteUser(id)
}

func (f *fakeAPI) DeleteManager(_ context.Context, id int64) error {
	f.record("DeleteManager %d", id)
	if f.deleteManager == nil {
		return nil
	}
	return f.deleteManager(id)
}

func (f *fakeAPI) ListTasks(_ context.Context, userID int64) ([]hrapi.Task, error) {
	f.record("ListTasks %d", userID)
	if f.listTasks == nil {
		return nil, nil
	}
	return f.listTasks(userID)
}

func (f *fakeAPI) AddTask(_ context.Context, userID int64, in hrapi.TaskInput) error {
	f.record("AddTask %d %s %s", userID, in.TaskName, in.Deadline)
	if f.addTask == nil {
		return nil
	}
	return f.addTask(userID, in)
}

func (f *fakeAPI) CompleteTask(_ context.Context, id int64) error {
	f.record("CompleteTask %d", id)
	if f.completeTask == nil {
		return nil
	}
	return f.completeTask(id)
}

func (f *fakeAPI) ListLeaveRequests(_ context.Context, scope hrapi.LeaveScope) ([]hrapi.LeaveRequest, error) {
	f.record("ListLeaveRequests %s", scope)
	if f.listLeave == nil {
		return nil, nil
	}
	return f.listLeave(scope)
}

func (f *fakeAPI) ApproveLeave(_ context.Context, scope hrapi.LeaveScope, id int64) error {
	f.record("ApproveLeave %s %d", scope, id)
	if f.approveLeave == nil {
		return nil
	}
	return f.approveLeave(scope, id)
}

func (f *fakeAPI) DenyLeave(_ context.Context, scope hrapi.LeaveScope, id int64) error {
	f.record("DenyLeave %s %d", scope, id)
	if f.denyLeave == nil {
		return nil
	}
	return f.denyLeave(scope, id)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testOptions(clock *testClock) Options {
	return Options{BannerTTL: 3 * time.Second, Now: clock.Now}
}

func people(ids ...int64) []hrapi.Person {
	out := make([]hrapi.Person, 0, len(ids))
	for _, id := range ids {
		out = append(out, hrapi.Person{
			ID:       id,
			Name:     fmt.Sprintf("Person %d", id),
			Email:    fmt.Sprintf("p%d@corp.io", id),
			Phone:    "5550000000",
			Username: fmt.Sprintf("p%d@user", id),
			Password: "secret",
			Role:     "Employee",
		})
	}
	return out
}
