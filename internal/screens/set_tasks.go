package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/hrapi"
)

type TaskForm struct {
	TaskName   string `json:"taskName" validate:"required"`
	Deadline   string `json:"deadline" validate:"required,datetime=2006-01-02"`
	EmployeeID int64  `json:"employeeId" validate:"required"`
}

var taskFormMessages = map[string]string{
	"taskName":          "Task name is required",
	"deadline.required": "Deadline is required",
	"deadline.datetime": "Deadline must be a date (YYYY-MM-DD)",
	"employeeId":        "Select an employee",
}

// EmployeeOption is one entry of the assignee picker.
type EmployeeOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SetTasksView struct {
	Loaded    bool             `json:"loaded"`
	Employees []EmployeeOption `json:"employees"`
	Form      TaskForm         `json:"form"`
	Errors    ValidationErrors `json:"errors,omitempty"`
	Banner    Banner           `json:"banner"`
}

// SetTasks assigns a task with a deadline to one of the manager's employees.
type SetTasks struct {
	people    PeopleAPI
	tasks     TaskAPI
	opts      Options
	managerID int64

	mu        sync.Mutex
	employees []EmployeeOption
	loaded    bool
	form      TaskForm
	errs      ValidationErrors
	banner    Banner
}

func NewSetTasks(people PeopleAPI, tasks TaskAPI, managerID int64, opts Options) *SetTasks {
	return &SetTasks{people: people, tasks: tasks, opts: opts.withDefaults(), managerID: managerID}
}

func (s *SetTasks) View() SetTasksView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *SetTasks) viewLocked() SetTasksView {
	opts := make([]EmployeeOption, len(s.employees))
	copy(opts, s.employees)
	return SetTasksView{
		Loaded:    s.loaded,
		Employees: opts,
		Form:      s.form,
		Errors:    s.errs,
		Banner:    s.banner.visible(s.opts.Now()),
	}
}

func (s *SetTasks) Load(ctx context.Context) SetTasksView {
	people, err := s.people.ListUsersByManager(ctx, s.managerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.opts.Logger.WithError(err).WithField("manager_id", s.managerID).Warn("fetch employees failed")
		s.banner.fail("Failed to fetch employees.")
		return s.viewLocked()
	}
	s.employees = make([]EmployeeOption, 0, len(people))
	for _, p := range people {
		s.employees = append(s.employees, EmployeeOption{ID: p.ID, Name: p.Name})
	}
	s.loaded = true
	return s.viewLocked()
}

func (s *SetTasks) EnsureLoaded(ctx context.Context) {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		s.Load(ctx)
	}
}

// Submit validates the form and posts the task. The assignee must be one of
// the loaded employees. On success the form is cleared.
func (s *SetTasks) Submit(ctx context.Context, form TaskForm) (SetTasksView, error) {
	form.TaskName = strings.TrimSpace(form.TaskName)
	form.Deadline = strings.TrimSpace(form.Deadline)

	errs := checkStruct(form, taskFormMessages)

	s.mu.Lock()
	if _, bad := errs["employeeId"]; !bad && !s.isEmployee(form.EmployeeID) {
		errs["employeeId"] = taskFormMessages["employeeId"]
	}
	s.form = form
	if len(errs) > 0 {
		defer s.mu.Unlock()
		s.errs = errs
		return s.viewLocked(), errs
	}
	s.errs = nil
	s.mu.Unlock()

	err := s.tasks.AddTask(ctx, form.EmployeeID, hrapi.TaskInput{TaskName: form.TaskName, Deadline: form.Deadline})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.opts.Logger.WithError(err).WithFields(logrus.Fields{"manager_id": s.managerID, "user_id": form.EmployeeID}).Warn("assign task failed")
		s.banner.clear()
		s.banner.fail("Failed to assign task.")
		s.banner.expireAt(s.opts.Now().Add(s.opts.BannerTTL))
		return s.viewLocked(), nil
	}
	s.form = TaskForm{}
	s.banner.succeed("Task assigned successfully!")
	s.banner.expireAt(s.opts.Now().Add(s.opts.BannerTTL))
	return s.viewLocked(), nil
}

func (s *SetTasks) isEmployee(id int64) bool {
	for _, e := range s.employees {
		if e.ID == id {
			return true
		}
	}
	return false
}
