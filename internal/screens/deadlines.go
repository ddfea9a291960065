package screens

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/hrapi"
)

type DeadlinesView struct {
	Loaded bool         `json:"loaded"`
	Tasks  []hrapi.Task `json:"tasks"`
	Banner Banner       `json:"banner"`
}

// Deadlines lists the signed-in employee's tasks.
type Deadlines struct {
	api    TaskAPI
	opts   Options
	userID int64

	mu     sync.Mutex
	tasks  []hrapi.Task
	loaded bool
	banner Banner
}

func NewDeadlines(api TaskAPI, userID int64, opts Options) *Deadlines {
	return &Deadlines{api: api, opts: opts.withDefaults(), userID: userID}
}

func (d *Deadlines) View() DeadlinesView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

func (d *Deadlines) viewLocked() DeadlinesView {
	tasks := make([]hrapi.Task, len(d.tasks))
	copy(tasks, d.tasks)
	return DeadlinesView{Loaded: d.loaded, Tasks: tasks, Banner: d.banner.visible(d.opts.Now())}
}

func (d *Deadlines) Load(ctx context.Context) DeadlinesView {
	tasks, err := d.api.ListTasks(ctx, d.userID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.opts.Logger.WithError(err).WithField("user_id", d.userID).Warn("fetch deadlines failed")
		d.banner.fail("Failed to fetch deadlines.")
		return d.viewLocked()
	}
	d.tasks = tasks
	d.loaded = true
	return d.viewLocked()
}

func (d *Deadlines) EnsureLoaded(ctx context.Context) {
	d.mu.Lock()
	loaded := d.loaded
	d.mu.Unlock()
	if !loaded {
		d.Load(ctx)
	}
}

// MarkComplete flips completionStatus on the one task with the given id once
// the HR API accepts it.
func (d *Deadlines) MarkComplete(ctx context.Context, id int64) (DeadlinesView, error) {
	d.mu.Lock()
	if d.index(id) < 0 {
		defer d.mu.Unlock()
		return d.viewLocked(), ErrNotFound
	}
	d.mu.Unlock()

	err := d.api.CompleteTask(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.opts.Logger.WithError(err).WithFields(logrus.Fields{"user_id": d.userID, "task_id": id}).Warn("complete task failed")
		d.banner.fail("Failed to mark task as complete.")
		return d.viewLocked(), nil
	}
	if i := d.index(id); i >= 0 {
		d.tasks[i].CompletionStatus = true
	}
	d.banner.Error = ""
	return d.viewLocked(), nil
}

func (d *Deadlines) index(id int64) int {
	for i, t := range d.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
