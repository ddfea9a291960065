package screens

import (
	"strings"
	"sync"
)

type DashboardView struct {
	Name     string           `json:"name"`
	Role     string           `json:"role"`
	Feedback string           `json:"feedback"`
	Errors   ValidationErrors `json:"errors,omitempty"`
	Banner   Banner           `json:"banner"`
}

// Dashboard is the employee landing screen. Feedback stays local: there is
// no HR API endpoint for it.
type Dashboard struct {
	opts Options
	name string
	role string

	mu        sync.Mutex
	feedback  string
	submitted int
	errs      ValidationErrors
	banner    Banner
}

func NewDashboard(name, role string, opts Options) *Dashboard {
	return &Dashboard{opts: opts.withDefaults(), name: name, role: role}
}

func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

func (d *Dashboard) viewLocked() DashboardView {
	return DashboardView{
		Name:     d.name,
		Role:     d.role,
		Feedback: d.feedback,
		Errors:   d.errs,
		Banner:   d.banner.visible(d.opts.Now()),
	}
}

func (d *Dashboard) SubmitFeedback(text string) (DashboardView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		d.feedback = text
		d.errs = ValidationErrors{"feedback": "Feedback is required"}
		return d.viewLocked(), d.errs
	}
	d.submitted++
	d.feedback = ""
	d.errs = nil
	d.banner.succeed("Feedback submitted successfully!")
	d.opts.Logger.WithField("count", d.submitted).Info("feedback submitted")
	return d.viewLocked(), nil
}
