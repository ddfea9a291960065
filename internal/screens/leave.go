package screens

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"indus/hrportal/internal/hrapi"
)

type LeaveView struct {
	Scope    hrapi.LeaveScope     `json:"scope"`
	Loaded   bool                 `json:"loaded"`
	Requests []hrapi.LeaveRequest `json:"requests"`
	Banner   Banner               `json:"banner"`
}

// LeaveApproval is the pending-leave queue of one approver scope. A request
// leaves the queue only after the HR API accepted the decision.
type LeaveApproval struct {
	api   LeaveAPI
	opts  Options
	scope hrapi.LeaveScope

	mu       sync.Mutex
	requests []hrapi.LeaveRequest
	loaded   bool
	banner   Banner
}

func NewLeaveApproval(api LeaveAPI, scope hrapi.LeaveScope, opts Options) *LeaveApproval {
	return &LeaveApproval{api: api, opts: opts.withDefaults(), scope: scope}
}

func (l *LeaveApproval) View() LeaveView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewLocked()
}

func (l *LeaveApproval) viewLocked() LeaveView {
	reqs := make([]hrapi.LeaveRequest, len(l.requests))
	copy(reqs, l.requests)
	return LeaveView{Scope: l.scope, Loaded: l.loaded, Requests: reqs, Banner: l.banner.visible(l.opts.Now())}
}

func (l *LeaveApproval) Load(ctx context.Context) LeaveView {
	reqs, err := l.api.ListLeaveRequests(ctx, l.scope)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.opts.Logger.WithError(err).WithField("scope", l.scope).Warn("fetch leave requests failed")
		l.banner.fail("Failed to fetch leave requests.")
		return l.viewLocked()
	}
	l.requests = reqs
	l.loaded = true
	return l.viewLocked()
}

func (l *LeaveApproval) EnsureLoaded(ctx context.Context) {
	l.mu.Lock()
	loaded := l.loaded
	l.mu.Unlock()
	if !loaded {
		l.Load(ctx)
	}
}

func (l *LeaveApproval) Approve(ctx context.Context, id int64) (LeaveView, error) {
	return l.decide(ctx, id, l.api.ApproveLeave, "Leave request accepted successfully!", "Failed to accept leave request.")
}

func (l *LeaveApproval) Deny(ctx context.Context, id int64) (LeaveView, error) {
	return l.decide(ctx, id, l.api.DenyLeave, "Leave request denied!", "Failed to deny leave request.")
}

func (l *LeaveApproval) decide(ctx context.Context, id int64, call func(context.Context, hrapi.LeaveScope, int64) error, okMsg, failMsg string) (LeaveView, error) {
	l.mu.Lock()
	if !l.has(id) {
		defer l.mu.Unlock()
		return l.viewLocked(), ErrNotFound
	}
	l.mu.Unlock()

	err := call(ctx, l.scope, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.opts.Logger.WithError(err).WithFields(logrus.Fields{"scope": l.scope, "id": id}).Warn("leave decision failed")
		l.banner.fail(failMsg)
		return l.viewLocked(), nil
	}
	kept := l.requests[:0:0]
	for _, r := range l.requests {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	l.requests = kept
	l.banner.succeed(okMsg)
	return l.viewLocked(), nil
}

func (l *LeaveApproval) has(id int64) bool {
	for _, r := range l.requests {
		if r.ID == id {
			return true
		}
	}
	return false
}
