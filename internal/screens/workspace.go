package screens

import (
	"sync"

	"indus/hrportal/internal/auth"
	"indus/hrportal/internal/hrapi"
)

// Workspace holds the screens of one session. Only the screens the session's
// role may open are built; the rest stay nil.
type Workspace struct {
	SessionID string
	Role      auth.Role

	People     *EmployeeList
	CreateUser *CreateUser
	HRLeave    *LeaveApproval

	Team         *TeamList
	SetTasks     *SetTasks
	ManagerLeave *LeaveApproval

	Dashboard *Dashboard
	Deadlines *Deadlines
	Profile   *EditPersonalDetails
}

func NewWorkspace(api API, sess auth.Session, opts Options) *Workspace {
	opts = opts.withDefaults()
	opts.Logger = opts.Logger.WithField("session_id", sess.ID)

	ws := &Workspace{SessionID: sess.ID, Role: sess.Role}
	p := sess.Profile
	switch sess.Role {
	case auth.RoleHR:
		ws.People = NewEmployeeList(api, opts)
		ws.CreateUser = NewCreateUser(api, opts)
		ws.HRLeave = NewLeaveApproval(api, hrapi.LeaveScopeHR, opts)
	case auth.RoleManager:
		ws.Team = NewTeamList(api, p.ID, opts)
		ws.SetTasks = NewSetTasks(api, api, p.ID, opts)
		ws.ManagerLeave = NewLeaveApproval(api, hrapi.LeaveScopeManager, opts)
	case auth.RoleEmployee:
		ws.Dashboard = NewDashboard(p.Name, string(p.Role), opts)
		ws.Deadlines = NewDeadlines(api, p.ID, opts)
		ws.Profile = NewEditPersonalDetails(api, p, opts)
	}
	return ws
}

// Registry maps session ids to their workspace.
type Registry struct {
	api  API
	opts Options

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewRegistry(api API, opts Options) *Registry {
	return &Registry{api: api, opts: opts.withDefaults(), workspaces: make(map[string]*Workspace)}
}

// Get returns the session's workspace, building it on first use.
func (r *Registry) Get(sess auth.Session) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.workspaces[sess.ID]; ok {
		return ws
	}
	ws := NewWorkspace(r.api, sess, r.opts)
	r.workspaces[sess.ID] = ws
	return ws
}

// Drop forgets a session's workspace. It is wired as the session end hook.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, sessionID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}
