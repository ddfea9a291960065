package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"indus/hrportal/internal/auth"
	"indus/hrportal/internal/screens"
)

func (h *handlers) registerHRRoutes(r *mux.Router) {
	r.Use(h.roleGate(auth.RoleHR))

	r.HandleFunc("/people", h.screen(h.hrPeople)).Methods(http.MethodGet)
	r.HandleFunc("/people/{id:[0-9]+}/edit", h.screen(h.hrBeginEdit)).Methods(http.MethodPost)
	r.HandleFunc("/people/{id:[0-9]+}/cancel", h.screen(h.hrCancelEdit)).Methods(http.MethodPost)
	r.HandleFunc("/people/{id:[0-9]+}", h.screen(h.hrSavePerson)).Methods(http.MethodPut)
	r.HandleFunc("/people/{id:[0-9]+}", h.screen(h.hrDeletePerson)).Methods(http.MethodDelete)

	r.HandleFunc("/users", h.screen(func(w http.ResponseWriter, _ *http.Request, _ auth.Session, ws *screens.Workspace) {
		writeJSON(w, http.StatusOK, ws.CreateUser.View())
	})).Methods(http.MethodGet)
	r.HandleFunc("/users", h.screen(h.hrCreateUser)).Methods(http.MethodPost)

	r.HandleFunc("/leave", h.screen(func(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
		writeJSON(w, http.StatusOK, ws.HRLeave.Load(r.Context()))
	})).Methods(http.MethodGet)
	r.HandleFunc("/leave/{id:[0-9]+}/{decision:approve|deny}", h.screen(func(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace) {
		h.decideLeave(w, r, sess, ws.HRLeave)
	})).Methods(http.MethodPost)
}

// hrPeople loads the list. A kind parameter switches the list first, which
// also clears the banner.
func (h *handlers) hrPeople(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
	raw, given := r.URL.Query()["kind"]
	if !given {
		writeJSON(w, http.StatusOK, ws.People.Load(r.Context()))
		return
	}
	kind, ok := screens.ParsePersonKind(raw[0])
	if !ok {
		writeError(w, http.StatusBadRequest, "kind must be employee or manager")
		return
	}
	writeJSON(w, http.StatusOK, ws.People.SetKind(r.Context(), kind))
}

func (h *handlers) hrBeginEdit(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ws.People.EnsureLoaded(r.Context())
	v, err := ws.People.BeginEdit(id)
	writeScreen(w, v, err)
}

func (h *handlers) hrCancelEdit(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ws.People.EnsureLoaded(r.Context())
	v, err := ws.People.Cancel(id)
	writeScreen(w, v, err)
}

func (h *handlers) hrSavePerson(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var draft screens.PersonDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	ws.People.EnsureLoaded(r.Context())
	v, err := ws.People.SetDraft(id, draft)
	if errors.Is(err, screens.ErrNotEditing) {
		// The PUT carries the whole draft, so it opens the edit itself.
		if v, err = ws.People.BeginEdit(id); err == nil {
			v, err = ws.People.SetDraft(id, draft)
		}
	}
	if err != nil {
		writeScreen(w, v, err)
		return
	}
	v, err = ws.People.Save(r.Context(), id)
	res, detail := outcome(err, v.Banner.Error)
	h.auditReq(r, sess, string(v.Kind)+".update", strconv.FormatInt(id, 10), res, detail)
	writeScreen(w, v, err)
}

func (h *handlers) hrDeletePerson(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ws.People.EnsureLoaded(r.Context())
	v, err := ws.People.Delete(r.Context(), id)
	res, detail := outcome(err, v.Banner.Error)
	h.auditReq(r, sess, string(v.Kind)+".delete", strconv.FormatInt(id, 10), res, detail)
	writeScreen(w, v, err)
}

func (h *handlers) hrCreateUser(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace) {
	var form screens.CreateUserForm
	if !decodeJSON(w, r, &form) {
		return
	}
	v, err := ws.CreateUser.Submit(r.Context(), form)
	res, detail := outcome(err, v.Banner.Error)
	h.auditReq(r, sess, "user.create", form.Role+":"+form.Username, res, detail)
	writeScreen(w, v, err)
}

func (h *handlers) decideLeave(w http.ResponseWriter, r *http.Request, sess auth.Session, l *screens.LeaveApproval) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	decision := mux.Vars(r)["decision"]
	l.EnsureLoaded(r.Context())
	var (
		v   screens.LeaveView
		err error
	)
	if decision == "approve" {
		v, err = l.Approve(r.Context(), id)
	} else {
		v, err = l.Deny(r.Context(), id)
	}
	res, detail := outcome(err, v.Banner.Error)
	h.auditReq(r, sess, "leave."+string(v.Scope)+"."+decision, strconv.FormatInt(id, 10), res, detail)
	writeScreen(w, v, err)
}
