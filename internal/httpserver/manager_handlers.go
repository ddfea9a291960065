package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"indus/hrportal/internal/auth"
	"indus/hrportal/internal/screens"
)

func (h *handlers) registerManagerRoutes(r *mux.Router) {
	r.Use(h.roleGate(auth.RoleManager))

	r.HandleFunc("/team", h.screen(func(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
		writeJSON(w, http.StatusOK, ws.Team.Load(r.Context()))
	})).Methods(http.MethodGet)
	r.HandleFunc("/team/{id:[0-9]+}/edit", h.screen(h.teamBeginEdit)).Methods(http.MethodPost)
	r.HandleFunc("/team/{id:[0-9]+}/cancel", h.screen(h.teamCancelEdit)).Methods(http.MethodPost)
	r.HandleFunc("/team/{id:[0-9]+}", h.screen(h.teamSave)).Methods(http.MethodPut)
	r.HandleFunc("/team/{id:[0-9]+}", h.screen(h.teamDelete)).Methods(http.MethodDelete)

	r.HandleFunc("/tasks", h.screen(func(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
		writeJSON(w, http.StatusOK, ws.SetTasks.Load(r.Context()))
	})).Methods(http.MethodGet)
	r.HandleFunc("/tasks", h.screen(h.assignTask)).Methods(http.MethodPost)

	r.HandleFunc("/leave", h.screen(func(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
		writeJSON(w, http.StatusOK, ws.ManagerLeave.Load(r.Context()))
	})).Methods(http.MethodGet)
	r.HandleFunc("/leave/{id:[0-9]+}/{decision:approve|deny}", h.screen(func(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace) {
		h.decideLeave(w, r, sess, ws.ManagerLeave)
	})).Methods(http.MethodPost)
}

func (h *handlers) teamBeginEdit(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ws.Team.EnsureLoaded(r.Context())
	v, err := ws.Team.BeginEdit(id)
	writeScreen(w, v, err)
}

func (h *handlers) teamCancelEdit(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ws.Team.EnsureLoaded(r.Context())
	v, err := ws.Team.Cancel(id)
	writeScreen(w, v, err)
}

func (h *handlers) teamSave(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var draft screens.PersonDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	ws.Team.EnsureLoaded(r.Context())
	v, err := ws.Team.SetDraft(id, draft)
	if errors.Is(err, screens.ErrNotEditing) {
		// The PUT carries the whole draft, so it opens the edit itself.
		if v, err = ws.Team.BeginEdit(id); err == nil {
			v, err = ws.Team.SetDraft(id, draft)
		}
	}
	if err != nil {
		writeScreen(w, v, err)
		return
	}
	v, err = ws.Team.Save(r.Context(), id)
	res, detail := outcome(err, v.Banner.Error)
	h.auditReq(r, sess, "team.update", strconv.FormatInt(id, 10), res, detail)
	writeScreen(w, v, err)
}

func (h *handlers) teamDelete(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ws.Team.EnsureLoaded(r.Context())
	v, err := ws.Team.Delete(r.Context(), id)
	res, detail := outcome(err, v.Banner.Error)
	h.auditReq(r, sess, "team.delete", strconv.FormatInt(id, 10), res, detail)
	writeScreen(w, v, err)
}

func (h *handlers) assignTask(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace) {
	var form screens.TaskForm
	if !decodeJSON(w, r, &form) {
		return
	}
	ws.SetTasks.EnsureLoaded(r.Context())
	v, err := ws.SetTasks.Submit(r.Context(), form)
	res, detail := outcome(err, v.Banner.Error)
	h.auditReq(r, sess, "task.assign", strconv.FormatInt(form.EmployeeID, 10), res, detail)
	writeScreen(w, v, err)
}
