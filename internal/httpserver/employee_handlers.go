package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"indus/hrportal/internal/auth"
	"indus/hrportal/internal/screens"
)

func (h *handlers) registerEmployeeRoutes(r *mux.Router) {
	r.Use(h.roleGate(auth.RoleEmployee))

	r.HandleFunc("/dashboard", h.screen(func(w http.ResponseWriter, _ *http.Request, _ auth.Session, ws *screens.Workspace) {
		writeJSON(w, http.StatusOK, ws.Dashboard.View())
	})).Methods(http.MethodGet)
	r.HandleFunc("/feedback", h.screen(h.submitFeedback)).Methods(http.MethodPost)

	r.HandleFunc("/deadlines", h.screen(func(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
		writeJSON(w, http.StatusOK, ws.Deadlines.Load(r.Context()))
	})).Methods(http.MethodGet)
	r.HandleFunc("/deadlines/{id:[0-9]+}/complete", h.screen(h.completeTask)).Methods(http.MethodPost)

	r.HandleFunc("/profile", h.screen(func(w http.ResponseWriter, _ *http.Request, _ auth.Session, ws *screens.Workspace) {
		writeJSON(w, http.StatusOK, ws.Profile.View())
	})).Methods(http.MethodGet)
	r.HandleFunc("/profile", h.screen(h.submitProfile)).Methods(http.MethodPut)
	r.HandleFunc("/profile/dismiss", h.screen(func(w http.ResponseWriter, _ *http.Request, _ auth.Session, ws *screens.Workspace) {
		writeJSON(w, http.StatusOK, ws.Profile.Dismiss())
	})).Methods(http.MethodPost)
}

func (h *handlers) submitFeedback(w http.ResponseWriter, r *http.Request, _ auth.Session, ws *screens.Workspace) {
	var req struct {
		Feedback string `json:"feedback"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := ws.Dashboard.SubmitFeedback(req.Feedback)
	writeScreen(w, v, err)
}

func (h *handlers) completeTask(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	ws.Deadlines.EnsureLoaded(r.Context())
	v, err := ws.Deadlines.MarkComplete(r.Context(), id)
	res, detail := outcome(err, v.Banner.Error)
	h.auditReq(r, sess, "task.complete", strconv.FormatInt(id, 10), res, detail)
	writeScreen(w, v, err)
}

func (h *handlers) submitProfile(w http.ResponseWriter, r *http.Request, sess auth.Session, ws *screens.Workspace) {
	var form screens.ProfileForm
	if !decodeJSON(w, r, &form) {
		return
	}
	v, err := ws.Profile.Submit(r.Context(), form)
	var failed string
	if v.Result == screens.ResultFailed {
		failed = v.Message
	}
	res, detail := outcome(err, failed)
	h.auditReq(r, sess, "profile.update", strconv.FormatInt(sess.Profile.ID, 10), res, detail)
	writeScreen(w, v, err)
}
