package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"estatedesk.app/internal/audit"
	"estatedesk.app/internal/estate"
	"estatedesk.app/internal/gateway"
	"estatedesk.app/internal/obs"
	"estatedesk.app/internal/session"
	"estatedesk.app/internal/view"
)

// target resolves the {resource} and optional {id} path values. ok is false
// when the request should get the not-found page.
func target(r *http.Request, needID bool) (res estate.Resource, id int64, ok bool) {
	res, ok = estate.ParseResource(r.PathValue("resource"))
	if !ok || !needID {
		return res, 0, ok
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return res, 0, false
	}
	return res, id, true
}

func isNotFound(err error) bool {
	var apiErr *gateway.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (a *App) handleList(w http.ResponseWriter, r *http.Request, s *session.State) {
	res, _, ok := target(r, false)
	if !ok {
		a.notFound(w, r, s)
		return
	}
	l, err := a.pages.Load(r.Context(), res)
	switch {
	case err == nil:
		writeHTML(w, http.StatusOK, view.List(a.shell(w, r, s, res), l, nil))
	case errors.Is(err, context.Canceled):
		// The visitor navigated away; nothing to render.
		obs.Logger().Debug().Str("request_id", requestIDFrom(r.Context())).Str("resource", string(res)).Msg("list_load_canceled")
	case a.forceLogout(w, r, s, err):
	default:
		writeHTML(w, http.StatusBadGateway, view.List(a.shell(w, r, s, res), l, bannerFor(err, res.Path())))
	}
}

func (a *App) handleNew(w http.ResponseWriter, r *http.Request, s *session.State) {
	res, _, ok := target(r, false)
	if !ok {
		a.notFound(w, r, s)
		return
	}
	f, err := a.pages.NewForm(r.Context(), res)
	if err != nil {
		if a.forceLogout(w, r, s, err) {
			return
		}
		writeHTML(w, http.StatusBadGateway, view.ErrorPage(a.shell(w, r, s, res), "Add New "+res.Singular(), bannerFor(err, r.URL.Path)))
		return
	}
	writeHTML(w, http.StatusOK, view.FormPage(a.shell(w, r, s, res), f, nil, nil))
}

func (a *App) handleEdit(w http.ResponseWriter, r *http.Request, s *session.State) {
	res, id, ok := target(r, true)
	if !ok {
		a.notFound(w, r, s)
		return
	}
	f, err := a.pages.Edit(r.Context(), res, id)
	if err != nil {
		switch {
		case isNotFound(err):
			a.notFound(w, r, s)
		case a.forceLogout(w, r, s, err):
		default:
			writeHTML(w, http.StatusBadGateway, view.ErrorPage(a.shell(w, r, s, res), "Edit "+res.Singular(), bannerFor(err, r.URL.Path)))
		}
		return
	}
	writeHTML(w, http.StatusOK, view.FormPage(a.shell(w, r, s, res), f, nil, nil))
}

func (a *App) handleCreate(w http.ResponseWriter, r *http.Request, s *session.State) {
	res, _, ok := target(r, false)
	if !ok {
		a.notFound(w, r, s)
		return
	}
	a.submit(w, r, s, res, 0)
}

func (a *App) handleUpdate(w http.ResponseWriter, r *http.Request, s *session.State) {
	res, id, ok := target(r, true)
	if !ok {
		a.notFound(w, r, s)
		return
	}
	a.submit(w, r, s, res, id)
}

// submit runs a create (id 0) or update and answers with the redirect to the
// list, the form with its field errors (422), or the form with a banner.
func (a *App) submit(w http.ResponseWriter, r *http.Request, s *session.State, res estate.Resource, id int64) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f, errs, err := a.pages.Save(r.Context(), res, id, r.PostForm)
	switch {
	case err != nil && a.forceLogout(w, r, s, err):
		return
	case err != nil && f == nil:
		writeHTML(w, http.StatusBadGateway, view.ErrorPage(a.shell(w, r, s, res), res.Singular(), bannerFor(err, r.URL.Path)))
		return
	case err != nil:
		writeHTML(w, http.StatusBadGateway, view.FormPage(a.shell(w, r, s, res), f, nil, bannerFor(err, "")))
		return
	case len(errs) > 0:
		writeHTML(w, http.StatusUnprocessableEntity, view.FormPage(a.shell(w, r, s, res), f, errs, nil))
		return
	}

	event, verb := ".created", "created"
	if id > 0 {
		event, verb = ".updated", "updated"
	}
	_ = audit.LogEvent(r.Context(), string(res)+event, map[string]any{"id": id})
	s.SetFlash(res.Singular() + " " + verb + ".")
	a.save(w, r, s)
	http.Redirect(w, r, res.Path(), http.StatusSeeOther)
}

func (a *App) handleConfirmDelete(w http.ResponseWriter, r *http.Request, s *session.State) {
	res, id, ok := target(r, true)
	if !ok {
		a.notFound(w, r, s)
		return
	}
	writeHTML(w, http.StatusOK, view.ConfirmDelete(a.shell(w, r, s, res), res, id, nil))
}

// handleDelete removes the record only on an explicit confirm=yes. Anything
// else returns to the list without a backend call.
func (a *App) handleDelete(w http.ResponseWriter, r *http.Request, s *session.State) {
	res, id, ok := target(r, true)
	if !ok {
		a.notFound(w, r, s)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	confirmed := strings.EqualFold(r.PostForm.Get("confirm"), "yes")
	if err := a.pages.Delete(r.Context(), res, id, confirmed); err != nil {
		if a.forceLogout(w, r, s, err) {
			return
		}
		writeHTML(w, http.StatusBadGateway, view.ConfirmDelete(a.shell(w, r, s, res), res, id, bannerFor(err, "")))
		return
	}
	if confirmed {
		_ = audit.LogEvent(r.Context(), string(res)+".deleted", map[string]any{"id": id})
		s.SetFlash(res.Singular() + " deleted.")
		a.save(w, r, s)
	}
	http.Redirect(w, r, res.Path(), http.StatusSeeOther)
}
