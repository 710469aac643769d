package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mchmarny/menubuilder/pkg/controller"
	"github.com/mchmarny/menubuilder/pkg/menu"
)

// AddRequest is the body of POST /items. After is the record the new item is
// inserted after; zero appends.
type AddRequest struct {
	Item  menu.Item `json:"item"`
	After menu.ID   `json:"after,omitempty"`
}

// OptionBoxRequest is the body of POST /items/{id}/option-box.
type OptionBoxRequest struct {
	Enabled bool `json:"enabled"`
}

// TargetRequest is the body of POST /dividers and POST /delete.
type TargetRequest struct {
	Target menu.Ref `json:"target"`
}

// RenameRequest is the body of POST /rename.
type RenameRequest struct {
	Target menu.Ref `json:"target"`
	Label  string   `json:"label"`
}

// SaveRequest is the body of POST /save. An empty name saves under the loaded
// configuration name.
type SaveRequest struct {
	Name string `json:"name,omitempty"`
}

// IDResponse reports the record created by a gesture.
type IDResponse struct {
	ID menu.ID `json:"id"`
}

// CountResponse reports how many records a gesture affected.
type CountResponse struct {
	Count int `json:"count"`
}

// StateResponse is the body of GET /items.
type StateResponse struct {
	Menu  string       `json:"menu"`
	Dirty bool         `json:"dirty"`
	Items []menu.Entry `json:"items"`
}

// WithEditor registers the editing surface of c. menus serves the
// materialized host menus of the last build.
func WithEditor(c *controller.Controller, menus http.Handler) Option {
	return func(s *server) {
		e := &editor{ctrl: c}
		s.mux.HandleFunc("GET /items", e.items)
		s.mux.HandleFunc("POST /items", e.add)
		s.mux.HandleFunc("PATCH /items/{id}", e.edit)
		s.mux.HandleFunc("POST /items/{id}/option-box", e.optionBox)
		s.mux.HandleFunc("GET /tree", e.tree)
		s.mux.HandleFunc("POST /drop", e.drop)
		s.mux.HandleFunc("POST /rename", e.rename)
		s.mux.HandleFunc("POST /delete", e.delete)
		s.mux.HandleFunc("POST /dividers", e.divider)
		s.mux.HandleFunc("POST /build", e.build)
		s.mux.HandleFunc("POST /save", e.save)
		s.mux.Handle("GET /metrics", c.Metrics().Handler())
		if menus != nil {
			s.mux.Handle("GET /menu", menus)
		}
	}
}

type editor struct {
	ctrl *controller.Controller
}

func pathID(r *http.Request) (menu.ID, bool) {
	v, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || v <= 0 {
		return menu.NoID, false
	}
	return menu.ID(v), true
}

func (e *editor) state() StateResponse {
	return StateResponse{
		Menu:  e.ctrl.Name(),
		Dirty: e.ctrl.Dirty(),
		Items: e.ctrl.Entries(),
	}
}

func (e *editor) items(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, e.state())
}

func (e *editor) tree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, e.ctrl.View())
}

func (e *editor) add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	id, err := e.ctrl.Add(req.Item, req.After)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

func (e *editor) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var it menu.Item
	if err := decode(r, &it); err != nil {
		writeFailure(w, err)
		return
	}
	if err := e.ctrl.Edit(id, it); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.state())
}

func (e *editor) optionBox(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req OptionBoxRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if err := e.ctrl.SetOptionBox(id, req.Enabled); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.state())
}

func (e *editor) drop(w http.ResponseWriter, r *http.Request) {
	var d menu.Drop
	if err := decode(r, &d); err != nil {
		writeFailure(w, err)
		return
	}
	if err := e.ctrl.Drop(d); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.state())
}

func (e *editor) rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	if err := e.ctrl.Rename(req.Target, req.Label); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.state())
}

func (e *editor) delete(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	n, err := e.ctrl.Delete(req.Target)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

func (e *editor) divider(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	id, err := e.ctrl.AddDivider(req.Target)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

func (e *editor) build(w http.ResponseWriter, _ *http.Request) {
	n := e.ctrl.Build()
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

func (e *editor) save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeFailure(w, err)
			return
		}
	}

	var err error
	if req.Name == "" {
		err = e.ctrl.Save()
	} else {
		err = e.ctrl.SaveAs(req.Name)
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	slog.Info("configuration saved over http", "menu", e.ctrl.Name())
	writeJSON(w, http.StatusOK, e.state())
}
