package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/KaramelBytes/reviewlens/internal/analysis"
	"github.com/KaramelBytes/reviewlens/internal/charts"
	"github.com/KaramelBytes/reviewlens/internal/dataset"
	"github.com/KaramelBytes/reviewlens/internal/observability"
	"github.com/KaramelBytes/reviewlens/internal/session"
)

const sessionCookie = "reviewlens_session"

// Handlers serves the dashboard. Every request works on the caller's own
// session state, looked up by cookie.
type Handlers struct {
	Store *session.Store
	Load  session.Loader
	Opt   analysis.Options
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type actionResult struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Rows    int    `json:"rows"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.page)
	s.mux.Post("/ingest", h.form("ingest"))
	s.mux.Post("/parse", h.form("parse"))
	s.mux.Get("/charts", h.chartsPage)
	s.mux.Get("/api/view", h.view)
	s.mux.Post("/api/ingest", h.api("ingest"))
	s.mux.Post("/api/parse", h.api("parse"))
}

// sessionID returns the caller's session ID, issuing a new cookie when the
// request has none or an invalid one.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && session.ValidID(c.Value) {
		return c.Value
	}
	id := session.NewID()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return id
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// outcome classifies an action error for metrics and status codes.
func outcome(err error) (string, int) {
	var (
		le  *dataset.LoadError
		pe  *dataset.PreconditionError
		gap *dataset.SchemaGapError
	)
	switch {
	case err == nil:
		return "ok", http.StatusOK
	case errors.As(err, &le):
		return "load_error", http.StatusUnprocessableEntity
	case errors.As(err, &pe):
		return "precondition", http.StatusConflict
	case errors.As(err, &gap):
		return "schema_gap", http.StatusUnprocessableEntity
	default:
		return "error", http.StatusInternalServerError
	}
}

// run applies action to the session and records the outcome on the state.
func (h *Handlers) run(id, action string) (session.State, error) {
	var actErr error
	st := h.Store.Update(id, func(st session.State) session.State {
		var next session.State
		switch action {
		case "ingest":
			next, actErr = session.Ingest(st, h.Load)
		case "parse":
			next, actErr = session.Parse(st)
		default:
			next, actErr = st, errors.New("unknown action")
		}
		return next.WithOutcome(action, actErr)
	})
	observability.Sessions.Set(float64(h.Store.Len()))
	label, _ := outcome(actErr)
	observability.ObserveAction(action, label)
	ev := log.Info()
	if actErr != nil {
		ev = log.Warn().Err(actErr)
	}
	ev.Str("action", action).Str("stage", st.Stage.String()).Str("outcome", label).Msg("dashboard action")
	return st, actErr
}

func (h *Handlers) form(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		_, _ = h.run(id, action)
		target := "/"
		_ = r.ParseForm()
		if p, ok := r.Form["product"]; ok && len(p) > 0 {
			target += "?product=" + url.QueryEscape(p[0])
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func (h *Handlers) api(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(w, r)
		st, err := h.run(id, action)
		if err != nil {
			_, status := outcome(err)
			writeProblem(w, status, "Action failed", st.Message)
			return
		}
		rows := 0
		if st.Table != nil {
			rows = st.Table.Len()
		}
		writeJSON(w, actionResult{Stage: st.Stage.String(), Message: st.Message, Rows: rows})
	}
}

// dashboard builds the views for the session. The pending message is
// consumed so it shows once, like a toast.
func (h *Handlers) dashboard(id, product string, consume bool) (d *analysis.Dashboard, failed bool) {
	h.Store.Update(id, func(st session.State) session.State {
		d = analysis.Build(st.Table, product, h.Opt)
		d.Stage = st.Stage.String()
		d.Message = st.Message
		failed = st.Failed
		if consume {
			st.Message, st.Failed = "", false
		}
		return st
	})
	return d, failed
}

// selection is the product filter of the request. A missing parameter means
// every product; an empty one selects rows whose PRODUCT is empty.
func selection(r *http.Request) string {
	if p, ok := r.URL.Query()["product"]; ok && len(p) > 0 {
		return p[0]
	}
	return analysis.AllProducts
}

func (h *Handlers) page(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	d, failed := h.dashboard(id, selection(r), true)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderPage(w, d, failed); err != nil {
		log.Error().Err(err).Msg("render dashboard page failed")
	}
}

func (h *Handlers) chartsPage(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	d, _ := h.dashboard(id, selection(r), false)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.Render(w, d); err != nil {
		log.Error().Err(err).Msg("render charts failed")
	}
}

func (h *Handlers) view(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	d, _ := h.dashboard(id, selection(r), false)
	if d.Columns == nil {
		writeProblem(w, http.StatusConflict, "No dataset", session.MsgNoDataset)
		return
	}
	writeJSON(w, d)
}
