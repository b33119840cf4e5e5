// Package api exposes the resource pages of a session as JSON over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cairofal/PI3-ControleInteligente-MED/internal/domain/measurement"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/platform/auth"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/resource"
	"github.com/cairofal/PI3-ControleInteligente-MED/internal/workspace"
)

// SessionHeader names a page session within the caller's user.
const SessionHeader = "X-Session-ID"

// StoreCheck pings the configured record store.
type StoreCheck func(ctx context.Context) (map[string]any, error)

type Handler struct {
	workspaces *workspace.Manager
	storeCheck StoreCheck
	mode       string
	logger     zerolog.Logger
	nowFunc    func() time.Time
}

func NewHandler(workspaces *workspace.Manager, mode string, check StoreCheck, logger zerolog.Logger) *Handler {
	return &Handler{
		workspaces: workspaces,
		storeCheck: check,
		mode:       mode,
		logger:     logger,
		nowFunc:    time.Now,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/health/store", h.StoreHealth)

	api := e.Group("/api/v1")
	api.DELETE("/session", h.EndSession)
	api.GET("/pages", h.ListPages)
	api.GET("/pages/measurements/chart", h.MeasurementChart)
	api.GET("/pages/reminders/due", h.DueReminders)
	api.GET("/pages/:resource", h.GetPage)
	api.POST("/pages/:resource/load", h.LoadPage)
	api.POST("/pages/:resource/new", h.NewRecord)
	api.POST("/pages/:resource/edit/:id", h.EditRecord)
	api.PATCH("/pages/:resource/draft", h.SetDraft)
	api.POST("/pages/:resource/submit", h.Submit)
	api.POST("/pages/:resource/cancel", h.Cancel)
	api.DELETE("/pages/:resource/records/:id", h.DeleteRecord)
	api.PATCH("/pages/:resource/records/:id", h.PatchRecord)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) StoreHealth(c echo.Context) error {
	body := map[string]any{"mode": h.mode, "status": "ok"}
	if h.storeCheck != nil {
		details, err := h.storeCheck(c.Request().Context())
		for k, v := range details {
			body[k] = v
		}
		if err != nil {
			body["status"] = "unavailable"
			body["error"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}
	}
	return c.JSON(http.StatusOK, body)
}

// PageSummary is one entry of the page index.
type PageSummary struct {
	Name  string         `json:"name"`
	State resource.State `json:"state"`
	Total int            `json:"total"`
	Error string         `json:"error,omitempty"`
}

func (h *Handler) ListPages(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	out := make([]PageSummary, 0)
	for _, name := range ws.Names() {
		p, _ := ws.Page(name)
		s := PageSummary{Name: name, State: p.State(), Total: len(p.Records())}
		if perr := p.Err(); perr != nil {
			s.Error = perr.Error()
		}
		out = append(out, s)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetPage(c echo.Context) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	return h.view(c, p)
}

func (h *Handler) LoadPage(c echo.Context) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	if err := p.Load(c.Request().Context()); err != nil {
		return httpError(err)
	}
	return h.view(c, p)
}

func (h *Handler) NewRecord(c echo.Context) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	if err := p.New(); err != nil {
		return httpError(err)
	}
	return h.view(c, p)
}

func (h *Handler) EditRecord(c echo.Context) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	id, err := recordID(c)
	if err != nil {
		return err
	}
	if err := p.Edit(id); err != nil {
		return httpError(err)
	}
	return h.view(c, p)
}

// SetDraft applies {"field": "value", ...}, one field at a time in name
// order. It stops at the first rejected field.
func (h *Handler) SetDraft(c echo.Context) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	values, err := decodeValues(c)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := p.SetField(name, values[name]); err != nil {
			return httpError(err)
		}
	}
	return h.view(c, p)
}

// SubmitResult is the answer to a successful submit.
type SubmitResult struct {
	Record resource.Record `json:"record"`
	Page   resource.View   `json:"page"`
}

func (h *Handler) Submit(c echo.Context) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	_, editing := p.Target()
	saved, err := p.Submit(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	code := http.StatusCreated
	if editing {
		code = http.StatusOK
	}
	return c.JSON(code, SubmitResult{Record: saved, Page: p.View(c.QueryParam("q"), h.nowFunc())})
}

func (h *Handler) Cancel(c echo.Context) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	if err := p.Cancel(); err != nil {
		return httpError(err)
	}
	return h.view(c, p)
}

// DeleteResult reports whether the record was removed; false means the
// deletion was not confirmed.
type DeleteResult struct {
	Deleted bool          `json:"deleted"`
	Page    resource.View `json:"page"`
}

// DeleteRecord removes a record only when the request carries confirm=true.
func (h *Handler) DeleteRecord(c echo.Context) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	id, err := recordID(c)
	if err != nil {
		return err
	}
	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))
	ctx := resource.WithConfirmation(c.Request().Context(), confirmed)

	deleted, err := p.Delete(ctx, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, DeleteResult{Deleted: deleted, Page: p.View(c.QueryParam("q"), h.nowFunc())})
}

func (h *Handler) PatchRecord(c echo.Context) error {
	p, err := h.page(c)
	if err != nil {
		return err
	}
	id, err := recordID(c)
	if err != nil {
		return err
	}
	values, err := decodeValues(c)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}
	rec, err := p.Patch(c.Request().Context(), id, values)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) MeasurementChart(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	p, err := ws.Page("measurements")
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, measurement.Series(p.Records()))
}

func (h *Handler) DueReminders(c echo.Context) error {
	ws, err := h.workspace(c)
	if err != nil {
		return err
	}
	due := ws.DueReminders(h.nowFunc())
	if due == nil {
		due = []resource.Record{}
	}
	return c.JSON(http.StatusOK, due)
}

func (h *Handler) EndSession(c echo.Context) error {
	session, err := sessionID(c)
	if err != nil {
		return err
	}
	h.workspaces.Dispose(session)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) view(c echo.Context, p *resource.Controller) error {
	return c.JSON(http.StatusOK, p.View(c.QueryParam("q"), h.nowFunc()))
}

func (h *Handler) workspace(c echo.Context) (*workspace.Workspace, error) {
	session, err := sessionID(c)
	if err != nil {
		return nil, err
	}
	c.Set("session_id", session)
	ws, err := h.workspaces.Get(c.Request().Context(), session)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", session).Msg("workspace unavailable")
		return nil, echo.NewHTTPError(http.StatusBadGateway, "workspace unavailable")
	}
	return ws, nil
}

func (h *Handler) page(c echo.Context) (*resource.Controller, error) {
	ws, err := h.workspace(c)
	if err != nil {
		return nil, err
	}
	p, err := ws.Page(c.Param("resource"))
	if err != nil {
		return nil, httpError(err)
	}
	return p, nil
}

// sessionID scopes the session header to the authenticated user, so two
// users sending the same header never share a workspace. Without a header
// the user gets one workspace; without a user the header stands alone.
func sessionID(c echo.Context) (string, error) {
	header := c.Request().Header.Get(SessionHeader)
	user := auth.UserIDFromContext(c.Request().Context())
	switch {
	case user != "" && header != "":
		return user + "/" + header, nil
	case user != "":
		return user, nil
	case header != "":
		return header, nil
	}
	return "", echo.NewHTTPError(http.StatusBadRequest, "missing "+SessionHeader+" header")
}

// decodeValues reads a flat JSON object of strings from the body alone;
// path parameters never end up in the map.
func decodeValues(c echo.Context) (map[string]string, error) {
	var values map[string]string
	if err := json.NewDecoder(c.Request().Body).Decode(&values); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "body must be an object of string values")
	}
	return values, nil
}

func recordID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// httpError maps page errors to HTTP answers.
func httpError(err error) error {
	var ve *resource.ValidationError
	var te *resource.TransitionError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]any{
			"message": ve.Error(),
			"fields":  ve.Fields,
		})
	case resource.IsStore(err):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case errors.Is(err, resource.ErrRequestPending), errors.As(err, &te):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, resource.ErrNotFound), errors.Is(err, resource.ErrUnknownResource):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
