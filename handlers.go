package inviteengine

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/eringen/inviteengine/compositor"
	"github.com/eringen/inviteengine/storage"
	"github.com/eringen/inviteengine/themes"
)

const (
	maxNameLength  = 80
	maxFieldLength = 200
	minPreviewSize = 32
)

// Fields maps a request onto zone IDs. The dateTime zone gets the formatted
// date and the time in one string.
func (r InviteRequest) Fields() map[string]string {
	return map[string]string{
		"name":     r.ChildName,
		"age":      r.Age.String(),
		"date":     FormatPartyDate(r.Date),
		"time":     r.Time,
		"dateTime": FormatDateTime(r.Date, r.Time),
		"venue":    r.Venue,
	}
}

// Validate checks required fields and length limits.
func (r InviteRequest) Validate() error {
	if r.Theme == "" {
		return errors.New("theme is required")
	}
	if r.ChildName == "" {
		return errors.New("childName is required")
	}
	if utf8.RuneCountInString(r.ChildName) > maxNameLength {
		return fmt.Errorf("childName must be at most %d characters", maxNameLength)
	}
	for _, f := range []struct{ name, value string }{
		{"age", r.Age.String()},
		{"date", r.Date},
		{"time", r.Time},
		{"venue", r.Venue},
	} {
		if utf8.RuneCountInString(f.value) > maxFieldLength {
			return fmt.Errorf("%s must be at most %d characters", f.name, maxFieldLength)
		}
	}
	return nil
}

// bindInvite decodes, normalizes and validates the request body. The error
// is meant for the client.
func bindInvite(c echo.Context) (InviteRequest, error) {
	var req InviteRequest
	if err := c.Bind(&req); err != nil {
		return req, errors.New("invalid request body")
	}
	req.Normalize()
	return req, req.Validate()
}

func (a *App) allowRender(c echo.Context) bool {
	return a.renderLimiter == nil || a.renderLimiter.Allow(c.RealIP())
}

// renderStatus maps a render error onto the HTTP status of the API.
func renderStatus(err error) int {
	var ble *compositor.BackgroundLoadError
	switch {
	case errors.Is(err, themes.ErrUnknownTemplate):
		return http.StatusBadRequest
	case errors.As(err, &ble) && ble.NotFound():
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) renderFailed(c echo.Context, req InviteRequest, err error) error {
	code := renderStatus(err)
	entry := logrus.WithFields(logrus.Fields{"theme": req.Theme, "status": code}).WithError(err)
	if code >= http.StatusInternalServerError {
		entry.Error("Rendering invite failed")
	} else {
		entry.Info("Rejected invite")
	}
	return RenderJSONError(c, code, err.Error())
}

func (a *App) handleCreateInvite(c echo.Context) error {
	if !a.allowRender(c) {
		return RenderJSONError(c, http.StatusTooManyRequests, "Too many invites. Try again in a minute.")
	}
	req, err := bindInvite(c)
	if err != nil {
		return RenderJSONError(c, http.StatusBadRequest, err.Error())
	}

	res, err := a.Compositor.Render(compositor.Request{Theme: req.Theme, Fields: req.Fields()})
	if err != nil {
		return a.renderFailed(c, req, err)
	}
	png, err := res.PNG()
	if err != nil {
		return a.renderFailed(c, req, err)
	}

	out := storage.Save(c.Request().Context(), a.Persister, png, req.ChildName+" "+req.Theme)
	imageURL := out.URL
	if out.Durable {
		imageURL = AbsoluteURL(a.Config.URL, out.URL)
	}

	meta := InviteMetadata{
		Theme:       res.Theme,
		ChildName:   req.ChildName,
		Age:         req.Age.String(),
		Date:        req.Date,
		Time:        req.Time,
		Venue:       req.Venue,
		Width:       res.Width,
		Height:      res.Height,
		GeneratedAt: res.GeneratedAt.Format(time.RFC3339),
		Durable:     out.Durable,
		Zones:       res.Zones,
	}
	meta.InviteID = a.recordInvite(meta, out.URL)

	return c.JSON(http.StatusOK, InviteResponse{
		Success:       true,
		ImageURL:      imageURL,
		LocalImageURL: out.InlineURL,
		Metadata:      meta,
	})
}

// recordInvite adds the invite to the history and returns its ID. storedURL
// is the backend URL, kept as-is so the backend can remove it later. Failures
// are logged and yield an empty ID; the caller still gets the image.
func (a *App) recordInvite(meta InviteMetadata, storedURL string) string {
	if a.Store == nil {
		return ""
	}
	inv := Invite{
		ID:          ulid.Make().String(),
		Theme:       meta.Theme,
		ChildName:   meta.ChildName,
		Age:         meta.Age,
		Date:        meta.Date,
		Time:        meta.Time,
		Venue:       meta.Venue,
		Durable:     meta.Durable,
		Width:       meta.Width,
		Height:      meta.Height,
		GeneratedAt: meta.GeneratedAt,
	}
	// Inline images are not stored.
	if meta.Durable {
		inv.ImageURL = storedURL
	}
	if err := a.Store.SaveInvite(inv); err != nil {
		logrus.WithError(err).WithField("theme", meta.Theme).Warn("Recording invite failed")
		return ""
	}
	return inv.ID
}

func (a *App) handlePreview(c echo.Context) error {
	if !a.allowRender(c) {
		return RenderJSONError(c, http.StatusTooManyRequests, "Too many invites. Try again in a minute.")
	}
	width := a.Config.PreviewWidth
	if v := c.QueryParam("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minPreviewSize {
			return RenderJSONError(c, http.StatusBadRequest, fmt.Sprintf("width must be a number of at least %d", minPreviewSize))
		}
		width = n
	}
	req, err := bindInvite(c)
	if err != nil {
		return RenderJSONError(c, http.StatusBadRequest, err.Error())
	}

	res, err := a.Compositor.Render(compositor.Request{Theme: req.Theme, Fields: req.Fields()})
	if err != nil {
		return a.renderFailed(c, req, err)
	}
	if width > res.Width {
		width = res.Width
	}
	data, err := res.Preview(width, a.Config.JPEGQuality)
	if err != nil {
		return a.renderFailed(c, req, err)
	}
	return c.Blob(http.StatusOK, "image/jpeg", data)
}

func (a *App) handleThemes(c echo.Context) error {
	keys := a.Themes.Keys()
	out := make([]ThemeSummary, 0, len(keys))
	for _, key := range keys {
		tmpl, err := a.Themes.Get(key)
		if err != nil {
			return err
		}
		out = append(out, summarize(tmpl))
	}
	return c.JSON(http.StatusOK, out)
}

func (a *App) handleTheme(c echo.Context) error {
	tmpl, err := a.Themes.Get(c.Param("key"))
	if err != nil {
		return RenderJSONError(c, http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, struct {
		Key string `json:"key"`
		*themes.Template
	}{tmpl.Key, tmpl})
}

func summarize(t *themes.Template) ThemeSummary {
	zones := make([]string, len(t.Zones))
	for i, z := range t.Zones {
		zones[i] = z.ID
	}
	return ThemeSummary{Key: t.Key, Name: t.Name, Width: t.Width, Height: t.Height, Zones: zones}
}

// handleHealth reports the loaded themes and fonts, and the size of the
// invite history. An unreadable history answers 503.
func (a *App) handleHealth(c echo.Context) error {
	body := map[string]any{
		"status": "ok",
		"themes": a.Themes.Len(),
		"fonts":  a.Fonts.Families(),
	}
	code := http.StatusOK
	if a.Store != nil {
		n, err := a.Store.CountInvites()
		if err != nil {
			logrus.WithError(err).Error("Health check: counting invites failed")
			body["status"] = "unavailable"
			code = http.StatusServiceUnavailable
		} else {
			body["invites"] = n
		}
	}
	return c.JSON(code, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		logrus.WithError(err).WithField("uri", c.Request().RequestURI).Error("Server error")
	}

	if isAPI(c.Request().URL.Path) {
		msg := http.StatusText(code)
		if ok && code < 500 {
			msg = fmt.Sprint(he.Message)
		}
		_ = RenderJSONError(c, code, msg)
		return
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}

func isAPI(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
