package inviteengine

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eringen/inviteengine/storage"
)

// dashboardLimit caps the invites listed on the admin dashboard.
const dashboardLimit = 200

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	logrus.WithField("ip", ip).Warn("Failed admin login")
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminDelete removes an invite from the history and, when it was
// persisted by a backend that supports it, deletes the stored image too.
func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	inv, err := a.Store.GetInvite(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	if r, ok := a.Persister.(storage.Remover); ok && inv.Durable && inv.ImageURL != "" {
		if err := r.Remove(c.Request().Context(), inv.ImageURL); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"id":  id,
				"url": inv.ImageURL,
			}).Warn("Removing stored invite image failed")
		}
	}
	if err := a.Store.DeleteInvite(id); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	invites, err := a.Store.ListInvites(dashboardLimit)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(invites, msg, CsrfToken(c)))
}
