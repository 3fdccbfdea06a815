package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/dashboard"
)

type dashboardApi struct {
	svc      *dashboard.Service
	academic *academic.Service
}

func registerDashboardAPI(g *echo.Group, s *server) {
	api := dashboardApi{svc: s.deps.DashboardSvc, academic: s.deps.AcademicSvc}

	dg := g.Group("/dashboard")
	dg.GET("/statistics", api.adminStatistics, s.require(account.TierAdmin))
	dg.GET("/statistics/guru", api.teacherStatistics, s.require(account.TierTeacherOrAdmin))
	dg.GET("/statistics/siswa", api.studentStatistics, s.require(account.TierAuthenticated))
	dg.GET("/jadwal", api.schedule, s.require(account.TierTeacherOrAdmin))
	dg.GET("/rekap-absensi", api.attendanceRecap, s.require(account.TierAuthenticated))
}

func (api *dashboardApi) adminStatistics(ctx echo.Context) error {
	stats, err := api.svc.AdminStatistics(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// teacherStatistics answers `{}` to accounts without a teacher record.
func (api *dashboardApi) teacherStatistics(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	stats, err := api.svc.TeacherStatistics(ctx.Request().Context(), acc)
	if err != nil {
		return errors.Wrap(err, "computing teacher statistics")
	}
	if stats == nil {
		return ctx.JSON(http.StatusOK, echo.Map{})
	}
	return ctx.JSON(http.StatusOK, stats)
}

// studentStatistics answers `{}` to accounts without a student record.
func (api *dashboardApi) studentStatistics(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	stats, err := api.svc.StudentStatistics(ctx.Request().Context(), acc)
	if err != nil {
		return errors.Wrap(err, "computing student statistics")
	}
	if stats == nil {
		return ctx.JSON(http.StatusOK, echo.Map{})
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *dashboardApi) schedule(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	assignments, err := api.svc.Schedule(ctx.Request().Context(), acc)
	if err != nil {
		return errors.Wrap(err, "listing schedule")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *dashboardApi) attendanceRecap(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	recap, err := api.academic.AccountRecap(ctx.Request().Context(), acc)
	if err != nil {
		return errors.Wrap(err, "computing attendance recap")
	}
	return ctx.JSON(http.StatusOK, recap)
}
