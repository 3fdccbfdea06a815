package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
)

type academicApi struct {
	svc      *academic.Service
	validate *validator.Validate
}

func registerAcademicAPI(g *echo.Group, s *server) {
	api := academicApi{svc: s.deps.AcademicSvc, validate: s.deps.Validate}
	authed := s.require(account.TierAuthenticated)
	teacher := s.require(account.TierTeacherOrAdmin)

	g.GET("/nilai", api.listGrades, authed)
	g.GET("/nilai/guru/me", api.teachingRosters, teacher)
	g.GET("/nilai/siswa/me", api.myGrades, authed)
	g.GET("/nilai/siswa/:id", api.studentGrades, authed)
	g.POST("/nilai", api.saveGrade, teacher)

	g.POST("/absensi", api.recordAttendance, teacher)
	g.GET("/absensi/siswa/:id", api.studentAttendance, authed)
}

func (api *academicApi) listGrades(ctx echo.Context) error {
	grades, err := api.svc.ListGrades(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *academicApi) teachingRosters(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	rosters, err := api.svc.TeachingRosters(ctx.Request().Context(), acc)
	if err != nil {
		return errors.Wrap(err, "listing teaching rosters")
	}
	return ctx.JSON(http.StatusOK, rosters)
}

func (api *academicApi) myGrades(ctx echo.Context) error {
	acc, err := getContextAccount(ctx)
	if err != nil {
		return err
	}
	grades, err := api.svc.AccountGrades(ctx.Request().Context(), acc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *academicApi) studentGrades(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	grades, err := api.svc.StudentGrades(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing student grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *academicApi) saveGrade(ctx echo.Context) error {
	var in academic.GradeInput
	if err := ctx.Bind(&in); err != nil {
		return errors.Wrap(err, "binding to GradeInput")
	}
	if err := in.Validate(api.validate); err != nil {
		return err
	}
	grade, err := api.svc.SaveGrade(ctx.Request().Context(), in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grade)
}

// recordAttendance accepts its fields as a JSON body or as query parameters.
func (api *academicApi) recordAttendance(ctx echo.Context) error {
	var in academic.AttendanceInput
	if ctx.Request().ContentLength > 0 {
		if err := ctx.Bind(&in); err != nil {
			return errors.Wrap(err, "binding to AttendanceInput")
		}
	}
	queryInt(ctx, "id_siswa", &in.StudentID)
	queryInt(ctx, "id_kelas", &in.ClassID)
	if in.Status == "" {
		in.Status = ctx.QueryParam("status")
	}
	if err := in.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.RecordAttendance(ctx.Request().Context(), in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *academicApi) studentAttendance(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	rows, err := api.svc.StudentAttendance(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing attendance")
	}
	return ctx.JSON(http.StatusOK, rows)
}
