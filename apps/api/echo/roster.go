package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
)

type rosterApi struct {
	svc      *roster.Service
	validate *validator.Validate
}

func registerRosterAPI(g *echo.Group, s *server) {
	api := rosterApi{svc: s.deps.RosterSvc, validate: s.deps.Validate}
	authed := s.require(account.TierAuthenticated)
	admin := s.require(account.TierAdmin)

	g.GET("/kelas", api.listClasses)
	g.GET("/kelas/:id", api.getClass, authed)
	g.POST("/kelas", api.createClass, admin)
	g.PUT("/kelas/:id", api.updateClass, admin)
	g.DELETE("/kelas/:id", api.deleteClass, admin)

	g.GET("/siswa", api.listStudents, authed)
	g.GET("/siswa/:id", api.getStudent, authed)
	g.POST("/siswa", api.createStudent, admin)
	g.PUT("/siswa/:id", api.updateStudent, admin)
	g.DELETE("/siswa/:id", api.deleteStudent, admin)

	g.GET("/guru", api.listTeachers, authed)
	g.GET("/guru/:id", api.getTeacher, authed)
	g.POST("/guru", api.createTeacher, admin)
	g.PUT("/guru/:id", api.updateTeacher, admin)
	g.DELETE("/guru/:id", api.deleteTeacher, admin)

	g.GET("/mapel", api.listSubjects)
	g.GET("/mapel/:id", api.getSubject, authed)
	g.POST("/mapel", api.createSubject, admin)
	g.PUT("/mapel/:id", api.updateSubject, admin)
	g.DELETE("/mapel/:id", api.deleteSubject, admin)

	g.GET("/mapel/diampu/list", api.listAssignments, admin)
	g.POST("/mapel/diampu", api.createAssignment, admin)
	g.PUT("/mapel/diampu/:id", api.updateAssignment, admin)
	g.DELETE("/mapel/diampu/:id", api.deleteAssignment, admin)
}

func deleted(ctx echo.Context, what string) error {
	return ctx.JSON(http.StatusOK, messageResponse{Message: what + " deleted successfully"})
}

// Classes

func (api *rosterApi) listClasses(ctx echo.Context) error {
	classes, err := api.svc.ListClasses(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "listing classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *rosterApi) getClass(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	class, err := api.svc.GetClass(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *rosterApi) bindClass(ctx echo.Context) (roster.ClassInput, error) {
	var in roster.ClassInput
	if err := ctx.Bind(&in); err != nil {
		return in, errors.Wrap(err, "binding to ClassInput")
	}
	return in, in.Validate(api.validate)
}

func (api *rosterApi) createClass(ctx echo.Context) error {
	in, err := api.bindClass(ctx)
	if err != nil {
		return err
	}
	class, err := api.svc.CreateClass(ctx.Request().Context(), in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *rosterApi) updateClass(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	in, err := api.bindClass(ctx)
	if err != nil {
		return err
	}
	class, err := api.svc.UpdateClass(ctx.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *rosterApi) deleteClass(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteClass(ctx.Request().Context(), id); err != nil {
		return err
	}
	return deleted(ctx, "Kelas")
}

// Students

func (api *rosterApi) listStudents(ctx echo.Context) error {
	students, err := api.svc.ListStudents(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *rosterApi) getStudent(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	student, err := api.svc.GetStudent(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, student)
}

func (api *rosterApi) bindStudent(ctx echo.Context) (roster.StudentInput, error) {
	var in roster.StudentInput
	if err := ctx.Bind(&in); err != nil {
		return in, errors.Wrap(err, "binding to StudentInput")
	}
	return in, in.Validate(api.validate)
}

func (api *rosterApi) createStudent(ctx echo.Context) error {
	in, err := api.bindStudent(ctx)
	if err != nil {
		return err
	}
	student, err := api.svc.CreateStudent(ctx.Request().Context(), in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, student)
}

func (api *rosterApi) updateStudent(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	in, err := api.bindStudent(ctx)
	if err != nil {
		return err
	}
	student, err := api.svc.UpdateStudent(ctx.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, student)
}

func (api *rosterApi) deleteStudent(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteStudent(ctx.Request().Context(), id); err != nil {
		return err
	}
	return deleted(ctx, "Siswa")
}

// Teachers

func (api *rosterApi) listTeachers(ctx echo.Context) error {
	teachers, err := api.svc.ListTeachers(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "listing teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *rosterApi) getTeacher(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	teacher, err := api.svc.GetTeacher(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teacher)
}

func (api *rosterApi) bindTeacher(ctx echo.Context) (roster.TeacherInput, error) {
	var in roster.TeacherInput
	if err := ctx.Bind(&in); err != nil {
		return in, errors.Wrap(err, "binding to TeacherInput")
	}
	return in, in.Validate(api.validate)
}

func (api *rosterApi) createTeacher(ctx echo.Context) error {
	in, err := api.bindTeacher(ctx)
	if err != nil {
		return err
	}
	teacher, err := api.svc.CreateTeacher(ctx.Request().Context(), in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, teacher)
}

func (api *rosterApi) updateTeacher(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	in, err := api.bindTeacher(ctx)
	if err != nil {
		return err
	}
	teacher, err := api.svc.UpdateTeacher(ctx.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teacher)
}

func (api *rosterApi) deleteTeacher(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteTeacher(ctx.Request().Context(), id); err != nil {
		return err
	}
	return deleted(ctx, "Guru")
}

// Subjects

func (api *rosterApi) listSubjects(ctx echo.Context) error {
	subjects, err := api.svc.ListSubjects(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "listing subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *rosterApi) getSubject(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	subject, err := api.svc.GetSubject(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subject)
}

func (api *rosterApi) bindSubject(ctx echo.Context) (roster.SubjectInput, error) {
	var in roster.SubjectInput
	if err := ctx.Bind(&in); err != nil {
		return in, errors.Wrap(err, "binding to SubjectInput")
	}
	return in, in.Validate(api.validate)
}

func (api *rosterApi) createSubject(ctx echo.Context) error {
	in, err := api.bindSubject(ctx)
	if err != nil {
		return err
	}
	subject, err := api.svc.CreateSubject(ctx.Request().Context(), in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, subject)
}

func (api *rosterApi) updateSubject(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	in, err := api.bindSubject(ctx)
	if err != nil {
		return err
	}
	subject, err := api.svc.UpdateSubject(ctx.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subject)
}

func (api *rosterApi) deleteSubject(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteSubject(ctx.Request().Context(), id); err != nil {
		return err
	}
	return deleted(ctx, "Mata pelajaran")
}

// Assignments

func (api *rosterApi) listAssignments(ctx echo.Context) error {
	var filter roster.AssignmentFilter
	queryInt(ctx, "id_guru", &filter.TeacherID)
	queryInt(ctx, "id_kelas", &filter.ClassID)
	queryInt(ctx, "id_mapel", &filter.SubjectID)

	assignments, err := api.svc.ListAssignments(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *rosterApi) bindAssignment(ctx echo.Context) (roster.AssignmentInput, error) {
	var in roster.AssignmentInput
	if err := ctx.Bind(&in); err != nil {
		return in, errors.Wrap(err, "binding to AssignmentInput")
	}
	return in, in.Validate(api.validate)
}

func (api *rosterApi) createAssignment(ctx echo.Context) error {
	in, err := api.bindAssignment(ctx)
	if err != nil {
		return err
	}
	assignment, err := api.svc.CreateAssignment(ctx.Request().Context(), in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, assignment)
}

func (api *rosterApi) updateAssignment(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	in, err := api.bindAssignment(ctx)
	if err != nil {
		return err
	}
	assignment, err := api.svc.UpdateAssignment(ctx.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, assignment)
}

func (api *rosterApi) deleteAssignment(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteAssignment(ctx.Request().Context(), id); err != nil {
		return err
	}
	return deleted(ctx, "Assignment")
}
