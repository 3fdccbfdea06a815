package roster

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
)

type (
	Repository interface {
		CreateClass(ctx context.Context, c Class, exec ...core.DBExecutor) (Class, error)
		GetClass(ctx context.Context, id int, exec ...core.DBExecutor) (Class, error)
		ListClasses(ctx context.Context, page core.Pagination, exec ...core.DBExecutor) ([]Class, error)
		UpdateClass(ctx context.Context, c Class, exec ...core.DBExecutor) (Class, error)
		DeleteClass(ctx context.Context, id int, exec ...core.DBExecutor) error

		CreateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		GetStudent(ctx context.Context, filter StudentFilter, exec ...core.DBExecutor) (Student, error)
		ListStudents(ctx context.Context, query StudentQuery, exec ...core.DBExecutor) ([]Student, error)
		CountStudents(ctx context.Context, classIDs []int, exec ...core.DBExecutor) (int, error)
		UpdateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error

		CreateTeacher(ctx context.Context, t Teacher, exec ...core.DBExecutor) (Teacher, error)
		GetTeacher(ctx context.Context, filter TeacherFilter, exec ...core.DBExecutor) (Teacher, error)
		ListTeachers(ctx context.Context, page core.Pagination, exec ...core.DBExecutor) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher, exec ...core.DBExecutor) (Teacher, error)
		DeleteTeacher(ctx context.Context, id int, exec ...core.DBExecutor) error

		CreateSubject(ctx context.Context, s Subject, exec ...core.DBExecutor) (Subject, error)
		GetSubject(ctx context.Context, id int, exec ...core.DBExecutor) (Subject, error)
		ListSubjects(ctx context.Context, page core.Pagination, exec ...core.DBExecutor) ([]Subject, error)
		UpdateSubject(ctx context.Context, s Subject, exec ...core.DBExecutor) (Subject, error)
		DeleteSubject(ctx context.Context, id int, exec ...core.DBExecutor) error

		CreateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		GetAssignment(ctx context.Context, id int, exec ...core.DBExecutor) (Assignment, error)
		// FindAssignment matches the exact (teacher, subject, class) triple; an invalid classID matches NULL.
		FindAssignment(ctx context.Context, teacherID, subjectID int, classID null.Int, exec ...core.DBExecutor) (Assignment, error)
		ListAssignments(ctx context.Context, filter AssignmentFilter, exec ...core.DBExecutor) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		DeleteAssignment(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service struct {
		db   core.Transactor
		repo Repository
	}
)

func NewService(db core.Transactor, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Repo exposes the underlying repository to services that compose roster lookups.
func (svc *Service) Repo() Repository {
	return svc.repo
}

// checkClass reports a field error when a referenced class does not exist.
func (svc *Service) checkClass(ctx context.Context, field string, id *int, exec ...core.DBExecutor) error {
	if id == nil {
		return nil
	}
	if _, err := svc.repo.GetClass(ctx, *id, exec...); err != nil {
		if errors.Cause(err) == ErrClassNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: field, Error: ErrClassNotFound.Error()})
		}
		return errors.Wrap(err, "getting class")
	}
	return nil
}

func (svc *Service) checkSubject(ctx context.Context, field string, id int, exec ...core.DBExecutor) error {
	if _, err := svc.repo.GetSubject(ctx, id, exec...); err != nil {
		if errors.Cause(err) == ErrSubjectNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: field, Error: ErrSubjectNotFound.Error()})
		}
		return errors.Wrap(err, "getting subject")
	}
	return nil
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, in ClassInput) (Class, error) {
	return svc.repo.CreateClass(ctx, Class{Major: in.Major, Name: in.Name})
}

func (svc *Service) GetClass(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

func (svc *Service) ListClasses(ctx context.Context, page core.Pagination) ([]Class, error) {
	page.Clean()
	return svc.repo.ListClasses(ctx, page)
}

func (svc *Service) UpdateClass(ctx context.Context, id int, in ClassInput) (Class, error) {
	return svc.repo.UpdateClass(ctx, Class{ID: id, Major: in.Major, Name: in.Name})
}

func (svc *Service) DeleteClass(ctx context.Context, id int) error {
	return svc.repo.DeleteClass(ctx, id)
}

// Students

func (svc *Service) CreateStudent(ctx context.Context, in StudentInput) (Student, error) {
	if err := svc.checkClass(ctx, "id_kelas", in.ClassID); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(ctx, in.student(0))
}

func (svc *Service) GetStudent(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudent(ctx, StudentFilter{ID: id})
}

func (svc *Service) ListStudents(ctx context.Context, page core.Pagination) ([]Student, error) {
	page.Clean()
	return svc.repo.ListStudents(ctx, StudentQuery{Page: page})
}

func (svc *Service) UpdateStudent(ctx context.Context, id int, in StudentInput) (Student, error) {
	if err := svc.checkClass(ctx, "id_kelas", in.ClassID); err != nil {
		return Student{}, err
	}
	return svc.repo.UpdateStudent(ctx, in.student(id))
}

func (svc *Service) DeleteStudent(ctx context.Context, id int) error {
	return svc.repo.DeleteStudent(ctx, id)
}

// Teachers

// CreateTeacher creates a Teacher and its initial assignments atomically.
func (svc *Service) CreateTeacher(ctx context.Context, in TeacherInput) (Teacher, error) {
	var teacher Teacher
	err := svc.db.InTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.checkClass(ctx, "id_kelas", in.ClassID, exec); err != nil {
			return err
		}
		for _, ref := range in.Assignments {
			if err := svc.checkSubject(ctx, "assignments", ref.SubjectID, exec); err != nil {
				return err
			}
			if err := svc.checkClass(ctx, "assignments", ref.ClassID, exec); err != nil {
				return err
			}
		}

		var err error
		if teacher, err = svc.repo.CreateTeacher(ctx, in.teacher(0), exec); err != nil {
			return errors.Wrap(err, "creating teacher")
		}
		for _, ref := range in.Assignments {
			_, err := svc.repo.CreateAssignment(ctx, Assignment{
				TeacherID: teacher.ID,
				SubjectID: ref.SubjectID,
				ClassID:   null.IntFromPtr(ref.ClassID),
			}, exec)
			if err != nil {
				return errors.Wrap(err, "creating assignment")
			}
		}
		return nil
	})
	if err != nil {
		return Teacher{}, err
	}
	return svc.GetTeacher(ctx, teacher.ID)
}

// GetTeacher returns the Teacher with its assignments.
func (svc *Service) GetTeacher(ctx context.Context, id int) (Teacher, error) {
	teacher, err := svc.repo.GetTeacher(ctx, TeacherFilter{ID: id})
	if err != nil {
		return Teacher{}, err
	}
	teachers, err := svc.withAssignments(ctx, []Teacher{teacher})
	if err != nil {
		return Teacher{}, err
	}
	return teachers[0], nil
}

func (svc *Service) ListTeachers(ctx context.Context, page core.Pagination) ([]Teacher, error) {
	page.Clean()
	teachers, err := svc.repo.ListTeachers(ctx, page)
	if err != nil {
		return nil, err
	}
	return svc.withAssignments(ctx, teachers)
}

func (svc *Service) UpdateTeacher(ctx context.Context, id int, in TeacherInput) (Teacher, error) {
	if err := svc.checkClass(ctx, "id_kelas", in.ClassID); err != nil {
		return Teacher{}, err
	}
	if _, err := svc.repo.UpdateTeacher(ctx, in.teacher(id)); err != nil {
		return Teacher{}, err
	}
	return svc.GetTeacher(ctx, id)
}

func (svc *Service) DeleteTeacher(ctx context.Context, id int) error {
	return svc.repo.DeleteTeacher(ctx, id)
}

func (svc *Service) withAssignments(ctx context.Context, teachers []Teacher) ([]Teacher, error) {
	assignments, err := svc.ListAssignments(ctx, AssignmentFilter{})
	if err != nil {
		return nil, err
	}
	byTeacher := make(map[int][]Assignment, len(teachers))
	for _, a := range assignments {
		byTeacher[a.TeacherID] = append(byTeacher[a.TeacherID], a)
	}
	for i := range teachers {
		teachers[i].Assignments = byTeacher[teachers[i].ID]
		if teachers[i].Assignments == nil {
			teachers[i].Assignments = []Assignment{}
		}
	}
	return teachers, nil
}

// Subjects

func (svc *Service) CreateSubject(ctx context.Context, in SubjectInput) (Subject, error) {
	return svc.repo.CreateSubject(ctx, Subject{Name: in.Name, Category: in.Category})
}

func (svc *Service) GetSubject(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

func (svc *Service) ListSubjects(ctx context.Context, page core.Pagination) ([]Subject, error) {
	page.Clean()
	return svc.repo.ListSubjects(ctx, page)
}

func (svc *Service) UpdateSubject(ctx context.Context, id int, in SubjectInput) (Subject, error) {
	return svc.repo.UpdateSubject(ctx, Subject{ID: id, Name: in.Name, Category: in.Category})
}

func (svc *Service) DeleteSubject(ctx context.Context, id int) error {
	return svc.repo.DeleteSubject(ctx, id)
}

// Assignments

func (svc *Service) checkAssignment(ctx context.Context, in AssignmentInput) error {
	if _, err := svc.repo.GetTeacher(ctx, TeacherFilter{ID: in.TeacherID}); err != nil {
		if errors.Cause(err) == ErrTeacherNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "id_guru", Error: ErrTeacherNotFound.Error()})
		}
		return errors.Wrap(err, "getting teacher")
	}
	if err := svc.checkSubject(ctx, "id_mapel", in.SubjectID); err != nil {
		return err
	}
	return svc.checkClass(ctx, "id_kelas", in.ClassID)
}

// CreateAssignment rejects an exact duplicate of an existing (teacher, subject, class) triple.
func (svc *Service) CreateAssignment(ctx context.Context, in AssignmentInput) (Assignment, error) {
	if err := svc.checkAssignment(ctx, in); err != nil {
		return Assignment{}, err
	}
	classID := null.IntFromPtr(in.ClassID)
	if _, err := svc.repo.FindAssignment(ctx, in.TeacherID, in.SubjectID, classID); err == nil {
		return Assignment{}, ErrAssignmentExists
	} else if errors.Cause(err) != ErrAssignmentNotFound {
		return Assignment{}, errors.Wrap(err, "finding assignment")
	}

	a, err := svc.repo.CreateAssignment(ctx, Assignment{TeacherID: in.TeacherID, SubjectID: in.SubjectID, ClassID: classID})
	if err != nil {
		return Assignment{}, err
	}
	return svc.hydrate(ctx, a)
}

func (svc *Service) GetAssignment(ctx context.Context, id int) (Assignment, error) {
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	return svc.hydrate(ctx, a)
}

// ListAssignments returns the matching assignments with their subject, class and teacher.
func (svc *Service) ListAssignments(ctx context.Context, filter AssignmentFilter) ([]Assignment, error) {
	assignments, err := svc.repo.ListAssignments(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range assignments {
		if assignments[i], err = svc.hydrate(ctx, assignments[i]); err != nil {
			return nil, err
		}
	}
	return assignments, nil
}

func (svc *Service) UpdateAssignment(ctx context.Context, id int, in AssignmentInput) (Assignment, error) {
	if err := svc.checkAssignment(ctx, in); err != nil {
		return Assignment{}, err
	}
	a, err := svc.repo.UpdateAssignment(ctx, Assignment{
		ID:        id,
		TeacherID: in.TeacherID,
		SubjectID: in.SubjectID,
		ClassID:   null.IntFromPtr(in.ClassID),
	})
	if err != nil {
		return Assignment{}, err
	}
	return svc.hydrate(ctx, a)
}

func (svc *Service) DeleteAssignment(ctx context.Context, id int) error {
	return svc.repo.DeleteAssignment(ctx, id)
}

// hydrate loads the related subject, class and teacher of an Assignment.
func (svc *Service) hydrate(ctx context.Context, a Assignment) (Assignment, error) {
	if subj, err := svc.repo.GetSubject(ctx, a.SubjectID); err == nil {
		a.Subject = &subj
	} else if errors.Cause(err) != ErrSubjectNotFound {
		return Assignment{}, errors.Wrap(err, "getting subject")
	}
	if a.ClassID.Valid {
		if class, err := svc.repo.GetClass(ctx, a.ClassID.Int); err == nil {
			a.Class = &class
		} else if errors.Cause(err) != ErrClassNotFound {
			return Assignment{}, errors.Wrap(err, "getting class")
		}
	}
	if teacher, err := svc.repo.GetTeacher(ctx, TeacherFilter{ID: a.TeacherID}); err == nil {
		a.Teacher = teacher.Ref()
	} else if errors.Cause(err) != ErrTeacherNotFound {
		return Assignment{}, errors.Wrap(err, "getting teacher")
	}
	return a, nil
}
