package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
)

var (
	errClassRef   = core.NewConflictError("record is still referenced: kelas")
	errStudentRef = core.NewConflictError("record is still referenced: siswa")
	errTeacherRef = core.NewConflictError("record is still referenced: guru")
	errSubjectRef = core.NewConflictError("record is still referenced: mata_pelajaran")
	errAccountRef = core.NewConflictError("record is still referenced: pengguna")
)

type rosterRepository struct {
	db *DB
}

func NewRosterRepository(db *DB) roster.Repository {
	return &rosterRepository{db: db}
}

// classRef fails when a non-null class reference points nowhere.
func (t *tables) classRef(id null.Int) error {
	if id.Valid {
		if _, ok := t.classes[id.Int]; !ok {
			return errClassRef
		}
	}
	return nil
}

// Classes

func (repo *rosterRepository) CreateClass(_ context.Context, c roster.Class, exec ...core.DBExecutor) (roster.Class, error) {
	err := repo.db.write(exec, func(t *tables) error {
		c.ID = t.nextID("kelas")
		t.classes[c.ID] = c
		return nil
	})
	return c, err
}

func (repo *rosterRepository) GetClass(_ context.Context, id int, _ ...core.DBExecutor) (roster.Class, error) {
	var c roster.Class
	err := repo.db.read(func(t *tables) error {
		var ok bool
		if c, ok = t.classes[id]; !ok {
			return roster.ErrClassNotFound
		}
		return nil
	})
	return c, err
}

func (repo *rosterRepository) ListClasses(_ context.Context, page core.Pagination, _ ...core.DBExecutor) ([]roster.Class, error) {
	var classes []roster.Class
	_ = repo.db.read(func(t *tables) error {
		classes = make([]roster.Class, 0, len(t.classes))
		for _, c := range t.classes {
			classes = append(classes, c)
		}
		return nil
	})
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	start, end := page.Window(len(classes))
	return classes[start:end], nil
}

func (repo *rosterRepository) UpdateClass(_ context.Context, c roster.Class, exec ...core.DBExecutor) (roster.Class, error) {
	err := repo.db.write(exec, func(t *tables) error {
		if _, ok := t.classes[c.ID]; !ok {
			return roster.ErrClassNotFound
		}
		t.classes[c.ID] = c
		return nil
	})
	return c, err
}

func (repo *rosterRepository) DeleteClass(_ context.Context, id int, exec ...core.DBExecutor) error {
	return repo.db.write(exec, func(t *tables) error {
		if _, ok := t.classes[id]; !ok {
			return roster.ErrClassNotFound
		}
		delete(t.classes, id)

		for sid, s := range t.students {
			if s.ClassID.Valid && s.ClassID.Int == id {
				s.ClassID = null.Int{}
				t.students[sid] = s
			}
		}
		for tid, teacher := range t.teachers {
			if teacher.ClassID.Valid && teacher.ClassID.Int == id {
				teacher.ClassID = null.Int{}
				t.teachers[tid] = teacher
			}
		}
		for aid, a := range t.assignments {
			if a.ClassID.Valid && a.ClassID.Int == id {
				delete(t.assignments, aid)
			}
		}
		for aid, a := range t.attendance {
			if a.ClassID.Valid && a.ClassID.Int == id {
				a.ClassID = null.Int{}
				t.attendance[aid] = a
			}
		}
		return nil
	})
}

// Students

func (t *tables) checkStudent(s roster.Student) error {
	for id, other := range t.students {
		if id != s.ID && other.NISN == s.NISN {
			return core.NewUniqueViolationError("siswa_nisn_key", "nisn")
		}
	}
	return t.classRef(s.ClassID)
}

func (repo *rosterRepository) CreateStudent(_ context.Context, s roster.Student, exec ...core.DBExecutor) (roster.Student, error) {
	err := repo.db.write(exec, func(t *tables) error {
		if err := t.checkStudent(s); err != nil {
			return err
		}
		s.ID = t.nextID("siswa")
		t.students[s.ID] = s
		return nil
	})
	return s, err
}

func (repo *rosterRepository) GetStudent(_ context.Context, filter roster.StudentFilter, _ ...core.DBExecutor) (roster.Student, error) {
	var s roster.Student
	err := repo.db.read(func(t *tables) error {
		switch {
		case filter.ID != 0:
			if found, ok := t.students[filter.ID]; ok {
				s = found
				return nil
			}
		case filter.NISN != "":
			for _, found := range t.students {
				if found.NISN == filter.NISN {
					s = found
					return nil
				}
			}
		}
		return roster.ErrStudentNotFound
	})
	return s, err
}

func (repo *rosterRepository) ListStudents(_ context.Context, query roster.StudentQuery, _ ...core.DBExecutor) ([]roster.Student, error) {
	classes := make(map[int]bool, len(query.ClassIDs))
	for _, id := range query.ClassIDs {
		classes[id] = true
	}

	students := make([]roster.Student, 0)
	_ = repo.db.read(func(t *tables) error {
		for _, s := range t.students {
			if query.ClassIDs != nil && !(s.ClassID.Valid && classes[s.ClassID.Int]) {
				continue
			}
			students = append(students, s)
		}
		return nil
	})
	sort.Slice(students, func(i, j int) bool {
		if students[i].Name != students[j].Name {
			return students[i].Name < students[j].Name
		}
		return students[i].ID < students[j].ID
	})
	if query.Page.Limit > 0 {
		start, end := query.Page.Window(len(students))
		students = students[start:end]
	}
	return students, nil
}

func (repo *rosterRepository) CountStudents(ctx context.Context, classIDs []int, exec ...core.DBExecutor) (int, error) {
	if len(classIDs) == 0 {
		return 0, nil
	}
	students, err := repo.ListStudents(ctx, roster.StudentQuery{ClassIDs: classIDs}, exec...)
	return len(students), err
}

func (repo *rosterRepository) UpdateStudent(_ context.Context, s roster.Student, exec ...core.DBExecutor) (roster.Student, error) {
	err := repo.db.write(exec, func(t *tables) error {
		if _, ok := t.students[s.ID]; !ok {
			return roster.ErrStudentNotFound
		}
		if err := t.checkStudent(s); err != nil {
			return err
		}
		t.students[s.ID] = s
		return nil
	})
	return s, err
}

func (repo *rosterRepository) DeleteStudent(_ context.Context, id int, exec ...core.DBExecutor) error {
	return repo.db.write(exec, func(t *tables) error {
		if _, ok := t.students[id]; !ok {
			return roster.ErrStudentNotFound
		}
		for _, acc := range t.accounts {
			if acc.StudentID.Valid && acc.StudentID.Int == id {
				return errStudentRef
			}
		}
		delete(t.students, id)

		for gid, g := range t.grades {
			if g.StudentID == id {
				delete(t.grades, gid)
			}
		}
		for aid, a := range t.attendance {
			if a.StudentID == id {
				delete(t.attendance, aid)
			}
		}
		return nil
	})
}

// Teachers

func (t *tables) checkTeacher(teacher roster.Teacher) error {
	for id, other := range t.teachers {
		if id == teacher.ID {
			continue
		}
		if other.NIP == teacher.NIP {
			return core.NewUniqueViolationError("guru_nip_key", "nip")
		}
		if teacher.Email.Valid && other.Email.Valid && other.Email.String == teacher.Email.String {
			return core.NewUniqueViolationError("guru_email_key", "email")
		}
	}
	return t.classRef(teacher.ClassID)
}

func (repo *rosterRepository) CreateTeacher(_ context.Context, teacher roster.Teacher, exec ...core.DBExecutor) (roster.Teacher, error) {
	teacher.Assignments = nil
	err := repo.db.write(exec, func(t *tables) error {
		if err := t.checkTeacher(teacher); err != nil {
			return err
		}
		teacher.ID = t.nextID("guru")
		t.teachers[teacher.ID] = teacher
		return nil
	})
	return teacher, err
}

func (repo *rosterRepository) GetTeacher(_ context.Context, filter roster.TeacherFilter, _ ...core.DBExecutor) (roster.Teacher, error) {
	var teacher roster.Teacher
	err := repo.db.read(func(t *tables) error {
		switch {
		case filter.ID != 0:
			if found, ok := t.teachers[filter.ID]; ok {
				teacher = found
				return nil
			}
		case filter.NIP != "":
			for _, found := range t.teachers {
				if found.NIP == filter.NIP {
					teacher = found
					return nil
				}
			}
		}
		return roster.ErrTeacherNotFound
	})
	return teacher, err
}

func (repo *rosterRepository) ListTeachers(_ context.Context, page core.Pagination, _ ...core.DBExecutor) ([]roster.Teacher, error) {
	var teachers []roster.Teacher
	_ = repo.db.read(func(t *tables) error {
		teachers = make([]roster.Teacher, 0, len(t.teachers))
		for _, teacher := range t.teachers {
			teachers = append(teachers, teacher)
		}
		return nil
	})
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	start, end := page.Window(len(teachers))
	return teachers[start:end], nil
}

func (repo *rosterRepository) UpdateTeacher(_ context.Context, teacher roster.Teacher, exec ...core.DBExecutor) (roster.Teacher, error) {
	teacher.Assignments = nil
	err := repo.db.write(exec, func(t *tables) error {
		if _, ok := t.teachers[teacher.ID]; !ok {
			return roster.ErrTeacherNotFound
		}
		if err := t.checkTeacher(teacher); err != nil {
			return err
		}
		t.teachers[teacher.ID] = teacher
		return nil
	})
	return teacher, err
}

func (repo *rosterRepository) DeleteTeacher(_ context.Context, id int, exec ...core.DBExecutor) error {
	return repo.db.write(exec, func(t *tables) error {
		if _, ok := t.teachers[id]; !ok {
			return roster.ErrTeacherNotFound
		}
		for _, acc := range t.accounts {
			if acc.TeacherID.Valid && acc.TeacherID.Int == id {
				return errTeacherRef
			}
		}
		delete(t.teachers, id)

		for aid, a := range t.assignments {
			if a.TeacherID == id {
				delete(t.assignments, aid)
			}
		}
		return nil
	})
}

// Subjects

func (repo *rosterRepository) CreateSubject(_ context.Context, s roster.Subject, exec ...core.DBExecutor) (roster.Subject, error) {
	err := repo.db.write(exec, func(t *tables) error {
		s.ID = t.nextID("mata_pelajaran")
		t.subjects[s.ID] = s
		return nil
	})
	return s, err
}

func (repo *rosterRepository) GetSubject(_ context.Context, id int, _ ...core.DBExecutor) (roster.Subject, error) {
	var s roster.Subject
	err := repo.db.read(func(t *tables) error {
		var ok bool
		if s, ok = t.subjects[id]; !ok {
			return roster.ErrSubjectNotFound
		}
		return nil
	})
	return s, err
}

func (repo *rosterRepository) ListSubjects(_ context.Context, page core.Pagination, _ ...core.DBExecutor) ([]roster.Subject, error) {
	var subjects []roster.Subject
	_ = repo.db.read(func(t *tables) error {
		subjects = make([]roster.Subject, 0, len(t.subjects))
		for _, s := range t.subjects {
			subjects = append(subjects, s)
		}
		return nil
	})
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	start, end := page.Window(len(subjects))
	return subjects[start:end], nil
}

func (repo *rosterRepository) UpdateSubject(_ context.Context, s roster.Subject, exec ...core.DBExecutor) (roster.Subject, error) {
	err := repo.db.write(exec, func(t *tables) error {
		if _, ok := t.subjects[s.ID]; !ok {
			return roster.ErrSubjectNotFound
		}
		t.subjects[s.ID] = s
		return nil
	})
	return s, err
}

func (repo *rosterRepository) DeleteSubject(_ context.Context, id int, exec ...core.DBExecutor) error {
	return repo.db.write(exec, func(t *tables) error {
		if _, ok := t.subjects[id]; !ok {
			return roster.ErrSubjectNotFound
		}
		delete(t.subjects, id)

		for aid, a := range t.assignments {
			if a.SubjectID == id {
				delete(t.assignments, aid)
			}
		}
		for gid, g := range t.grades {
			if g.SubjectID == id {
				delete(t.grades, gid)
			}
		}
		return nil
	})
}

// Assignments

func (t *tables) checkAssignment(a roster.Assignment) error {
	if _, ok := t.teachers[a.TeacherID]; !ok {
		return errTeacherRef
	}
	if _, ok := t.subjects[a.SubjectID]; !ok {
		return errSubjectRef
	}
	return t.classRef(a.ClassID)
}

func (repo *rosterRepository) CreateAssignment(_ context.Context, a roster.Assignment, exec ...core.DBExecutor) (roster.Assignment, error) {
	a.Subject, a.Class, a.Teacher = nil, nil, nil
	err := repo.db.write(exec, func(t *tables) error {
		if err := t.checkAssignment(a); err != nil {
			return err
		}
		a.ID = t.nextID("mapel_diampu")
		t.assignments[a.ID] = a
		return nil
	})
	return a, err
}

func (repo *rosterRepository) GetAssignment(_ context.Context, id int, _ ...core.DBExecutor) (roster.Assignment, error) {
	var a roster.Assignment
	err := repo.db.read(func(t *tables) error {
		var ok bool
		if a, ok = t.assignments[id]; !ok {
			return roster.ErrAssignmentNotFound
		}
		return nil
	})
	return a, err
}

func (repo *rosterRepository) FindAssignment(_ context.Context, teacherID, subjectID int, classID null.Int, _ ...core.DBExecutor) (roster.Assignment, error) {
	var a roster.Assignment
	err := repo.db.read(func(t *tables) error {
		for _, found := range t.assignments {
			if found.TeacherID == teacherID && found.SubjectID == subjectID &&
				found.ClassID.Valid == classID.Valid && found.ClassID.Int == classID.Int {
				a = found
				return nil
			}
		}
		return roster.ErrAssignmentNotFound
	})
	return a, err
}

func (repo *rosterRepository) ListAssignments(_ context.Context, filter roster.AssignmentFilter, _ ...core.DBExecutor) ([]roster.Assignment, error) {
	assignments := make([]roster.Assignment, 0)
	_ = repo.db.read(func(t *tables) error {
		for _, a := range t.assignments {
			if filter.TeacherID != 0 && a.TeacherID != filter.TeacherID {
				continue
			}
			if filter.ClassID != 0 && !(a.ClassID.Valid && a.ClassID.Int == filter.ClassID) {
				continue
			}
			if filter.SubjectID != 0 && a.SubjectID != filter.SubjectID {
				continue
			}
			assignments = append(assignments, a)
		}
		return nil
	})
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })
	return assignments, nil
}

func (repo *rosterRepository) UpdateAssignment(_ context.Context, a roster.Assignment, exec ...core.DBExecutor) (roster.Assignment, error) {
	a.Subject, a.Class, a.Teacher = nil, nil, nil
	err := repo.db.write(exec, func(t *tables) error {
		if _, ok := t.assignments[a.ID]; !ok {
			return roster.ErrAssignmentNotFound
		}
		if err := t.checkAssignment(a); err != nil {
			return err
		}
		t.assignments[a.ID] = a
		return nil
	})
	return a, err
}

func (repo *rosterRepository) DeleteAssignment(_ context.Context, id int, exec ...core.DBExecutor) error {
	return repo.db.write(exec, func(t *tables) error {
		if _, ok := t.assignments[id]; !ok {
			return roster.ErrAssignmentNotFound
		}
		delete(t.assignments, id)
		return nil
	})
}
