package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/roster"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/tests"
)

func Test_academicApi_grades(t *testing.T) {
	env := setup(t)
	class := testutil.CreateClass(t, env.Roster, "RPL", "X RPL 1")
	mtk := testutil.CreateSubject(t, env.Roster, "Matematika", roster.CategoryGeneral)
	teacher := testutil.CreateTeacher(t, env.Roster, "1980", "Pak Dedi", roster.GenderMale)
	testutil.CreateAssignment(t, env.Roster, teacher.ID, mtk.ID, class.ID)
	andi := testutil.CreateStudent(t, env.Roster, "001", "Andi", roster.GenderMale, class.ID)
	sari := testutil.CreateStudent(t, env.Roster, "002", "Sari", roster.GenderFemale, class.ID)

	teacherToken := env.token(t, testutil.CreateAccount(t, env.Accounts, "dedi", "", account.RoleTeacher, teacher.ID))
	studentToken := env.token(t, testutil.CreateAccount(t, env.Accounts, "andi", "", account.RoleStudent, andi.ID))

	grade := academic.Grade{ID: 1, StudentID: andi.ID, SubjectID: mtk.ID, Midterm: 80, Final: 91, Score: 85, Subject: &mtk}
	regraded := academic.Grade{ID: 1, StudentID: andi.ID, SubjectID: mtk.ID, Midterm: 70, Final: 0, Score: 35, Subject: &mtk}
	gradeBody := func(uts, uas string) []byte {
		return []byte(`{"id_siswa": ` + jsonInt(andi.ID) + `, "id_mapel": ` + jsonInt(mtk.ID) + uts + uas + `}`)
	}

	tests := []httpTest{
		{
			name: "students cannot grade", method: http.MethodPost, path: "/api/nilai", token: studentToken,
			body: gradeBody(`, "nilai_uts": 80`, `, "nilai_uas": 91`), wantCode: http.StatusForbidden, wantData: marchallObj(t, errPrivilege),
		},
		{
			name: "score out of range", method: http.MethodPost, path: "/api/nilai", token: teacherToken,
			body: gradeBody(`, "nilai_uts": 101`, ""), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown student", method: http.MethodPost, path: "/api/nilai", token: teacherToken,
			body:     []byte(`{"id_siswa": 99, "id_mapel": ` + jsonInt(mtk.ID) + `}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: map[string]string{"id_siswa": "Siswa not found"}}),
		},
		{
			name: "grade", method: http.MethodPost, path: "/api/nilai", token: teacherToken,
			body: gradeBody(`, "nilai_uts": 80`, `, "nilai_uas": 91`), wantData: marchallObj(t, grade),
		},
		{name: "my grades", path: "/api/nilai/siswa/me", token: studentToken, wantData: marchallList(t, grade)},
		{
			name: "regrade, missing score counts as 0", method: http.MethodPost, path: "/api/nilai", token: teacherToken,
			body: gradeBody(`, "nilai_uts": 70`, ""), wantData: marchallObj(t, regraded),
		},
		{name: "all grades", path: "/api/nilai", token: studentToken, wantData: marchallList(t, regraded)},
		{name: "grades of a student", path: "/api/nilai/siswa/" + jsonInt(sari.ID), token: studentToken, wantData: marchallList(t)},
		{
			name: "only students have own grades", path: "/api/nilai/siswa/me", token: teacherToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Detail: "Only students can view their grades here"}),
		},
	}
	runTests(t, env, tests)

	t.Run("teaching rosters", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/nilai/guru/me", teacherToken)
		env.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rosters []academic.TeachingRoster
		unmarshal(t, rec, &rosters)
		require.Len(t, rosters, 1)
		assert.Equal(t, "X RPL 1", rosters[0].ClassName)
		assert.Equal(t, "Matematika", rosters[0].SubjectName)
		require.Len(t, rosters[0].Students, 2)
		assert.Equal(t, "Andi", rosters[0].Students[0].Name)
		require.NotNil(t, rosters[0].Students[0].Grade)
		assert.Equal(t, 35, rosters[0].Students[0].Grade.Score)
		assert.Nil(t, rosters[0].Students[1].Grade)
	})
}

func Test_academicApi_attendance(t *testing.T) {
	env := setup(t)
	class := testutil.CreateClass(t, env.Roster, "RPL", "X RPL 1")
	andi := testutil.CreateStudent(t, env.Roster, "001", "Andi", roster.GenderMale, class.ID)
	teacherToken := env.token(t, testutil.CreateAccount(t, env.Accounts, "guru", "", account.RoleTeacher))
	studentToken := env.token(t, testutil.CreateAccount(t, env.Accounts, "andi", "", account.RoleStudent, andi.ID))

	present := academic.Attendance{ID: 1, StudentID: andi.ID, ClassID: nullInt(class.ID), Date: core.Today(), Status: academic.StatusPresent}
	sick := academic.Attendance{ID: 2, StudentID: andi.ID, ClassID: nullInt(class.ID), Date: core.Today(), Status: academic.StatusSick}
	query := "/api/absensi?id_siswa=" + jsonInt(andi.ID) + "&id_kelas=" + jsonInt(class.ID) + "&status="

	tests := []httpTest{
		{
			name: "students cannot record", method: http.MethodPost, path: query + "Hadir", token: studentToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPrivilege),
		},
		{
			name: "bad status", method: http.MethodPost, path: query + "Bolos", token: teacherToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: map[string]string{"status": "status must be one of: Hadir, Izin, Sakit, Alpa"}}),
		},
		{name: "query params", method: http.MethodPost, path: query + "Hadir", token: teacherToken, wantData: marchallObj(t, present)},
		{
			name: "json body", method: http.MethodPost, path: "/api/absensi", token: teacherToken,
			body:     []byte(`{"id_siswa": ` + jsonInt(andi.ID) + `, "id_kelas": ` + jsonInt(class.ID) + `, "status": "Sakit"}`),
			wantData: marchallObj(t, sick),
		},
		{
			name: "unknown class", method: http.MethodPost, path: "/api/absensi?id_siswa=1&id_kelas=9&status=Izin", token: teacherToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Detail: map[string]string{"id_kelas": "Kelas not found"}}),
		},
		{name: "history", path: "/api/absensi/siswa/" + jsonInt(andi.ID), token: studentToken, wantData: marchallList(t, sick, present)},
		{
			name: "recap", path: "/api/dashboard/rekap-absensi", token: studentToken,
			wantData: marchallObj(t, academic.Recap{academic.StatusPresent: 1, academic.StatusSick: 1}),
		},
		{name: "recap of a non student", path: "/api/dashboard/rekap-absensi", token: teacherToken, wantData: []byte(`{}`)},
	}
	runTests(t, env, tests)
}
