package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strconv"
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/account"
	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/tests"
)

var (
	errMissingToken = httpErr{Detail: "Not authenticated"}
	errBadToken     = httpErr{Detail: "Could not validate credentials"}
	errPrivilege    = httpErr{Detail: "The user doesn't have enough privileges"}
)

type testEnv struct {
	*testutil.App
	srv *server
}

func setup(t *testing.T) *testEnv {
	app := testutil.NewApp(t)
	srv := NewServer("", make(chan os.Signal, 1), &ServerDeps{
		Conf:           app.Conf,
		Logger:         app.Logger,
		Validate:       app.Validate,
		Translator:     app.Translator,
		DisableReqLogs: true,
		AccountSvc:     app.AccountSvc,
		RosterSvc:      app.RosterSvc,
		AcademicSvc:    app.AcademicSvc,
		NewsSvc:        app.NewsSvc,
		DashboardSvc:   app.DashboardSvc,
	})
	return &testEnv{App: app, srv: srv.(*server)}
}

func (env *testEnv) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	env.srv.ServeHTTP(rec, req)
}

func (env *testEnv) token(t *testing.T, acc account.Account) string {
	pair, err := env.srv.tokens.pair(acc)
	if err != nil {
		t.Fatalf("token(): %v", err)
	}
	return pair.AccessToken
}

type httpErr struct {
	Detail interface{} `json:"detail"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	return marchallObj(t, objs)
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("json.Unmarshal(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// runTests plays each httpTest against env; the method defaults to GET and the code to 200.
func runTests(t *testing.T, env *testEnv, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.method == "" {
				tt.method = http.MethodGet
			}
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func jsonInt(i int) string {
	return strconv.Itoa(i)
}

func nullInt(i int) null.Int {
	return null.IntFrom(i)
}
