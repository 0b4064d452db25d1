package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/alama/apps/api/echo"
	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/prediction"
	"github.com/trezcool/alama/core/student"
	"github.com/trezcool/alama/core/user"
	logsvc "github.com/trezcool/alama/services/logger"
	sessionsvc "github.com/trezcool/alama/services/session"
	inmemdb "github.com/trezcool/alama/storage/database/inmem"
	"github.com/trezcool/alama/testutil"
)

var (
	conf     *core.Config
	db       *inmemdb.DB
	usrRepo  user.Repository
	stdRepo  student.Repository
	histRepo prediction.Repository
	sessions *sessionsvc.MemoryStore

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errUnauthorized = httpErr{Error: "Unauthorized"}
	errForbidden    = httpErr{Error: "Forbidden"}

	// scores every student 78 (grade B)
	fixedScorer = prediction.ScorerFunc(func([]float64) (float64, error) { return 78, nil })
)

type serverOptions struct {
	scorer  prediction.Scorer
	captcha bool
	debug   bool
}

func setup(t *testing.T, opts serverOptions) *Server {
	conf = core.NewTestConfig()
	conf.Server.CaptchaEnabled = opts.captcha
	conf.Debug = opts.debug

	// set up DB & repos
	db = inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	stdRepo = inmemdb.NewStudentRepository(db)
	histRepo = inmemdb.NewHistoryRepository(db)
	sessions = sessionsvc.NewMemoryStore()

	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)

	// set up services
	validate, translator := testutil.NewValidator()
	predictionSvc := prediction.NewService(prediction.Deps{
		Tx:       db,
		History:  histRepo,
		Students: stdRepo,
		Scorer:   opts.scorer,
		Location: conf.Location(),
	})

	// set up server
	srv := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       user.NewService(usrRepo, validate),
		StudentSvc:    student.NewService(stdRepo, validate),
		PredictionSvc: predictionSvc,
		Sessions:      sessions,
		Validate:      validate,
		Translator:    translator,
	})
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

type httpErr struct {
	Error string `json:"error"`
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

func (tt httpTest) run(t *testing.T, srv *Server) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	srv.ServeHTTP(rec, req)
	return rec
}

func runHttpTests(t *testing.T, srv *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, tt.run(t, srv))
		})
	}
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

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
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
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if !assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), v)) {
		t.FailNow()
	}
}
