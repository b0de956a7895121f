package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"silo_scanner/internal/gateway"
	"silo_scanner/internal/models"
	"silo_scanner/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(_ context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(_ context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockScanner struct {
	status     models.ScanStatus
	startErr   error
	stopErr    error
	resetErr   error
	inspect    models.SensorReading
	inspectErr error
	catalog    []models.SiloID

	startCalled int
	stopCalled  int
	resetCalled int
	lastInspect models.SiloID
}

func (m *mockScanner) Start(context.Context) error {
	m.startCalled++
	return m.startErr
}

func (m *mockScanner) Stop(context.Context) error {
	m.stopCalled++
	return m.stopErr
}

func (m *mockScanner) Reset(context.Context) error {
	m.resetCalled++
	return m.resetErr
}

func (m *mockScanner) Restore(context.Context) error { return nil }

func (m *mockScanner) Status() models.ScanStatus { return m.status }

func (m *mockScanner) Inspect(_ context.Context, id models.SiloID) (models.SensorReading, error) {
	m.lastInspect = id
	return m.inspect, m.inspectErr
}

func (m *mockScanner) Catalog() []models.SiloID { return m.catalog }

type mockReadings struct {
	latest  *models.SensorReading
	list    []models.SensorReading
	err     error
	lastGet models.SiloID
}

func (m *mockReadings) Latest(_ context.Context, id models.SiloID) (*models.SensorReading, error) {
	m.lastGet = id
	return m.latest, m.err
}

func (m *mockReadings) List(context.Context) ([]models.SensorReading, error) {
	return m.list, m.err
}

type mockEventLog struct {
	resp     []models.ScanEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.ScanEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockSimulator struct {
	reading gateway.APIReading
}

func (m *mockSimulator) Run(context.Context, time.Duration) {}

func (m *mockSimulator) Reading(id models.SiloID) gateway.APIReading {
	r := m.reading
	r.SiloNumber = int(id)
	return r
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, Options{Simulator: true})
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// serveAuthed sends an authenticated request and returns the recorder.
func serveAuthed(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
