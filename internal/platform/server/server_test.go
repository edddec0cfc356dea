package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	grpchandler "github.com/ogurasousui/payroll-api/internal/adapters/grpc/handler"
	"github.com/ogurasousui/payroll-api/internal/core/department"
	"github.com/ogurasousui/payroll-api/internal/core/employee"
	"github.com/ogurasousui/payroll-api/internal/core/jobgrade"
	"github.com/ogurasousui/payroll-api/internal/platform/config"
)

type stubEmployees struct {
	employee.UseCase
}

func (stubEmployees) IsDuplicateEmail(context.Context, employee.UniquenessInput) (bool, error) {
	return true, nil
}

type stubDepartments struct {
	department.UseCase
	err error
}

func (s stubDepartments) ListDepartments(context.Context) ([]*department.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*department.Summary{
		{Department: &department.Department{ID: 1, Name: "Engineering"}, EmployeeCount: 3},
	}, nil
}

type stubJobGrades struct {
	jobgrade.UseCase
}

func testDependencies() Dependencies {
	return Dependencies{
		Employees:   stubEmployees{},
		Departments: stubDepartments{},
		JobGrades:   stubJobGrades{},
		Gatherer:    prometheus.NewRegistry(),
	}
}

func TestHTTPHandler_Healthz(t *testing.T) {
	t.Parallel()

	deps := testDependencies()
	srv := New(config.ServerConfig{}, deps, zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestHTTPHandler_HealthzUnavailable(t *testing.T) {
	t.Parallel()

	deps := testDependencies()
	deps.Ready = func(context.Context) error { return errors.New("db down") }
	srv := New(config.ServerConfig{}, deps, zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHTTPHandler_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "payroll_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	deps := testDependencies()
	deps.Gatherer = reg
	srv := New(config.ServerConfig{}, deps, zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "payroll_test_total 1")
}

func TestHTTPHandler_RoutesAndAccessLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := zerolog.New(&buf)
	srv := New(config.ServerConfig{}, testDependencies(), log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/departments", nil)
	req.Header.Set("X-Request-Id", "req-123")
	srv.HTTPHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Engineering"`)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestHTTPHandler_InternalErrorIsLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	deps := testDependencies()
	deps.Departments = stubDepartments{err: errors.New("connection refused")}
	srv := New(config.ServerConfig{}, deps, zerolog.New(&buf))

	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/departments", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":"internal","message":"internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "connection refused")
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestHTTPHandler_CORS(t *testing.T) {
	t.Parallel()

	cfg := config.ServerConfig{CORSAllowOrigins: []string{"https://hr.example.com"}}
	srv := New(cfg, testDependencies(), zerolog.Nop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/departments", nil)
	req.Header.Set("Origin", "https://hr.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	srv.HTTPHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://hr.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()

	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(config.ServerConfig{ShutdownTimeout: time.Second}, testDependencies(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, httpLis, grpcLis)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + httpLis.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()

	health, err := healthpb.NewHealthClient(conn).Check(callCtx, &healthpb.HealthCheckRequest{Service: grpchandler.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.GetStatus())

	req, err := structpb.NewStruct(map[string]any{"email": "a@example.com"})
	require.NoError(t, err)
	resp, err := grpchandler.NewEmployeeQueryClient(conn).Call(callCtx, "CheckEmail", req)
	require.NoError(t, err)
	assert.Equal(t, true, resp.AsMap()["is_duplicate"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
