package loggingmw

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mcanepa/tienda/internal/logging"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func logLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestRequestLoggerInjectsContextLogger(t *testing.T) {
	logger, buf := captureLogger()
	e := echo.New()

	var inHandler *slog.Logger
	h := RequestLogger(logger)(func(c echo.Context) error {
		inHandler = logging.FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/products?pageNumber=2", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	require.NotNil(t, inHandler)
	require.NotEqual(t, slog.Default(), inHandler)

	line := logLine(t, buf)
	require.Equal(t, "INFO", line["level"])
	require.Equal(t, "request_completed", line["msg"])
	require.Equal(t, http.MethodGet, line["method"])
	require.Equal(t, "/api/products?pageNumber=2", line["uri"])
	require.Equal(t, "req-1", line["request_id"])
	require.EqualValues(t, http.StatusOK, line["status"])
	require.Equal(t, "req-1", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLoggerReportsHandlerError(t *testing.T) {
	logger, buf := captureLogger()
	e := echo.New()

	h := RequestLogger(logger)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	line := logLine(t, buf)
	require.Equal(t, "ERROR", line["level"])
	require.EqualValues(t, http.StatusInternalServerError, line["status"])
	require.Contains(t, line["error"], "boom")
}
