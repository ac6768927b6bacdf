package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
}

func TestNewDefaultsWorkerCount(t *testing.T) {
	os.Unsetenv("NOTIFY_WORKERS")
	conf := New()

	assert.Equal(t, 4, conf.NotifyWorkers)
}

func TestNewParsesWorkerCount(t *testing.T) {
	os.Setenv("NOTIFY_WORKERS", "8")
	defer os.Unsetenv("NOTIFY_WORKERS")
	conf := New()

	assert.Equal(t, 8, conf.NotifyWorkers)
}

func TestNewIgnoresBadRetention(t *testing.T) {
	os.Setenv("VIEW_EVENT_RETENTION_DAYS", "soon")
	defer os.Unsetenv("VIEW_EVENT_RETENTION_DAYS")
	conf := New()

	assert.Equal(t, 0, conf.ViewRetentionDays)
}

func TestErrorStatus(t *testing.T) {

	ErrorStatus("error it borked", http.StatusBadRequest, httptest.NewRecorder(), errors.New("bad request"))
	assert.True(t, true)
}

func TestSetLoggerSetsDevelopmentLogger(t *testing.T) {
	l, err := setLogger("development")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(1))
}

func TestSetLoggerSetsProductionLogger(t *testing.T) {
	l, err := setLogger("production")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(2))
}

func TestSetLoggerSetsLocalLogger(t *testing.T) {
	l, err := setLogger("local")
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(0))
}
