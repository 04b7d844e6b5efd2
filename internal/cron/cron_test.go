package cron

import (
	"os"
	"testing"

	cronv3 "github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"k8s.io/client-go/kubernetes"

	"github.com/ledgerstack/ledgerstack/internal/logger"
)

type mockKubernetesInterface struct {
	kubernetes.Interface
	mock.Mock
}

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestNewCronManager(t *testing.T) {
	// Arrange
	log := getLogger()
	k8s := &mockKubernetesInterface{}

	// Act
	cm := NewCronManager(log, k8s, nil, nil)

	// Assert
	assert.NotNil(t, cm)
	assert.Equal(t, log, cm.log)
	assert.Equal(t, k8s, cm.k8s)
	assert.NotNil(t, cm.jobIDs)
}

func TestCronManager_StartCron(t *testing.T) {
	// Set environment variable for testing
	os.Setenv("CRON_SCHEDULE_SYNC_USERS", "0 */30 * * * *")
	defer os.Unsetenv("CRON_SCHEDULE_SYNC_USERS")

	// Arrange
	log := getLogger()
	k8s := &mockKubernetesInterface{}
	cm := NewCronManager(log, k8s, nil, nil)

	// Create a mock cron for testing
	mockCron := cronv3.New(cronv3.WithSeconds())

	// Act - register jobs manually
	heartbeatId, err := mockCron.AddFunc("0 * * * * *", func() {})
	assert.NoError(t, err)
	cm.jobIDs["heartbeat"] = heartbeatId

	syncId, err := mockCron.AddFunc("0 */30 * * * *", func() {})
	assert.NoError(t, err)
	cm.jobIDs["sync_users"] = syncId

	cm.cron = mockCron

	// Assert
	assert.NotNil(t, cm.cron)
	assert.Equal(t, 2, len(cm.jobIDs))
}

func TestCronManager_Stop(t *testing.T) {
	// Arrange
	log := getLogger()
	k8s := &mockKubernetesInterface{}
	cm := NewCronManager(log, k8s, nil, nil)

	// Create a mock cron for testing
	mockCron := cronv3.New()
	mockCron.Start()
	cm.cron = mockCron

	// Act
	cm.Stop()

	// Assert
	select {
	case <-cm.stopCh:
		// Channel is closed as expected
	default:
		t.Error("Stop channel was not closed")
	}
}
