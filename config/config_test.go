package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateNewConfig(t *testing.T) {
	t.Setenv("SERVICE_PORT", "5000")
	t.Setenv("BROKER_PARTITION", "2")
	t.Setenv("IGNORE_JWT_VALIDATION", "true")
	t.Setenv("EXPIRY_SWEEP_INTERVAL", "15m")
	t.Setenv("AUTHZ_TIMEOUT", "not-a-duration")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")

	conf := CreateNewConfig()

	assert.Equal(t, "5000", conf.ServicePort)
	assert.Equal(t, 2, conf.KafkaConfig.BrokerPartition)
	assert.True(t, conf.IgnoreJWTValidation)
	assert.Equal(t, 15*time.Minute, conf.ExpirySweepInterval)
	assert.Equal(t, 10*time.Second, conf.AuthzConfig.Timeout)
	assert.False(t, conf.IsProduction())
	assert.Equal(t, 0.25, conf.TracingConfig.SampleRatio)
}

func TestGroupSyncEnabled(t *testing.T) {
	type TestCase struct {
		Name     string
		Config   Config
		Expected bool
	}

	testCases := []TestCase{
		{
			Name:     "Production",
			Config:   Config{Environment: "production"},
			Expected: true,
		},
		{
			Name:     "Explicitly disabled",
			Config:   Config{Environment: "production", AuthzConfig: AuthzConfig{DisableGroupSync: true}},
			Expected: false,
		},
		{
			Name:     "JWT validation off outside production",
			Config:   Config{Environment: "development", IgnoreJWTValidation: true},
			Expected: false,
		},
		{
			Name:     "JWT validation off in production is ignored",
			Config:   Config{Environment: "production", IgnoreJWTValidation: true},
			Expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, tc.Config.GroupSyncEnabled())
		})
	}
}
