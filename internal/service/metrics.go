package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess         = "success"
	outcomeMalformed       = "malformed"
	outcomeInvalidUsername = "invalid_username"
	outcomeDisabled        = "disabled"
	outcomeExpired         = "expired"
	outcomeInvalidPassword = "invalid_password"
)

var loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "clinician_login_attempts_total",
	Help: "Clinician login attempts by outcome.",
}, []string{"outcome"})

var clinicianDeactivations = promauto.NewCounter(prometheus.CounterOpts{
	Name: "clinician_expiry_deactivations_total",
	Help: "Temporary clinician accounts deactivated after their contract expired.",
})
