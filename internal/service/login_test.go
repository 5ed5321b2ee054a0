package service

import (
	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/dto"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/permission"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/lib/pq"
)

func (s *ServiceTestSuite) seedLoginClinician(id string, mutate func(c *domain.Clinician)) domain.Clinician {
	return s.seedClinician(id, func(c *domain.Clinician) {
		c.EmailAddress = strPtr(id + "@mail.com")
		c.SendEntryIdentifier = strPtr("@" + id)
		s.Require().NoError(c.SetPassword("correct:horse"))
		if mutate != nil {
			mutate(c)
		}
	})
}

func (s *ServiceTestSuite) TestLogin() {
	s.seedLoginClinician("active", func(c *domain.Clinician) {
		c.Groups = pq.StringArray{permission.RoleGdmClinician, permission.RoleSendClinician}
		c.Products = append(c.Products, domain.Product{UUID: "closed", ProductName: "SEND", OpenedDate: s.now, ClosedDate: &s.now})
	})
	s.seedLoginClinician("today", func(c *domain.Clinician) { c.ContractExpiryEODDate = datePtr(2024, 3, 10) })
	s.seedLoginClinician("disabled", func(c *domain.Clinician) { c.LoginActive = false })
	s.seedLoginClinician("nopassword", func(c *domain.Clinician) {
		c.PasswordSalt = nil
		c.PasswordHash = nil
	})

	type TestCase struct {
		Name       string
		Credential string
		Err        error
		Reason     string
	}

	testCases := []TestCase{
		{Name: "email login", Credential: credential("Active@Mail.com", "correct:horse")},
		{Name: "badge login", Credential: credential("@active", "correct:horse")},
		{Name: "expiring today", Credential: credential("today@mail.com", "correct:horse")},
		{Name: "unknown user", Credential: credential("ghost@mail.com", "correct:horse"), Err: errs.ErrLoginFailed, Reason: reasonInvalidUsername},
		{Name: "disabled account", Credential: credential("disabled@mail.com", "correct:horse"), Err: errs.ErrLoginFailed, Reason: reasonAccountDisabled},
		{Name: "wrong password", Credential: credential("active@mail.com", "correct"), Err: errs.ErrLoginFailed, Reason: reasonInvalidPassword},
		{Name: "no password set", Credential: credential("nopassword@mail.com", "anything"), Err: errs.ErrLoginFailed, Reason: reasonInvalidPassword},
		{Name: "empty password", Credential: credential("active@mail.com", ""), Err: errs.ErrLoginFailed},
		{Name: "not base64", Credential: "%%%", Err: errs.ErrMalformedCredential},
	}

	for _, tc := range testCases {
		s.Run(tc.Name, func() {
			s.publisher.events = nil

			resp, err := s.svc.Login(s.ctx, tc.Credential)
			audits := s.publisher.ofType(EventAudit)

			if tc.Err != nil {
				s.ErrorIs(err, tc.Err)
				if tc.Reason == "" {
					s.Empty(audits)
					return
				}
				s.Require().Len(audits, 1)
				audit := audits[0].Data.(dto.AuditEvent)
				s.Equal(AuditLoginFailure, audit.EventType)
				s.Equal(tc.Reason, audit.EventData["reason"])
				return
			}

			s.Require().NoError(err)
			s.NotEmpty(resp.UserID)
			s.Require().Len(audits, 1)
			s.Equal(AuditLoginSuccess, audits[0].Data.(dto.AuditEvent).EventType)
		})
	}
}

func (s *ServiceTestSuite) TestLoginResult() {
	s.seedLoginClinician("active", func(c *domain.Clinician) {
		c.Groups = pq.StringArray{permission.RoleSendClinician, permission.RoleGdmClinician}
		c.Products = append(c.Products, domain.Product{UUID: "closed", ProductName: "SEND", OpenedDate: s.now, ClosedDate: &s.now})
		c.JobTitle = "Nurse"
	})

	resp, err := s.svc.Login(s.ctx, credential("active@mail.com", "correct:horse"))
	s.Require().NoError(err)

	expected, err := permission.Default().PermissionsFor([]string{permission.RoleSendClinician, permission.RoleGdmClinician})
	s.Require().NoError(err)

	s.Equal("active", resp.UserID)
	s.Equal("Nurse", resp.JobTitle)
	s.Equal(expected, resp.Permissions)
	s.Require().Len(resp.Products, 1)
	s.Equal("active-gdm", resp.Products[0].UUID)
}

func (s *ServiceTestSuite) TestLoginExpiredDeactivates() {
	s.seedLoginClinician("expired", func(c *domain.Clinician) { c.ContractExpiryEODDate = datePtr(2024, 3, 9) })

	_, err := s.svc.Login(s.ctx, credential("expired@mail.com", "correct:horse"))
	s.ErrorIs(err, errs.ErrLoginFailed)

	s.False(s.repo.get("expired").LoginActive)
	s.Len(s.publisher.ofType(EventClinicianUpdated), 1)

	audits := s.publisher.ofType(EventAudit)
	s.Require().Len(audits, 1)
	data := audits[0].Data.(dto.AuditEvent).EventData
	s.Equal(reasonLoginExpired, data["reason"])
	s.Equal("2024-03-09", data["contract_expiry_eod_date"])

	// the next attempt is stopped by the disabled guard
	s.publisher.events = nil
	_, err = s.svc.Login(s.ctx, credential("expired@mail.com", "correct:horse"))
	s.ErrorIs(err, errs.ErrLoginFailed)
	s.Equal(reasonAccountDisabled, s.publisher.ofType(EventAudit)[0].Data.(dto.AuditEvent).EventData["reason"])
}

func (s *ServiceTestSuite) TestLoginAmbiguousUsername() {
	s.seedLoginClinician("one", func(c *domain.Clinician) { c.SendEntryIdentifier = strPtr("shared@mail.com") })
	s.seedLoginClinician("two", func(c *domain.Clinician) { c.EmailAddress = strPtr("shared@mail.com") })

	_, err := s.svc.Login(s.ctx, credential("shared@mail.com", "correct:horse"))
	s.ErrorIs(err, errs.ErrLoginFailed)

	audits := s.publisher.ofType(EventAudit)
	s.Require().Len(audits, 1)
	s.Equal(reasonInvalidUsername, audits[0].Data.(dto.AuditEvent).EventData["reason"])
}

func (s *ServiceTestSuite) TestDeactivateExpiredClinicians() {
	s.seedClinician("expired", func(c *domain.Clinician) { c.ContractExpiryEODDate = datePtr(2024, 3, 1) })
	s.seedClinician("today", func(c *domain.Clinician) { c.ContractExpiryEODDate = datePtr(2024, 3, 10) })
	s.seedClinician("inactive", func(c *domain.Clinician) {
		c.ContractExpiryEODDate = datePtr(2024, 3, 1)
		c.LoginActive = false
	})

	count, err := s.svc.DeactivateExpiredClinicians(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)

	s.False(s.repo.get("expired").LoginActive)
	s.True(s.repo.get("today").LoginActive)
	s.Len(s.publisher.ofType(EventClinicianUpdated), 1)
}

func (s *ServiceTestSuite) TestDeactivateExpiredCliniciansReportsFailures() {
	s.seedClinician("expired", func(c *domain.Clinician) { c.ContractExpiryEODDate = datePtr(2024, 3, 1) })
	s.repo.updateErr = errs.ErrInternalServer

	_, err := s.svc.DeactivateExpiredClinicians(s.ctx)
	s.ErrorIs(err, errs.ErrInternalServer)
	s.Empty(s.publisher.events)
}
