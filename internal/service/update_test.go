package service

import (
	"sync"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/dto"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/permission"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/lib/pq"
	"github.com/stretchr/testify/mock"
)

func (s *ServiceTestSuite) TestUpdateGroupsIsAdditiveAndIdempotent() {
	s.seedClinician("c-1", nil)
	patch := dto.ClinicianUpdateRequest{
		Groups:    dto.StringList{permission.RoleSendClinician, permission.RoleGdmClinician},
		Locations: []string{"L0", "L1"},
	}
	s.groups.On("AddToGroups", mock.Anything, "c-1", []string{permission.RoleSendClinician, permission.RoleGdmClinician}).Return(nil).Twice()

	for i := 0; i < 2; i++ {
		resp, err := s.svc.UpdateClinician(s.ctx, s.admin, "c-1", patch, false)
		s.Require().NoError(err)
		s.Equal([]string{permission.RoleGdmClinician, permission.RoleSendClinician}, resp.Groups)
		s.Equal([]string{"L0", "L1"}, resp.Locations)
	}

	stored := s.repo.get("c-1")
	s.Equal(pq.StringArray{permission.RoleGdmClinician, permission.RoleSendClinician}, stored.Groups)
	s.Equal(adminID, stored.ModifiedBy)
	s.Equal(s.now, stored.Modified)
	s.Len(s.publisher.ofType(EventClinicianUpdated), 2)
}

func (s *ServiceTestSuite) TestUpdateScalarFields() {
	s.seedClinician("c-1", func(c *domain.Clinician) {
		c.EmailAddress = strPtr("old@mail.com")
		c.AgencyName = strPtr("Agency")
	})

	resp, err := s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
		FirstName:    dto.Some("  Janet "),
		JobTitle:     dto.Some("Consultant"),
		EmailAddress: dto.Some(""),
		AgencyName:   dto.Null[string](),
		Password:     dto.Some("s3cret"),
	}, false)
	s.Require().NoError(err)

	s.Equal("Janet", resp.FirstName)
	s.Equal("Deer", resp.LastName)
	s.Equal("Consultant", resp.JobTitle)
	s.Nil(resp.EmailAddress)
	s.Nil(resp.AgencyName)
	stored := s.repo.get("c-1")
	s.True(stored.VerifyPassword("s3cret"))
	s.Empty(s.publisher.ofType(EventAudit))
}

func (s *ServiceTestSuite) TestUpdateEmailIsFolded() {
	s.seedClinician("c-1", nil)

	resp, err := s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
		EmailAddress: dto.Some(" New.Address@Mail.COM "),
	}, false)
	s.Require().NoError(err)
	s.Equal("new.address@mail.com", *resp.EmailAddress)
}

func (s *ServiceTestSuite) TestUpdateDuplicateEmail() {
	s.seedClinician("c-1", nil)

	_, err := s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
		EmailAddress: dto.Some("ADMIN@mail.com"),
	}, false)
	s.ErrorIs(err, errs.ErrDuplicateResource)
	s.Nil(s.repo.get("c-1").EmailAddress)
	s.Empty(s.publisher.events)
}

func (s *ServiceTestSuite) TestUpdateNotFound() {
	_, err := s.svc.UpdateClinician(s.ctx, s.admin, "missing", dto.ClinicianUpdateRequest{}, false)
	s.ErrorIs(err, errs.ErrNotFound)

	_, err = s.svc.RemoveFromClinician(s.ctx, s.admin, "missing", dto.ClinicianRemoveRequest{})
	s.ErrorIs(err, errs.ErrNotFound)
}

func (s *ServiceTestSuite) TestCannotChangeOwnGroups() {
	self := domain.Principal{UserID: adminID, Scopes: s.admin.Scopes}

	_, err := s.svc.UpdateClinician(s.ctx, self, adminID, dto.ClinicianUpdateRequest{
		Groups: dto.StringList{permission.RoleSystem},
	}, false)
	s.ErrorIs(err, errs.ErrUnauthorized)

	_, err = s.svc.RemoveFromClinician(s.ctx, self, adminID, dto.ClinicianRemoveRequest{
		Groups: dto.StringList{permission.RoleSendAdministrator},
	})
	s.ErrorIs(err, errs.ErrUnauthorized)

	s.Equal(pq.StringArray{permission.RoleSendAdministrator}, s.repo.get(adminID).Groups)
}

func (s *ServiceTestSuite) TestConcurrentAdditiveUpdatesKeepEveryGroup() {
	s.seedClinician("c-1", nil)
	s.groups.On("AddToGroups", mock.Anything, "c-1", mock.Anything).Return(nil)

	added := []string{permission.RoleSendClinician, permission.RoleDbmClinician, permission.RoleGdmSuperclinician}

	var wg sync.WaitGroup
	for _, group := range added {
		wg.Add(1)
		go func(group string) {
			defer wg.Done()
			_, err := s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
				Groups: dto.StringList{group},
			}, false)
			s.NoError(err)
		}(group)
	}
	wg.Wait()

	groups := s.repo.get("c-1").Groups
	s.Len(groups, len(added)+1)
	for _, group := range append(added, permission.RoleGdmClinician) {
		s.Contains(groups, group)
	}
}

func (s *ServiceTestSuite) TestUpdateUnknownGroup() {
	s.seedClinician("c-1", nil)

	_, err := s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
		Groups: dto.StringList{"Space Cadet"},
	}, false)
	s.ErrorIs(err, errs.ErrValidation)
}

func (s *ServiceTestSuite) TestUpdateAddsProducts() {
	s.seedClinician("c-1", nil)

	_, err := s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
		Products: []dto.ProductRequest{{ProductName: "GDM", OpenedDate: strPtr("2024-03-01")}},
	}, false)
	s.ErrorIs(err, errs.ErrConflict)
	s.Len(s.repo.get("c-1").Products, 1)

	_, err = s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
		Products: []dto.ProductRequest{
			{UUID: strPtr("c-1-gdm"), ClosedDate: strPtr("2024-03-09"), ClosedReason: strPtr("left trust")},
			{ProductName: "GDM", OpenedDate: strPtr("2024-03-10")},
		},
	}, false)
	s.Require().NoError(err)

	stored := s.repo.get("c-1")
	s.Require().Len(stored.Products, 2)
	s.Len(stored.OpenProducts(), 1)
	closed, ok := stored.FindProduct("c-1-gdm")
	s.Require().True(ok)
	s.False(closed.IsOpen())
	s.Equal("left trust", *closed.ClosedReason)
}

func (s *ServiceTestSuite) TestUpdateRenamesProduct() {
	s.seedClinician("c-1", func(c *domain.Clinician) {
		c.Products = append(c.Products, domain.Product{UUID: "c-1-send", ProductName: "SEND", OpenedDate: s.now})
	})

	_, err := s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
		Products: []dto.ProductRequest{{UUID: strPtr("c-1-send"), ProductName: "GDM"}},
	}, false)
	s.ErrorIs(err, errs.ErrConflict)

	_, err = s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
		Products: []dto.ProductRequest{{UUID: strPtr("c-1-send"), ProductName: "DBM"}},
	}, false)
	s.Require().NoError(err)
	stored := s.repo.get("c-1")
	renamed, _ := stored.FindProduct("c-1-send")
	s.Equal("DBM", renamed.ProductName)

	_, err = s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
		Products: []dto.ProductRequest{{UUID: strPtr("other"), ProductName: "DBM"}},
	}, false)
	s.ErrorIs(err, errs.ErrNotFound)
}

func (s *ServiceTestSuite) TestUpdateLoginActiveAudit() {
	s.seedClinician("c-1", nil)

	_, err := s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{LoginActive: dto.Some(true)}, false)
	s.Require().NoError(err)
	s.Empty(s.publisher.ofType(EventAudit))

	_, err = s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{LoginActive: dto.Some(false)}, false)
	s.Require().NoError(err)

	_, err = s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{LoginActive: dto.Some(true)}, false)
	s.Require().NoError(err)

	audits := s.publisher.ofType(EventAudit)
	s.Require().Len(audits, 2)
	s.Equal(AuditLoginDeactivated, audits[0].Data.(dto.AuditEvent).EventType)
	s.Equal(AuditLoginActivated, audits[1].Data.(dto.AuditEvent).EventType)
	s.Equal(map[string]interface{}{"clinician_id": "c-1", "modified_by": adminID}, audits[1].Data.(dto.AuditEvent).EventData)
}

func (s *ServiceTestSuite) TestUpdateTempEditScope() {
	s.seedClinician("perm-1", nil)
	s.seedClinician("temp-1", func(c *domain.Clinician) { c.ContractExpiryEODDate = datePtr(2024, 6, 30) })

	type TestCase struct {
		Name   string
		Target string
		Patch  dto.ClinicianUpdateRequest
		Err    error
	}

	testCases := []TestCase{
		{Name: "permanent target", Target: "perm-1", Patch: dto.ClinicianUpdateRequest{JobTitle: dto.Some("Nurse")}, Err: errs.ErrUnauthorized},
		{Name: "restricted groups field", Target: "temp-1", Patch: dto.ClinicianUpdateRequest{Groups: dto.StringList{permission.RoleSendClinician}}, Err: errs.ErrUnauthorized},
		{Name: "restricted password field", Target: "temp-1", Patch: dto.ClinicianUpdateRequest{Password: dto.Some("pw")}, Err: errs.ErrUnauthorized},
		{Name: "becoming permanent", Target: "temp-1", Patch: dto.ClinicianUpdateRequest{ContractExpiryEODDate: dto.Null[string]()}, Err: errs.ErrUnauthorized},
		{Name: "allowed field", Target: "temp-1", Patch: dto.ClinicianUpdateRequest{JobTitle: dto.Some("Nurse")}},
	}

	for _, tc := range testCases {
		s.Run(tc.Name, func() {
			_, err := s.svc.UpdateClinician(s.ctx, s.admin, tc.Target, tc.Patch, true)
			if tc.Err != nil {
				s.ErrorIs(err, tc.Err)
				return
			}
			s.NoError(err)
		})
	}
}

func (s *ServiceTestSuite) TestUpdateMakePermanent() {
	s.seedClinician("temp-1", func(c *domain.Clinician) { c.ContractExpiryEODDate = datePtr(2024, 6, 30) })
	patch := dto.ClinicianUpdateRequest{ContractExpiryEODDate: dto.Null[string]()}

	_, err := s.svc.UpdateClinician(s.ctx, domain.Principal{UserID: adminID, Scopes: []string{permission.WriteGdmClinicianAll}}, "temp-1", patch, false)
	s.ErrorIs(err, errs.ErrUnauthorized)

	resp, err := s.svc.UpdateClinician(s.ctx, s.admin, "temp-1", patch, false)
	s.Require().NoError(err)
	s.Nil(resp.ContractExpiryEODDate)
}

func (s *ServiceTestSuite) TestUpdateCanEditEWS() {
	s.seedClinician("send-1", func(c *domain.Clinician) { c.Groups = pq.StringArray{permission.RoleSendClinician} })
	s.seedClinician("temp-1", func(c *domain.Clinician) {
		c.Groups = pq.StringArray{permission.RoleSendClinician}
		c.ContractExpiryEODDate = datePtr(2024, 6, 30)
	})
	s.seedClinician("gdm-1", nil)
	grant := dto.ClinicianUpdateRequest{CanEditEWS: dto.Some(true)}

	_, err := s.svc.UpdateClinician(s.ctx, s.admin, "gdm-1", grant, false)
	s.ErrorIs(err, errs.ErrValidation)

	_, err = s.svc.UpdateClinician(s.ctx, s.admin, "temp-1", grant, false)
	s.ErrorIs(err, errs.ErrValidation)

	_, err = s.svc.UpdateClinician(s.ctx, domain.Principal{UserID: "gdm-1"}, "send-1", grant, false)
	s.ErrorIs(err, errs.ErrUnauthorized)

	// groups named in the patch count towards the SEND clinician check
	s.groups.On("AddToGroups", mock.Anything, "gdm-1", []string{permission.RoleSendSuperclinician}).Return(nil).Once()
	resp, err := s.svc.UpdateClinician(s.ctx, s.admin, "gdm-1", dto.ClinicianUpdateRequest{
		CanEditEWS: dto.Some(true),
		Groups:     dto.StringList{permission.RoleSendSuperclinician},
	}, false)
	s.Require().NoError(err)
	s.True(resp.CanEditEWS)

	resp, err = s.svc.UpdateClinician(s.ctx, s.admin, "send-1", grant, false)
	s.Require().NoError(err)
	s.True(resp.CanEditEWS)
}

func (s *ServiceTestSuite) TestAdministratorCannotGrantThemselfEWS() {
	s.repo.seed(func() domain.Clinician {
		c := s.repo.get(adminID)
		c.Groups = pq.StringArray{permission.RoleSendAdministrator, permission.RoleSendClinician}
		return c
	}())

	_, err := s.svc.UpdateClinician(s.ctx, s.admin, adminID, dto.ClinicianUpdateRequest{CanEditEWS: dto.Some(true)}, false)
	s.ErrorIs(err, errs.ErrUnauthorized)
}

func (s *ServiceTestSuite) TestUpdateGroupSyncFailureKeepsCommit() {
	s.seedClinician("c-1", nil)
	s.groups.On("AddToGroups", mock.Anything, "c-1", mock.Anything).Return(errs.ErrServiceUnavailable).Once()

	_, err := s.svc.UpdateClinician(s.ctx, s.admin, "c-1", dto.ClinicianUpdateRequest{
		Groups: dto.StringList{permission.RoleSendClinician},
	}, false)
	s.ErrorIs(err, errs.ErrServiceUnavailable)

	s.Contains(s.repo.get("c-1").Groups, permission.RoleSendClinician)
	s.Empty(s.publisher.ofType(EventClinicianUpdated))
}

func (s *ServiceTestSuite) TestRemoveFromClinician() {
	s.seedClinician("c-1", func(c *domain.Clinician) {
		c.Groups = pq.StringArray{permission.RoleSendClinician, permission.RoleGdmClinician}
		c.Locations = pq.StringArray{"L3", "L1", "L2"}
		c.Bookmarks = pq.StringArray{"L1"}
		c.BookmarkedPatients = pq.StringArray{"P1", "P2"}
		c.Products = append(c.Products, domain.Product{UUID: "c-1-send", ProductName: "SEND", OpenedDate: s.now})
	})
	s.groups.On("RemoveFromGroups", mock.Anything, "c-1", []string{permission.RoleGdmClinician, permission.RoleDbmClinician}).Return(nil).Once()

	resp, err := s.svc.RemoveFromClinician(s.ctx, s.admin, "c-1", dto.ClinicianRemoveRequest{
		Groups:             dto.StringList{permission.RoleGdmClinician, permission.RoleDbmClinician},
		Locations:          []string{"L1"},
		BookmarkedPatients: []string{"P1"},
		Products:           []dto.ProductReference{{UUID: "c-1-gdm"}},
	})
	s.Require().NoError(err)

	s.Equal([]string{permission.RoleSendClinician}, resp.Groups)
	s.Equal([]string{"L3", "L2"}, resp.Locations)
	s.Equal([]string{"L1"}, resp.Bookmarks)
	s.Equal([]string{"P2"}, resp.BookmarkedPatients)

	stored := s.repo.get("c-1")
	s.Require().Len(stored.Products, 1)
	s.Equal("c-1-send", stored.Products[0].UUID)
	s.Len(s.publisher.ofType(EventClinicianUpdated), 1)
}

func (s *ServiceTestSuite) TestRemoveWithoutGroupsSkipsSync() {
	s.seedClinician("c-1", nil)

	resp, err := s.svc.RemoveFromClinician(s.ctx, s.admin, "c-1", dto.ClinicianRemoveRequest{Locations: []string{"nowhere"}})
	s.Require().NoError(err)
	s.Equal([]string{"L1"}, resp.Locations)

	s.groups.AssertNotCalled(s.T(), "RemoveFromGroups", mock.Anything, mock.Anything, mock.Anything)
}
