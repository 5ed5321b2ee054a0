package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/alimikegami/healthcare-microservices/users-service/internal/domain"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/dto"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/middleware"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/permission"
	"github.com/alimikegami/healthcare-microservices/users-service/internal/service"
	pkgdto "github.com/alimikegami/healthcare-microservices/users-service/pkg/dto"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/response"
	"github.com/alimikegami/healthcare-microservices/users-service/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const userAuthorizationHeader = "UserAuthorization"

type Controller struct {
	service service.ClinicianService
}

// CreateController registers the clinician routes on g. Every route expects
// middleware.Authenticate to have run on the group.
func CreateController(g *echo.Group, service service.ClinicianService) {
	cc := Controller{
		service: service,
	}

	self := middleware.MatchesParam("clinician_id")
	protect := middleware.Protect
	anyOf := middleware.AnyScope

	g.POST("/dhos/v1/clinician", cc.CreateClinician, protect(anyOf(
		permission.WriteGdmClinicianAll,
		permission.WriteSendClinicianAll,
		permission.WriteSendClinicianTemp,
	)))
	g.GET("/dhos/v1/clinician", cc.GetClinicianByEmail, protect(anyOf(permission.ReadGdmClinicianAll)))
	g.PATCH("/dhos/v1/clinician", cc.UpdatePasswordByEmail, protect(anyOf(permission.WriteGdmClinicianAll)))
	g.GET("/dhos/v1/clinician/login", cc.Login, protect(anyOf(permission.ReadGdmClinicianAuthAll)))
	g.POST("/dhos/v1/clinician/bulk", cc.CreateCliniciansBulk, protect(anyOf(permission.WriteClinicianMigration)))

	g.GET("/dhos/v1/clinician/:clinician_id", cc.GetClinicianByID, protect(middleware.Either(
		anyOf(permission.ReadGdmClinicianAll, permission.ReadSendClinicianAll, permission.ReadSendClinicianTemp),
		middleware.Both(anyOf(permission.ReadGdmClinician, permission.ReadSendClinician), self),
	)))
	g.PATCH("/dhos/v1/clinician/:clinician_id", cc.UpdateClinician, protect(middleware.Either(
		anyOf(permission.WriteGdmClinicianAll, permission.WriteSendClinicianAll, permission.WriteSendClinicianTemp),
		middleware.Both(anyOf(permission.WriteGdmClinician, permission.WriteSendClinician), self),
	)))
	g.PATCH("/dhos/v1/clinician/:clinician_id/delete", cc.RemoveFromClinician, protect(middleware.Either(
		anyOf(permission.WriteGdmClinicianAll, permission.WriteSendClinicianAll),
		middleware.Both(anyOf(permission.WriteGdmClinician), self),
	)))
	g.POST("/dhos/v1/clinician/:clinician_id/terms_agreement", cc.CreateTermsAgreement, protect(middleware.Both(
		anyOf(permission.WriteGdmTermsAgreement, permission.WriteSendTermsAgreement),
		middleware.Either(self, middleware.SystemCaller()),
	)))

	locationBookmark := protect(middleware.Both(
		middleware.AllScopes(permission.ReadSendClinician, permission.ReadSendLocation),
		middleware.Either(self, middleware.SystemCaller()),
	))
	g.POST("/dhos/v1/clinician/:clinician_id/location/:location_id/bookmark", cc.AddLocationBookmark, locationBookmark)
	g.DELETE("/dhos/v1/clinician/:clinician_id/location/:location_id/bookmark", cc.RemoveLocationBookmark, locationBookmark)

	patientBookmark := protect(anyOf(permission.WriteSendPatient))
	g.POST("/dhos/v1/clinician/:clinician_id/patient/:patient_id/bookmark", cc.AddPatientBookmark, patientBookmark)
	g.DELETE("/dhos/v1/clinician/:clinician_id/patient/:patient_id/bookmark", cc.RemovePatientBookmark, patientBookmark)

	listRule := protect(anyOf(
		permission.ReadGdmClinicianAll,
		permission.ReadGdmClinician,
		permission.ReadSendClinicianAll,
		permission.ReadSendClinicianTemp,
	))
	g.GET("/dhos/v1/clinicians", cc.GetCliniciansV1, listRule)
	g.GET("/dhos/v2/clinicians", cc.GetClinicians, listRule)
	g.POST("/dhos/v1/clinician_list", cc.GetCliniciansByUUIDs, protect(anyOf(
		permission.ReadGdmClinicianAll,
		permission.ReadGdmClinician,
		permission.ReadSendClinicianAll,
		permission.ReadSendClinician,
	)))
	g.GET("/dhos/v1/location/:location_id/clinician", cc.GetCliniciansAtLocation, protect(anyOf(permission.ReadGdmClinicianAll)))

	g.GET("/dhos/v1/roles", cc.GetRoles, protect(nil))
}

func (c *Controller) CreateClinician(e echo.Context) error {
	sendWelcomeEmail := true
	if err := echo.QueryParamsBinder(e).Bool("send_welcome_email", &sendWelcomeEmail).BindError(); err != nil {
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	payload := dto.ClinicianCreateRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Error().Err(err).Str("component", "CreateClinician").Msg("")
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	resp, err := c.service.CreateClinician(e.Request().Context(), principal(e), payload, sendWelcomeEmail)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteCreatedResponse(e, "", resp)
}

func (c *Controller) CreateCliniciansBulk(e echo.Context) error {
	payload := []dto.BulkClinicianRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Error().Err(err).Str("component", "CreateCliniciansBulk").Msg("")
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	resp, err := c.service.CreateCliniciansBulk(e.Request().Context(), principal(e), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) GetClinicianByID(e echo.Context) error {
	id := e.Param("clinician_id")

	tempOnly := false
	if err := echo.QueryParamsBinder(e).Bool("temp_only", &tempOnly).BindError(); err != nil {
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	p := principal(e)
	if !tempOnly {
		tempOnly = onlyTempScope(p, id, permission.ReadSendClinicianTemp, permission.ReadGdmClinicianAll, permission.ReadSendClinicianAll)
	}

	resp, err := c.service.GetClinicianByID(e.Request().Context(), id, tempOnly)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) GetClinicianByEmail(e echo.Context) error {
	email := e.QueryParam("email")
	if email == "" {
		return response.WriteErrorResponse(e, fmt.Errorf("%w: email is required", errs.ErrValidation), nil)
	}

	resp, err := c.service.GetClinicianByEmail(e.Request().Context(), email)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) UpdatePasswordByEmail(e echo.Context) error {
	email := e.QueryParam("email")
	if email == "" {
		return response.WriteErrorResponse(e, fmt.Errorf("%w: email is required", errs.ErrValidation), nil)
	}

	payload := dto.UpdatePasswordRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Error().Err(err).Str("component", "UpdatePasswordByEmail").Msg("")
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	resp, err := c.service.UpdatePasswordByEmail(e.Request().Context(), principal(e), email, payload.Password)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

// Login expects "UserAuthorization: Bearer <base64 username:password>".
func (c *Controller) Login(e echo.Context) error {
	credential, found := strings.CutPrefix(e.Request().Header.Get(userAuthorizationHeader), "Bearer ")
	if !found || credential == "" {
		return response.WriteErrorResponse(e, errs.ErrLoginFailed, nil)
	}

	resp, err := c.service.Login(e.Request().Context(), credential)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) UpdateClinician(e echo.Context) error {
	id := e.Param("clinician_id")

	tempOnly := false
	if err := echo.QueryParamsBinder(e).Bool("temp_only", &tempOnly).BindError(); err != nil {
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	payload := dto.ClinicianUpdateRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Error().Err(err).Str("component", "UpdateClinician").Msg("")
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	p := principal(e)
	if !tempOnly {
		tempOnly = onlyTempScope(p, id, permission.WriteSendClinicianTemp, permission.WriteGdmClinicianAll, permission.WriteSendClinicianAll)
	}

	resp, err := c.service.UpdateClinician(e.Request().Context(), p, id, payload, tempOnly)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) RemoveFromClinician(e echo.Context) error {
	payload := dto.ClinicianRemoveRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Error().Err(err).Str("component", "RemoveFromClinician").Msg("")
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	resp, err := c.service.RemoveFromClinician(e.Request().Context(), principal(e), e.Param("clinician_id"), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) CreateTermsAgreement(e echo.Context) error {
	payload := dto.TermsAgreementRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Error().Err(err).Str("component", "CreateTermsAgreement").Msg("")
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	resp, err := c.service.CreateTermsAgreement(e.Request().Context(), principal(e), e.Param("clinician_id"), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteCreatedResponse(e, "", resp)
}

func (c *Controller) AddLocationBookmark(e echo.Context) error {
	err := c.service.AddLocationBookmark(e.Request().Context(), principal(e), e.Param("clinician_id"), e.Param("location_id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}
	return e.NoContent(http.StatusNoContent)
}

func (c *Controller) RemoveLocationBookmark(e echo.Context) error {
	err := c.service.RemoveLocationBookmark(e.Request().Context(), principal(e), e.Param("clinician_id"), e.Param("location_id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}
	return e.NoContent(http.StatusNoContent)
}

func (c *Controller) AddPatientBookmark(e echo.Context) error {
	err := c.service.AddPatientBookmark(e.Request().Context(), principal(e), e.Param("clinician_id"), e.Param("patient_id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}
	return e.NoContent(http.StatusNoContent)
}

func (c *Controller) RemovePatientBookmark(e echo.Context) error {
	err := c.service.RemovePatientBookmark(e.Request().Context(), principal(e), e.Param("clinician_id"), e.Param("patient_id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}
	return e.NoContent(http.StatusNoContent)
}

// GetCliniciansV1 is the older listing that returns the page without a total.
func (c *Controller) GetCliniciansV1(e echo.Context) error {
	filter, err := bindFilter(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	resp, err := c.service.GetClinicians(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp.Results)
}

func (c *Controller) GetClinicians(e echo.Context) error {
	filter, err := bindFilter(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	resp, err := c.service.GetClinicians(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) GetCliniciansByUUIDs(e echo.Context) error {
	compact := false
	if err := echo.QueryParamsBinder(e).Bool("compact", &compact).BindError(); err != nil {
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	payload := dto.ClinicianUUIDsRequest{}
	if err := e.Bind(&payload); err != nil {
		log.Error().Err(err).Str("component", "GetCliniciansByUUIDs").Msg("")
		return response.WriteErrorResponse(e, badRequest(err), nil)
	}

	resp, err := c.service.GetCliniciansByUUIDs(e.Request().Context(), payload, compact)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) GetCliniciansAtLocation(e echo.Context) error {
	resp, err := c.service.GetCliniciansAtLocation(e.Request().Context(), e.Param("location_id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) GetRoles(e echo.Context) error {
	return response.WriteSuccessResponse(e, "", c.service.GetRoles(e.Request().Context()))
}

func bindFilter(e echo.Context) (pkgdto.Filter, error) {
	filter := pkgdto.Filter{}
	if err := e.Bind(&filter); err != nil {
		log.Error().Err(err).Str("component", "bindFilter").Msg("")
		return filter, badRequest(err)
	}

	// sort=last_name,first_name and repeated sort keys are both accepted
	var sort []string
	for _, s := range filter.Sort {
		for _, key := range strings.Split(s, ",") {
			if key = strings.TrimSpace(key); key != "" {
				sort = append(sort, key)
			}
		}
	}
	filter.Sort = sort

	if raw := e.QueryParam("login_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid login_active %q", errs.ErrValidation, raw)
		}
		filter.LoginActive = &active
	}

	if raw := e.QueryParam("modified_since"); raw != "" {
		since, err := utils.ParseTimestamp(raw)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid modified_since %q", errs.ErrValidation, raw)
		}
		filter.ModifiedSince = &since
	}

	if filter.Limit < 0 || filter.Offset < 0 {
		return filter, fmt.Errorf("%w: limit and offset must not be negative", errs.ErrValidation)
	}

	return filter, nil
}

// onlyTempScope reports whether the caller reaches clinician id through the
// temp scope alone, in which case reads and edits are limited to temporary
// accounts.
func onlyTempScope(p domain.Principal, id string, tempScope string, broaderScopes ...string) bool {
	if p.IsSystem() || p.IsUser(id) || !p.HasScope(tempScope) {
		return false
	}
	for _, s := range broaderScopes {
		if p.HasScope(s) {
			return false
		}
	}
	return true
}

func principal(e echo.Context) domain.Principal {
	p, _ := middleware.GetPrincipal(e)
	return p
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errs.ErrValidation, err)
}
