package permission

const (
	RoleDbmClinician       = "DBM Clinician"
	RoleDbmSuperclinician  = "DBM Superclinician"
	RoleDeaCollector       = "DEA Collector"
	RoleEprServiceAdapter  = "EPR Service Adapter"
	RoleGdmAdministrator   = "GDM Administrator"
	RoleGdmClinician       = "GDM Clinician"
	RoleGdmPatient         = "GDM Patient"
	RoleGdmSuperclinician  = "GDM Superclinician"
	RoleSendAdministrator  = "SEND Administrator"
	RoleSendClinician      = "SEND Clinician"
	RoleSendEntryClinician = "SEND Entry Clinician"
	RoleSendEntryDevice    = "SEND Entry Device"
	RoleSendSuperclinician = "SEND Superclinician"
	RoleSystem             = "System"
)

const (
	DeleteGdmArticle          = "delete:gdm_article"
	DeleteGdmMedication       = "delete:gdm_medication"
	DeleteGdmSms              = "delete:gdm_sms"
	ExportDhosData            = "export:dhos_data"
	ExportWardReport          = "export:ward_report"
	ReadAuditEvent            = "read:audit_event"
	ReadBgReading             = "read:bg_reading"
	ReadBgReadingAll          = "read:bg_reading_all"
	ReadClinician             = "read:clinician"
	ReadClinicianAll          = "read:clinician_all"
	ReadDbmClinicianAll       = "read:dbm_clinician_all"
	ReadErrorMessage          = "read:error_message"
	ReadFailedRequestQueue    = "read:failed_request_queue"
	ReadGdmActivation         = "read:gdm_activation"
	ReadGdmAnswer             = "read:gdm_answer"
	ReadGdmAnswerAll          = "read:gdm_answer_all"
	ReadGdmBgReading          = "read:gdm_bg_reading"
	ReadGdmBgReadingAll       = "read:gdm_bg_reading_all"
	ReadGdmClinician          = "read:gdm_clinician"
	ReadGdmClinicianAll       = "read:gdm_clinician_all"
	ReadGdmCsv                = "read:gdm_csv"
	ReadGdmLocation           = "read:gdm_location"
	ReadGdmLocationAll        = "read:gdm_location_all"
	ReadGdmMedication         = "read:gdm_medication"
	ReadGdmMessage            = "read:gdm_message"
	ReadGdmMessageAll         = "read:gdm_message_all"
	ReadGdmPatient            = "read:gdm_patient"
	ReadGdmPatientAbbreviated = "read:gdm_patient_abbreviated"
	ReadGdmPatientAll         = "read:gdm_patient_all"
	ReadGdmPdf                = "read:gdm_pdf"
	ReadGdmQuestion           = "read:gdm_question"
	ReadGdmRule               = "read:gdm_rule"
	ReadGdmSms                = "read:gdm_sms"
	ReadGdmSurvey             = "read:gdm_survey"
	ReadGdmSurveyAll          = "read:gdm_survey_all"
	ReadGdmTelemetry          = "read:gdm_telemetry"
	ReadGdmTelemetryAll       = "read:gdm_telemetry_all"
	ReadGdmTrustomer          = "read:gdm_trustomer"
	ReadHl7Message            = "read:hl7_message"
	ReadLocation              = "read:location"
	ReadLocationAll           = "read:location_all"
	ReadLocationByOds         = "read:location_by_ods"
	ReadMedication            = "read:medication"
	ReadPatient               = "read:patient"
	ReadPatientAll            = "read:patient_all"
	ReadPatientCsv            = "read:patient_csv"
	ReadQuestion              = "read:question"
	ReadSendClinician         = "read:send_clinician"
	ReadSendClinicianAll      = "read:send_clinician_all"
	ReadSendClinicianTemp     = "read:send_clinician_temp"
	ReadSendDevice            = "read:send_device"
	ReadSendEncounter         = "read:send_encounter"
	ReadSendEntryIdentifier   = "read:send_entry_identifier"
	ReadSendLocation          = "read:send_location"
	ReadSendObservation       = "read:send_observation"
	ReadSendPatient           = "read:send_patient"
	ReadSendPdf               = "read:send_pdf"
	ReadSendRule              = "read:send_rule"
	ReadSendTrustomer         = "read:send_trustomer"
	ReadTrustomer             = "read:trustomer"
	ReadWardReport            = "read:ward_report"
	WriteActivation           = "write:activation"
	WriteAnswer               = "write:answer"
	WriteAnswerAll            = "write:answer_all"
	WriteAuditEvent           = "write:audit_event"
	WriteBgReading            = "write:bg_reading"
	WriteErrorMessage         = "write:error_message"
	WriteFailedRequestQueue   = "write:failed_request_queue"
	WriteGdmActivation        = "write:gdm_activation"
	WriteGdmAlert             = "write:gdm_alert"
	WriteGdmAnswer            = "write:gdm_answer"
	WriteGdmAnswerAll         = "write:gdm_answer_all"
	WriteGdmArticle           = "write:gdm_article"
	WriteGdmBgReading         = "write:gdm_bg_reading"
	WriteGdmClinician         = "write:gdm_clinician"
	WriteGdmClinicianAll      = "write:gdm_clinician_all"
	WriteGdmCsv               = "write:gdm_csv"
	WriteGdmLocation          = "write:gdm_location"
	WriteGdmMedication        = "write:gdm_medication"
	WriteGdmMessage           = "write:gdm_message"
	WriteGdmMessageAll        = "write:gdm_message_all"
	WriteGdmPatient           = "write:gdm_patient"
	WriteGdmPatientAll        = "write:gdm_patient_all"
	WriteGdmPdf               = "write:gdm_pdf"
	WriteGdmQuestion          = "write:gdm_question"
	WriteGdmSms               = "write:gdm_sms"
	WriteGdmSurvey            = "write:gdm_survey"
	WriteGdmSurveyAll         = "write:gdm_survey_all"
	WriteGdmTelemetry         = "write:gdm_telemetry"
	WriteGdmTermsAgreement    = "write:gdm_terms_agreement"
	WriteHl7Message           = "write:hl7_message"
	WriteLocation             = "write:location"
	WriteMessage              = "write:message"
	WriteMessageAll           = "write:message_all"
	WritePatient              = "write:patient"
	WritePatientAll           = "write:patient_all"
	WritePatientCsv           = "write:patient_csv"
	WriteSendClinician        = "write:send_clinician"
	WriteSendClinicianAll     = "write:send_clinician_all"
	WriteSendClinicianTemp    = "write:send_clinician_temp"
	WriteSendDevice           = "write:send_device"
	WriteSendEncounter        = "write:send_encounter"
	WriteSendLocation         = "write:send_location"
	WriteSendObservation      = "write:send_observation"
	WriteSendPatient          = "write:send_patient"
	WriteSendPdf              = "write:send_pdf"
	WriteSendTermsAgreement   = "write:send_terms_agreement"
	WriteTelemetry            = "write:telemetry"
	WriteTermsAgreement       = "write:terms_agreement"
	WriteWardReport           = "write:ward_report"
)

// roleMapping is the static catalog. It is never mutated after package init.
var roleMapping = map[string][]string{
	RoleEprServiceAdapter: {
		ReadHl7Message,
		WriteHl7Message,
	},
	RoleSystem: {
		DeleteGdmArticle,
		DeleteGdmMedication,
		DeleteGdmSms,
		ReadAuditEvent,
		ReadDbmClinicianAll,
		ReadErrorMessage,
		ReadFailedRequestQueue,
		ReadGdmActivation,
		ReadGdmAnswerAll,
		ReadGdmBgReadingAll,
		ReadGdmClinicianAll,
		ReadGdmLocationAll,
		ReadGdmMedication,
		ReadGdmMessageAll,
		ReadGdmPatientAll,
		ReadGdmPdf,
		ReadGdmQuestion,
		ReadGdmRule,
		ReadGdmSms,
		ReadGdmSurveyAll,
		ReadGdmTelemetryAll,
		ReadGdmTelemetry,
		ReadGdmTrustomer,
		ReadHl7Message,
		ReadLocationAll,
		ReadLocationByOds,
		ReadSendClinicianAll,
		ReadSendClinician,
		ReadSendDevice,
		ReadSendEncounter,
		ReadSendEntryIdentifier,
		ReadSendLocation,
		ReadSendObservation,
		ReadSendPatient,
		ReadSendPdf,
		ReadSendRule,
		ReadSendTrustomer,
		ReadWardReport,
		WriteAuditEvent,
		WriteErrorMessage,
		WriteFailedRequestQueue,
		WriteGdmActivation,
		WriteGdmAlert,
		WriteGdmArticle,
		WriteGdmBgReading,
		WriteGdmClinicianAll,
		WriteGdmCsv,
		WriteGdmLocation,
		WriteGdmMedication,
		WriteGdmMessageAll,
		WriteGdmPatientAll,
		WriteGdmPdf,
		WriteGdmQuestion,
		WriteGdmSms,
		WriteGdmSurvey,
		WriteGdmTelemetry,
		WriteGdmTermsAgreement,
		WriteHl7Message,
		WriteLocation,
		WritePatientCsv,
		WriteSendClinicianAll,
		WriteSendClinician,
		WriteSendDevice,
		WriteSendEncounter,
		WriteSendLocation,
		WriteSendObservation,
		WriteSendPatient,
		WriteSendPdf,
		WriteWardReport,
	},
	RoleGdmPatient: {
		ReadGdmAnswer,
		ReadGdmBgReading,
		ReadGdmMedication,
		ReadGdmMessage,
		ReadGdmPatientAbbreviated,
		ReadGdmPatient,
		ReadGdmQuestion,
		ReadGdmRule,
		ReadGdmSurvey,
		ReadGdmTelemetry,
		ReadGdmTrustomer,
		WriteGdmAnswer,
		WriteGdmBgReading,
		WriteGdmMessage,
		WriteGdmTelemetry,
		WriteGdmTermsAgreement,
	},
	RoleGdmClinician: {
		ReadGdmActivation,
		ReadGdmAnswerAll,
		ReadGdmBgReadingAll,
		ReadGdmClinician,
		ReadGdmCsv,
		ReadGdmLocation,
		ReadGdmMedication,
		ReadGdmMessage,
		ReadGdmPatient,
		ReadGdmPdf,
		ReadGdmQuestion,
		ReadGdmTelemetryAll,
		ReadGdmTrustomer,
		WriteGdmActivation,
		WriteGdmAlert,
		WriteGdmAnswerAll,
		WriteGdmClinician,
		WriteGdmMessage,
		WriteGdmPatient,
		WriteGdmPdf,
		WriteGdmSms,
		WriteGdmSurvey,
		WriteGdmTelemetry,
		WriteGdmTermsAgreement,
	},
	RoleGdmSuperclinician: {
		ReadGdmActivation,
		ReadGdmAnswerAll,
		ReadGdmBgReadingAll,
		ReadGdmClinicianAll,
		ReadGdmCsv,
		ReadGdmLocationAll,
		ReadGdmMedication,
		ReadGdmMessageAll,
		ReadGdmPatientAll,
		ReadGdmPdf,
		ReadGdmQuestion,
		ReadGdmTelemetryAll,
		ReadGdmTrustomer,
		WriteGdmActivation,
		WriteGdmAlert,
		WriteGdmAnswerAll,
		WriteGdmClinicianAll,
		WriteGdmMessageAll,
		WriteGdmPatientAll,
		WriteGdmPdf,
		WriteGdmSms,
		WriteGdmSurvey,
		WriteGdmTelemetry,
		WriteGdmTermsAgreement,
	},
	RoleGdmAdministrator: {
		DeleteGdmArticle,
		DeleteGdmMedication,
		ReadGdmClinicianAll,
		ReadGdmLocationAll,
		ReadGdmMedication,
		ReadGdmQuestion,
		ReadGdmTrustomer,
		WriteGdmArticle,
		WriteGdmClinicianAll,
		WriteGdmLocation,
		WriteGdmMedication,
		WriteGdmQuestion,
		WriteGdmTelemetry,
		WriteGdmTermsAgreement,
	},
	RoleDbmClinician: {
		ReadBgReadingAll,
		ReadBgReading,
		ReadClinicianAll,
		ReadClinician,
		ReadGdmActivation,
		ReadGdmAnswerAll,
		ReadGdmBgReadingAll,
		ReadGdmClinicianAll,
		ReadGdmCsv,
		ReadGdmLocation,
		ReadGdmMedication,
		ReadGdmMessageAll,
		ReadGdmPatient,
		ReadGdmPdf,
		ReadGdmQuestion,
		ReadGdmTelemetryAll,
		ReadGdmTrustomer,
		ReadLocationAll,
		ReadLocation,
		ReadMedication,
		ReadPatientAll,
		ReadPatientCsv,
		ReadPatient,
		ReadQuestion,
		ReadTrustomer,
		WriteActivation,
		WriteAnswerAll,
		WriteAnswer,
		WriteBgReading,
		WriteGdmActivation,
		WriteGdmAlert,
		WriteGdmAnswerAll,
		WriteGdmBgReading,
		WriteGdmClinician,
		WriteGdmMessageAll,
		WriteGdmPatientAll,
		WriteGdmPatient,
		WriteGdmPdf,
		WriteGdmSms,
		WriteGdmTelemetry,
		WriteGdmTermsAgreement,
		WriteMessageAll,
		WriteMessage,
		WritePatientAll,
		WritePatient,
		WriteTelemetry,
		WriteTermsAgreement,
	},
	RoleDbmSuperclinician: {
		ReadBgReadingAll,
		ReadBgReading,
		ReadClinicianAll,
		ReadClinician,
		ReadGdmActivation,
		ReadGdmAnswerAll,
		ReadGdmBgReadingAll,
		ReadGdmClinicianAll,
		ReadGdmCsv,
		ReadGdmLocationAll,
		ReadGdmMedication,
		ReadGdmMessageAll,
		ReadGdmPatientAll,
		ReadGdmPdf,
		ReadGdmQuestion,
		ReadGdmTelemetryAll,
		ReadGdmTrustomer,
		ReadLocationAll,
		ReadLocation,
		ReadMedication,
		ReadPatientAll,
		ReadPatientCsv,
		ReadPatient,
		ReadQuestion,
		ReadTrustomer,
		WriteActivation,
		WriteAnswerAll,
		WriteAnswer,
		WriteBgReading,
		WriteGdmActivation,
		WriteGdmAlert,
		WriteGdmAnswerAll,
		WriteGdmBgReading,
		WriteGdmClinicianAll,
		WriteGdmMessageAll,
		WriteGdmPatientAll,
		WriteGdmPdf,
		WriteGdmSms,
		WriteGdmTelemetry,
		WriteGdmTermsAgreement,
		WriteMessageAll,
		WriteMessage,
		WritePatientAll,
		WritePatient,
		WriteTelemetry,
		WriteTermsAgreement,
	},
	RoleSendEntryClinician: {
		ReadSendClinician,
		ReadSendEncounter,
		ReadSendObservation,
		ReadSendPatient,
		ReadSendRule,
		ReadSendTrustomer,
		ReadWardReport,
		WriteSendEncounter,
		WriteSendObservation,
		WriteSendPatient,
	},
	RoleSendClinician: {
		ReadSendClinician,
		ReadSendEncounter,
		ReadSendLocation,
		ReadSendObservation,
		ReadSendPatient,
		ReadSendPdf,
		ReadSendRule,
		ReadSendTrustomer,
		ReadWardReport,
		WriteSendEncounter,
		WriteSendObservation,
		WriteSendPatient,
		WriteSendTermsAgreement,
	},
	RoleSendSuperclinician: {
		ReadSendClinicianTemp,
		ReadSendClinician,
		ReadSendEncounter,
		ReadSendLocation,
		ReadSendObservation,
		ReadSendPatient,
		ReadSendPdf,
		ReadSendRule,
		ReadSendTrustomer,
		ReadWardReport,
		WriteSendClinicianTemp,
		WriteSendEncounter,
		WriteSendObservation,
		WriteSendPatient,
		WriteSendTermsAgreement,
	},
	RoleSendAdministrator: {
		ReadSendClinicianAll,
		ReadSendDevice,
		ReadSendEncounter,
		ReadSendLocation,
		ReadSendTrustomer,
		WriteSendClinicianAll,
		WriteSendDevice,
		WriteSendLocation,
		WriteSendTermsAgreement,
	},
	RoleSendEntryDevice: {
		ReadSendDevice,
		ReadSendEntryIdentifier,
		ReadSendLocation,
	},
	RoleDeaCollector: {
		ReadAuditEvent,
		ReadDbmClinicianAll,
		ReadGdmBgReadingAll,
		ReadGdmBgReading,
		ReadGdmClinicianAll,
		ReadGdmClinician,
		ReadGdmLocationAll,
		ReadGdmLocation,
		ReadGdmMedication,
		ReadGdmPatientAll,
		ReadGdmPatient,
		ReadGdmSms,
		ReadSendClinicianAll,
		ReadSendClinician,
		ReadSendDevice,
		ReadSendEncounter,
		ReadSendLocation,
		ReadSendObservation,
		ReadSendPatient,
		ReadSendTrustomer,
	},
}
