package permission

// Scopes granted to system clients only. No role carries them.
const (
	ReadGdmClinicianAuthAll = "read:gdm_clinician_auth_all"
	WriteClinicianMigration = "write:clinician_migration"
)
