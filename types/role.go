package types

// WorkerRole identifies a functional capability, not a running process.
// Multiple invocations may share a role; a role never changes once a
// worker is registered under it.
type WorkerRole string

const (
	RoleCoordinator       WorkerRole = "coordinator"
	RoleHRSpecialist      WorkerRole = "hr_specialist"
	RoleFinanceSpecialist WorkerRole = "finance_specialist"
	RoleITSpecialist      WorkerRole = "it_specialist"
	RoleGeneralAssistant  WorkerRole = "general_assistant"
	RoleConflictResolver  WorkerRole = "conflict_resolver"
	RoleSynthesizer       WorkerRole = "synthesizer"
)

// SpecialistRoles lists the roles that answer domain sub-queries.
// Control roles (coordinator, conflict_resolver, synthesizer) are excluded.
func SpecialistRoles() []WorkerRole {
	return []WorkerRole{
		RoleHRSpecialist,
		RoleFinanceSpecialist,
		RoleITSpecialist,
		RoleGeneralAssistant,
	}
}

// Valid reports whether the role is one of the known roles.
func (r WorkerRole) Valid() bool {
	switch r {
	case RoleCoordinator, RoleHRSpecialist, RoleFinanceSpecialist,
		RoleITSpecialist, RoleGeneralAssistant, RoleConflictResolver,
		RoleSynthesizer:
		return true
	}
	return false
}

// IsSpecialist reports whether the role answers domain sub-queries.
func (r WorkerRole) IsSpecialist() bool {
	switch r {
	case RoleHRSpecialist, RoleFinanceSpecialist, RoleITSpecialist, RoleGeneralAssistant:
		return true
	}
	return false
}

// RoleForDomain maps a query-analysis domain name to a specialist role.
// Unknown domains fall back to the general assistant.
func RoleForDomain(domain string) WorkerRole {
	switch domain {
	case "hr", "human_resources":
		return RoleHRSpecialist
	case "finance", "accounting":
		return RoleFinanceSpecialist
	case "it", "technology":
		return RoleITSpecialist
	default:
		return RoleGeneralAssistant
	}
}
