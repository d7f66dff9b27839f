package domain

type PhaseKind string

const (
	PhaseStandard       PhaseKind = "standard"
	PhaseOngoingSupport PhaseKind = "ongoing_support"
)

// ValidPhaseKinds is the canonical set of accepted phase kind strings.
var ValidPhaseKinds = map[string]bool{
	string(PhaseStandard):       true,
	string(PhaseOngoingSupport): true,
}

type RACIRole string

const (
	RoleResponsible RACIRole = "R"
	RoleAccountable RACIRole = "A"
	RoleConsulted   RACIRole = "C"
	RoleInformed    RACIRole = "I"
)

// ValidRACIRoles is the canonical set of accepted RACI role strings.
var ValidRACIRoles = map[string]bool{
	"R": true, "A": true, "C": true, "I": true,
}

type ResourceCategory string

const (
	CategoryInternal    ResourceCategory = "internal"
	CategoryContractor  ResourceCategory = "contractor"
	CategoryClient      ResourceCategory = "client"
	CategoryThirdParty  ResourceCategory = "third_party"
	CategoryUnspecified ResourceCategory = ""
)
