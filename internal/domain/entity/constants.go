package entity

// Mark status constants, in lifecycle order
const (
	MarkStatusOrdered       = "ordered"
	MarkStatusInProcess     = "in_process"
	MarkStatusApplied       = "applied"
	MarkStatusInCirculation = "in_circulation"
	MarkStatusWithdrawn     = "withdrawn"
)

// Product registry constants
const (
	RegistryNKT = "nkt" // national catalogue
	RegistryGS1 = "gs1"
)

// IsValidMarkStatus reports whether s is a known mark status
func IsValidMarkStatus(s string) bool {
	switch s {
	case MarkStatusOrdered, MarkStatusInProcess, MarkStatusApplied, MarkStatusInCirculation, MarkStatusWithdrawn:
		return true
	default:
		return false
	}
}
