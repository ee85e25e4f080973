package client

import "strings"

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	StatusEnabled    AccountStatus = "ENABLED"
	StatusUnverified AccountStatus = "UNVERIFIED"
	StatusDisabled   AccountStatus = "DISABLED"
	StatusUnknown    AccountStatus = "UNKNOWN"
)

// ParseAccountStatus normalizes a native status string.
func ParseAccountStatus(s string) AccountStatus {
	switch AccountStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusEnabled:
		return StatusEnabled
	case StatusUnverified:
		return StatusUnverified
	case StatusDisabled:
		return StatusDisabled
	default:
		return StatusUnknown
	}
}

// oktaStatuses maps Okta user lifecycle states onto account statuses.
var oktaStatuses = map[string]AccountStatus{
	"ACTIVE":           StatusEnabled,
	"STAGED":           StatusUnverified,
	"PROVISIONED":      StatusUnverified,
	"RECOVERY":         StatusUnverified,
	"PASSWORD_EXPIRED": StatusUnverified,
	"SUSPENDED":        StatusDisabled,
	"DEPROVISIONED":    StatusDisabled,
	"LOCKED_OUT":       StatusDisabled,
}

// MapOktaStatus translates an Okta user status. Unrecognized values map to StatusUnknown.
func MapOktaStatus(s string) AccountStatus {
	if st, ok := oktaStatuses[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return st
	}
	return StatusUnknown
}
