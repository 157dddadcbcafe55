package bq40z50

import "bqmba/internal/mba"

// SecurityMode is the SEC1:SEC0 field of OperationStatus.
type SecurityMode uint8

const (
	SecurityReserved SecurityMode = iota
	SecurityFullAccess
	SecurityUnsealed
	SecuritySealed
)

func (m SecurityMode) String() string {
	switch m {
	case SecurityFullAccess:
		return "Full Access"
	case SecurityUnsealed:
		return "Unsealed"
	case SecuritySealed:
		return "Sealed"
	}
	return "Reserved"
}

// SecurityModeOf extracts the security mode from decoded OperationStatus flags.
func SecurityModeOf(states []mba.BitState) SecurityMode {
	var m SecurityMode
	for _, s := range states {
		if !s.Set {
			continue
		}
		switch s.Index {
		case 8:
			m |= 1
		case 9:
			m |= 2
		}
	}
	return m
}

func securitySummary(states []mba.BitState) string {
	return "Security mode: " + SecurityModeOf(states).String()
}
