package domain

import "strings"

// Domain is one of the fixed applicant-information categories used to group
// source documents and dispatch extraction prompts.
type Domain string

const (
	DomainPersonal      Domain = "personal"
	DomainTravelHistory Domain = "travel_history"
	DomainEmployment    Domain = "employment"
	DomainFinancial     Domain = "financial"
	DomainPurpose       Domain = "purpose"
	DomainUnknown       Domain = "unknown"
)

// Domains lists the recognized domains in their canonical order. Unknown is
// not a member: files classified as unknown are dropped during grouping.
func Domains() []Domain {
	return []Domain{
		DomainPersonal,
		DomainTravelHistory,
		DomainEmployment,
		DomainFinancial,
		DomainPurpose,
	}
}

// filenamePrefixes maps dossier filename prefixes to domains. Applicants name
// their files with these Vietnamese section headers; matching is ordered and
// case-insensitive.
var filenamePrefixes = []struct {
	prefix string
	domain Domain
}{
	{"HO SO CA NHAN", DomainPersonal},
	{"LICH SU DU LICH", DomainTravelHistory},
	{"CONG VIEC", DomainEmployment},
	{"TAI CHINH", DomainFinancial},
	{"MUC DICH CHUYEN DI", DomainPurpose},
}

// DetectDomain classifies a filename by prefix. It is total and
// deterministic: unrecognized names map to DomainUnknown.
func DetectDomain(filename string) Domain {
	name := strings.ToUpper(filename)
	for _, entry := range filenamePrefixes {
		if strings.HasPrefix(name, entry.prefix) {
			return entry.domain
		}
	}
	return DomainUnknown
}

// Recognized reports whether d is one of the five extraction domains.
func (d Domain) Recognized() bool {
	switch d {
	case DomainPersonal, DomainTravelHistory, DomainEmployment, DomainFinancial, DomainPurpose:
		return true
	default:
		return false
	}
}
