package interfaces

import "github.com/noahhai/DSInternals/pkg/dsid"

// Variant distinguishes the two database flavors this core supports. They
// differ only in where the PEK-holder object lives and whether the Boot
// Key is supplied externally (ADDS) or composed from in-database fragments
// (ADLDS).
type Variant int

const (
	VariantADDS Variant = iota
	VariantADLDS
)

func (v Variant) String() string {
	if v == VariantADLDS {
		return "ADLDS"
	}
	return "ADDS"
}

// State tracks where in its lifecycle the database is. A Boot-state
// database has no secrets yet; get_secret_decryptor returns none for it
// regardless of variant.
type State int

const (
	StateBoot State = iota
	StateIntermediate
	StateNormal
)

func (s State) String() string {
	switch s {
	case StateBoot:
		return "Boot"
	case StateIntermediate:
		return "Intermediate"
	case StateNormal:
		return "Normal"
	default:
		return "unknown"
	}
}

// DCHeader is the process-singleton-within-a-Context domain-controller
// header record described in spec.md §3.
type DCHeader struct {
	Epoch                int32
	HighestCommittedUSN  int64
	Variant              Variant
	State                State
	DomainNCDNT          *dsid.DNT
	ConfigurationNCDNT   dsid.DNT
	SchemaNCDNT          dsid.DNT
}
