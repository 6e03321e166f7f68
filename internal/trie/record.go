package trie

import "time"

// TLDType classifies a top-level domain.
type TLDType string

const (
	TypeGeneric           TLDType = "generic"
	TypeCountryCode       TLDType = "country-code"
	TypeSponsored         TLDType = "sponsored"
	TypeHostSuffix        TLDType = "host-suffix"
	TypeInfrastructure    TLDType = "infrastructure"
	TypeGenericRestricted TLDType = "generic-restricted"
	TypeTest              TLDType = "test"
)

// ParseTLDType maps the IANA wording to a TLDType.
func ParseTLDType(s string) (TLDType, bool) {
	switch t := TLDType(s); t {
	case TypeGeneric, TypeCountryCode, TypeSponsored, TypeHostSuffix,
		TypeInfrastructure, TypeGenericRestricted, TypeTest:
		return t, true
	}
	return "", false
}

// Metadata is attached to at most one trie node. It is either a *TLDRecord
// or a *SuffixRecord.
type Metadata interface {
	SuffixName() string
	metadata()
}

// TLDRecord describes one top-level domain.
type TLDRecord struct {
	Suffix        string
	Punycode      string
	DelegationRef string
	Type          TLDType
	Registry      string
	Created       *time.Time
}

func (r *TLDRecord) SuffixName() string { return r.Suffix }
func (*TLDRecord) metadata()            {}

// Enrich folds an operator name and creation date from a secondary feed into
// the record. Only the registry builder calls it, before publication.
func (r *TLDRecord) Enrich(operator string, created *time.Time) {
	switch {
	case operator == "":
	case r.Registry == "":
		r.Registry = operator
	case r.Registry != operator:
		r.Registry = r.Registry + "; " + operator
	}
	if created != nil {
		c := *created
		r.Created = &c
	}
}

// SuffixRecord describes a public or private suffix below a TLD.
type SuffixRecord struct {
	Suffix string
	Public bool
	tld    *TLDRecord
}

func (r *SuffixRecord) SuffixName() string { return r.Suffix }
func (*SuffixRecord) metadata()            {}

// TLD returns the record of the top-level domain the suffix sits under.
func (r *SuffixRecord) TLD() *TLDRecord { return r.tld }
