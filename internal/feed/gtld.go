package feed

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/domainsuffixes/internal/registry"
)

// gtldRegistry is the ICANN gTLD JSON feed. Only the fields used for
// enrichment are decoded.
type gtldRegistry struct {
	Version int         `json:"version"`
	Updated string      `json:"updated"`
	GTLDs   []*gtldJSON `json:"gTLDs"`
}

type gtldJSON struct {
	GTLD             string `json:"gTLD"`
	ULabel           string `json:"uLabel"`
	RegistryOperator string `json:"registryOperator"`
	DelegationDate   string `json:"delegationDate"`
	RemovalDate      string `json:"removalDate"`
}

// ParseGTLDRegistry decodes the ICANN gTLD feed into enrichment rows. Only
// delegated TLDs that have not been removed are returned, keyed by their
// Unicode label.
func ParseGTLDRegistry(r io.Reader) ([]registry.Enrichment, error) {
	const source = "gtld registry"

	var doc gtldRegistry
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, NewParseErrorWithCause(source, 0, "invalid json", err)
	}
	if doc.GTLDs == nil {
		return nil, NewParseError(source, 0, "missing gTLDs array")
	}

	var out []registry.Enrichment
	for i, g := range doc.GTLDs {
		if g == nil || g.GTLD == "" {
			return nil, NewParseError(source, i+1, "entry without gTLD")
		}
		if g.DelegationDate == "" || g.RemovalDate != "" {
			continue
		}

		created, err := time.Parse(dateLayout, g.DelegationDate)
		if err != nil {
			e := NewFieldParseError(source, i+1, "delegationDate", g.DelegationDate, "invalid date")
			e.Cause = err
			return nil, e
		}

		tld := strings.TrimSpace(g.ULabel)
		if tld == "" {
			tld = g.GTLD
		}
		out = append(out, registry.Enrichment{
			TLD:              tld,
			RegistryOperator: strings.TrimSpace(g.RegistryOperator),
			Created:          &created,
		})
	}
	return out, nil
}
