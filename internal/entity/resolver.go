package entity

import (
	"strings"

	"github.com/campaign-data/donagg/internal/model"
	"github.com/campaign-data/donagg/internal/names"
)

// DefaultThreshold is the score a donor name must exceed against the
// resolved organization for a record to be accepted.
const DefaultThreshold = 90

// Resolution is the outcome of resolving one record's names.
type Resolution struct {
	Organization         string // authoritative name, or the raw value if unresolved
	OrganizationResolved bool
	ViaParent            bool // resolved through the parent organization
	Recipient            string
	RecipientResolved    bool
}

// Resolver maps raw names to authoritative ones and gates the result.
// It holds no mutable state; one Resolver may serve any number of goroutines.
type Resolver struct {
	entities  Map
	threshold int
}

// NewResolver creates a Resolver over an immutable entity map.
// A threshold outside 0..100 falls back to DefaultThreshold.
func NewResolver(entities Map, threshold int) *Resolver {
	if threshold < 0 || threshold > names.MaxScore {
		threshold = DefaultThreshold
	}
	return &Resolver{entities: entities, threshold: threshold}
}

// Threshold returns the acceptance threshold in use.
func (r *Resolver) Threshold() int { return r.threshold }

// Resolve resolves organization, parent and recipient names.
//
// A subsidiary rolls up to its parent: when the organization differs from
// the parent (case-insensitively) and the parent is known, the parent's
// authoritative name wins. Otherwise the organization is looked up directly.
// The recipient is always looked up on its own.
func (r *Resolver) Resolve(organization, parent, recipient string) Resolution {
	res := Resolution{Organization: organization}

	if !strings.EqualFold(organization, parent) {
		if name, ok := r.entities.Lookup(parent); ok {
			res.Organization = name
			res.OrganizationResolved = true
			res.ViaParent = true
		}
	}
	if !res.OrganizationResolved {
		if name, ok := r.entities.Lookup(organization); ok {
			res.Organization = name
			res.OrganizationResolved = true
		}
	}

	if name, ok := r.entities.Lookup(recipient); ok {
		res.Recipient = name
		res.RecipientResolved = true
	}
	return res
}

// Accept resolves a record and decides whether it may be aggregated.
// The returned reason is SkipNone when accepted. The donor name is scored
// against the resolved organization name.
func (r *Resolver) Accept(rec model.DonationRecord) (Resolution, int, model.SkipReason) {
	res := r.Resolve(rec.Organization, rec.ParentOrganization, rec.Recipient)
	if !res.OrganizationResolved {
		return res, 0, model.SkipUnresolvedOrganization
	}
	if !res.RecipientResolved {
		return res, 0, model.SkipUnresolvedRecipient
	}
	score := names.Score(rec.DonorName, res.Organization)
	if score <= r.threshold {
		return res, score, model.SkipLowConfidence
	}
	return res, score, model.SkipNone
}
