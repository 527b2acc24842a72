package importer

import (
	"strings"

	"github.com/growship/backend/internal/domain"

	"github.com/google/uuid"
)

// Populate fills the nullable fields of a record from the fallback chain:
// trimmed row value, then the distributor's contact field, then the
// distributor's display name, then the actor's contact name, then the
// actor's organization name. The first non-empty value wins and nothing is
// ever dropped; a field no source can fill stays empty for the validator to
// flag.
//
// The distributor id itself is only filled when the row has none: a row that
// names its own distributor is never overridden by scope.
func Populate(rec domain.ImportRecord, scope domain.TenantScope, dist *domain.Distributor, actor domain.ActorProfile) domain.ImportRecord {
	if rec.DistributorID == uuid.Nil && scope.DistributorID != uuid.Nil {
		rec = rec.WithDistributor(scope.DistributorID)
	}

	var distContactName, distContactEmail, distName string
	if dist != nil {
		distContactName = dist.ContactName
		distContactEmail = dist.ContactEmail
		distName = dist.Name
	}

	rec.ContactName = firstNonEmpty(
		rec.ContactName,
		distContactName,
		distName,
		actor.ContactName,
		actor.OrganizationName,
	)
	rec.ContactEmail = firstNonEmpty(
		rec.ContactEmail,
		distContactEmail,
		actor.ContactEmail,
	)

	return rec
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
