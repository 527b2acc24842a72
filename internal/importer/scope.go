package importer

import (
	"context"
	"log"

	"github.com/growship/backend/internal/domain"
	"github.com/growship/backend/internal/repository"

	"github.com/google/uuid"
)

// ScopeResolver derives the tenant scope every downstream write is bounded
// by. It is the single authorization checkpoint of the pipeline.
type ScopeResolver struct {
	distributorRepo repository.DistributorRepository
}

// NewScopeResolver creates a resolver over the distributor lookup.
func NewScopeResolver(distributorRepo repository.DistributorRepository) *ScopeResolver {
	return &ScopeResolver{distributorRepo: distributorRepo}
}

// ScopeRequest is the client-supplied target scope paired with the
// server-resolved actor profile.
type ScopeRequest struct {
	OrganizationID uuid.UUID
	DistributorID  uuid.UUID
}

// Resolve applies the access rules in order:
//
//  1. Admins may target any organization and distributor the client names.
//  2. Distributor-scoped actors always use their own assignment; a
//     conflicting client value is a ScopeMismatch, never silently replaced.
//  3. Everyone else may only target their own organization.
//  4. A distributor whose parent organization disagrees with the resolved
//     organization is a data inconsistency: logged, tolerated only when the
//     actor is assigned to that exact distributor, otherwise rejected.
func (r *ScopeResolver) Resolve(ctx context.Context, actor domain.ActorProfile, req ScopeRequest) (domain.TenantScope, error) {
	scope := domain.TenantScope{
		OrganizationID: req.OrganizationID,
		DistributorID:  req.DistributorID,
	}

	switch {
	case actor.Role == domain.RoleAdmin:
		scope.Elevated = true

	case actor.Role == domain.RoleDistributor:
		if req.DistributorID != uuid.Nil && req.DistributorID != actor.DistributorID {
			log.Printf("[SCOPE] actor %s (distributor %s) requested foreign distributor %s",
				actor.UserID, actor.DistributorID, req.DistributorID)
			return domain.TenantScope{}, domain.NewError(domain.ErrScopeMismatch,
				"distributor-scoped actors may only import for their own distributor")
		}
		scope.DistributorID = actor.DistributorID
		scope.OrganizationID = actor.OrganizationID

	default:
		if req.OrganizationID != uuid.Nil && req.OrganizationID != actor.OrganizationID {
			log.Printf("[SCOPE] actor %s (org %s) requested foreign organization %s",
				actor.UserID, actor.OrganizationID, req.OrganizationID)
			return domain.TenantScope{}, domain.NewError(domain.ErrAccessDenied,
				"actors may only import for their own organization")
		}
		scope.OrganizationID = actor.OrganizationID
	}

	if scope.OrganizationID == uuid.Nil {
		return domain.TenantScope{}, domain.NewError(domain.ErrAccessDenied, "organization id is required")
	}

	if scope.DistributorID != uuid.Nil {
		dist, err := r.distributorRepo.GetByID(ctx, scope.DistributorID)
		if err != nil {
			return domain.TenantScope{}, domain.WrapError(domain.ErrAccessDenied, err,
				"distributor %s could not be resolved", scope.DistributorID)
		}
		if dist.OrganizationID != scope.OrganizationID {
			log.Printf("[SCOPE] distributor %s belongs to org %s, not requested org %s (actor %s)",
				dist.ID, dist.OrganizationID, scope.OrganizationID, actor.UserID)
			if actor.DistributorID != scope.DistributorID {
				return domain.TenantScope{}, domain.NewError(domain.ErrCrossTenantReference,
					"distributor %s does not belong to organization %s", scope.DistributorID, scope.OrganizationID)
			}
			// The actor's own assignment is sufficient authorization; the
			// inconsistency stays logged for data cleanup.
		}
	}

	return scope, nil
}
