package importer

import (
	"context"
	"testing"

	"github.com/growship/backend/internal/domain"

	"github.com/google/uuid"
)

func TestResolveAdminTargetsAnyTenant(t *testing.T) {
	targetOrg := uuid.New()
	targetDist := uuid.New()
	distributors := &stubDistributorRepo{byID: map[uuid.UUID]domain.Distributor{
		targetDist: {ID: targetDist, OrganizationID: targetOrg},
	}}
	resolver := NewScopeResolver(distributors)

	actor := domain.ActorProfile{
		UserID:         uuid.New(),
		Role:           domain.RoleAdmin,
		OrganizationID: uuid.New(),
	}

	scope, err := resolver.Resolve(context.Background(), actor, ScopeRequest{
		OrganizationID: targetOrg,
		DistributorID:  targetDist,
	})
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if !scope.Elevated {
		t.Fatalf("expected elevated scope for admin")
	}
	if scope.OrganizationID != targetOrg || scope.DistributorID != targetDist {
		t.Fatalf("expected client-supplied scope to stand, got %+v", scope)
	}
}

func TestResolveDistributorActorForcedToOwnAssignment(t *testing.T) {
	orgID := uuid.New()
	ownDist := uuid.New()
	distributors := &stubDistributorRepo{byID: map[uuid.UUID]domain.Distributor{
		ownDist: {ID: ownDist, OrganizationID: orgID},
	}}
	resolver := NewScopeResolver(distributors)

	actor := domain.ActorProfile{
		UserID:         uuid.New(),
		Role:           domain.RoleDistributor,
		OrganizationID: orgID,
		DistributorID:  ownDist,
	}

	// No distributor supplied: the assignment fills it in.
	scope, err := resolver.Resolve(context.Background(), actor, ScopeRequest{OrganizationID: orgID})
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if scope.DistributorID != ownDist {
		t.Fatalf("expected own assignment, got %s", scope.DistributorID)
	}
	if scope.Elevated {
		t.Fatalf("did not expect elevated scope")
	}
}

func TestResolveDistributorActorForeignDistributorIsScopeMismatch(t *testing.T) {
	orgID := uuid.New()
	resolver := NewScopeResolver(&stubDistributorRepo{byID: map[uuid.UUID]domain.Distributor{}})

	actor := domain.ActorProfile{
		UserID:         uuid.New(),
		Role:           domain.RoleDistributor,
		OrganizationID: orgID,
		DistributorID:  uuid.New(),
	}

	_, err := resolver.Resolve(context.Background(), actor, ScopeRequest{
		OrganizationID: orgID,
		DistributorID:  uuid.New(),
	})
	if domain.KindOf(err) != domain.ErrScopeMismatch {
		t.Fatalf("expected scope mismatch, not a silent override, got %v", err)
	}
}

func TestResolveBrandActorForeignOrganizationIsAccessDenied(t *testing.T) {
	resolver := NewScopeResolver(&stubDistributorRepo{byID: map[uuid.UUID]domain.Distributor{}})

	actor := domain.ActorProfile{
		UserID:         uuid.New(),
		Role:           domain.RoleBrand,
		OrganizationID: uuid.New(),
	}

	_, err := resolver.Resolve(context.Background(), actor, ScopeRequest{OrganizationID: uuid.New()})
	if domain.KindOf(err) != domain.ErrAccessDenied {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestResolveBrandActorDefaultsToOwnOrganization(t *testing.T) {
	orgID := uuid.New()
	resolver := NewScopeResolver(&stubDistributorRepo{byID: map[uuid.UUID]domain.Distributor{}})

	actor := domain.ActorProfile{
		UserID:         uuid.New(),
		Role:           domain.RoleBrand,
		OrganizationID: orgID,
	}

	scope, err := resolver.Resolve(context.Background(), actor, ScopeRequest{})
	if err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}
	if scope.OrganizationID != orgID {
		t.Fatalf("expected own organization, got %s", scope.OrganizationID)
	}
}

func TestResolveCrossTenantDistributorRejected(t *testing.T) {
	orgID := uuid.New()
	foreignDist := uuid.New()
	distributors := &stubDistributorRepo{byID: map[uuid.UUID]domain.Distributor{
		foreignDist: {ID: foreignDist, OrganizationID: uuid.New()},
	}}
	resolver := NewScopeResolver(distributors)

	actor := domain.ActorProfile{
		UserID:         uuid.New(),
		Role:           domain.RoleBrand,
		OrganizationID: orgID,
	}

	_, err := resolver.Resolve(context.Background(), actor, ScopeRequest{
		OrganizationID: orgID,
		DistributorID:  foreignDist,
	})
	if domain.KindOf(err) != domain.ErrCrossTenantReference {
		t.Fatalf("expected cross tenant reference, got %v", err)
	}
}

func TestResolveToleratesParentMismatchForAssignedActor(t *testing.T) {
	orgID := uuid.New()
	ownDist := uuid.New()
	// The distributor's recorded parent disagrees with the actor's
	// organization. The actor is assigned to this exact distributor, so the
	// inconsistency is logged and the import proceeds.
	distributors := &stubDistributorRepo{byID: map[uuid.UUID]domain.Distributor{
		ownDist: {ID: ownDist, OrganizationID: uuid.New()},
	}}
	resolver := NewScopeResolver(distributors)

	actor := domain.ActorProfile{
		UserID:         uuid.New(),
		Role:           domain.RoleDistributor,
		OrganizationID: orgID,
		DistributorID:  ownDist,
	}

	scope, err := resolver.Resolve(context.Background(), actor, ScopeRequest{OrganizationID: orgID})
	if err != nil {
		t.Fatalf("expected assignment to authorize despite the mismatch, got %v", err)
	}
	if scope.DistributorID != ownDist || scope.OrganizationID != orgID {
		t.Fatalf("unexpected scope: %+v", scope)
	}
}
