package importer

import (
	"testing"

	"github.com/growship/backend/internal/domain"

	"github.com/google/uuid"
)

func TestPopulateCounterpartyBeatsActor(t *testing.T) {
	dist := &domain.Distributor{
		ID:           uuid.New(),
		Name:         "North Supply",
		ContactName:  "Dana North",
		ContactEmail: "c@x.com",
	}
	actor := domain.ActorProfile{
		ContactName:      "Actor Person",
		ContactEmail:     "a@x.com",
		OrganizationName: "Acme Brand",
	}

	populated := Populate(domain.ImportRecord{RowNumber: 2}, domain.TenantScope{}, dist, actor)

	if populated.ContactEmail != "c@x.com" {
		t.Fatalf("expected counterparty email to win over actor email, got %q", populated.ContactEmail)
	}
	if populated.ContactName != "Dana North" {
		t.Fatalf("expected counterparty contact name, got %q", populated.ContactName)
	}
}

func TestPopulateRowValueAlwaysWins(t *testing.T) {
	dist := &domain.Distributor{ContactName: "Dana North", ContactEmail: "c@x.com"}
	rec := domain.ImportRecord{
		RowNumber:    2,
		ContactName:  "Row Person",
		ContactEmail: "row@x.com",
	}

	populated := Populate(rec, domain.TenantScope{}, dist, domain.ActorProfile{})

	if populated.ContactName != "Row Person" || populated.ContactEmail != "row@x.com" {
		t.Fatalf("row values must never be overwritten, got %+v", populated)
	}
}

func TestPopulateFallsThroughToActor(t *testing.T) {
	actor := domain.ActorProfile{
		ContactName:      "Actor Person",
		ContactEmail:     "a@x.com",
		OrganizationName: "Acme Brand",
	}

	populated := Populate(domain.ImportRecord{RowNumber: 2}, domain.TenantScope{}, nil, actor)

	if populated.ContactName != "Actor Person" {
		t.Fatalf("expected actor contact name fallback, got %q", populated.ContactName)
	}
	if populated.ContactEmail != "a@x.com" {
		t.Fatalf("expected actor email fallback, got %q", populated.ContactEmail)
	}
}

func TestPopulateUsesDistributorNameBeforeActor(t *testing.T) {
	dist := &domain.Distributor{Name: "North Supply"}
	actor := domain.ActorProfile{ContactName: "Actor Person"}

	populated := Populate(domain.ImportRecord{RowNumber: 2}, domain.TenantScope{}, dist, actor)

	if populated.ContactName != "North Supply" {
		t.Fatalf("expected distributor display name before actor, got %q", populated.ContactName)
	}
}

func TestPopulateFillsDistributorIDOnlyWhenAbsent(t *testing.T) {
	scopeDist := uuid.New()
	rowDist := uuid.New()
	scope := domain.TenantScope{DistributorID: scopeDist}

	filled := Populate(domain.ImportRecord{RowNumber: 2}, scope, nil, domain.ActorProfile{})
	if filled.DistributorID != scopeDist {
		t.Fatalf("expected scope distributor to be filled in, got %s", filled.DistributorID)
	}

	kept := Populate(domain.ImportRecord{RowNumber: 3, DistributorID: rowDist}, scope, nil, domain.ActorProfile{})
	if kept.DistributorID != rowDist {
		t.Fatalf("a row's own distributor must never be overwritten, got %s", kept.DistributorID)
	}
}

func TestPopulateLeavesUnfillableFieldsEmpty(t *testing.T) {
	populated := Populate(domain.ImportRecord{RowNumber: 2}, domain.TenantScope{}, nil, domain.ActorProfile{})
	if populated.ContactName != "" || populated.ContactEmail != "" {
		t.Fatalf("expected empty fields when no source can fill them, got %+v", populated)
	}
}
