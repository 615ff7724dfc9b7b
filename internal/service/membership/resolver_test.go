package membership

import (
	"EduPortal/entity"
	"EduPortal/internal/config"
	"EduPortal/internal/memstore"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type failingRepo struct {
	*memstore.Store
	failOn entity.Portal
}

func (f failingRepo) SchoolMemberships(ctx context.Context, userID string) ([]entity.MembershipRecord, error) {
	if f.failOn == entity.PortalSchool {
		return nil, errors.New("connection reset")
	}
	return f.Store.SchoolMemberships(ctx, userID)
}

func TestResolve_PrecedenceAndDefault(t *testing.T) {
	store := memstore.New()
	all := entity.AllSchools()
	store.AddMembership(entity.MembershipRecord{ID: "m1", UserID: "u", Portal: entity.PortalSchool, SchoolID: "s-9", Role: "Coach"})
	store.AddMembership(entity.MembershipRecord{ID: "m2", UserID: "u", Portal: entity.PortalFranchisor, FranchisorID: "f-1", Role: "Owner", Scope: &all})
	store.AddMembership(entity.MembershipRecord{ID: "m3", UserID: "u", Portal: entity.PortalAdmin})
	store.AddMembership(entity.MembershipRecord{ID: "m4", UserID: "other", Portal: entity.PortalAdmin})

	r := NewResolver(config.BackendLocal, store, discard())
	res, err := r.Resolve(context.Background(), &entity.Identity{ID: "u"})
	if err != nil {
		t.Fatal(err)
	}

	want := []entity.Portal{entity.PortalAdmin, entity.PortalFranchisor, entity.PortalSchool}
	if len(res.Memberships) != len(want) {
		t.Fatalf("got %d memberships, want %d", len(res.Memberships), len(want))
	}
	for i, p := range want {
		if res.Memberships[i].Portal() != p {
			t.Errorf("membership %d portal = %s, want %s", i, res.Memberships[i].Portal(), p)
		}
	}
	if res.DefaultRedirect == nil || res.DefaultRedirect.Portal != entity.PortalAdmin || res.DefaultRedirect.Path != "/admin/dashboard" {
		t.Errorf("default redirect = %+v", res.DefaultRedirect)
	}
}

func TestResolve_DefaultFollowsFirstPresentPortal(t *testing.T) {
	store := memstore.New()
	store.AddMembership(entity.MembershipRecord{ID: "m1", UserID: "u", Portal: entity.PortalSchool, SchoolID: "s-1", Role: "Staff"})

	res, err := NewResolver(config.BackendLocal, store, discard()).Resolve(context.Background(), &entity.Identity{ID: "u"})
	if err != nil {
		t.Fatal(err)
	}
	if res.DefaultRedirect == nil || res.DefaultRedirect.SchoolID != "s-1" || res.DefaultRedirect.Path != "/school/dashboard" {
		t.Errorf("default redirect = %+v", res.DefaultRedirect)
	}
}

func TestResolve_NoMemberships(t *testing.T) {
	res, err := NewResolver(config.BackendLocal, memstore.New(), discard()).Resolve(context.Background(), &entity.Identity{ID: "nobody"})
	if err != nil {
		t.Fatal(err)
	}
	if res.HasAccess() || res.DefaultRedirect != nil {
		t.Errorf("resolution = %+v, want empty", res)
	}
}

func TestResolve_LoadFailureFailsClosed(t *testing.T) {
	store := memstore.New()
	store.AddMembership(entity.MembershipRecord{ID: "m1", UserID: "u", Portal: entity.PortalAdmin})

	r := NewResolver(config.BackendHosted, failingRepo{Store: store, failOn: entity.PortalSchool}, discard())
	res, err := r.Resolve(context.Background(), &entity.Identity{ID: "u"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if res.HasAccess() {
		t.Errorf("partial grants returned: %+v", res.Memberships)
	}
}

func TestResolve_DropsMalformedRecords(t *testing.T) {
	store := memstore.New()
	empty := entity.SchoolList()
	all := entity.AllSchools()
	store.AddMembership(entity.MembershipRecord{ID: "bad-scope", UserID: "u", Portal: entity.PortalFranchisor, FranchisorID: "f-1", Role: "Owner", Scope: &empty})
	store.AddMembership(entity.MembershipRecord{ID: "bad-role", UserID: "u", Portal: entity.PortalFranchisor, FranchisorID: "f-2", Role: "Janitor", Scope: &all})
	store.AddMembership(entity.MembershipRecord{ID: "no-school", UserID: "u", Portal: entity.PortalSchool, Role: "Owner"})
	store.AddMembership(entity.MembershipRecord{ID: "ok", UserID: "u", Portal: entity.PortalSchool, SchoolID: "s-1", Role: "Owner"})

	res, err := NewResolver(config.BackendLocal, store, discard()).Resolve(context.Background(), &entity.Identity{ID: "u"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Memberships) != 1 || res.Memberships[0].ContextID() != "s-1" {
		t.Errorf("memberships = %+v, want only s-1", res.Memberships)
	}
}

func TestResolve_DeduplicatesAdmin(t *testing.T) {
	store := memstore.New()
	store.AddMembership(entity.MembershipRecord{ID: "a1", UserID: "u", Portal: entity.PortalAdmin})
	store.AddMembership(entity.MembershipRecord{ID: "a2", UserID: "u", Portal: entity.PortalAdmin})

	res, _ := NewResolver(config.BackendLocal, store, discard()).Resolve(context.Background(), &entity.Identity{ID: "u"})
	if got := len(res.ByPortal(entity.PortalAdmin)); got != 1 {
		t.Errorf("admin memberships = %d, want 1", got)
	}
}
