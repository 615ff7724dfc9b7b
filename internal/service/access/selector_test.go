package access

import (
	"EduPortal/entity"
	"EduPortal/internal/config"
	"EduPortal/internal/memstore"
	"EduPortal/internal/service/membership"
	"EduPortal/internal/service/scope"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func newSelector(store *memstore.Store) *Selector {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := membership.NewResolver(config.BackendLocal, store, log)
	return NewSelector(resolver, scope.NewEvaluator(store), store, log)
}

// fixture: a franchisor user limited to schools A and B, who also holds a
// school membership on C, which is suspended.
func fixture() *memstore.Store {
	store := memstore.New()
	f := entity.NewFranchisor("f-1", "Acme")
	f.Status = entity.StatusActive
	store.SaveFranchisor(*f)
	store.SaveSchool(*entity.NewSchool("A", "f-1", "Alpha"))
	store.SaveSchool(*entity.NewSchool("B", "f-1", "Beta"))
	c := entity.NewSchool("C", "f-1", "Gamma")
	c.Status = entity.StatusSuspended
	store.SaveSchool(*c)

	list := entity.SchoolList("A", "B")
	store.AddMembership(entity.MembershipRecord{ID: "m1", UserID: "u", Portal: entity.PortalFranchisor, FranchisorID: "f-1", Role: "Staff", Scope: &list})
	store.AddMembership(entity.MembershipRecord{ID: "m2", UserID: "u", Portal: entity.PortalSchool, SchoolID: "C", Role: "Coach"})
	return store
}

func TestSelect_EndToEnd(t *testing.T) {
	ctx := context.Background()
	s := newSelector(fixture())
	user := &entity.Identity{ID: "u"}

	_, err := s.Select(ctx, user, Selection{Portal: entity.PortalSchool})
	if !errors.Is(err, entity.ErrEntitySuspended) {
		t.Errorf("suspended school without context err = %v, want ErrEntitySuspended", err)
	}
	_, err = s.Select(ctx, user, Selection{Portal: entity.PortalSchool, Context: "C"})
	if !errors.Is(err, entity.ErrEntitySuspended) {
		t.Errorf("suspended school selection err = %v, want ErrEntitySuspended", err)
	}

	target, err := s.Select(ctx, user, Selection{Portal: entity.PortalFranchisor, Context: "A"})
	if err != nil {
		t.Fatalf("franchisor selection: %v", err)
	}
	if target.Path != "/franchisor/dashboard" || target.FranchisorID != "f-1" || target.SchoolID != "A" {
		t.Errorf("target = %+v", target)
	}
}

func TestSelect_Denials(t *testing.T) {
	ctx := context.Background()
	s := newSelector(fixture())
	user := &entity.Identity{ID: "u"}

	tests := []struct {
		name string
		sel  Selection
		want error
	}{
		{"portal without membership", Selection{Portal: entity.PortalAdmin}, entity.ErrAccessDenied},
		{"school outside list", Selection{Portal: entity.PortalFranchisor, Context: "C"}, entity.ErrAccessDenied},
		{"unknown franchisor", Selection{Portal: entity.PortalFranchisor, Context: "f-2"}, entity.ErrAccessDenied},
		{"school without membership", Selection{Portal: entity.PortalSchool, Context: "A"}, entity.ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Select(ctx, user, tt.sel); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := s.Select(ctx, &entity.Identity{ID: "stranger"}, Selection{Portal: entity.PortalSchool}); !errors.Is(err, entity.ErrNoPortalAccess) {
		t.Errorf("no memberships err = %v, want ErrNoPortalAccess", err)
	}
}

func TestSelect_ReturnTo(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.SaveSchool(*entity.NewSchool("s-1", "f-1", "One"))
	store.AddMembership(entity.MembershipRecord{ID: "m", UserID: "u", Portal: entity.PortalSchool, SchoolID: "s-1", Role: "Owner"})
	s := newSelector(store)
	user := &entity.Identity{ID: "u"}

	tests := []struct {
		returnTo string
		want     string
	}{
		{"/school/dashboard?x=1", "/school/dashboard?x=1"},
		{"https://evil.test/x", "/school/dashboard"},
		{"//evil.test", "/school/dashboard"},
		{"/other/path", "/school/dashboard"},
		{"", "/school/dashboard"},
	}
	for _, tt := range tests {
		target, err := s.Select(ctx, user, Selection{Portal: entity.PortalSchool, ReturnTo: tt.returnTo})
		if err != nil {
			t.Fatalf("returnTo %q: %v", tt.returnTo, err)
		}
		if target.Path != tt.want {
			t.Errorf("returnTo %q -> %q, want %q", tt.returnTo, target.Path, tt.want)
		}
	}
}

func TestSelect_SuspendedFranchisor(t *testing.T) {
	store := fixture()
	f, _ := store.GetFranchisor(context.Background(), "f-1")
	f.Status = entity.StatusSuspended
	store.SaveFranchisor(*f)

	_, err := newSelector(store).Select(context.Background(), &entity.Identity{ID: "u"}, Selection{Portal: entity.PortalFranchisor})
	if !errors.Is(err, entity.ErrEntitySuspended) {
		t.Errorf("err = %v, want ErrEntitySuspended", err)
	}
}

func TestSelect_AmbiguousSchoolNeedsContext(t *testing.T) {
	store := memstore.New()
	store.SaveSchool(*entity.NewSchool("s-1", "f", "One"))
	store.SaveSchool(*entity.NewSchool("s-2", "f", "Two"))
	store.AddMembership(entity.MembershipRecord{ID: "1", UserID: "u", Portal: entity.PortalSchool, SchoolID: "s-1", Role: "Owner"})
	store.AddMembership(entity.MembershipRecord{ID: "2", UserID: "u", Portal: entity.PortalSchool, SchoolID: "s-2", Role: "Staff"})
	s := newSelector(store)

	if _, err := s.Select(context.Background(), &entity.Identity{ID: "u"}, Selection{Portal: entity.PortalSchool}); !errors.Is(err, entity.ErrAccessDenied) {
		t.Errorf("err = %v, want ErrAccessDenied", err)
	}
	target, err := s.Select(context.Background(), &entity.Identity{ID: "u"}, Selection{Portal: entity.PortalSchool, Context: "s-2"})
	if err != nil || target.SchoolID != "s-2" {
		t.Errorf("target = %+v, err = %v", target, err)
	}
}

func TestOptions(t *testing.T) {
	opts, err := newSelector(fixture()).Options(context.Background(), &entity.Identity{ID: "u"})
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Portals) != 2 {
		t.Fatalf("portals = %+v", opts.Portals)
	}
	fr := opts.Portals[0]
	if fr.Portal != entity.PortalFranchisor || len(fr.Contexts) != 1 || len(fr.Contexts[0].Schools) != 2 {
		t.Errorf("franchisor option = %+v", fr)
	}
	sc := opts.Portals[1]
	if sc.Portal != entity.PortalSchool || len(sc.Contexts) != 1 || sc.Contexts[0].Selectable {
		t.Errorf("school option = %+v, want one unselectable context", sc)
	}
	if opts.DefaultRedirect == nil || opts.DefaultRedirect.Portal != entity.PortalFranchisor {
		t.Errorf("default redirect = %+v", opts.DefaultRedirect)
	}
}
