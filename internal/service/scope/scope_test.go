package scope

import (
	"EduPortal/entity"
	"EduPortal/internal/memstore"
	"context"
	"reflect"
	"testing"
)

func TestSchoolsInScope(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.SaveSchool(*entity.NewSchool("b", "f-1", "Beta"))
	store.SaveSchool(*entity.NewSchool("a", "f-1", "Alpha"))
	store.SaveSchool(*entity.NewSchool("z", "f-2", "Zeta"))
	e := NewEvaluator(store)

	tests := []struct {
		name string
		m    entity.Membership
		want []string
	}{
		{"admin sees everything", entity.AdminMembership{}, []string{"a", "b", "z"}},
		{"all schools of franchisor", entity.FranchisorMembership{FranchisorID: "f-1", Role: entity.FranchisorOwner, Scope: entity.AllSchools()}, []string{"a", "b"}},
		{"explicit list sorted and deduplicated", entity.FranchisorMembership{FranchisorID: "f-1", Role: entity.FranchisorStaff, Scope: entity.SchoolList("b", "a", "b")}, []string{"a", "b"}},
		{"school is singleton", entity.SchoolMembership{SchoolID: "z", Role: entity.SchoolCoach}, []string{"z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.SchoolsInScope(ctx, tt.m)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllSchoolsFollowsLiveState(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.SaveSchool(*entity.NewSchool("a", "f-1", "Alpha"))
	e := NewEvaluator(store)
	m := entity.FranchisorMembership{FranchisorID: "f-1", Role: entity.FranchisorOwner, Scope: entity.AllSchools()}

	if ok, _ := e.InScope(ctx, m, "new"); ok {
		t.Fatal("school in scope before it exists")
	}
	store.SaveSchool(*entity.NewSchool("new", "f-1", "Fresh"))
	if ok, _ := e.InScope(ctx, m, "new"); !ok {
		t.Error("school added later is not in ALL_SCHOOLS scope")
	}
}

func TestInScope_SchoolList(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.SaveSchool(*entity.NewSchool("A", "f-1", "Alpha"))
	store.SaveSchool(*entity.NewSchool("B", "f-1", "Beta"))
	store.SaveSchool(*entity.NewSchool("C", "f-2", "Gamma"))
	e := NewEvaluator(store)
	m := entity.FranchisorMembership{FranchisorID: "f-1", Role: entity.FranchisorStaff, Scope: entity.SchoolList("A", "B", "C", "gone")}

	for id, want := range map[string]bool{"A": true, "B": true, "C": false, "gone": false, "": false} {
		if got, _ := e.InScope(ctx, m, id); got != want {
			t.Errorf("InScope(%q) = %v, want %v", id, got, want)
		}
	}

	// A school reassigned to another franchisor leaves the list scope.
	store.SaveSchool(*entity.NewSchool("B", "f-2", "Beta"))
	if ok, _ := e.InScope(ctx, m, "B"); ok {
		t.Error("reassigned school still in scope")
	}
}
