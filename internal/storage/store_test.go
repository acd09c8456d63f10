package storage

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"staysearch/internal/domain"
	"staysearch/internal/planner"
)

// Amsterdam city center; seed data is positioned relative to this point.
const (
	centerLat = 52.3676
	centerLon = 4.9041
)

func buildPlan(t *testing.T, in domain.SearchInput) domain.SearchPlan {
	t.Helper()
	plan, err := planner.BuildPlan(in)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	return plan
}

func defaultInput() domain.SearchInput {
	return domain.SearchInput{
		Latitude:  centerLat,
		Longitude: centerLon,
		CheckIn:   "2026-01-12",
		CheckOut:  "2026-01-14",
		Adults:    2,
	}
}

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()
	seeds := []domain.CreateProperty{
		{Name: "Canal Loft", City: "Amsterdam", Country: "NL", Latitude: 52.3702, Longitude: 4.8952, MaxGuests: 4, PropertyType: "apartment", NightlyRate: 140, Currency: "EUR"},
		{Name: "Jordaan Studio", City: "Amsterdam", Country: "NL", Latitude: 52.3745, Longitude: 4.8800, MaxGuests: 2, PropertyType: "studio", NightlyRate: 95, Currency: "EUR"},
		{Name: "Single Bunk", City: "Amsterdam", Country: "NL", Latitude: 52.3600, Longitude: 4.9000, MaxGuests: 1, PropertyType: "room", NightlyRate: 40, Currency: "EUR"},
		{Name: "Utrecht House", City: "Utrecht", Country: "NL", Latitude: 52.0907, Longitude: 5.1214, MaxGuests: 6, PropertyType: "house", NightlyRate: 210, Currency: "EUR"},
		{Name: "Paris Flat", City: "Paris", Country: "FR", Latitude: 48.8566, Longitude: 2.3522, MaxGuests: 3, PropertyType: "apartment", NightlyRate: 180, Currency: "EUR"},
	}
	for _, s := range seeds {
		if _, err := store.CreateProperty(ctx, s); err != nil {
			t.Fatalf("seed %q: %v", s.Name, err)
		}
	}
	return store
}

func TestResolveCandidates_RadiusAndCapacity(t *testing.T) {
	store := seedStore(t)
	plan := buildPlan(t, defaultInput()) // 2 guests, 10 km radius

	got, err := store.ResolveCandidates(context.Background(), plan)
	if err != nil {
		t.Fatalf("ResolveCandidates: %v", err)
	}

	// Single Bunk is close but sleeps 1; Utrecht and Paris are out of range.
	var names []string
	for _, c := range got {
		names = append(names, c.Name)
	}
	want := []string{"Canal Loft", "Jordaan Studio"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("candidates = %v, want %v", names, want)
	}
}

func TestResolveCandidates_WiderRadiusReachesUtrecht(t *testing.T) {
	store := seedStore(t)
	in := defaultInput()
	in.Filters = map[string]any{"radius_km": 50.0}
	plan := buildPlan(t, in)

	got, err := store.ResolveCandidates(context.Background(), plan)
	if err != nil {
		t.Fatalf("ResolveCandidates: %v", err)
	}
	found := false
	for _, c := range got {
		if c.Name == "Utrecht House" {
			found = true
			if c.DistanceKm < 30 || c.DistanceKm > 40 {
				t.Errorf("Utrecht distance = %v km, want ~35", c.DistanceKm)
			}
			if !strings.HasSuffix(c.Distance, " km") {
				t.Errorf("distance label %q missing unit", c.Distance)
			}
		}
		if c.Name == "Paris Flat" {
			t.Error("Paris Flat should be outside a 50 km radius")
		}
	}
	if !found {
		t.Error("Utrecht House not found within 50 km")
	}
}

func TestResolveCandidates_OrderedByIDAndDeterministic(t *testing.T) {
	store := seedStore(t)
	in := defaultInput()
	in.Filters = map[string]any{"radius_km": 500.0}
	plan := buildPlan(t, in)

	first, err := store.ResolveCandidates(context.Background(), plan)
	if err != nil {
		t.Fatalf("ResolveCandidates: %v", err)
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ID >= first[i].ID {
			t.Fatalf("candidates not in ascending ID order: %d before %d", first[i-1].ID, first[i].ID)
		}
	}

	second, err := store.ResolveCandidates(context.Background(), plan)
	if err != nil {
		t.Fatalf("ResolveCandidates (repeat): %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated resolution with unchanged plan and data differed")
	}
}

func TestResolveCandidates_HardCap(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 50; i++ {
		_, err := store.CreateProperty(ctx, domain.CreateProperty{
			Name:      fmt.Sprintf("prop-%03d", i),
			Latitude:  centerLat,
			Longitude: centerLon,
			MaxGuests: 4,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	in := defaultInput()
	in.Filters = map[string]any{OptionCandidateHardLimit: 10}
	got, err := store.ResolveCandidates(ctx, buildPlan(t, in))
	if err != nil {
		t.Fatalf("ResolveCandidates: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("len = %d, want 10 (hard cap)", len(got))
	}
	// The cap keeps the lowest IDs, so pagination stays stable.
	if got[0].ID != 1 || got[9].ID != 10 {
		t.Errorf("cap did not keep lowest IDs: first=%d last=%d", got[0].ID, got[9].ID)
	}

	// An override above the ceiling is clamped, not honored.
	in.Filters = map[string]any{OptionCandidateHardLimit: 999999}
	got, err = store.ResolveCandidates(ctx, buildPlan(t, in))
	if err != nil {
		t.Fatalf("ResolveCandidates: %v", err)
	}
	if len(got) != 50 {
		t.Errorf("len = %d, want all 50 seeded", len(got))
	}
}

func TestResolveCandidates_ConfiguredLimits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStoreLimits(Limits{Default: 5, Max: 8})
	for i := 0; i < 20; i++ {
		_, err := store.CreateProperty(ctx, domain.CreateProperty{
			Name:      fmt.Sprintf("prop-%03d", i),
			Latitude:  centerLat,
			Longitude: centerLon,
			MaxGuests: 4,
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// No override: the configured default applies.
	got, err := store.ResolveCandidates(ctx, buildPlan(t, defaultInput()))
	if err != nil {
		t.Fatalf("ResolveCandidates: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want configured default 5", len(got))
	}

	// An override is clamped to the configured ceiling.
	in := defaultInput()
	in.Filters = map[string]any{OptionCandidateHardLimit: 15}
	got, err = store.ResolveCandidates(ctx, buildPlan(t, in))
	if err != nil {
		t.Fatalf("ResolveCandidates: %v", err)
	}
	if len(got) != 8 {
		t.Errorf("len = %d, want configured ceiling 8", len(got))
	}
}

func TestResolveCandidates_InjectionAttemptDisablesCapacityFilter(t *testing.T) {
	store := seedStore(t)
	in := defaultInput()
	in.Adults = 2
	in.Filters = map[string]any{OptionCapacityColumn: "DROP TABLE properties"}
	plan := buildPlan(t, in)

	got, err := store.ResolveCandidates(context.Background(), plan)
	if err != nil {
		t.Fatalf("ResolveCandidates: %v", err)
	}
	// With the capacity filter disabled, the 1-guest bunk shows up too.
	var names []string
	for _, c := range got {
		names = append(names, c.Name)
	}
	want := []string{"Canal Loft", "Jordaan Studio", "Single Bunk"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("candidates = %v, want %v", names, want)
	}
}

func TestResolveCandidates_CancelledContext(t *testing.T) {
	store := seedStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ResolveCandidates(ctx, buildPlan(t, defaultInput()))
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
