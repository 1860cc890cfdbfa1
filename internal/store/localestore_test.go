package store

import (
	"testing"

	"crazyones/internal/applecore"
)

func TestAssignIDsFirstObservation(t *testing.T) {
	parsed := []applecore.SecurityUpdate{
		{Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: "2024-10-28"},
		{Name: "iOS 18.1", Target: "iOS", Date: "2024-10-28"},
	}

	merged, novelty := AssignIDs(nil, parsed)

	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
	if merged[0].ID != 1 || merged[1].ID != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", merged[0].ID, merged[1].ID)
	}
	if len(novelty) != 2 || novelty[0] != 1 || novelty[1] != 2 {
		t.Errorf("novelty = %v, want [1 2]", novelty)
	}
}

func TestAssignIDsReobservationKeepsID(t *testing.T) {
	existing := []applecore.SecurityUpdate{
		{ID: 1, Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: "2024-10-28"},
	}
	parsed := []applecore.SecurityUpdate{
		{Name: "macOS Sequoia 15.2", Target: "macOS Sequoia", Date: "2024-12-11"},
		{Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: "2024-10-28"},
	}

	merged, novelty := AssignIDs(existing, parsed)

	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2", len(merged))
	}
	if merged[0].ID != 2 {
		t.Errorf("new entry id = %d, want 2", merged[0].ID)
	}
	if merged[1].ID != 1 {
		t.Errorf("re-observed entry id = %d, want 1 (unchanged)", merged[1].ID)
	}
	if len(novelty) != 1 || novelty[0] != 2 {
		t.Errorf("novelty = %v, want [2]", novelty)
	}
}

func TestAssignIDsPreservesAbsentEntries(t *testing.T) {
	existing := []applecore.SecurityUpdate{
		{ID: 1, Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: "2024-10-28"},
		{ID: 2, Name: "iOS 18.1", Target: "iOS", Date: "2024-10-28"},
	}
	// Apple's table truncated and no longer lists id 2.
	parsed := []applecore.SecurityUpdate{
		{Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: "2024-10-28"},
	}

	merged, novelty := AssignIDs(existing, parsed)

	if len(novelty) != 0 {
		t.Errorf("novelty = %v, want empty", novelty)
	}
	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2 (absent entry retained)", len(merged))
	}
	if merged[1].ID != 2 {
		t.Errorf("preserved entry id = %d, want 2", merged[1].ID)
	}
}

func TestAssignIDsReappearingRecordKeepsID(t *testing.T) {
	existing := []applecore.SecurityUpdate{
		{ID: 1, Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: "2024-10-28"},
		{ID: 2, Name: "iOS 18.1", Target: "iOS", Date: "2024-10-28"},
	}
	// id 2 vanished for one tick...
	_, _ = AssignIDs(existing, []applecore.SecurityUpdate{existing[0]})
	// ...then reappears on a later tick. Using the original `existing` slice
	// (as the store would reload it) proves the id survives the round trip.
	merged, novelty := AssignIDs(existing, []applecore.SecurityUpdate{
		{Name: "iOS 18.1", Target: "iOS", Date: "2024-10-28"},
		{Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: "2024-10-28"},
	})

	if len(novelty) != 0 {
		t.Errorf("novelty = %v, want empty", novelty)
	}
	ids := map[string]int{}
	for _, u := range merged {
		ids[u.Name] = u.ID
	}
	if ids["iOS 18.1"] != 2 {
		t.Errorf("reappearing record id = %d, want 2", ids["iOS 18.1"])
	}
}

func TestAssignIDsRefreshesSentinelDate(t *testing.T) {
	existing := []applecore.SecurityUpdate{
		{ID: 1, Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: applecore.SentinelDate},
	}
	parsed := []applecore.SecurityUpdate{
		{Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: "2024-10-28", URL: "https://support.apple.com/x"},
	}

	merged, novelty := AssignIDs(existing, parsed)

	if len(novelty) != 0 {
		t.Errorf("novelty = %v, want empty (refresh keeps id)", novelty)
	}
	if len(merged) != 1 || merged[0].ID != 1 {
		t.Fatalf("merged = %+v, want single entry with id 1", merged)
	}
	if merged[0].Date != "2024-10-28" {
		t.Errorf("date = %q, want refreshed date", merged[0].Date)
	}
	if merged[0].URL == "" {
		t.Errorf("url should be refreshed from parsed record")
	}
}

func TestAssignIDsIdempotentOnIdenticalInput(t *testing.T) {
	parsed := []applecore.SecurityUpdate{
		{Name: "macOS Sequoia 15.1", Target: "macOS Sequoia", Date: "2024-10-28"},
	}

	merged1, novelty1 := AssignIDs(nil, parsed)
	merged2, novelty2 := AssignIDs(merged1, parsed)

	if len(novelty2) != 0 {
		t.Errorf("second pass novelty = %v, want empty", novelty2)
	}
	if len(merged2) != len(merged1) || merged2[0].ID != merged1[0].ID {
		t.Errorf("second pass merged = %+v, want unchanged %+v", merged2, merged1)
	}
	_ = novelty1
}
