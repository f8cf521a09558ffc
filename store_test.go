package inviteengine

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "test_invites.db")

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	cleanup := func() {
		s.Close()
	}

	return s, cleanup
}

func testInvite(id, generatedAt string) Invite {
	return Invite{
		ID:          id,
		Theme:       "superhero",
		ChildName:   "Max",
		Age:         "7",
		Date:        "2028-06-20",
		Time:        "2pm-4pm",
		Venue:       "Community Hall",
		ImageURL:    "/invites/max-superhero-1.png",
		Durable:     true,
		Width:       848,
		Height:      1216,
		GeneratedAt: generatedAt,
	}
}

func TestNewStore(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if s == nil {
		t.Fatal("store should not be nil")
	}
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestNewStoreReopensExistingSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invites.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := s.SaveInvite(testInvite("01A", "2028-06-01T10:00:00Z")); err != nil {
		t.Fatalf("SaveInvite failed: %v", err)
	}
	s.Close()

	s, err = NewStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	n, err := s.CountInvites()
	if err != nil {
		t.Fatalf("CountInvites failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountInvites = %d, want 1", n)
	}
}

func TestSaveAndGetInvite(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	inv := testInvite("01HZX", "2028-06-01T10:00:00Z")
	if err := s.SaveInvite(inv); err != nil {
		t.Fatalf("SaveInvite failed: %v", err)
	}

	got, err := s.GetInvite("01HZX")
	if err != nil {
		t.Fatalf("GetInvite failed: %v", err)
	}
	if got != inv {
		t.Errorf("GetInvite = %+v, want %+v", got, inv)
	}
}

func TestSaveInviteNotDurable(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	inv := testInvite("01B", "2028-06-01T10:00:00Z")
	inv.Durable = false
	inv.ImageURL = ""
	if err := s.SaveInvite(inv); err != nil {
		t.Fatalf("SaveInvite failed: %v", err)
	}
	got, err := s.GetInvite("01B")
	if err != nil {
		t.Fatalf("GetInvite failed: %v", err)
	}
	if got.Durable {
		t.Error("Durable = true, want false")
	}
	if got.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", got.ImageURL)
	}
}

func TestSaveInviteUpdate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	inv := testInvite("01C", "2028-06-01T10:00:00Z")
	if err := s.SaveInvite(inv); err != nil {
		t.Fatalf("SaveInvite failed: %v", err)
	}
	inv.Venue = "Town Park"
	if err := s.SaveInvite(inv); err != nil {
		t.Fatalf("SaveInvite (update) failed: %v", err)
	}

	got, err := s.GetInvite("01C")
	if err != nil {
		t.Fatalf("GetInvite failed: %v", err)
	}
	if got.Venue != "Town Park" {
		t.Errorf("Venue = %q, want %q", got.Venue, "Town Park")
	}
	if n, _ := s.CountInvites(); n != 1 {
		t.Errorf("CountInvites = %d, want 1", n)
	}
}

func TestGetInviteNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetInvite("missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListInvitesNewestFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	for _, inv := range []Invite{
		testInvite("01A", "2028-06-01T10:00:00Z"),
		testInvite("01C", "2028-06-03T10:00:00Z"),
		testInvite("01B", "2028-06-02T10:00:00Z"),
	} {
		if err := s.SaveInvite(inv); err != nil {
			t.Fatalf("SaveInvite failed: %v", err)
		}
	}

	invites, err := s.ListInvites(0)
	if err != nil {
		t.Fatalf("ListInvites failed: %v", err)
	}
	want := []string{"01C", "01B", "01A"}
	if len(invites) != len(want) {
		t.Fatalf("got %d invites, want %d", len(invites), len(want))
	}
	for i, id := range want {
		if invites[i].ID != id {
			t.Errorf("invites[%d].ID = %q, want %q", i, invites[i].ID, id)
		}
	}

	limited, err := s.ListInvites(2)
	if err != nil {
		t.Fatalf("ListInvites(2) failed: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "01C" {
		t.Errorf("ListInvites(2) = %+v", limited)
	}
}

func TestListInvitesEmpty(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	invites, err := s.ListInvites(10)
	if err != nil {
		t.Fatalf("ListInvites failed: %v", err)
	}
	if len(invites) != 0 {
		t.Errorf("expected no invites, got %d", len(invites))
	}
}

func TestDeleteInvite(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if err := s.SaveInvite(testInvite("01D", "2028-06-01T10:00:00Z")); err != nil {
		t.Fatalf("SaveInvite failed: %v", err)
	}
	if err := s.DeleteInvite("01D"); err != nil {
		t.Fatalf("DeleteInvite failed: %v", err)
	}
	if _, err := s.GetInvite("01D"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected invite to be gone, got %v", err)
	}
}

func TestDeleteNonexistentInvite(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if err := s.DeleteInvite("nonexistent"); err != nil {
		t.Errorf("DeleteInvite of a missing id should not fail: %v", err)
	}
}
