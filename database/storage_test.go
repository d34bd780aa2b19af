package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"optionscope/apperrors"
	"optionscope/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	return storage
}

func TestUserRoundTrip(t *testing.T) {
	storage := newTestStorage(t)

	if err := storage.CreateUser(&models.User{Username: "alice", HashedPassword: "hash"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user, err := storage.GetUserByUsername("alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Errorf("user = %+v, want alice", user)
	}

	missing, err := storage.GetUserByUsername("nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if missing != nil {
		t.Errorf("unknown username resolved to %+v, want nil", missing)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	storage := newTestStorage(t)

	if err := storage.CreateUser(&models.User{Username: "alice", HashedPassword: "hash"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := storage.CreateUser(&models.User{Username: "alice", HashedPassword: "other"}); err == nil {
		t.Error("duplicate username accepted, want unique constraint error")
	}
}

func TestJournalEntriesOrderedNewestFirst(t *testing.T) {
	storage := newTestStorage(t)
	owner := &models.User{Username: "alice", HashedPassword: "hash"}
	if err := storage.CreateUser(owner); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, underlying := range []string{"AAPL", "TSLA", "SPY"} {
		entry := &models.JournalEntry{
			OwnerID:    owner.ID,
			Underlying: underlying,
			Strategy:   "Long Call",
			EntryDate:  base.AddDate(0, 0, i),
			EntryPrice: 1.50,
			Quantity:   1,
		}
		if err := storage.CreateJournalEntry(entry); err != nil {
			t.Fatalf("CreateJournalEntry failed: %v", err)
		}
	}

	entries, err := storage.ListJournalEntries(owner.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListJournalEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("listed %d entries, want 3", len(entries))
	}
	if entries[0].Underlying != "SPY" || entries[2].Underlying != "AAPL" {
		t.Errorf("entries ordered %s..%s, want newest (SPY) first", entries[0].Underlying, entries[2].Underlying)
	}

	page, err := storage.ListJournalEntries(owner.ID, 1, 1)
	if err != nil {
		t.Fatalf("ListJournalEntries failed: %v", err)
	}
	if len(page) != 1 || page[0].Underlying != "TSLA" {
		t.Errorf("page = %+v, want the single middle entry", page)
	}
}

func TestJournalEntryOwnership(t *testing.T) {
	storage := newTestStorage(t)
	alice := &models.User{Username: "alice", HashedPassword: "hash"}
	bob := &models.User{Username: "bob", HashedPassword: "hash"}
	for _, u := range []*models.User{alice, bob} {
		if err := storage.CreateUser(u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	entry := &models.JournalEntry{
		OwnerID:    alice.ID,
		Underlying: "AAPL",
		Strategy:   "Short Put",
		EntryDate:  time.Now(),
		EntryPrice: 2.10,
		Quantity:   2,
	}
	if err := storage.CreateJournalEntry(entry); err != nil {
		t.Fatalf("CreateJournalEntry failed: %v", err)
	}

	got, err := storage.GetJournalEntry(alice.ID, entry.ID)
	if err != nil {
		t.Fatalf("GetJournalEntry failed: %v", err)
	}
	if got.Underlying != "AAPL" {
		t.Errorf("entry = %+v, want the AAPL entry", got)
	}

	if _, err := storage.GetJournalEntry(bob.ID, entry.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("cross-owner fetch err = %v, want ErrForbidden", err)
	}
	if _, err := storage.GetJournalEntry(alice.ID, entry.ID+100); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("missing entry err = %v, want ErrNotFound", err)
	}

	other, err := storage.ListJournalEntries(bob.ID, 0, 10)
	if err != nil {
		t.Fatalf("ListJournalEntries failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("bob sees %d entries, want 0", len(other))
	}
}
