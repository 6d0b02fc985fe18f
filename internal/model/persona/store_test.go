package persona

import (
	"errors"
	"testing"

	"github.com/vchat-labs/vchat/backend/internal/fault"
)

func TestListPreservesInsertionOrder(t *testing.T) {
	store := NewMemoryStore(Seed())

	names := store.List()
	want := []string{"Dani", "Miro", "Sol"}
	if len(names) != len(want) {
		t.Fatalf("List() returned %d names, want %d", len(names), len(want))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("List()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestSelectUnknownLeavesPointerUnchanged(t *testing.T) {
	store := NewMemoryStore(Seed())
	if err := store.Select("Dani"); err != nil {
		t.Fatalf("Select(Dani) error = %v", err)
	}

	err := store.Select("Nobody")
	if err == nil {
		t.Fatal("expected error selecting unknown persona")
	}
	var fe *fault.Error
	if !errors.As(err, &fe) || fe.Kind != fault.KindNotFound {
		t.Fatalf("expected not_found fault, got %v", err)
	}

	current, ok := store.Current()
	if !ok || current.Name != "Dani" {
		t.Fatalf("active pointer changed after failed select: %v %v", current.Name, ok)
	}
}

func TestCurrentBeforeAnySelect(t *testing.T) {
	store := NewMemoryStore(Seed())
	if _, ok := store.Current(); ok {
		t.Fatal("Current() should report no selection before Select")
	}
}

func TestCreateThenSelect(t *testing.T) {
	store := NewMemoryStore(Seed())

	created, err := store.Create("Nova", "https://example.com/nova", "", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.VoiceID != DefaultVoiceID || created.ModelID != DefaultModelID {
		t.Errorf("defaults not applied: %q %q", created.VoiceID, created.ModelID)
	}
	if len(created.FewShotExamples) != 2 {
		t.Errorf("expected 2 canned examples, got %d", len(created.FewShotExamples))
	}

	names := store.List()
	if names[len(names)-1] != "Nova" {
		t.Errorf("created persona missing from List(): %v", names)
	}

	if err := store.Select("Nova"); err != nil {
		t.Fatalf("Select(Nova) after create error = %v", err)
	}
}

func TestCreateRejectsDuplicates(t *testing.T) {
	store := NewMemoryStore(Seed())

	if _, err := store.Create("Dani", "https://example.com/dani", "", ""); err == nil {
		t.Fatal("expected duplicate create to fail")
	}
}

func TestCreateRequiresNameAndURL(t *testing.T) {
	store := NewMemoryStore(nil)

	if _, err := store.Create("", "https://example.com", "", ""); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := store.Create("X", "", "", ""); err == nil {
		t.Fatal("expected error for empty url")
	}
}
