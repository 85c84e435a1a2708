package artifact

import "testing"

func TestManagerSimpleNeverMarked(t *testing.T) {
	var m Manager
	m.CompleteStep("g s1", LinkSimple)

	if len(m.marks) != 0 {
		t.Fatalf("Simple link recorded a mark: %v", m.marks)
	}
}

func TestManagerAggregateSameStepRetryInvalidatesAll(t *testing.T) {
	var m Manager
	m.CompleteStep("g s1", LinkAggregate)
	m.CompleteStep("g s2", LinkAggregate)
	m.CompleteStep("g p1", LinkPost)

	toUndo, raise := m.CheckInvalidation("g s1", LinkAggregate)

	if !raise {
		t.Fatal("expected scope raise on same-step aggregate retry")
	}
	if len(toUndo) != 3 {
		t.Fatalf("expected all 3 marked steps undone, got %v", toUndo)
	}
}

func TestManagerNewAggregateInvalidatesOnlyPost(t *testing.T) {
	var m Manager
	m.CompleteStep("g s1", LinkAggregate)
	m.CompleteStep("g p1", LinkPost)

	toUndo, raise := m.CheckInvalidation("g s2", LinkAggregate)

	if raise {
		t.Fatal("new aggregate contributor should not raise scope invalidation")
	}
	if len(toUndo) != 1 || toUndo[0] != "g p1" {
		t.Fatalf("expected only the post-marked step undone, got %v", toUndo)
	}
}

func TestManagerPostSameStepRetryMatchesAggregatePolicy(t *testing.T) {
	var m Manager
	m.CompleteStep("g s1", LinkAggregate)
	m.CompleteStep("g p1", LinkPost)

	toUndo, raise := m.CheckInvalidation("g p1", LinkPost)

	if !raise {
		t.Fatal("expected scope raise on same-step post retry, per the resolved open question")
	}
	if len(toUndo) != 2 {
		t.Fatalf("expected both marked steps undone, got %v", toUndo)
	}
}
