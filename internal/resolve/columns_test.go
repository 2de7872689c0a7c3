package resolve

import (
	"testing"

	"github.com/regintel/riskscan/internal/model"
)

func TestResolveColumns_TurkishRegister(t *testing.T) {
	header := []string{"Tehlike", "Faaliyet", "Olasılık", "Şiddet", "Risk Skoru"}

	cm := NewResolver().ResolveColumns(header)

	if cm.Hazard != 0 {
		t.Errorf("hazard column = %d, want 0", cm.Hazard)
	}
	if cm.Activity != 1 {
		t.Errorf("activity column = %d, want 1", cm.Activity)
	}
	if cm.Score != 4 {
		t.Errorf("score column = %d, want 4", cm.Score)
	}
	if cm.Observation != model.Unresolved {
		t.Errorf("observation column = %d, want unresolved", cm.Observation)
	}
}

func TestResolveColumns_EnglishRegister(t *testing.T) {
	header := []string{"No", "Hazard", "Activity", "Observation", "Probability", "Severity", "Risk Score"}

	cm := NewResolver().ResolveColumns(header)

	if cm.Hazard != 1 {
		t.Errorf("hazard column = %d, want 1", cm.Hazard)
	}
	if cm.Activity != 2 {
		t.Errorf("activity column = %d, want 2", cm.Activity)
	}
	if cm.Observation != 3 {
		t.Errorf("observation column = %d, want 3", cm.Observation)
	}
	if cm.Score != 6 {
		t.Errorf("score column = %d, want 6", cm.Score)
	}
}

func TestResolveColumns_DistractorPenaltyRejectsSequenceColumn(t *testing.T) {
	// "Tehlike No" substring-matches the hazard vocabulary but is a
	// sequence column; the penalty must push it below the real one.
	header := []string{"Tehlike No", "Tehlike", "Skor Tarihi", "Risk Skoru"}

	cm := NewResolver().ResolveColumns(header)

	if cm.Hazard != 1 {
		t.Errorf("hazard column = %d, want 1 (sequence column must lose)", cm.Hazard)
	}
	if cm.Score != 3 {
		t.Errorf("score column = %d, want 3 (date column must lose)", cm.Score)
	}
}

func TestResolveColumns_UnresolvedBelowConfidence(t *testing.T) {
	header := []string{"A", "B", "C"}

	cm := NewResolver().ResolveColumns(header)

	if cm.Score != model.Unresolved {
		t.Errorf("score column = %d, want unresolved", cm.Score)
	}
	if cm.Activity != model.Unresolved {
		t.Errorf("activity column = %d, want unresolved", cm.Activity)
	}
}

func TestResolveColumns_HazardNeverEqualsScore(t *testing.T) {
	// A single "Risk Skoru" header must not be claimed as both hazard and
	// score; the structural prior re-guesses hazard.
	header := []string{"No", "Açıklama", "Risk Skoru"}

	cm := NewResolver().ResolveColumns(header)

	if cm.Score == model.Unresolved {
		t.Fatal("expected score column to resolve")
	}
	if cm.Hazard == cm.Score {
		t.Errorf("hazard column %d equals score column", cm.Hazard)
	}
	if cm.Hazard != 1 {
		t.Errorf("hazard column = %d, want structural prior 1", cm.Hazard)
	}
}

func TestResolveColumns_StructuralPriorSkipsClaimedColumns(t *testing.T) {
	// Hazard unresolved, activity already owns column 1: the prior moves on
	// to column 2.
	header := []string{"No", "Faaliyet", "Durum", "Risk Skoru"}

	cm := NewResolver().ResolveColumns(header)

	if cm.Activity != 1 {
		t.Fatalf("activity column = %d, want 1", cm.Activity)
	}
	if cm.Hazard != 2 {
		t.Errorf("hazard column = %d, want 2", cm.Hazard)
	}
}
