package score

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/regintel/riskscan/internal/model"
	"github.com/regintel/riskscan/internal/resolve"
)

func TestClassify_Bands(t *testing.T) {
	tests := []struct {
		score *float64
		want  model.RiskLevel
	}{
		{f(5), model.LevelAcceptableLow},
		{f(20), model.LevelAcceptableLow},
		{f(20.5), model.LevelNotable},
		{f(60), model.LevelNotable},
		{f(70), model.LevelNotable},
		{f(200), model.LevelSignificant},
		{f(400), model.LevelHigh},
		{f(400.1), model.LevelVeryHigh},
		{f(1500), model.LevelVeryHigh},
		{nil, model.LevelUndetermined},
	}

	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func f(v float64) *float64 { return &v }

func row(idx int, hazard, scoreText string) resolve.ResolvedRow {
	return resolve.ResolvedRow{RowIndex: idx, Hazard: hazard, Activity: "Saha", ScoreText: scoreText}
}

func TestCalculate_TurkishScenario(t *testing.T) {
	resolved := []resolve.ResolvedRow{
		{RowIndex: 1, Hazard: "Kaynak kıvılcımı", Activity: "Kaynak işi", ScoreText: "60"},
	}

	analysis := NewScorer().Calculate("Risk Değerlendirme", 0, true, model.NewColumnMap(), resolved)

	if analysis.Methodology != model.MethodologyFineKinney {
		t.Errorf("methodology = %q", analysis.Methodology)
	}
	if analysis.Rows[0].RiskLevel != model.LevelNotable {
		t.Errorf("risk level = %s, want notable", analysis.Rows[0].RiskLevel)
	}
	if analysis.Distribution[model.LevelNotable] != 1 {
		t.Errorf("notable count = %d, want 1", analysis.Distribution[model.LevelNotable])
	}
	for _, lvl := range model.AllLevels {
		if lvl == model.LevelNotable {
			continue
		}
		if analysis.Distribution[lvl] != 0 {
			t.Errorf("%s count = %d, want 0", lvl, analysis.Distribution[lvl])
		}
	}
}

func TestCalculate_DistributionSumsToRowCount(t *testing.T) {
	resolved := []resolve.ResolvedRow{
		row(1, "a", "10"),
		row(2, "b", "55"),
		row(3, "c", "150"),
		row(4, "d", "350"),
		row(5, "e", "900"),
		row(6, "f", "yüksek"),
		row(7, "g", ""),
	}

	analysis := NewScorer().Calculate("s", 0, true, model.NewColumnMap(), resolved)

	sum := 0
	for _, n := range analysis.Distribution {
		sum += n
	}
	if sum != len(analysis.Rows) {
		t.Errorf("distribution sum = %d, rows = %d", sum, len(analysis.Rows))
	}
	if analysis.ScoredRowCount != 5 {
		t.Errorf("scored rows = %d, want 5", analysis.ScoredRowCount)
	}
	if analysis.Distribution[model.LevelUndetermined] != 2 {
		t.Errorf("undetermined = %d, want 2", analysis.Distribution[model.LevelUndetermined])
	}
	if analysis.HighestScore == nil || *analysis.HighestScore != 900 {
		t.Errorf("highest score = %v, want 900", analysis.HighestScore)
	}
	if analysis.HighestLevel != model.LevelVeryHigh {
		t.Errorf("highest level = %s", analysis.HighestLevel)
	}
}

func TestCalculate_TopRisksOrderingAndRanks(t *testing.T) {
	resolved := []resolve.ResolvedRow{
		row(1, "low", "15"),
		row(2, "unscored", "n/a"),
		row(3, "top", "500"),
		row(4, "mid", "100"),
	}

	analysis := NewScorer().Calculate("s", 0, true, model.NewColumnMap(), resolved)
	top := analysis.TopRisks

	if len(top) != 4 {
		t.Fatalf("top risks length = %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		prev, cur := top[i-1].RiskScore, top[i].RiskScore
		if prev == nil && cur != nil {
			t.Error("nil score sorted before a numeric score")
		}
		if prev != nil && cur != nil && *prev < *cur {
			t.Errorf("top risks not non-increasing at %d", i)
		}
	}
	for i, r := range top {
		if r.Rank != i+1 {
			t.Errorf("rank at %d = %d, want %d", i, r.Rank, i+1)
		}
	}
	if top[0].Hazard != "top" {
		t.Errorf("first ranked hazard = %q", top[0].Hazard)
	}
	if top[3].Hazard != "unscored" {
		t.Errorf("last ranked hazard = %q, want the unscored row", top[3].Hazard)
	}
}

func TestCalculate_TopRisksCapped(t *testing.T) {
	var resolved []resolve.ResolvedRow
	for i := 0; i < 25; i++ {
		resolved = append(resolved, row(i+1, fmt.Sprintf("hazard %d", i), fmt.Sprintf("%d", (i+1)*30)))
	}

	analysis := NewScorer().Calculate("s", 0, true, model.NewColumnMap(), resolved)

	if len(analysis.TopRisks) != 10 {
		t.Fatalf("top risks length = %d, want 10", len(analysis.TopRisks))
	}
	if analysis.TopRisks[0].RiskScore == nil || *analysis.TopRisks[0].RiskScore != 750 {
		t.Errorf("first score = %v, want 750", analysis.TopRisks[0].RiskScore)
	}
}

func TestCalculate_QualitativeWhenNoScores(t *testing.T) {
	resolved := []resolve.ResolvedRow{
		row(1, "a", ""),
		row(2, "b", "orta"),
	}

	analysis := NewScorer().Calculate("s", 0, false, model.NewColumnMap(), resolved)

	if analysis.Methodology != model.MethodologyQualitative {
		t.Errorf("methodology = %q, want qualitative", analysis.Methodology)
	}
	if analysis.HighestScore != nil {
		t.Errorf("highest score = %v, want nil", analysis.HighestScore)
	}
	if analysis.HighestLevel != model.LevelUndetermined {
		t.Errorf("highest level = %s", analysis.HighestLevel)
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	resolved := []resolve.ResolvedRow{
		row(1, "a", "10"),
		row(2, "b", "300"),
		row(3, "c", ""),
	}

	s := NewScorer()
	first := s.Calculate("s", 2, true, model.NewColumnMap(), resolved)
	second := s.Calculate("s", 2, true, model.NewColumnMap(), resolved)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different analyses")
	}
}
