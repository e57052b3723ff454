package engine

import (
	"reflect"
	"testing"

	"github.com/DMALUVM/satprep-planner/internal/models"
)

func TestClassifyBands(t *testing.T) {
	e := testEngine()

	rows := []models.SkillMastery{
		{Skill: "linear_equations", MasteryScore: 90, TotalAttempts: 10},
		{Skill: "quadratics", MasteryScore: 90, TotalAttempts: 3}, // high score, thin evidence
		{Skill: "ratios", MasteryScore: 75, TotalAttempts: 5},
		{Skill: "geometry_area", MasteryScore: 72, TotalAttempts: 2},
		{Skill: "exponents", MasteryScore: 40, TotalAttempts: 12},
	}

	b := e.ClassifyBands(rows)

	if !reflect.DeepEqual(b.Strong, []string{"linear_equations"}) {
		t.Errorf("Strong = %v", b.Strong)
	}
	if !reflect.DeepEqual(b.Growth, []string{"ratios"}) {
		t.Errorf("Growth = %v", b.Growth)
	}
	if !reflect.DeepEqual(b.Weak, []string{"quadratics", "geometry_area", "exponents"}) {
		t.Errorf("Weak = %v", b.Weak)
	}
}

func TestSortByWeakness(t *testing.T) {
	rows := []models.SkillMastery{
		{Skill: "a", MasteryScore: 60, TotalAttempts: 2},
		{Skill: "b", MasteryScore: 40, TotalAttempts: 3},
		{Skill: "c", MasteryScore: 60, TotalAttempts: 9}, // same score as a, more practice: more urgent
	}

	sorted := SortByWeakness(rows)

	got := make([]string, len(sorted))
	for i, r := range sorted {
		got[i] = r.Skill
	}
	want := []string{"b", "c", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if rows[0].Skill != "a" {
		t.Error("input slice was reordered")
	}
}
