package asset

import (
	"errors"
	"math/big"
	"testing"
)

func rat(n, d int64) *big.Rat {
	return big.NewRat(n, d)
}

func strPtr(s string) *string {
	return &s
}

func TestNewMax_EmptyList(t *testing.T) {
	_, err := NewMax(nil)
	if err == nil {
		t.Fatal("Expected error for empty Max list, got nil")
	}
	if !errors.Is(err, ErrEmptyAssets) {
		t.Errorf("Expected ErrEmptyAssets, got %v", err)
	}

	_, err = NewMin([]Asset{})
	if !errors.Is(err, ErrEmptyAssets) {
		t.Errorf("Expected ErrEmptyAssets for empty Min list, got %v", err)
	}
}

func TestNewPriceyTimeRemaining_Invariants(t *testing.T) {
	// stop_time must be strictly after break_even_time
	_, err := NewPriceyTimeRemaining("t1", rat(10, 1), rat(10, 1), rat(4, 1))
	if err == nil {
		t.Error("Expected error when stop time equals break-even time")
	}

	_, err = NewPriceyTimeRemaining("t1", rat(10, 1), rat(2, 1), rat(4, 1))
	if err == nil {
		t.Error("Expected error when stop time precedes break-even time")
	}

	// max_loss must be positive
	_, err = NewPriceyTimeRemaining("t1", rat(2, 1), rat(10, 1), rat(0, 1))
	if err == nil {
		t.Error("Expected error for zero max loss")
	}

	_, err = NewPriceyTimeRemaining("t1", rat(2, 1), rat(10, 1), rat(-4, 1))
	if err == nil {
		t.Error("Expected error for negative max loss")
	}

	a, err := NewPriceyTimeRemaining("t1", rat(2, 1), rat(10, 1), rat(4, 1))
	if err != nil {
		t.Fatalf("Expected valid construction, got %v", err)
	}
	if a.Target != "t1" {
		t.Errorf("Expected target t1, got %s", a.Target)
	}
}

func TestReferencedTargets_Leaves(t *testing.T) {
	if got := ReferencedTargets(NewConstant(rat(1, 2))); len(got) != 0 {
		t.Errorf("Expected no targets for Constant, got %v", got)
	}

	got := ReferencedTargets(NewSatisfiedBy("t1", rat(10, 1)))
	if len(got) != 1 || !got["t1"] {
		t.Errorf("Expected {t1}, got %v", got)
	}
}

func TestReferencedTargets_CompositeUnion(t *testing.T) {
	max, err := NewMax([]Asset{
		NewSatisfiedBy("t1", rat(10, 1)),
		NewTimeRemaining("t2", rat(20, 1)),
	})
	if err != nil {
		t.Fatalf("Expected valid Max, got %v", err)
	}

	tree := NewLinearCombination([]Term{
		{Coefficient: rat(2, 1), Asset: max},
		{Coefficient: rat(-1, 1), Asset: NewAgentsSatisfyBy("t3", []string{"alice"}, rat(5, 1))},
		{Coefficient: rat(1, 3), Asset: NewSatisfiedBy("t1", rat(7, 1))},
	})

	got := ReferencedTargets(tree)
	want := []string{"t1", "t2", "t3"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d targets, got %d (%v)", len(want), len(got), got)
	}
	for _, id := range want {
		if !got[id] {
			t.Errorf("Expected target %s in %v", id, got)
		}
	}
}

func TestEqual_MatchingTrees(t *testing.T) {
	a := NewLinearCombination([]Term{
		{Coefficient: rat(2, 4), Asset: NewSatisfiedBy("t1", rat(10, 1))},
	})
	b := NewLinearCombination([]Term{
		{Coefficient: rat(1, 2), Asset: NewSatisfiedBy("t1", rat(10, 1))},
	})
	if !Equal(a, b) {
		t.Error("Expected equal trees (1/2 == 2/4)")
	}
}

func TestEqual_DifferentVariants(t *testing.T) {
	a := NewSatisfiedBy("t1", rat(10, 1))
	b := NewTimeRemaining("t1", rat(10, 1))
	if Equal(a, b) {
		t.Error("Expected different variants to compare unequal")
	}
}

func TestEqual_AgentOrderMatters(t *testing.T) {
	a := NewAgentsSatisfyBy("t1", []string{"alice", "bob"}, rat(10, 1))
	b := NewAgentsSatisfyBy("t1", []string{"bob", "alice"}, rat(10, 1))
	if Equal(a, b) {
		t.Error("Expected agent id order to affect equality")
	}
}

func TestConstructors_CopyInputs(t *testing.T) {
	value := rat(1, 2)
	c := NewConstant(value)
	value.SetInt64(99)
	if c.Value.Cmp(rat(1, 2)) != 0 {
		t.Errorf("Expected constant to keep 1/2 after caller mutation, got %s", FormatRat(c.Value))
	}

	agents := []string{"alice"}
	a := NewAgentsSatisfyBy("t1", agents, rat(10, 1))
	agents[0] = "mallory"
	if a.AgentIDs[0] != "alice" {
		t.Errorf("Expected agent list copy, got %s", a.AgentIDs[0])
	}
}

func TestFormatRat(t *testing.T) {
	if got := FormatRat(rat(5, 1)); got != "5" {
		t.Errorf("Expected 5, got %s", got)
	}
	if got := FormatRat(rat(1, 2)); got != "1/2" {
		t.Errorf("Expected 1/2, got %s", got)
	}
	if got := FormatRat(rat(-3, 6)); got != "-1/2" {
		t.Errorf("Expected -1/2, got %s", got)
	}
}

func TestParseRat(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"5", "5"},
		{"-7", "-7"},
		{"1/2", "1/2"},
		{"-3/6", "-1/2"},
		{"4/-8", "-1/2"},
		{" 10 ", "10"},
	}
	for _, tc := range cases {
		got, err := ParseRat(tc.input)
		if err != nil {
			t.Errorf("ParseRat(%q): expected no error, got %v", tc.input, err)
			continue
		}
		if FormatRat(got) != tc.want {
			t.Errorf("ParseRat(%q): expected %s, got %s", tc.input, tc.want, FormatRat(got))
		}
	}

	bad := []string{"", "abc", "1.5", "1e3", "1/0", "1/2/3", "1 2"}
	for _, input := range bad {
		if _, err := ParseRat(input); err == nil {
			t.Errorf("ParseRat(%q): expected error, got none", input)
		}
	}
}
