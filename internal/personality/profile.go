// Package personality infers a dominant personality trait from the shell
// commands an attacker has issued during a session.
package personality

import (
	"fmt"
	"sort"
	"strings"
)

// Trait is one of the five fixed personality categories. Declaration order is
// also the tie-break order: the first-declared trait wins a score tie.
type Trait int

const (
	Openness Trait = iota
	Conscientiousness
	LowExtraversion
	LowAgreeableness
	LowNeuroticism
)

var traitLabels = [...]string{
	Openness:          "Openness to Experience",
	Conscientiousness: "Conscientiousness",
	LowExtraversion:   "Low Extraversion",
	LowAgreeableness:  "Low Agreeableness",
	LowNeuroticism:    "Low Neuroticism",
}

// Traits lists every trait in declaration order.
var Traits = []Trait{Openness, Conscientiousness, LowExtraversion, LowAgreeableness, LowNeuroticism}

func (t Trait) Label() string {
	if int(t) < len(traitLabels) {
		return traitLabels[t]
	}
	return "Unknown"
}

func traitByLabel(label string) (Trait, bool) {
	for _, t := range Traits {
		if t.Label() == label {
			return t, true
		}
	}
	return 0, false
}

// Profile is the classifier output: immutable once computed.
type Profile struct {
	Trait          Trait
	Label          string
	MatchedActions map[Action]int
	Score          int
	Interpretation string
}

// Classify maps an ordered command-name list to the top-1 trait by frequency
// scoring. Only the multiset of commands matters: permuting the input cannot
// change the result, and re-running on the same input yields the same
// profile. Returns nil when nothing maps or the winning score is zero.
func (t *Taxonomy) Classify(commands []string) *Profile {
	actionCounts := make(map[Action]int)
	for _, cmd := range commands {
		if action, ok := t.ActionFor(cmd); ok {
			actionCounts[action]++
		}
	}
	if len(actionCounts) == 0 {
		return nil
	}

	var best Trait
	bestScore := -1
	for _, trait := range Traits {
		score := 0
		for _, action := range t.TraitActions[trait] {
			score += actionCounts[action]
		}
		if score > bestScore {
			best = trait
			bestScore = score
		}
	}
	if bestScore <= 0 {
		return nil
	}

	matched := make(map[Action]int)
	for _, action := range t.TraitActions[best] {
		if n, ok := actionCounts[action]; ok {
			matched[action] = n
		}
	}

	return &Profile{
		Trait:          best,
		Label:          best.Label(),
		MatchedActions: matched,
		Score:          bestScore,
		Interpretation: t.Interpretations[best],
	}
}

// Report renders the formatted attacker profile, or a fixed sentence when no
// trait could be inferred.
func (t *Taxonomy) Report(commands []string) string {
	p := t.Classify(commands)
	if p == nil {
		return "No personality trait could be inferred from the provided command list."
	}

	codes := make([]string, 0, len(p.MatchedActions))
	for action := range p.MatchedActions {
		codes = append(codes, string(action))
	}
	sort.Strings(codes)

	lines := []string{
		"=== Attacker Personality Profile ===",
		fmt.Sprintf("Top-1 Trait (Enum) : %d", int(p.Trait)),
		fmt.Sprintf("Top-1 Trait Label  : %s", p.Label),
		fmt.Sprintf("Matched Actions    : %s", strings.Join(codes, ", ")),
		fmt.Sprintf("Match Score        : %d", p.Score),
		fmt.Sprintf("Interpretation     : %s", p.Interpretation),
	}
	return strings.Join(lines, "\n")
}
