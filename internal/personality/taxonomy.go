package personality

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Action is a taxonomy bucket (A1..A22) grouping shell commands by attacker
// intent, after Odemis et al. (2022).
type Action string

// actionOrder fixes the registration order of the inverted command→action
// index. A command listed under several actions resolves to the
// last-registered one (cat→A20, dd→A15, nc→A18, ethtool→A21).
var actionOrder = []Action{
	"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10", "A11",
	"A12", "A13", "A14", "A15", "A16", "A17", "A18", "A19", "A20", "A21", "A22",
}

// Taxonomy binds shell commands to action codes and action codes to traits.
// Static configuration: built once, never mutated afterwards.
type Taxonomy struct {
	ActionCommands  map[Action][]string
	TraitActions    map[Trait][]Action
	Interpretations map[Trait]string

	commandAction map[string]Action
}

// Default returns the canonical taxonomy. The trait tables follow the
// five-trait LOW_EXTRAVERSION variant.
func Default() *Taxonomy {
	t := &Taxonomy{
		ActionCommands: map[Action][]string{
			"A1":  {"bash", "busybox", "sh", "./script.sh"},
			"A4":  {"dd", "ethtool"},
			"A5":  {"chpasswd"},
			"A8":  {"nc"},
			"A9":  {"awk", "cat", "locate", "uniq", "wc"},
			"A12": {"curl", "ftpget", "tftp", "wget"},
			"A13": {"apt", "gcc", "yum"},
			"A14": {"sleep"},
			"A15": {"dd", "du", "fs", "ls", "tar", "ulimit", "unzip"},
			"A16": {"git", "tee"},
			"A18": {"crontab", "nc", "nohup", "perl", "python"},
			"A19": {"uname"},
			"A20": {"cat", "env", "free", "iptables", "lspci", "service", "uptime", "which"},
			"A21": {"ethtool", "ifconfig", "netstat", "ping"},
			"A22": {"finger", "groups", "last"},
		},
		TraitActions: map[Trait][]Action{
			Openness:          {"A4", "A7", "A9", "A15", "A19", "A20", "A21", "A22"},
			Conscientiousness: {"A5", "A10", "A15", "A20"},
			LowExtraversion:   {"A3", "A7", "A15"},
			LowAgreeableness:  {"A10", "A11", "A13"},
			LowNeuroticism:    {"A9", "A19", "A20"},
		},
		Interpretations: map[Trait]string{
			Openness:          "Curious, explores system/network structure, gathers diverse information.",
			Conscientiousness: "Careful and methodical; plans actions and gathers information in a structured way.",
			LowExtraversion:   "Introspective, avoids public attention, focuses on reconnaissance and stealth.",
			LowAgreeableness:  "Potentially malicious or self-serving behavior, such as tool installation or system modification.",
			LowNeuroticism:    "Emotionally stable, gathers information logically and efficiently.",
		},
	}
	t.buildIndex()
	return t
}

func (t *Taxonomy) buildIndex() {
	t.commandAction = make(map[string]Action)
	for _, action := range actionOrder {
		for _, cmd := range t.ActionCommands[action] {
			t.commandAction[cmd] = action
		}
	}
}

// ActionFor maps a shell command name to its action code.
func (t *Taxonomy) ActionFor(command string) (Action, bool) {
	a, ok := t.commandAction[command]
	return a, ok
}

// CommandsFor returns the commands registered under an action code.
func (t *Taxonomy) CommandsFor(action Action) []string {
	return t.ActionCommands[action]
}

// taxonomyFile is the YAML override shape. Traits are keyed by their
// human-readable labels so override files read like the report output.
type taxonomyFile struct {
	Actions         map[string][]string `yaml:"actions"`
	Traits          map[string][]string `yaml:"traits"`
	Interpretations map[string]string   `yaml:"interpretations"`
}

// LoadFile reads a YAML taxonomy override. Sections left empty keep the
// defaults, so a file may adjust just the action mapping.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}

	t := Default()
	if len(f.Actions) > 0 {
		t.ActionCommands = make(map[Action][]string, len(f.Actions))
		for code, cmds := range f.Actions {
			t.ActionCommands[Action(code)] = cmds
		}
	}
	if len(f.Traits) > 0 {
		for label, codes := range f.Traits {
			trait, ok := traitByLabel(label)
			if !ok {
				return nil, fmt.Errorf("taxonomy %s: unknown trait %q", path, label)
			}
			actions := make([]Action, len(codes))
			for i, c := range codes {
				actions[i] = Action(c)
			}
			t.TraitActions[trait] = actions
		}
	}
	for label, text := range f.Interpretations {
		trait, ok := traitByLabel(label)
		if !ok {
			return nil, fmt.Errorf("taxonomy %s: unknown trait %q", path, label)
		}
		t.Interpretations[trait] = text
	}
	t.buildIndex()
	return t, nil
}
