package build

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

const (
	// SelectAll enables every optional step.
	SelectAll = "all"
	// SelectDefault keeps every step's default.
	SelectDefault = "default"
)

var stepNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// ValidStepName reports whether name can be addressed by a selector token.
// The selector keywords are reserved.
func ValidStepName(name string) bool {
	return stepNamePattern.MatchString(name) && name != SelectAll && name != SelectDefault
}

// Token force-enables or force-disables one optional step.
type Token struct {
	Enable bool
	Name   string
}

func (t Token) String() string {
	if t.Enable {
		return "+" + t.Name
	}
	return "-" + t.Name
}

// Selector is an operator's instruction set for optional steps.
type Selector struct {
	Tokens []Token
	// DisableOthers drops every default-enabled optional step before tokens apply.
	DisableOthers bool
	// EnableAll turns on every optional step before tokens apply.
	EnableAll bool
}

// ParseSelector parses a comma separated --steps value.
//
// "default" keeps defaults, "all" enables every optional step, "+name" and a bare
// "name" enable, "-name" disables. Naming a step to enable without "all" or
// "default" disables every other optional step.
func ParseSelector(expr string) (Selector, error) {
	var (
		sel        Selector
		keepOthers bool
		enables    bool
	)
	for _, raw := range strings.Split(expr, ",") {
		word := strings.TrimSpace(raw)
		switch word {
		case "":
			continue
		case SelectAll:
			sel.EnableAll = true
			keepOthers = true
			continue
		case SelectDefault:
			keepOthers = true
			continue
		}
		tok, err := parseToken(word)
		if err != nil {
			return Selector{}, err
		}
		if tok.Enable {
			enables = true
		}
		sel.Tokens = append(sel.Tokens, tok)
	}
	sel.DisableOthers = enables && !keepOthers
	return sel, nil
}

func parseToken(word string) (Token, error) {
	tok := Token{Enable: true, Name: word}
	switch word[0] {
	case '+':
		tok.Name = word[1:]
	case '-':
		tok.Enable = false
		tok.Name = word[1:]
	}
	if !stepNamePattern.MatchString(tok.Name) {
		return Token{}, fmt.Errorf("%w: %q", ErrMalformedToken, word)
	}
	return tok, nil
}

// EnabledSet is the set of step names allowed to run.
type EnabledSet map[string]struct{}

// Has reports whether name is enabled.
func (s EnabledSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the enabled names, sorted.
func (s EnabledSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve applies sel to steps and returns the names that will run.
// Non-optional steps are always included; tokens that name an unknown or
// non-optional step are configuration errors.
func Resolve(steps []Step, sel Selector) (EnabledSet, error) {
	byName := make(map[string]Step, len(steps))
	for _, s := range steps {
		byName[s.Name] = s
	}
	for _, tok := range sel.Tokens {
		s, ok := byName[tok.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStep, tok.String())
		}
		if !s.Optional {
			return nil, fmt.Errorf("%w: %q", ErrNotOptional, tok.String())
		}
	}

	enabled := make(EnabledSet, len(steps))
	for _, s := range steps {
		switch {
		case !s.Optional:
			enabled[s.Name] = struct{}{}
		case sel.EnableAll:
			enabled[s.Name] = struct{}{}
		case s.DefaultEnabled && !sel.DisableOthers:
			enabled[s.Name] = struct{}{}
		}
	}
	for _, tok := range sel.Tokens {
		if tok.Enable {
			enabled[tok.Name] = struct{}{}
		} else {
			delete(enabled, tok.Name)
		}
	}
	return enabled, nil
}
