package interactive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"golang.org/x/term"

	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/config"
	"github.com/trebuchet-org/chainz/internal/usecase"
)

// SelectorAdapter handles interactive selection and prompts
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// Enabled reports whether prompting is possible: not disabled by
// configuration and stdin is a terminal
func (s *SelectorAdapter) Enabled() bool {
	if s.config.NonInteractive {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// SelectOne selects one option from a list
func (s *SelectorAdapter) SelectOne(ctx context.Context, prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("no options provided for selection")
	}
	if len(options) == 1 {
		return 0, nil
	}
	if !s.Enabled() {
		return -1, domain.ErrNonInteractive
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, / to search, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:     prompt,
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return -1, fmt.Errorf("selection cancelled: %w", err)
	}
	return index, nil
}

// SelectMany shows a checkbox list with the preselected options ticked
func (s *SelectorAdapter) SelectMany(ctx context.Context, prompt string, options []string, preselected []int) ([]int, error) {
	if !s.Enabled() {
		return nil, domain.ErrNonInteractive
	}
	return selectMany(options, preselected, prompt)
}

// PromptString asks for a line of text; an empty answer takes defaultValue
func (s *SelectorAdapter) PromptString(ctx context.Context, label string, defaultValue string) (string, error) {
	if !s.Enabled() {
		return "", domain.ErrNonInteractive
	}
	p := promptui.Prompt{
		Label:     label,
		Default:   defaultValue,
		AllowEdit: true,
	}
	value, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return strings.TrimSpace(value), nil
}

// PromptSecret asks for a value without echoing it
func (s *SelectorAdapter) PromptSecret(ctx context.Context, label string) (string, error) {
	if !s.Enabled() {
		return "", domain.ErrNonInteractive
	}
	p := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}
	value, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return strings.TrimSpace(value), nil
}

// Confirm asks a yes/no question; anything but yes is no
func (s *SelectorAdapter) Confirm(ctx context.Context, label string) (bool, error) {
	if !s.Enabled() {
		return false, domain.ErrNonInteractive
	}
	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := p.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("prompt cancelled: %w", err)
	}
	return true, nil
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.InteractiveSelector = (*SelectorAdapter)(nil)
