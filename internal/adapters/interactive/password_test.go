package interactive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chainz/internal/domain"
	"github.com/trebuchet-org/chainz/internal/domain/config"
)

// scriptedPrompt answers PromptSecret from a queue
type scriptedPrompt struct {
	SelectorAdapter
	answers []string
	err     error
	asked   []string
}

func (s *scriptedPrompt) PromptSecret(ctx context.Context, label string) (string, error) {
	s.asked = append(s.asked, label)
	if s.err != nil {
		return "", s.err
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

func TestPasswordAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("configured password wins", func(t *testing.T) {
		prompt := &scriptedPrompt{}
		p := NewPasswordAdapter(&config.RuntimeConfig{KeyPassword: "hunter2"}, prompt)

		password, err := p.Password(ctx, "deployer", true)
		require.NoError(t, err)
		assert.Equal(t, "hunter2", password)
		assert.Empty(t, prompt.asked)
	})

	t.Run("confirmation must match", func(t *testing.T) {
		prompt := &scriptedPrompt{answers: []string{"one", "two"}}
		_, err := NewPasswordAdapter(&config.RuntimeConfig{}, prompt).Password(ctx, "deployer", true)
		assert.EqualError(t, err, "passwords do not match")
		assert.Len(t, prompt.asked, 2)
	})

	t.Run("unlock asks once", func(t *testing.T) {
		prompt := &scriptedPrompt{answers: []string{"secret"}}
		password, err := NewPasswordAdapter(&config.RuntimeConfig{}, prompt).Password(ctx, "deployer", false)
		require.NoError(t, err)
		assert.Equal(t, "secret", password)
		assert.Len(t, prompt.asked, 1)
	})

	t.Run("non-interactive without password", func(t *testing.T) {
		prompt := &scriptedPrompt{err: domain.ErrNonInteractive}
		_, err := NewPasswordAdapter(&config.RuntimeConfig{}, prompt).Password(ctx, "deployer", false)
		assert.ErrorIs(t, err, domain.ErrNonInteractive)
		assert.Contains(t, err.Error(), "CHAINZ_KEY_PASSWORD")
	})
}

func TestSelectorAdapter_NonInteractive(t *testing.T) {
	ctx := context.Background()
	s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})

	assert.False(t, s.Enabled())

	idx, err := s.SelectOne(ctx, "pick", []string{"only"})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = s.SelectOne(ctx, "pick", []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrNonInteractive)

	_, err = s.SelectMany(ctx, "pick", []string{"a", "b"}, nil)
	assert.ErrorIs(t, err, domain.ErrNonInteractive)

	_, err = s.Confirm(ctx, "sure?")
	assert.ErrorIs(t, err, domain.ErrNonInteractive)
}

func TestFuzzySearch(t *testing.T) {
	items := []string{"ethereum_mainnet (1)", "base (8453)", "arbitrum_one (42161)"}
	search := createFuzzySearchFunc(items)

	assert.True(t, search("", 1))
	assert.True(t, search("BASE", 1))
	assert.True(t, search("arbone", 2))
	assert.False(t, search("xyz", 0))
}

func TestMultiSelectModel(t *testing.T) {
	m := initialMultiSelectModel([]string{"a", "b", "c"}, []int{0, 2, 7}, "Chains")
	assert.Equal(t, []int{0, 2}, m.indices())

	m.selected[0] = false
	m.selected[1] = true
	assert.Equal(t, []int{1, 2}, m.indices())
	assert.Contains(t, m.View(), "Chains")
}
