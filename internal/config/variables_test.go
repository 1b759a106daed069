package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chainz/internal/domain"
)

func TestResolver_Resolve(t *testing.T) {
	variables := map[string]string{
		"INFURA_API_KEY": "stored-key",
		"SHARED":         "from-config",
		"NESTED":         "${INFURA_API_KEY}",
	}
	env := StaticEnvironment(map[string]string{
		"SHARED":  "from-env",
		"ENVONLY": "env-value",
	})
	resolver := NewResolver(variables).WithEnvironment(env)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
		varName string
	}{
		{
			name:  "no placeholders",
			input: "https://rpc.ankr.com/eth",
			want:  "https://rpc.ankr.com/eth",
		},
		{
			name:  "stored variable",
			input: "https://mainnet.infura.io/v3/${INFURA_API_KEY}",
			want:  "https://mainnet.infura.io/v3/stored-key",
		},
		{
			name:  "environment wins over stored value",
			input: "${SHARED}",
			want:  "from-env",
		},
		{
			name:  "environment only",
			input: "${ENVONLY}/x",
			want:  "env-value/x",
		},
		{
			name:  "multiple placeholders",
			input: "${SHARED}-${INFURA_API_KEY}-${ENVONLY}",
			want:  "from-env-stored-key-env-value",
		},
		{
			name:  "resolved value is not rescanned",
			input: "${NESTED}",
			want:  "${INFURA_API_KEY}",
		},
		{
			name:  "bare dollar is literal",
			input: "$HOME/path",
			want:  "$HOME/path",
		},
		{
			name:    "unknown placeholder",
			input:   "https://a/${MISSING}",
			wantErr: domain.ErrUnresolvedVariable,
			varName: "MISSING",
		},
		{
			name:    "empty placeholder",
			input:   "https://a/${}",
			wantErr: domain.ErrFormat,
		},
		{
			name:    "unterminated placeholder",
			input:   "https://a/${UNCLOSED",
			wantErr: domain.ErrFormat,
		},
		{
			name:    "nested placeholder",
			input:   "${A${B}}",
			wantErr: domain.ErrFormat,
		},
		{
			name:    "invalid name",
			input:   "${my-var}",
			wantErr: domain.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				if tt.varName != "" {
					var unresolved *domain.UnresolvedVariableError
					require.True(t, errors.As(err, &unresolved))
					assert.Equal(t, tt.varName, unresolved.Name)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_PrecedenceLaw(t *testing.T) {
	names := []string{"A", "RPC_KEY", "_underscore", "X1"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			stored := map[string]string{name: "stored"}

			onlyStored := NewResolver(stored).WithEnvironment(StaticEnvironment(nil))
			got, err := onlyStored.Resolve("${" + name + "}")
			require.NoError(t, err)
			assert.Equal(t, "stored", got)

			both := NewResolver(stored).WithEnvironment(StaticEnvironment(map[string]string{name: "env"}))
			got, err = both.Resolve("${" + name + "}")
			require.NoError(t, err)
			assert.Equal(t, "env", got)
		})
	}
}

func TestResolver_ReadsOSEnvironment(t *testing.T) {
	t.Setenv("CHAINZ_TEST_RESOLVER", "from-os")

	got, err := NewResolver(map[string]string{"CHAINZ_TEST_RESOLVER": "stored"}).Resolve("${CHAINZ_TEST_RESOLVER}")
	require.NoError(t, err)
	assert.Equal(t, "from-os", got)
}

func TestResolver_Lookup(t *testing.T) {
	resolver := NewResolver(map[string]string{"A": "1", "B": "2"}).
		WithEnvironment(StaticEnvironment(map[string]string{"B": "3"}))

	value, source, ok := resolver.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "1", value)
	assert.Equal(t, "config", source)

	value, source, ok = resolver.Lookup("B")
	assert.True(t, ok)
	assert.Equal(t, "3", value)
	assert.Equal(t, "env", source)

	_, _, ok = resolver.Lookup("C")
	assert.False(t, ok)
}

func TestPlaceholders(t *testing.T) {
	names, err := Placeholders("https://${HOST}/v3/${KEY}?x=${KEY}")
	require.NoError(t, err)
	assert.Equal(t, []string{"HOST", "KEY", "KEY"}, names)

	names, err = Placeholders("https://plain")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = Placeholders("${}")
	assert.ErrorIs(t, err, domain.ErrFormat)
}

func TestGenerateVariableName(t *testing.T) {
	tests := []struct {
		chain  string
		suffix string
		want   string
	}{
		{"sepolia", "RPC_URL", "SEPOLIA_RPC_URL"},
		{"celo-sepolia", "RPC_URL", "CELO_SEPOLIA_RPC_URL"},
		{"polygon.zkevm", "API_KEY", "POLYGON_ZKEVM_API_KEY"},
		{"Base Sepolia", "API_KEY", "BASE_SEPOLIA_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.chain, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateVariableName(tt.chain, tt.suffix))
		})
	}
}

func TestResolver_FormatErrorHidesTemplate(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	tests := []struct {
		input    string
		position int
	}{
		{"https://api.example/?apikey=" + secret + "&x=${UNCLOSED", len("https://api.example/?apikey=&x=") + len(secret) + 1},
		{secret + "${}", len(secret) + 1},
		{"${bad-" + secret + "}", 1},
	}
	for _, tt := range tests {
		_, err := NewResolver(nil).Resolve(tt.input)
		require.Error(t, err)

		var formatErr *domain.FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, tt.position, formatErr.Position)
		assert.NotContains(t, err.Error(), secret)
	}
}

func TestValidateVariableName(t *testing.T) {
	assert.NoError(t, ValidateVariableName("INFURA_API_KEY"))
	assert.ErrorIs(t, ValidateVariableName("1BAD"), domain.ErrFormat)
	assert.ErrorIs(t, ValidateVariableName(""), domain.ErrFormat)
}
