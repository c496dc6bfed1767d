package cli

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "zkid/internal/jwt_token"
	"zkid/internal/platform/config"
	"zkid/internal/verifier/schnorr"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "zkidctl helps operators and integrators")
	assert.Contains(t, out, "keygen")
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "revoke")
	require.Error(t, err)
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_AUDIENCE", "")

	t.Run("bare token validates against the server defaults", func(t *testing.T) {
		out, err := execute(t, "token", "--principal", "issuer@zkid")
		require.NoError(t, err)

		svc := jwttoken.New(jwttoken.Config{
			SigningKey: config.DevSigningKey,
			Issuer:     "zkid",
			Audience:   config.DefaultAudience,
			TTL:        config.TokenTTL,
		})
		claims, err := svc.Parse(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Equal(t, "issuer@zkid", claims.Subject)
	})

	t.Run("json envelope", func(t *testing.T) {
		out, err := execute(t, "token", "--principal", "issuer@zkid", "--json", "--ttl", "1h")
		require.NoError(t, err)

		var env tokenOutput
		require.NoError(t, json.Unmarshal([]byte(out), &env))
		assert.Equal(t, "Bearer", env.Type)
		assert.Equal(t, "1h0m0s", env.ExpiresIn)
		assert.NotEmpty(t, env.Token)
	})

	t.Run("principal is required", func(t *testing.T) {
		_, err := execute(t, "token")
		require.Error(t, err)
	})

	t.Run("malformed principal", func(t *testing.T) {
		_, err := execute(t, "token", "--principal", "not a principal")
		require.ErrorIs(t, err, ErrUsage)
	})
}

func TestKeygenAndProve(t *testing.T) {
	out, err := execute(t, "keygen", "--user-id", "alice", "--context", "zkid-test")
	require.NoError(t, err)

	var keys keygenOutput
	require.NoError(t, json.Unmarshal([]byte(out), &keys))
	require.NotEmpty(t, keys.Secret)

	vk, _, reason := schnorr.ParseVerificationKey(keys.VerificationKey)
	require.Empty(t, reason)
	assert.Equal(t, "alice", vk.UserID)
	assert.Equal(t, "zkid-test", vk.Context)

	out, err = execute(t, "prove",
		"--secret", base64.StdEncoding.EncodeToString(keys.Secret),
		"--verification-key", base64.StdEncoding.EncodeToString(keys.VerificationKey),
		"--subject", "alice",
		"--expiration", "1767225600",
	)
	require.NoError(t, err)

	var body mintBody
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "alice", body.Subject)
	assert.Equal(t, uint64(1767225600), body.Expiration)
	assert.Len(t, body.Proof, schnorr.ProofSize)

	outcome, err := schnorr.New().VerifyProof(context.Background(), body.VerificationKey, body.Proof)
	require.NoError(t, err)
	assert.True(t, outcome.Accepted)
}

func TestProveRejectsBadInput(t *testing.T) {
	kp, err := schnorr.GenerateKey(rand.Reader, "alice", "ctx")
	require.NoError(t, err)
	vk, err := kp.Key.Marshal()
	require.NoError(t, err)
	vkB64 := base64.StdEncoding.EncodeToString(vk)

	other, err := schnorr.GenerateKey(rand.Reader, "alice", "ctx")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
	}{
		{"secret not base64", []string{"--secret", "%%%", "--verification-key", vkB64}},
		{"key not base64", []string{"--secret", base64.StdEncoding.EncodeToString(kp.Secret), "--verification-key", "%%%"}},
		{"key not a verification key", []string{"--secret", base64.StdEncoding.EncodeToString(kp.Secret), "--verification-key", base64.StdEncoding.EncodeToString([]byte("{}"))}},
		{"bad expiration", []string{"--secret", base64.StdEncoding.EncodeToString(kp.Secret), "--verification-key", vkB64, "--expiration", "soon"}},
		{"secret for another key", []string{"--secret", base64.StdEncoding.EncodeToString(other.Secret), "--verification-key", vkB64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"prove"}, tt.args...)...)
			require.Error(t, err)
		})
	}
}

func TestSecret(t *testing.T) {
	out, err := execute(t, "secret", "--bytes", "24")
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Len(t, raw, 24)

	_, err = execute(t, "secret", "--bytes", "4")
	require.ErrorIs(t, err, ErrUsage)
}
