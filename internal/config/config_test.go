package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RPC_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DEBUG", "")

	cfg := Load()
	assert.Equal(t, "http://localhost:26657", cfg.RPCURL)
	assert.Equal(t, "/websocket", cfg.WSPath)
	assert.Equal(t, "http://localhost:8545", cfg.EVMRPCURL)
	assert.Equal(t, "ethereum", cfg.SourceChain)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.DBDialect)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RPC_URL", "http://node:26657")
	t.Setenv("EVM_RPC_URL", "http://geth:8545")
	t.Setenv("SOURCE_CHAIN", "polygon")
	t.Setenv("VERIFIER_ADDRESS", "axelar1verifier")
	t.Setenv("VOTING_VERIFIER_CONTRACT", "axelar1contract")
	t.Setenv("DATABASE_URL", "postgres://user:secret@db:5432/votes")
	t.Setenv("DEBUG", "true")

	cfg := Load()
	assert.Equal(t, "http://node:26657", cfg.RPCURL)
	assert.Equal(t, "http://geth:8545", cfg.EVMRPCURL)
	assert.Equal(t, "polygon", cfg.SourceChain)
	assert.Equal(t, "axelar1verifier", cfg.VerifierAddress)
	assert.Equal(t, "axelar1contract", cfg.VotingVerifierContract)
	assert.Equal(t, DatabaseSchemePostgres, cfg.DBDialect)
	assert.True(t, cfg.Debug)

	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsUnknownDatabaseScheme(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://user:secret@db:3306/votes")

	cfg := Load()
	assert.Empty(t, cfg.DBDialect)
	assert.Empty(t, cfg.DBDsn)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		EVMRPCURL:              "http://geth:8545",
		VerifierAddress:        "axelar1verifier",
		VotingVerifierContract: "axelar1contract",
	}
	require.NoError(t, cfg.Validate())

	missing := cfg
	missing.VerifierAddress = " "
	assert.Error(t, missing.Validate())

	missing = cfg
	missing.VotingVerifierContract = ""
	assert.Error(t, missing.Validate())

	missing = cfg
	missing.EVMRPCURL = ""
	assert.Error(t, missing.Validate())
}

func TestDebugStringMasksPassword(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://user:secret@db:5432/votes")
	t.Setenv("VERIFIER_ADDRESS", "axelar1verifier")
	t.Setenv("VOTING_VERIFIER_CONTRACT", "axelar1contract")

	cfg := Load()
	out := cfg.DebugString()
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "user")
}
