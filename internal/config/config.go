package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

const (
	// DatabaseSchemePostgres is the postgres database scheme identifier
	DatabaseSchemePostgres = "postgres"
)

type Config struct {
	RPCURL                 string
	WSPath                 string
	EVMRPCURL              string // source-chain JSON-RPC endpoint used for evidence
	SourceChain            string // chain name this verifier observes
	VerifierAddress        string // this node's own account address
	VotingVerifierContract string // the voting-verifier contract whose polls we vote on
	DBDialect              string // postgres only
	DBDsn                  string // DSN string passed to GORM driver
	Debug                  bool   // if true: write logs; if false: TUI only
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

// parseDatabaseURL interprets DATABASE_URL and returns (dialect, dsn).
// Supported schemes: postgres, postgresql.
func parseDatabaseURL(databaseURL string) (string, string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", "", err
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case DatabaseSchemePostgres, "postgresql":
		// GORM postgres driver accepts URL DSN as-is
		return DatabaseSchemePostgres, databaseURL, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme: %s", u.Scheme)
	}
}

func Load() Config {
	cfg := Config{
		RPCURL:                 getenv("RPC_URL", "http://localhost:26657"),
		WSPath:                 getenv("WS_PATH", "/websocket"),
		EVMRPCURL:              getenv("EVM_RPC_URL", "http://localhost:8545"),
		SourceChain:            getenv("SOURCE_CHAIN", "ethereum"),
		VerifierAddress:        os.Getenv("VERIFIER_ADDRESS"),
		VotingVerifierContract: os.Getenv("VOTING_VERIFIER_CONTRACT"),
		Debug:                  getenvBool("DEBUG", false),
	}

	if dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); dbURL != "" {
		if dialect, dsn, err := parseDatabaseURL(dbURL); err == nil {
			cfg.DBDialect = dialect
			cfg.DBDsn = dsn
		} else {
			fmt.Fprintf(os.Stderr, "warning: invalid DATABASE_URL, disabling persistence: %v\n", err)
		}
	}

	return cfg
}

// Validate checks the settings without which the verifier cannot vote.
func (c Config) Validate() error {
	if strings.TrimSpace(c.VerifierAddress) == "" {
		return fmt.Errorf("VERIFIER_ADDRESS is required")
	}
	if strings.TrimSpace(c.VotingVerifierContract) == "" {
		return fmt.Errorf("VOTING_VERIFIER_CONTRACT is required")
	}
	if strings.TrimSpace(c.EVMRPCURL) == "" {
		return fmt.Errorf("EVM_RPC_URL is required")
	}
	return nil
}

func (c Config) WSURL() string {
	// cometbft http client expects a separate ws endpoint path
	return c.WSPath
}

func (c Config) String() string {
	return fmt.Sprintf("rpc=%s ws_path=%s chain=%s db=%s", c.RPCURL, c.WSPath, c.SourceChain, c.DBDialect)
}

// DebugString returns a human-friendly configuration string with masked secrets.
func (c Config) DebugString() string {
	return fmt.Sprintf(
		"rpc=%s ws_path=%s evm_rpc=%s chain=%s verifier=%s contract=%s db=%s dsn=%s",
		c.RPCURL,
		c.WSPath,
		c.EVMRPCURL,
		c.SourceChain,
		c.VerifierAddress,
		c.VotingVerifierContract,
		c.DBDialect,
		maskDSN(c.DBDialect, c.DBDsn),
	)
}

func maskDSN(dialect, dsn string) string {
	switch strings.ToLower(dialect) {
	case DatabaseSchemePostgres:
		if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
			if u.User != nil {
				username := u.User.Username()
				u.User = url.User(username)
			}
			return u.String()
		}
		// Fallback for DSN as key-value list
		parts := strings.Fields(dsn)
		for i, p := range parts {
			lower := strings.ToLower(p)
			if strings.HasPrefix(lower, "password=") {
				parts[i] = "password=***"
			}
		}
		return strings.Join(parts, " ")
	default:
		return dsn
	}
}
