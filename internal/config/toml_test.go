package config

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	Listen      string        `default:"127.0.0.1:8080"`
	Debug       bool          `default:"false"`
	TokenTTL    time.Duration `default:"1h"`
	CORSOrigins []string      `name:"cors-origins"`
	Postgres    struct {
		ConnString string
		MaxConns   int32 `default:"20"`
	} `embed:"" prefix:"postgres-"`
}

func parse(t *testing.T, config string, args ...string) testCLI {
	t.Helper()

	resolver, err := TOML(strings.NewReader(config))
	require.NoError(t, err)

	var cli testCLI
	parser, err := kong.New(&cli, kong.Resolvers(resolver), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	_, err = parser.Parse(args)
	require.NoError(t, err)
	return cli
}

func TestTOML(t *testing.T) {
	config := `
listen = "0.0.0.0:9000"
debug = true
token_ttl = "30m"
cors-origins = ["https://a.example.com", "https://b.example.com"]

[postgres]
conn_string = "postgres://localhost/leadcrm"
max_conns = 5
`

	t.Run("file values", func(t *testing.T) {
		cli := parse(t, config)
		require.Equal(t, "0.0.0.0:9000", cli.Listen)
		require.True(t, cli.Debug)
		require.Equal(t, 30*time.Minute, cli.TokenTTL)
		require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cli.CORSOrigins)
		require.Equal(t, "postgres://localhost/leadcrm", cli.Postgres.ConnString)
		require.Equal(t, int32(5), cli.Postgres.MaxConns)
	})

	t.Run("flags win", func(t *testing.T) {
		cli := parse(t, config, "--listen=127.0.0.1:1", "--postgres-max-conns=7")
		require.Equal(t, "127.0.0.1:1", cli.Listen)
		require.Equal(t, int32(7), cli.Postgres.MaxConns)
	})

	t.Run("defaults when absent", func(t *testing.T) {
		cli := parse(t, "")
		require.Equal(t, "127.0.0.1:8080", cli.Listen)
		require.Equal(t, time.Hour, cli.TokenTTL)
		require.Equal(t, int32(20), cli.Postgres.MaxConns)
	})
}

func TestTOML_Invalid(t *testing.T) {
	_, err := TOML(strings.NewReader("listen = "))
	require.Error(t, err)

	_, err = TOML(strings.NewReader("when = 1979-05-27T07:32:00Z"))
	require.ErrorContains(t, err, "unsupported value type")
}
