package server

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/algestep/internal/config"
)

func Test_ParseStore(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Store
		expectErr bool
	}{
		{name: "inmem", input: "inmem", expect: Store{Kind: StoreMemory}},
		{name: "sqlite", input: "sqlite:/var/lib/algestep", expect: Store{Kind: StoreSQLite, Dir: "/var/lib/algestep"}},
		{name: "sqlite case and spaces", input: " SQLite : data ", expect: Store{Kind: StoreSQLite, Dir: "data"}},
		{name: "windows path", input: `sqlite:C:\algestep`, expect: Store{Kind: StoreSQLite, Dir: `C:\algestep`}},
		{name: "sqlite without dir", input: "sqlite", expectErr: true},
		{name: "sqlite with blank dir", input: "sqlite: ", expectErr: true},
		{name: "inmem with dir", input: "inmem:foo", expectErr: true},
		{name: "blank", input: "", expectErr: true},
		{name: "unknown", input: "postgres:whatever", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := ParseStore(tc.input)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual)

			again, err := ParseStore(actual.String())
			assert.NoError(err)
			assert.Equal(actual, again)
		})
	}
}

func Test_Store_Open(t *testing.T) {
	assert := assert.New(t)

	dir := filepath.Join(t.TempDir(), "not", "there", "yet")
	store, err := Store{Kind: StoreSQLite, Dir: dir}.Open()
	if !assert.NoError(err) {
		return
	}
	assert.NotNil(store.Solves())
	assert.NoError(store.Close())

	_, err = Store{Kind: "postgres"}.Open()
	assert.Error(err)
}

func Test_SecretFrom(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectLen int
		expectErr bool
	}{
		{name: "long enough", input: "0123456789abcdef0123456789abcdef", expectLen: 32},
		{name: "repeated once", input: "0123456789abcdefghij", expectLen: 40},
		{name: "repeated twice", input: "abcdefghijk", expectLen: 44},
		{name: "at the max", input: string(make([]byte, MaxSecretSize)), expectLen: MaxSecretSize},
		{name: "too long", input: string(make([]byte, MaxSecretSize+1)), expectErr: true},
		{name: "blank", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := SecretFrom(tc.input)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Len(actual, tc.expectLen)
			assert.Equal(tc.input, string(actual[:len(tc.input)]))
		})
	}
}

func Test_FromFile(t *testing.T) {
	testCases := []struct {
		name      string
		file      func(*config.Config)
		expect    Config
		expectErr bool
	}{
		{
			name:   "nothing set",
			expect: Config{MaxSteps: config.DefaultMaxSteps, ParseBudget: config.Default().Limits.ParseBudget},
		},
		{
			name: "server and limits tables",
			file: func(c *config.Config) {
				c.Server = config.Server{DB: "sqlite:data", Secret: "0123456789abcdef0123456789abcdef", TokenTTL: "15m"}
				c.Limits = config.Limits{MaxSteps: 20, ParseBudget: 5000}
			},
			expect: Config{
				Secret:      []byte("0123456789abcdef0123456789abcdef"),
				Store:       Store{Kind: StoreSQLite, Dir: "data"},
				TokenTTL:    15 * time.Minute,
				MaxSteps:    20,
				ParseBudget: 5000,
			},
		},
		{
			name:      "bad db",
			file:      func(c *config.Config) { c.Server.DB = "mongo" },
			expectErr: true,
		},
		{
			name:      "secret too long",
			file:      func(c *config.Config) { c.Server.Secret = string(make([]byte, MaxSecretSize+1)) },
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			file := config.Default()
			if tc.file != nil {
				tc.file(&file)
			}

			actual, err := FromFile(file)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Config_FillDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg := Config{}.FillDefaults()

	assert.NoError(cfg.Validate())
	assert.Equal(Store{Kind: StoreMemory}, cfg.Store)
	assert.Equal(DefaultTokenTTL, cfg.TokenTTL)
	assert.Equal(DefaultUnauthDelay, cfg.pause())
	assert.Equal(config.DefaultMaxSteps, cfg.MaxSteps)

	off := Config{UnauthDelay: -1}.FillDefaults()
	assert.Zero(off.pause())
}

func Test_Config_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(cfg *Config)
	}{
		{name: "short secret", modify: func(cfg *Config) { cfg.Secret = []byte("short") }},
		{name: "long secret", modify: func(cfg *Config) { cfg.Secret = make([]byte, MaxSecretSize+1) }},
		{name: "sqlite without dir", modify: func(cfg *Config) { cfg.Store = Store{Kind: StoreSQLite} }},
		{name: "negative ttl", modify: func(cfg *Config) { cfg.TokenTTL = -time.Minute }},
		{name: "negative budget", modify: func(cfg *Config) { cfg.ParseBudget = -1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{}.FillDefaults()
			tc.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
