package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dekarrin/algestep/internal/config"
	"github.com/dekarrin/algestep/server/dao"
	"github.com/dekarrin/algestep/server/dao/inmem"
	"github.com/dekarrin/algestep/server/dao/sqlite"
)

// Bounds on the size in bytes of a token secret.
const (
	MinSecretSize = 32
	MaxSecretSize = 64
)

// DefaultTokenTTL is how long a solve token is good for when Config does not
// say otherwise.
const DefaultTokenTTL = time.Hour

// DefaultUnauthDelay is the pause before answering a request that failed
// authorization, used when Config does not give one.
const DefaultUnauthDelay = time.Second

// StoreKind names a persistence layer that solve sessions can be kept in.
type StoreKind string

const (
	StoreMemory StoreKind = "inmem"
	StoreSQLite StoreKind = "sqlite"
)

// Store says which persistence layer to keep solve sessions in and, for ones
// backed by files, the directory the files go in.
type Store struct {
	Kind StoreKind
	Dir  string
}

// ParseStore reads a store string: a kind, then for kinds backed by files a
// colon and the directory to use. "inmem" and "sqlite:/var/lib/algestep" are
// both store strings. The kind is not case sensitive.
func ParseStore(s string) (Store, error) {
	kind, dir, _ := strings.Cut(s, ":")
	st := Store{
		Kind: StoreKind(strings.ToLower(strings.TrimSpace(kind))),
		Dir:  strings.TrimSpace(dir),
	}
	if err := st.Validate(); err != nil {
		return Store{}, err
	}
	return st, nil
}

// String gives st as a store string that ParseStore reads back to st.
func (st Store) String() string {
	if st.Dir == "" {
		return string(st.Kind)
	}
	return string(st.Kind) + ":" + st.Dir
}

// Validate returns an error if st is not a kind of store that can be opened,
// or if it is missing a directory its kind needs or has one it cannot use.
func (st Store) Validate() error {
	switch st.Kind {
	case StoreMemory:
		if st.Dir != "" {
			return fmt.Errorf("%s store keeps nothing on disk and cannot be given a directory", st.Kind)
		}
	case StoreSQLite:
		if st.Dir == "" {
			return fmt.Errorf("%s store needs a directory, as in \"%s:path/to/dir\"", st.Kind, st.Kind)
		}
	case "":
		return fmt.Errorf("store kind is blank")
	default:
		return fmt.Errorf("%q is not a kind of store; use %q or %q", string(st.Kind), StoreMemory, StoreSQLite)
	}
	return nil
}

// Open opens the persistence layer st names. The directory of a file-backed
// store is created if it does not yet exist.
func (st Store) Open() (dao.Store, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}

	if st.Kind == StoreMemory {
		return inmem.NewDatastore(), nil
	}

	if err := os.MkdirAll(st.Dir, 0770); err != nil {
		return nil, fmt.Errorf("make store directory: %w", err)
	}
	store, err := sqlite.NewDatastore(st.Dir)
	if err != nil {
		return nil, fmt.Errorf("open %s store in %s: %w", st.Kind, st.Dir, err)
	}
	return store, nil
}

// SecretFrom turns a secret given as text into a token key. Text shorter than
// MinSecretSize bytes is repeated until it is long enough. Text longer than
// MaxSecretSize bytes is an error rather than being cut short.
func SecretFrom(text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("secret is blank")
	}
	if len(text) > MaxSecretSize {
		return nil, fmt.Errorf("secret is %d bytes, but it must be no more than %d", len(text), MaxSecretSize)
	}

	key := []byte(text)
	for len(key) < MinSecretSize {
		key = append(key, key...)
	}
	return key, nil
}

// Config holds everything a server needs to start.
type Config struct {
	// Secret is the key tokens are signed with. A fixed insecure key is used
	// if it is not set.
	Secret []byte

	// Store is where solve sessions are kept. An in-memory store is used if
	// it is not set.
	Store Store

	// UnauthDelay is how long to pause before answering a request that was
	// not authorized, to slow down clients guessing at tokens one after
	// another. 0 means DefaultUnauthDelay and a negative value turns the
	// pause off.
	UnauthDelay time.Duration

	// TokenTTL is how long the token given for a new solve session is valid.
	TokenTTL time.Duration

	// MaxSteps is the most steps one solve session may take.
	MaxSteps int

	// ParseBudget is the backtracking budget of the math parser. 0 selects
	// the parser's default.
	ParseBudget int
}

// FromFile gives the Config that the [server] and [limits] tables of file
// describe. Settings the file leaves out are left unset.
func FromFile(file config.Config) (Config, error) {
	cfg := Config{
		TokenTTL:    file.TokenTTL(0),
		MaxSteps:    file.Limits.MaxSteps,
		ParseBudget: file.Limits.ParseBudget,
	}

	var err error
	if file.Server.DB != "" {
		cfg.Store, err = ParseStore(file.Server.DB)
		if err != nil {
			return Config{}, fmt.Errorf("server: db: %w", err)
		}
	}
	if file.Server.Secret != "" {
		cfg.Secret, err = SecretFrom(file.Server.Secret)
		if err != nil {
			return Config{}, fmt.Errorf("server: secret: %w", err)
		}
	}
	return cfg, nil
}

// FillDefaults returns a copy of cfg with every unset value given its
// default.
func (cfg Config) FillDefaults() Config {
	filled := cfg

	if filled.Secret == nil {
		filled.Secret = []byte("algestep-insecure-default-token-key")
	}
	if filled.Store.Kind == "" {
		filled.Store = Store{Kind: StoreMemory}
	}
	if filled.UnauthDelay == 0 {
		filled.UnauthDelay = DefaultUnauthDelay
	}
	if filled.TokenTTL == 0 {
		filled.TokenTTL = DefaultTokenTTL
	}
	if filled.MaxSteps == 0 {
		filled.MaxSteps = config.DefaultMaxSteps
	}

	return filled
}

// Validate returns an error if any value in cfg cannot be used. Unset values
// are errors too, so call it on the result of FillDefaults.
func (cfg Config) Validate() error {
	if n := len(cfg.Secret); n < MinSecretSize || n > MaxSecretSize {
		return fmt.Errorf("secret: must be %d to %d bytes, but is %d", MinSecretSize, MaxSecretSize, n)
	}
	if err := cfg.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return fmt.Errorf("token TTL: must be positive, but is %s", cfg.TokenTTL)
	}
	if cfg.MaxSteps < 1 {
		return fmt.Errorf("max steps: must be at least 1, but is %d", cfg.MaxSteps)
	}
	if cfg.ParseBudget < 0 {
		return fmt.Errorf("parse budget: must not be negative, but is %d", cfg.ParseBudget)
	}
	return nil
}

// pause gives the delay to use before answering an unauthorized request.
func (cfg Config) pause() time.Duration {
	if cfg.UnauthDelay < 0 {
		return 0
	}
	return cfg.UnauthDelay
}
