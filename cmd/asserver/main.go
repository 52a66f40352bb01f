/*
Asserver starts an algestep server and begins listening for new connections.

Usage:

	asserver [flags]
	asserver [flags] -l [[ADDRESS]:PORT]

Once started, the algestep server will listen for HTTP requests and respond to
them using REST protocol. By default, it will listen on localhost:8080. This can
be changed with the --listen/-l flag, the config file, or the environment. The
address must be either a full address with port, such as "192.168.0.2:6001", or
just the port preceeded by a colon, such as ":6001".

Settings are taken from the flags first, then from the environment, then from
the [server] table of the config file.

If a JWT token secret is not given, one will be automatically generated. As a
consequence, in this mode of operation all tokens are rendered invalid as soon
as the server shuts down. This is suitable for testing, but a secret must be
given if running in production.

The flags are:

	-v, --version
		Give the current version of the algestep server and then exit.

	-c, --config FILE
		Use the given TOML config file. Defaults to "algestep.toml" in the
		current working directory if it exists.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		ALGESTEP_LISTEN_ADDRESS, and if that is not given, will default to
		localhost:8080.

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWT tokens. If there are less than
		32 bytes in the secret, it will be repeated until it is. The maximum
		size is 64 bytes. If not given, will default to the value of environment
		variable ALGESTEP_TOKEN_SECRET.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the following:
		inmem, sqlite. inmem has no further params. sqlite needs the path to the
		data directory such as sqlite:path/to/db_dir. If not given, will default
		to the value of environment variable ALGESTEP_DATABASE. If no DB is
		specified anywhere, an in-memory database is used.

	--debug
		Print parser and solver traces to stderr.
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/dekarrin/algestep/internal/config"
	"github.com/dekarrin/algestep/internal/trace"
	"github.com/dekarrin/algestep/internal/version"
	"github.com/dekarrin/algestep/server"
)

const (
	EnvListen = "ALGESTEP_LISTEN_ADDRESS"
	EnvSecret = "ALGESTEP_TOKEN_SECRET"
	EnvDB     = "ALGESTEP_DATABASE"
)

const defaultListen = "localhost:8080"

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of algestep server and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Use the given TOML config file.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for token generation.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
	flagDebug   = pflag.Bool("debug", false, "Print parser and solver traces to stderr.")
)

// setting gives the value of a flag if it was given, and otherwise the value
// of the environment variable env if it is set, and otherwise fromFile.
func setting(flagName string, flagVal *string, env string, fromFile string) string {
	if pflag.Lookup(flagName).Changed {
		return *flagVal
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fromFile
}

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (algestep v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	fileCfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	trace.SetDebug(fileCfg.Debug || *flagDebug)

	// get address info
	listenAddr := setting("listen", flagListen, EnvListen, fileCfg.Server.Listen)
	if listenAddr == "" {
		listenAddr = defaultListen
	}
	_, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
		os.Exit(1)
	}
	if _, err := strconv.Atoi(portStr); err != nil {
		fmt.Fprintf(os.Stderr, "%q is not a valid port number.\nDo -h for help.\n", portStr)
		os.Exit(1)
	}

	// flags and environment win over the config file
	fileCfg.Server.DB = setting("db", flagDB, EnvDB, fileCfg.Server.DB)
	fileCfg.Server.Secret = setting("secret", flagSecret, EnvSecret, fileCfg.Server.Secret)

	cfg, err := server.FromFile(fileCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err)
		os.Exit(1)
	}

	if cfg.Secret == nil {
		// use all 64 possible bytes if doing a generated secret
		cfg.Secret = make([]byte, server.MaxSecretSize)
		if _, err := rand.Read(cfg.Secret); err != nil {
			log.Fatalf("FATAL could not generate token secret: %s", err.Error())
		}

		// yell at the user bc they should know their secret might be bad
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	}

	// configuration complete, initialize the server
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("FATAL could not start server: %s", err.Error())
	}
	defer srv.Close()
	log.Printf("DEBUG Server initialized")

	log.Printf("INFO  Starting algestep server %s...", version.ServerCurrent)
	if err := srv.ServeForever(listenAddr); err != nil {
		log.Printf("FATAL %s", err.Error())
		os.Exit(1)
	}
}
