// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of algestep.
const Current = "0.4.0"

// ServerCurrent is the string representing the current version of the algestep
// server.
const ServerCurrent = "0.2.0"

// Grammar is the version of the math grammar understood by this build. It
// changes whenever an expression that used to parse would parse differently.
const Grammar = "1.1.0"
