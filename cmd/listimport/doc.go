// Command listimport imports movie and TV lists from the command line.
//
// It offers two subcommands:
//
//	listimport detect FILE
//	listimport run --collection list --owner UUID --id UUID [--policy update] FILE
//
// detect only reads the file and needs no configuration. run uses the same
// environment configuration as the server (DATABASE_URL, TMDB_API_KEY, ...)
// and loads a .env file when present.
package main
