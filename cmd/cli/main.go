// Command cli is the operator utility for the auth server. It hashes
// passwords for manual row edits and seeds a fresh database with the
// initial accounts.
//
// Usage:
//
//	cli hashpw
//	cli seed [-a addr] [-d dsn] ...
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/photobridge/authserver/internal/cryptox"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "hashpw":
		err = runHashPassword()
	case "seed":
		err = runSeed(context.Background())
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cli <hashpw|seed> [flags]")
}

// runHashPassword prompts for a password without echo and prints its bcrypt
// hash, suitable for pasting into the users table.
func runHashPassword() error {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return err
	}
	if len(password) == 0 {
		return errors.New("empty password")
	}

	hash, err := cryptox.HashPassword(string(password))
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
