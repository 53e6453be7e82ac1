// Command hash-password reads an admin password from stdin and prints the
// hash to configure as auth.password_hash.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"loanlocator/internal/auth"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		useBcrypt bool
		cost      int
	)
	fs.BoolVar(&useBcrypt, "bcrypt", false, "emit a bcrypt hash instead of SHA-256 hex")
	fs.IntVar(&cost, "cost", 0, "bcrypt cost (default 10)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	password, err := readPassword(stdin)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "hash-password: %v\n", err)
		return 1
	}
	if len(password) < auth.MinPasswordLength {
		_, _ = fmt.Fprintf(stderr, "hash-password: %v\n", auth.ErrPasswordTooShort)
		return 1
	}

	hash := auth.HashSHA256(password)
	if useBcrypt {
		if hash, err = auth.HashBcrypt(password, cost); err != nil {
			_, _ = fmt.Fprintf(stderr, "hash-password: %v\n", err)
			return 1
		}
	}
	if _, err := fmt.Fprintf(stdout, "%s\n\nSet it in the config file:\n  auth:\n    password_hash: %q\nor export LOANLOCATOR_ADMIN_PASSWORD_HASH=%q\n", hash, hash, hash); err != nil {
		return 1
	}
	return 0
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
