// Command hashpw prints ADMIN_PASSWORD_SALT and ADMIN_PASSWORD_HASH lines for a password.
//
//	echo -n 's3cret' | hashpw
//	hashpw -password 's3cret'
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"parties247/internal/adapters/auth"
)

const minPasswordLen = 8

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hashpw", flag.ContinueOnError)
	password := fs.String("password", "", "password to hash (read from stdin when empty)")
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw := *password
	if pw == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if len(pw) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	hasher := auth.NewBcryptHasher(*cost)
	salt, err := hasher.GenerateSalt()
	if err != nil {
		return err
	}
	hash, err := hasher.Hash(salt, pw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "ADMIN_PASSWORD_SALT=%s\nADMIN_PASSWORD_HASH='%s'\n", salt, hash)
	return err
}
