package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/app"
	"github.com/aussiebroadwan/tokenreg/pkg/cryptox"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-admin-key" {
		if err := hashAdminKey(os.Args[2:], os.Stdin, os.Stdout); err != nil {
			log.Fatalf("hash-admin-key: %v", err)
		}
		return
	}

	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

// hashAdminKey prints the ADMIN_KEY_HASH value for a secret given as the
// only argument or on the first line of stdin.
func hashAdminKey(args []string, in io.Reader, out io.Writer) error {
	var secret string
	switch len(args) {
	case 0:
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		secret = strings.TrimRight(line, "\r\n")
	case 1:
		secret = args[0]
	default:
		return errors.New("usage: tokenreg hash-admin-key [secret]")
	}

	if secret == "" {
		return errors.New("empty secret")
	}

	hash, err := cryptox.HashSecret(secret)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
