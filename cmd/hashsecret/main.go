// Command hashsecret prints the bcrypt hash of a client secret read from stdin,
// for use as TOOL_CLIENT_SECRET_HASH.
//
//	openssl rand -hex 24 | tee secret.txt | go run ./cmd/hashsecret
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sakif/sandbox-tools/internal/auth"
)

func main() {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(os.Stderr, "hashsecret: reading secret from stdin:", err)
		os.Exit(1)
	}

	hash, err := auth.HashSecret(strings.TrimRight(line, "\r\n"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashsecret:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
