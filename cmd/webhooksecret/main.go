// Command webhooksecret generates a payment webhook secret and the bcrypt hash
// to configure as PAYMENT_WEBHOOK_SECRET_HASH. Pass -secret to hash an
// existing value instead.
package main

import (
	"flag"
	"fmt"
	"os"

	"finetrack/pkg/secrets"
)

func main() {
	existing := flag.String("secret", "", "hash this secret instead of generating one")
	flag.Parse()

	secret := *existing
	if secret == "" {
		var err error
		if secret, err = secrets.Generate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	hash, err := secrets.Hash(secret)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("secret: %s\nPAYMENT_WEBHOOK_SECRET_HASH=%s\n", secret, hash)
}
