// Command tokengen mints an access token for the configured secret key.
// Intended for operators and integration scripts: the server verifies
// tokens but does not issue them itself.
//
// Usage:
//
//	tokengen -s <secret> -t <minutes> -n <subject>
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/revkeeper/internal/flagx"
	"github.com/dmitrijs2005/revkeeper/internal/server/auth"
	"github.com/dmitrijs2005/revkeeper/internal/server/config"
)

func main() {

	cfg := config.LoadConfig()

	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	subject := fs.String("n", "admin", "token subject")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-n"})); err != nil {
		log.Fatalf("flag parse error: %v", err)
	}

	token, err := auth.GenerateToken(*subject, []byte(cfg.SecretKey), cfg.TokenValidityDuration)
	if err != nil {
		log.Fatalf("token generation error: %v", err)
	}

	fmt.Println(token)
}
