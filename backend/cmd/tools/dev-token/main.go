// Command dev-token mints a bearer token the way the identity provider
// does, for local development against the API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/threadly-dev/threadly/shared/config"
	"github.com/threadly-dev/threadly/shared/domain"
	"github.com/threadly-dev/threadly/shared/jwt"
)

func main() {
	var (
		configFolder string
		subject      string
		name         string
		picture      string
		ttl          time.Duration
	)
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.StringVar(&subject, "sub", "", "external user id (required)")
	flag.StringVar(&name, "name", "", "display name hint")
	flag.StringVar(&picture, "picture", "", "avatar url hint")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if subject == "" {
		fmt.Fprintln(os.Stderr, "-sub is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustLoad(configFolder)
	token, err := jwt.New(cfg.IdentityKey()).NewToken(domain.Identity{ExternalId: subject, Name: name, Image: picture}, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
