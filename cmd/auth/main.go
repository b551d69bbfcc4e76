// Package main provides the iBroadcast authorization tool. It runs the OAuth
// device code flow and prints the refresh token to put in the config.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

var (
	app      = kingpin.New("wavedeck-auth", "iBroadcast authorization tool for wavedeck")
	clientID = app.Flag("client-id", "iBroadcast OAuth client ID").Envar("IBROADCAST_CLIENT_ID").Required().String()
	oauthURL = app.Flag("oauth-url", "OAuth base URL").Default("https://oauth.ibroadcast.com").String()
	timeout  = app.Flag("timeout", "How long to wait for the authorization").Default("5m").Duration()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	conf := &oauth2.Config{
		ClientID: *clientID,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: *oauthURL + "/authorize",
			TokenURL:      *oauthURL + "/token",
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	device, err := conf.DeviceAuth(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start device authorization: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Please visit the following URL to authorize wavedeck:")
	fmt.Println("")
	if device.VerificationURIComplete != "" {
		fmt.Println(device.VerificationURIComplete)
	} else {
		fmt.Println(device.VerificationURI)
		fmt.Printf("and enter the code: %s\n", device.UserCode)
	}
	fmt.Println("")
	fmt.Println("Waiting for authorization...")

	token, err := conf.DeviceAccessToken(ctx, device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authorization failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("")
	fmt.Println("=== Authorization Successful ===")
	fmt.Println("")
	fmt.Println("Refresh Token:")
	fmt.Println(token.RefreshToken)
	if !token.Expiry.IsZero() {
		fmt.Printf("(access token valid until %s)\n", token.Expiry.Format(time.RFC3339))
	}
	fmt.Println("")
	fmt.Println("Add this to your config.yaml:")
	fmt.Println("")
	fmt.Println("ibroadcast:")
	fmt.Printf("  refresh_token: \"%s\"\n", token.RefreshToken)
	fmt.Println("")
	fmt.Println("Or set as environment variable:")
	fmt.Printf("export IBROADCAST_REFRESH_TOKEN=\"%s\"\n", token.RefreshToken)
}
