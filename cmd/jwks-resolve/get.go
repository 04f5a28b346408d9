package main

import (
	"context"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli"

	jwksclient "github.com/auth0/go-jwks-client"
	"github.com/auth0/go-jwks-client/jwks"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var cmdGet = cli.Command{
	Name:      "get",
	Usage:     "print the signing keys for the given kids",
	ArgsUsage: "KID [KID...]",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "format, f",
			Usage: "output format (pem, json)",
			Value: "pem",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return cli.NewExitError("at least one kid is required", 2)
		}

		format := c.String("format")
		if format != "pem" && format != "json" {
			return cli.NewExitError(fmt.Sprintf("unknown format %q", format), 2)
		}

		logger, err := newLogger(c)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := newClient(ctx, c, logger, nil)
		if err != nil {
			return err
		}

		keys, err := resolveKeys(ctx, client, c.Args())
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		return writeKeys(c.App.Writer, format, keys)
	},
}

// resolveKeys resolves every kid in order and stops at the first failure.
func resolveKeys(ctx context.Context, client *jwksclient.Client, kids []string) ([]jwks.SigningKey, error) {
	keys := make([]jwks.SigningKey, 0, len(kids))
	for _, kid := range kids {
		key, err := client.GetSigningKey(ctx, kid)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func writeKeys(w io.Writer, format string, keys []jwks.SigningKey) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(keys)
	}

	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "# kid: %s\n%s", key.KID, key.PublicKey); err != nil {
			return err
		}
	}
	return nil
}
