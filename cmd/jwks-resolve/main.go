// Command jwks-resolve resolves key IDs against a JWKS endpoint and prints or
// serves the matching RSA signing keys as PEM certificates.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	jwksclient "github.com/auth0/go-jwks-client"
	"github.com/auth0/go-jwks-client/internal/oidc"
)

// Version is set at build time.
var Version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "jwks-resolve"
	app.Version = Version
	app.Usage = "resolve JWT key IDs to RSA signing keys published in a JWKS"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "url, u",
			Usage:  "JWKS endpoint `URL`",
			EnvVar: "JWKS_URL",
		},
		cli.StringFlag{
			Name:   "issuer, i",
			Usage:  "OIDC issuer `URL`, used to discover the JWKS endpoint when --url is not set",
			EnvVar: "JWKS_ISSUER",
		},
		cli.StringFlag{
			Name:   "log-level, l",
			Usage:  "log level (debug, info, warn, error)",
			EnvVar: "JWKS_LOG_LEVEL",
			Value:  "info",
		},
	}

	app.Commands = []cli.Command{
		cmdGet,
		cmdServe,
	}

	return app
}

func newLogger(c *cli.Context) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.GlobalString("log-level"))
	if err != nil {
		return nil, cli.NewExitError(err.Error(), 2)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	return logger, nil
}

// jwksURL returns --url, or the jwks_uri discovered from --issuer.
func jwksURL(ctx context.Context, c *cli.Context, logger logrus.FieldLogger) (string, error) {
	if u := c.GlobalString("url"); u != "" {
		return u, nil
	}

	issuer := c.GlobalString("issuer")
	if issuer == "" {
		return "", cli.NewExitError("one of --url or --issuer is required", 2)
	}

	issuerURL, err := url.Parse(issuer)
	if err != nil {
		return "", cli.NewExitError(fmt.Sprintf("invalid issuer URL: %v", err), 2)
	}

	endpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, nil, *issuerURL)
	if err != nil {
		return "", err
	}
	logger.WithField("jwks_uri", endpoints.JWKSURI).Debug("discovered JWKS endpoint")

	return endpoints.JWKSURI, nil
}

func newClient(ctx context.Context, c *cli.Context, logger *logrus.Logger, registerer prometheus.Registerer) (*jwksclient.Client, error) {
	u, err := jwksURL(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	opts := []jwksclient.Option{
		jwksclient.WithURL(u),
		jwksclient.WithLogger(jwksclient.NewLogrusLogger(logger)),
	}
	if registerer != nil {
		opts = append(opts, jwksclient.WithMetrics(jwksclient.NewPrometheusMetrics(registerer)))
	}

	client, err := jwksclient.New(opts...)
	if err != nil {
		return nil, cli.NewExitError(err.Error(), 2)
	}
	return client, nil
}
