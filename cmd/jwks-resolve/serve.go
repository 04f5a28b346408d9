package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	jwksclient "github.com/auth0/go-jwks-client"
	"github.com/auth0/go-jwks-client/jwks"
)

const pemContentType = "application/x-pem-file"

var cmdServe = cli.Command{
	Name:  "serve",
	Usage: "serve resolved signing keys over HTTP",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:   "listen",
			Usage:  "listen `ADDRESS`",
			EnvVar: "JWKS_LISTEN",
			Value:  ":8080",
		},
	},
	Action: func(c *cli.Context) error {
		logger, err := newLogger(c)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		registry := prometheus.NewRegistry()
		client, err := newClient(ctx, c, logger, registry)
		if err != nil {
			return err
		}

		gin.SetMode(gin.ReleaseMode)
		server := &http.Server{
			Addr:              c.String("listen"),
			Handler:           newRouter(client, registry, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.WithField("addr", server.Addr).WithField("jwks_url", client.URL()).Info("serving signing keys")
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return cli.NewExitError(err.Error(), 1)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

// newRouter exposes the client over HTTP:
//
//	GET /keys/:kid  PEM certificate, or JSON with ?format=json or Accept: application/json
//	GET /healthz
//	GET /metrics
func newRouter(client *jwksclient.Client, gatherer prometheus.Gatherer, logger logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cachedKeys": client.CachedKeys()})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	router.GET("/keys/:kid", func(c *gin.Context) {
		kid := c.Param("kid")

		key, err := client.GetSigningKey(c.Request.Context(), kid)
		if err != nil {
			status := statusFor(err)
			logger.WithField("kid", kid).WithField("status", status).Debug(err.Error())
			c.JSON(status, gin.H{"error": jwks.KindOf(err).String(), "message": err.Error()})
			return
		}

		if c.Query("format") == "json" || c.NegotiateFormat(pemContentType, gin.MIMEJSON) == gin.MIMEJSON {
			c.JSON(http.StatusOK, key)
			return
		}

		c.Data(http.StatusOK, pemContentType, []byte(key.PublicKey))
	})

	return router
}

func statusFor(err error) int {
	switch jwks.KindOf(err) {
	case jwks.KindSigningKeyNotFound:
		return http.StatusNotFound
	case jwks.KindJWKS:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
