package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/justfishin/internal/config"
	"github.com/andresuchdata/justfishin/internal/fetch"
	"github.com/andresuchdata/justfishin/internal/session"
	"github.com/andresuchdata/justfishin/internal/storage"
	"github.com/andresuchdata/justfishin/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:      "justfishin",
		Usage:     "Fish an archive out of an S3-compatible bucket and untar it",
		ArgsUsage: "[filter ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bucket",
				Aliases: []string{"b"},
				Usage:   "Bucket to list (falls back to the default_bucket file)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("fatal error")
	}
}

func run(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.App.LogLevel)

	bucket := c.String("bucket")
	if bucket == "" {
		name, err := config.DefaultBucket(".")
		if err != nil {
			logger.Log.Debug().Err(err).Msg("no default bucket file")
			return cli.Exit("invalid bucket name", 2)
		}
		bucket = name
	}

	fmt.Println("Connecting...")

	client, err := storage.NewMinIOClient(storage.MinIOConfig{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    bucket,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	listing, err := client.ListObjects(ctx, "")
	if err != nil {
		return err
	}
	logger.Log.Debug().Str("bucket", bucket).Int("count", len(listing)).Msg("listed bucket")

	prompter := session.NewLinePrompter(os.Stdin, os.Stdout)
	fetcher := fetch.New(client, os.Stdout, ".")
	sess := session.New(bucket, listing, c.Args().Slice(), prompter, fetcher, os.Stdout)
	return sess.Run(ctx)
}
