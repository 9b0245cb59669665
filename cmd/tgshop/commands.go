package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Cheertaboi/tgshop/internal/auth"
	"github.com/Cheertaboi/tgshop/internal/models"
)

var addrFlag = &cli.StringFlag{
	Name:  "addr",
	Usage: "listen address, overrides SERVER_HOST and SERVER_PORT",
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the storefront HTTP API",
		Flags: []cli.Flag{addrFlag},
		Action: func(c *cli.Context) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			if err := env.cfg.RequireBotToken(); err != nil {
				return err
			}
			srv, err := buildServer(c.Context, env, c.String("addr"))
			if err != nil {
				return err
			}
			return runServer(c.Context, env, srv)
		},
	}
}

func botCommand() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "run the launcher bot (long polling)",
		Action: func(c *cli.Context) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			b, err := buildBot(env)
			if err != nil {
				return err
			}
			return b.Run(c.Context)
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run the HTTP API and the bot in one process",
		Flags: []cli.Flag{addrFlag},
		Action: func(c *cli.Context) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			if err := env.cfg.RequireBotToken(); err != nil {
				return err
			}
			srv, err := buildServer(c.Context, env, c.String("addr"))
			if err != nil {
				return err
			}
			b, err := buildBot(env)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(c.Context)
			g.Go(func() error { return runServer(ctx, env, srv) })
			g.Go(func() error { return b.Run(ctx) })
			return g.Wait()
		},
	}
}

func signCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "print a signed launch payload for local testing of the storefront",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "token", Usage: "bot token", EnvVars: []string{"BOT_TOKEN"}, Required: true},
			&cli.Int64Flag{Name: "user-id", Usage: "user id embedded in the payload", Required: true},
			&cli.StringFlag{Name: "first-name", Usage: "display name", Value: "Test"},
			&cli.StringFlag{Name: "query-id", Usage: "query_id field", Value: "AAAAAAAAAAAAAAAA"},
			&cli.Int64Flag{Name: "auth-date", Usage: "unix time of the payload, defaults to now"},
		},
		Action: func(c *cli.Context) error {
			authDate := c.Int64("auth-date")
			if authDate == 0 {
				authDate = time.Now().Unix()
			}
			user, err := json.Marshal(models.User{ID: c.Int64("user-id"), FirstName: c.String("first-name")})
			if err != nil {
				return err
			}
			payload := auth.Sign(map[string]string{
				"auth_date": strconv.FormatInt(authDate, 10),
				"query_id":  c.String("query-id"),
				"user":      string(user),
			}, c.String("token"))
			_, err = fmt.Fprintln(c.App.Writer, payload)
			return err
		},
	}
}
