package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/iyunix/finsarthi/internal/client"
	"github.com/iyunix/finsarthi/internal/services"
	"github.com/iyunix/finsarthi/internal/services/matching"
)

var watchOpts struct {
	baseURL    string
	token      string
	identifier string
	password   string
	interval   time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll a customer's chat requests until no coach is left to answer",
	Long: `Logs in as a customer (or uses --token) and polls the customer's
chat requests on a fixed interval. Every change of status is printed.
The command exits once no request is pending.`,
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchOpts.baseURL, "url", "http://localhost:8080", "API base URL")
	f.StringVar(&watchOpts.token, "token", "", "bearer token; skips login")
	f.StringVar(&watchOpts.identifier, "login", "", "email or phone to log in with")
	f.StringVar(&watchOpts.password, "password", os.Getenv("FINSARTHI_PASSWORD"), "password (defaults to FINSARTHI_PASSWORD)")
	f.DurationVar(&watchOpts.interval, "interval", matching.DefaultPollInterval, "poll interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(watchOpts.baseURL, watchOpts.token)
	if c.Token == "" {
		if watchOpts.identifier == "" {
			return errors.New("either --token or --login is required")
		}
		if err := c.Login(ctx, watchOpts.identifier, watchOpts.password); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	seen := map[uint]string{}
	onUpdate := func(reqs []matching.OutgoingRequest) {
		for _, r := range reqs {
			status := string(r.Status)
			if seen[r.ID] == status {
				continue
			}
			seen[r.ID] = status
			coach := fmt.Sprintf("coach #%d", r.CoachID)
			if r.Coach != nil {
				coach = r.Coach.Name
			}
			fmt.Fprintf(out, "%s  request %d with %s: %s\n", time.Now().Format(time.Kitchen), r.ID, coach, status)
		}
	}

	poller := matching.NewPoller(watchOpts.interval, c.Fetch, onUpdate, services.NewLogger("finsarthi-watch"))
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintln(out, "no pending requests")
	return nil
}
