package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridocs/go-kyc-console/guard"
	"github.com/veridocs/go-kyc-console/session"
)

var watchInterval time.Duration

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Notification center",
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the unread notification count until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAccess(guard.Requirements{}); err != nil {
			return err
		}

		watcher := session.NewNotificationWatcher(console.sess, console.client,
			func(count int) {
				fmt.Printf("%s  unread notifications: %d\n", time.Now().Format("15:04:05"), count)
			},
			session.WithPollInterval(watchInterval),
			session.WithWatcherLogger(console.log),
		)
		watcher.Start()
		defer watcher.Stop()

		waitForStopSignal()
		return nil
	},
}

func init() {
	notificationsWatchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "polling interval")
	notificationsCmd.AddCommand(notificationsWatchCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
