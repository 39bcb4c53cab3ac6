package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/croutonhq/crouton/internal/render/desktop"
	"github.com/croutonhq/crouton/internal/toast"
)

var sendOpts struct {
	kind   string
	anchor string
	ttl    time.Duration
	sticky bool
	icon   string
}

var sendCmd = &cobra.Command{
	Use:   "send <title> [body]",
	Short: "Send a one-shot notification to the desktop",
	Long: `Send delivers a single notification through the freedesktop
notification daemon and waits until it is dismissed, either by its
timeout or by the user closing it.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.kind, "kind", "k", "info",
		"Notification kind (info, success, warning, error)")
	sendCmd.Flags().StringVarP(&sendOpts.anchor, "anchor", "a", "",
		"Screen anchor (top-right, top-left, bottom-right, bottom-left)")
	sendCmd.Flags().DurationVarP(&sendOpts.ttl, "ttl", "t", 0,
		"Time to show the notification (default: from config)")
	sendCmd.Flags().BoolVar(&sendOpts.sticky, "sticky", false,
		"Keep the notification until explicitly dismissed")
	sendCmd.Flags().StringVar(&sendOpts.icon, "icon", "",
		"Icon name for the desktop daemon")
}

func runSend(cmd *cobra.Command, args []string) error {
	title := args[0]
	body := ""
	if len(args) == 2 {
		body = args[1]
	}

	renderer, err := desktop.New(
		desktop.WithLogger(logger),
		desktop.WithAppIcon(sendOpts.icon),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to notification daemon: %w", err)
	}
	defer func() { _ = renderer.Close() }()

	system := toast.NewSystem(toast.StaticSurface(renderer), toast.WithLogger(logger))

	ttl := sendOpts.ttl
	if ttl == 0 && !sendOpts.sticky {
		ttl = getConfig().Durations.Default.Duration()
	}

	anchor := sendOpts.anchor
	if anchor == "" {
		anchor = getConfig().Display.Anchor
	}

	n, err := system.Notify(os.Getenv("USER"), toast.Params{
		Kind:   sendOpts.kind,
		Title:  title,
		Body:   body,
		TTL:    ttl,
		Anchor: anchor,
	})
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	logger.Debug("notification sent", "id", n.ID(), "kind", n.Kind().String())

	waitForDismissal(n)
	return nil
}

// waitForDismissal blocks until the notification is dismissed or the
// process is interrupted.
func waitForDismissal(n *toast.Notification) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n.Dismissed() {
				// Give the destroy callback time to close the remote
				// notification before the bus connection drops.
				time.Sleep(150 * time.Millisecond)
				return
			}
		case <-sigCh:
			n.Dismiss()
			time.Sleep(150 * time.Millisecond)
			return
		}
	}
}
