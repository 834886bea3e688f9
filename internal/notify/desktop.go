package notify

import (
	"context"
	"fmt"
	"os/exec"
)

// Desktop raises notifications with notify-send.
type Desktop struct {
	AppName string
}

func (d Desktop) Notify(ctx context.Context, title, body string) error {
	args := []string{"--urgency=normal"}
	if d.AppName != "" {
		args = append(args, "--app-name="+d.AppName)
	}
	args = append(args, title, body)

	if out, err := exec.CommandContext(ctx, "notify-send", args...).CombinedOutput(); err != nil {
		return fmt.Errorf("notify-send: %w: %s", err, out)
	}
	return nil
}
