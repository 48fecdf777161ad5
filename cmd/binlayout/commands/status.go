package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/binlayout/cmd/binlayout/cmdutil"
	"github.com/marmos91/binlayout/internal/cli/output"
	"github.com/marmos91/binlayout/internal/cli/timeutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of the binlayout service of the current context, or of
--server.

Examples:
  # Check status of the current context
  binlayout status

  # Output as JSON
  binlayout status -o json`,
	Args:        cobra.NoArgs,
	Annotations: cmdutil.NoConfig(),
	RunE:        runStatus,
}

// ServerStatus represents the server status for display.
type ServerStatus struct {
	Server    string     `json:"server" yaml:"server"`
	Status    string     `json:"status" yaml:"status"`
	Healthy   bool       `json:"healthy" yaml:"healthy"`
	Ready     bool       `json:"ready" yaml:"ready"`
	Service   string     `json:"service,omitempty" yaml:"service,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	UptimeSec int64      `json:"uptime_sec,omitempty" yaml:"uptime_sec,omitempty"`
	Layouts   int        `json:"layouts" yaml:"layouts"`
	Latency   string     `json:"latency,omitempty" yaml:"latency,omitempty"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	client, err := cmdutil.RequireRemoteClient()
	if err != nil {
		return err
	}

	status := ServerStatus{Server: client.BaseURL(), Status: "unreachable"}

	if live, err := client.Health(cmd.Context()); err != nil {
		status.Error = err.Error()
	} else {
		status.Status = live.Status
		status.Healthy = live.Healthy()
		if l, err := live.Liveness(); err == nil {
			status.Service = l.Service
			status.StartedAt = &l.StartedAt
			status.UptimeSec = l.UptimeSec
		}
	}

	if status.Healthy {
		ready, err := client.Ready(cmd.Context())
		switch {
		case err != nil:
			status.Status = "unready"
			status.Error = err.Error()
		case ready != nil:
			status.Ready = ready.Healthy()
			if rd, err := ready.Readiness(); err == nil {
				status.Layouts = rd.Layouts
				status.Latency = rd.Latency
			}
		}
	}

	p, err := cmdutil.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if p.Format() != output.FormatTable {
		return p.Print(status)
	}
	printStatusTable(p.Writer(), p.ColorEnabled(), status)
	return nil
}

func printStatusTable(w io.Writer, color bool, status ServerStatus) {
	dot := func(code, mark string) string {
		if !color {
			return mark + " " + status.Status
		}
		return fmt.Sprintf("\033[%sm%s %s\033[0m", code, mark, status.Status)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "binlayout Server Status")
	_, _ = fmt.Fprintln(w, "=======================")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "  Server:     %s\n", status.Server)

	switch {
	case status.Healthy && status.Ready:
		_, _ = fmt.Fprintf(w, "  Status:     %s\n", dot("32", "●"))
	case status.Status == "unreachable":
		_, _ = fmt.Fprintf(w, "  Status:     %s\n", dot("31", "○"))
	default:
		_, _ = fmt.Fprintf(w, "  Status:     %s\n", dot("33", "●"))
	}

	if status.Service != "" {
		_, _ = fmt.Fprintf(w, "  Service:    %s\n", status.Service)
	}
	if status.StartedAt != nil {
		_, _ = fmt.Fprintf(w, "  Started:    %s\n", timeutil.FormatTime(*status.StartedAt))
		_, _ = fmt.Fprintf(w, "  Uptime:     %s\n", timeutil.FormatUptime(time.Duration(status.UptimeSec)*time.Second))
	}
	if status.Ready {
		_, _ = fmt.Fprintf(w, "  Layouts:    %d\n", status.Layouts)
		_, _ = fmt.Fprintf(w, "  Latency:    %s\n", status.Latency)
	}
	if status.Error != "" {
		_, _ = fmt.Fprintf(w, "  Error:      %s\n", status.Error)
	}
	_, _ = fmt.Fprintln(w)
}
