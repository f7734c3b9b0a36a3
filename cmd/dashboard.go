package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/curaious/taskdesk/internal/apiclient"
	"github.com/curaious/taskdesk/internal/collections"
	"github.com/curaious/taskdesk/internal/config"
	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/session"
	"github.com/curaious/taskdesk/internal/telemetry"
)

// dashboard wires the API client, the session provider and the terminal
// for one invocation.
type dashboard struct {
	client   *apiclient.Client
	session  *session.Provider
	out      io.Writer
	in       *bufio.Reader
	yes      bool
	teardown func()
}

func newDashboard(cmd *cobra.Command, restore bool) (*dashboard, error) {
	conf := config.ReadConfig()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	teardown := telemetry.NewProvider(conf.OTEL_SERVICE_NAME+"-dashboard", conf.OTEL_EXPORTER_OTLP_ENDPOINT, filepath.Join(os.TempDir(), "taskdesk-dashboard-traces.txt"))

	client := apiclient.New(conf.API_BASE_URL, time.Duration(conf.API_TIMEOUT_SECONDS)*time.Second)
	sess := session.NewProvider(client, session.NewStore(ctx, conf))
	client.SetTokenSource(sess)
	client.OnAuthExpired(sess.Expire)

	yes, _ := cmd.Flags().GetBool("yes")
	d := &dashboard{
		client:   client,
		session:  sess,
		out:      cmd.OutOrStdout(),
		in:       bufio.NewReader(cmd.InOrStdin()),
		yes:      yes,
		teardown: teardown,
	}

	if restore {
		if err := sess.Restore(ctx); err != nil {
			teardown()
			return nil, err
		}
		if sess.State() != session.StateAuthenticated {
			teardown()
			return nil, fmt.Errorf("not signed in, run `taskdesk dashboard login` first")
		}
	}
	return d, nil
}

func (d *dashboard) Close() {
	d.teardown()
}

// Confirm asks on stdin unless --yes was given.
func (d *dashboard) Confirm(prompt string) bool {
	if d.yes {
		return true
	}
	fmt.Fprintf(d.out, "%s [y/N] ", prompt)
	line, err := d.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (d *dashboard) table(header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(d.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func (d *dashboard) notice(n string) {
	if n != "" {
		fmt.Fprintln(d.out, n)
	}
}

// listAllowed checks the caller's listing scope before a direct page fetch.
func (d *dashboard) listAllowed(kind rbac.Kind) error {
	p, _ := d.session.CurrentPrincipal()
	if _, ok := rbac.ListScope(p, kind); !ok {
		return perrors.Denied("list", string(kind)+"s")
	}
	return nil
}

func (d *dashboard) pageFooter(info *pagination.Info, noun string) {
	if info != nil {
		fmt.Fprintf(d.out, "Page %d of %d (%d %s)\n", info.CurrentPage, info.TotalPages, info.Total, noun)
	}
}

// pageFlags returns the window asked for with --page/--limit. ok is false
// when --page was not given, in which case every page is read.
func pageFlags(cmd *cobra.Command, defaultLimit int) (page pagination.Page, ok bool) {
	if !cmd.Flags().Changed("page") {
		return pagination.Page{}, false
	}
	number, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	return pagination.New(number, limit, defaultLimit), true
}

func addPageFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().Int("page", 1, "Show only this page")
		c.Flags().Int("limit", 0, "Page size (at most 100)")
	}
}

var _ collections.Confirmer = (*dashboard)(nil)

// withDashboard runs fn against a restored session.
func withDashboard(fn func(ctx context.Context, d *dashboard, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d, err := newDashboard(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return fn(ctx, d, cmd, args)
	}
}

var dashboardCmd = &cobra.Command{
	Use:          "dashboard",
	Short:        "Terminal dashboard for the taskdesk API",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func init() {
	dashboardCmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to every confirmation")
	addPageFlags(projectsCmd, usersCmd, tenantsCmd)

	dashboardCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, themeCmd, overviewCmd)
	dashboardCmd.AddCommand(projectsCmd, projectCmd, usersCmd, tenantsCmd)

	rootCmd.AddCommand(dashboardCmd)
}
