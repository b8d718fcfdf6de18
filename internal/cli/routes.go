package cli

import (
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/isomorph/internal/router"
)

// RoutesOptions holds flags for the routes command.
type RoutesOptions struct {
	*RootOptions
	app appFlags
}

// NewRoutesCommand creates the routes command.
func NewRoutesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RoutesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the registered routes",
		Long: `List routes in registration order, then error routes by status.

Examples:
  isomorph routes
  isomorph routes --routes routes.cue --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(opts, cmd)
		},
	}
	opts.app.register(cmd)

	return cmd
}

func runRoutes(opts *RoutesOptions, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	a, err := loadApp(cmd.Context(), &opts.app, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	routes := a.root.Router().Routes()
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Success(routes, routeTable(routes))
}

// routeTable lays routes out in aligned columns.
func routeTable(routes []router.RouteInfo) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	tw.Write([]byte("STATUS\tNAME\tMETHOD\tPATH\tACTION\tTITLE\n"))
	for _, r := range routes {
		path := r.Path
		if path == "" {
			path = "-"
		}
		action := r.Action
		if action == "" {
			action = "-"
		}
		tw.Write([]byte(strings.Join([]string{
			strconv.Itoa(r.Status), r.Name, r.Method, path, action, r.Title,
		}, "\t") + "\n"))
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}
