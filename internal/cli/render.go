package cli

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	app appFlags
}

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	Path     string `json:"path"`
	Status   int    `json:"status"`
	Route    string `json:"route,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	HTML     string `json:"html,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <path>",
		Short: "Render one page as the server would",
		Long: `Render the page for a path and print its status and HTML.

Redirects print their location instead of a page.

Examples:
  isomorph render /
  isomorph render /user/ada --users users.yaml
  isomorph render /about --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}
	opts.app.register(cmd)

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	if !strings.HasPrefix(path, "/") {
		return NewExitError(ExitCommandError, fmt.Sprintf("path must start with /: %q", path))
	}

	ctx := cmd.Context()
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	a, err := loadApp(ctx, &opts.app, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	res, err := a.server.Serve(ctx, path, nil)
	if err != nil {
		if ferr := out.Failure("E_RENDER", err.Error(), RenderResult{Path: path}); ferr != nil {
			return ferr
		}
		return WrapExitError(ExitFailure, "render failed", err)
	}

	result := RenderResult{
		Path:     path,
		Status:   res.Status,
		Redirect: res.Redirect,
		HTML:     res.HTML,
	}
	if res.Route != nil {
		result.Route = res.Route.Name
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%d %s", res.Status, http.StatusText(res.Status))
	if res.Redirect != "" {
		fmt.Fprintf(&text, "\nLocation: %s", res.Redirect)
	} else {
		fmt.Fprintf(&text, "\n\n%s", res.HTML)
	}
	return out.Success(result, text.String())
}
