package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/floaties-dev/floaties/internal/errors"
	"github.com/floaties-dev/floaties/pkg/router"
)

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show which page a path resolves to",
		Long: `Resolve a path against the route table without serving it.

Examples:
  floaties resolve /posts/7
  floaties resolve /settings/404`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := router.CanonicalizeAndValidateNavPath(args[0])
			if err != nil {
				return errors.New("F302").WithDetail(args[0]).Wrap(err)
			}

			res := router.ResolveDetailed(path)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "route:     %s\n", describeRoute(res.Route))
			fmt.Fprintf(w, "path:      %s\n", res.Path)
			if res.RedirectTo != "" {
				fmt.Fprintf(w, "redirect:  %s\n", res.RedirectTo)
			}
			return nil
		},
	}
	return cmd
}

func describeRoute(r router.Route) string {
	if s, ok := r.(fmt.Stringer); ok {
		return s.String()
	}
	return r.Name()
}
