package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	domainauth "github.com/revanth-rampal/trail/internal/domain/auth"
	"github.com/revanth-rampal/trail/internal/domain/route"
)

type routesOptions struct {
	Role domainauth.Role
}

type accessOptions struct {
	Path string
	// Role is empty for an anonymous visitor.
	Role domainauth.Role
}

func runRoutes(cmdCtx *commandContext, args []string) error {
	opts, err := parseRoutesFlags(args, cmdCtx.Stderr)
	if err != nil {
		return err
	}
	policy, err := route.DefaultPolicy()
	if err != nil {
		return fmt.Errorf("route table is invalid: %w", err)
	}
	if opts.Role != "" {
		return printMenu(cmdCtx.Stdout, policy, opts.Role)
	}
	return printRouteTable(cmdCtx.Stdout, policy)
}

func parseRoutesFlags(args []string, out io.Writer) (routesOptions, error) {
	fs := flag.NewFlagSet("routes", flag.ContinueOnError)
	fs.SetOutput(out)

	var role string
	fs.StringVar(&role, "role", "", "Print the navigation menu for this role instead of the route table")
	if err := fs.Parse(args); err != nil {
		return routesOptions{}, err
	}

	var opts routesOptions
	if role != "" {
		r, err := domainauth.ParseRole(role)
		if err != nil {
			return routesOptions{}, err
		}
		opts.Role = r
	}
	return opts, nil
}

func printRouteTable(w io.Writer, policy *route.Policy) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "PATH\tGROUP\tPAGE\tNOTES\n"); err != nil {
		return err
	}
	for _, m := range policy.Tree().Entries() {
		page := m.Route.Page
		if page == "" {
			page = "-"
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\n", m.Route.Path, m.Group(), page, routeNotes(m)); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "\nROLE\tLANDING\n"); err != nil {
		return err
	}
	for _, role := range domainauth.Roles() {
		if err := writef(tw, "%s\t%s\n", role, policy.LandingPath(role)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func routeNotes(m route.Match) string {
	var notes []string
	if m.GuestOnly {
		notes = append(notes, "guest-only")
	}
	if m.Route.Base {
		notes = append(notes, "landing")
	}
	if m.Route.Redirect != "" {
		notes = append(notes, "redirect "+m.Route.Redirect)
	}
	if len(notes) == 0 {
		return "-"
	}
	return strings.Join(notes, ", ")
}

func printMenu(w io.Writer, policy *route.Policy, role domainauth.Role) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "LABEL\tPATH\n"); err != nil {
		return err
	}
	for _, item := range route.Menu(policy, role) {
		if err := writef(tw, "%s\t%s\n", item.Label, item.Path); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runAccess(cmdCtx *commandContext, args []string) error {
	opts, err := parseAccessFlags(args, cmdCtx.Stderr)
	if err != nil {
		return err
	}
	policy, err := route.DefaultPolicy()
	if err != nil {
		return fmt.Errorf("route table is invalid: %w", err)
	}

	d := policy.Decide(accessSnapshot(opts.Role), opts.Path)
	return printDecision(cmdCtx.Stdout, policy, opts.Path, d)
}

func parseAccessFlags(args []string, out io.Writer) (accessOptions, error) {
	fs := flag.NewFlagSet("access", flag.ContinueOnError)
	fs.SetOutput(out)

	var opts accessOptions
	var role string
	fs.StringVar(&opts.Path, "path", "", "Request path to evaluate (required)")
	fs.StringVar(&role, "role", "", "Role of the signed-in user; omit for an anonymous visitor")
	if err := fs.Parse(args); err != nil {
		return accessOptions{}, err
	}
	if strings.TrimSpace(opts.Path) == "" {
		return accessOptions{}, errors.New("--path is required")
	}
	if role != "" {
		r, err := domainauth.ParseRole(role)
		if err != nil {
			return accessOptions{}, err
		}
		opts.Role = r
	}
	return opts, nil
}

func accessSnapshot(role domainauth.Role) domainauth.Snapshot {
	if role == "" {
		return domainauth.Snapshot{Status: domainauth.StatusAnonymous}
	}
	return domainauth.Snapshot{
		Status:   domainauth.StatusAuthenticated,
		Identity: &domainauth.Identity{ID: "cli", DisplayName: "trail-admin", Role: role},
	}
}

func printDecision(w io.Writer, policy *route.Policy, path string, d route.Decision) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"path", route.Normalize(path)},
		{"required", policy.RequiredGroup(path).String()},
		{"decision", d.Kind.String()},
	}
	if d.Target != "" {
		rows = append(rows, [2]string{"target", d.Target})
	}
	if d.Route != nil && d.Route.Page != "" {
		rows = append(rows, [2]string{"page", d.Route.Page})
	}
	for _, k := range slices.Sorted(maps.Keys(d.Params)) {
		rows = append(rows, [2]string{"param " + k, d.Params[k]})
	}
	for _, r := range rows {
		if err := writef(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}
