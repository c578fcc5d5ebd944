package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"idres/internal/identity/handler"
	"idres/internal/identity/models"
	"idres/internal/identity/service"
)

func (a *app) fieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fields",
		Short:   "List and edit identifiers in priority order",
		GroupID: "identity",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the active identifiers, highest priority first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			return a.printFields(sess.Config())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name...>",
		Short: "Append a custom identifier",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.mutation(func(ctx context.Context, s *service.Session, args []string) (models.State, error) {
			return s.AddCustom(ctx, strings.Join(args, " "))
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove <priority>",
		Aliases: []string{"rm"},
		Short:   "Remove an identifier; catalog identifiers can be restored later",
		Args:    cobra.ExactArgs(1),
		RunE: a.mutation(func(ctx context.Context, s *service.Session, args []string) (models.State, error) {
			i, err := parsePriority(args[0])
			if err != nil {
				return models.State{}, err
			}
			return s.Remove(ctx, i)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move an identifier to another priority",
		Args:  cobra.ExactArgs(2),
		RunE: a.mutation(func(ctx context.Context, s *service.Session, args []string) (models.State, error) {
			src, err := parsePriority(args[0])
			if err != nil {
				return models.State{}, err
			}
			dst, err := parsePriority(args[1])
			if err != nil {
				return models.State{}, err
			}
			return s.Reorder(ctx, src, dst)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <priority>",
		Short: "Enable or disable an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: a.mutation(func(ctx context.Context, s *service.Session, args []string) (models.State, error) {
			i, err := parsePriority(args[0])
			if err != nil {
				return models.State{}, err
			}
			return s.ToggleEnabled(ctx, i)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "limit <priority> <n>",
		Short: "Set how many values of the identifier a profile may hold",
		Args:  cobra.ExactArgs(2),
		RunE: a.mutation(func(ctx context.Context, s *service.Session, args []string) (models.State, error) {
			i, err := parsePriority(args[0])
			if err != nil {
				return models.State{}, err
			}
			limit, err := strconv.Atoi(args[1])
			if err != nil {
				return models.State{}, fmt.Errorf("limit must be a number: %q", args[1])
			}
			return s.SetMatchLimit(ctx, i, limit)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "frequency <priority> <Daily|Weekly|Monthly|Annually|Ever>",
		Short: "Set the window the match limit applies to",
		Args:  cobra.ExactArgs(2),
		RunE: a.mutation(func(ctx context.Context, s *service.Session, args []string) (models.State, error) {
			i, err := parsePriority(args[0])
			if err != nil {
				return models.State{}, err
			}
			f, err := models.ParseMatchFrequency(args[1])
			if err != nil {
				return models.State{}, err
			}
			return s.SetMatchFrequency(ctx, i, f)
		}),
	})
	return cmd
}

func (a *app) deletedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deleted",
		Short:   "Inspect and restore removed identifiers",
		GroupID: "identity",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show removed identifiers that can be restored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			resp := handler.ToConfigResponse(sess.Config())
			return a.render(resp.Deleted, func(w *tabwriter.Writer) {
				fieldTable(w, resp.Deleted, false)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "restore <id>",
		Short: "Append a removed identifier back at the lowest priority",
		Args:  cobra.ExactArgs(1),
		RunE: a.mutation(func(ctx context.Context, s *service.Session, args []string) (models.State, error) {
			return s.Restore(ctx, args[0])
		}),
	})
	return cmd
}

func (a *app) defaultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "defaults",
		Short:   "Default identifier set",
		GroupID: "identity",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "restore",
		Short: "Append every missing catalog identifier and clear the deleted list",
		Args:  cobra.NoArgs,
		RunE: a.mutation(func(ctx context.Context, s *service.Session, _ []string) (models.State, error) {
			return s.RestoreDefaults(ctx)
		}),
	})
	return cmd
}

func (a *app) catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "catalog",
		Short:   "Show the built-in identifiers and match frequencies",
		GroupID: "identity",
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			resp := handler.ToCatalogResponse()
			return a.render(resp, func(w *tabwriter.Writer) {
				fieldTable(w, resp.Identifiers, false)
				fmt.Fprintf(w, "\nfrequencies: %s\n", strings.Join(resp.Frequencies, ", "))
			})
		},
	}
}

type mutationFunc func(ctx context.Context, s *service.Session, args []string) (models.State, error)

// mutation runs fn against the session and prints the resulting field list.
func (a *app) mutation(fn mutationFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess, err := a.openSession(ctx)
		if err != nil {
			return err
		}
		st, err := fn(ctx, sess, args)
		if err != nil {
			return err
		}
		if err := a.unsaved(); err != nil {
			return err
		}
		return a.printFields(st)
	}
}

func (a *app) printFields(st models.State) error {
	resp := handler.ToConfigResponse(st)
	return a.render(resp, func(w *tabwriter.Writer) {
		fieldTable(w, resp.Fields, true)
		if n := len(resp.Deleted); n > 0 {
			fmt.Fprintf(w, "\n%d removed (see 'idresctl deleted list')\n", n)
		}
	})
}

// parsePriority turns a 1-based priority into a list index.
func parsePriority(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 {
		return 0, fmt.Errorf("priority must be a positive number: %q", s)
	}
	return p - 1, nil
}
