package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/hylla/portdash/internal/adapters/server"
	"github.com/hylla/portdash/internal/adapters/server/common"
	"github.com/hylla/portdash/internal/adapters/storage/sqlite"
	"github.com/hylla/portdash/internal/app"
	"github.com/hylla/portdash/internal/config"
	"github.com/hylla/portdash/internal/dashboard"
	"github.com/spf13/cobra"
)

// newListCmd prints the signed-in user's projects.
func newListCmd(c *cli) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your projects, most recently updated first",
		Long: `List your projects from the remote project service.

By default only the first page (9 projects) is printed; --all keeps
loading pages until the service returns a short page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runList(cmd.Context(), cmd.OutOrStdout(), all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "load every page")
	return cmd
}

// runList loads pages through the dashboard controller and prints them as a table.
func (c *cli) runList(ctx context.Context, out io.Writer, all bool) error {
	actor := actorFromConfig(c.cfg)
	if !actor.IsAuthorized {
		return errNotSignedIn
	}
	client, err := c.remoteClient()
	if err != nil {
		return err
	}

	ctrl := dashboard.NewController(client, c.logger)
	c.logger.Info("command flow start", "command", "list", "actor_id", actor.ID, "all", all)
	if ctrl.SetActor(ctx, actor) == dashboard.OutcomeFailed {
		return fmt.Errorf("list projects: %w", ctrl.Snapshot().LastFailure)
	}
	for all && ctrl.Snapshot().HasMore {
		outcome, issued := ctrl.LoadMore(ctx)
		if !issued {
			break
		}
		if outcome == dashboard.OutcomeFailed {
			return fmt.Errorf("list projects: %w", ctrl.Snapshot().LastFailure)
		}
	}

	snap := ctrl.Snapshot()
	if len(snap.Projects) == 0 {
		_, _ = fmt.Fprintln(out, "You have no projects yet!")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "UPDATED\tID\tTITLE\tCATEGORY")
	for _, p := range snap.Projects {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.UpdatedAt.Local().Format("2006-01-02"), p.ID, p.Title, p.Category)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write project table: %w", err)
	}
	if snap.HasMore {
		_, _ = fmt.Fprintln(out, "more projects available; rerun with --all")
	}
	c.logger.Info("command flow complete", "command", "list", "count", len(snap.Projects))
	return nil
}

// newDeleteCmd deletes one project after confirmation.
func newDeleteCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete one of your projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDelete(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// runDelete confirms and issues one remote delete.
func (c *cli) runDelete(ctx context.Context, in io.Reader, out io.Writer, projectID string, yes bool) error {
	actor := actorFromConfig(c.cfg)
	if !actor.IsAuthorized {
		return errNotSignedIn
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return fmt.Errorf("project id is required")
	}
	if !yes {
		confirmed, err := confirm(in, out, "Are you sure you want to delete this project? [y/N] ")
		if err != nil {
			return err
		}
		if !confirmed {
			_, _ = fmt.Fprintln(out, "No, cancel: project kept")
			return nil
		}
	}
	client, err := c.remoteClient()
	if err != nil {
		return err
	}

	req := dashboard.DeleteRequest{ActorID: actor.ID, ProjectID: projectID}
	err = dashboard.ExecuteDelete(ctx, client, req)
	outcome := dashboard.OutcomeApplied
	if err != nil {
		outcome = dashboard.OutcomeFailed
	}
	dashboard.LogDeleteOutcome(c.logger, req, outcome, err)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", projectID, err)
	}
	_, _ = fmt.Fprintln(out, "The project has been deleted")
	return nil
}

// confirm prints prompt and reports whether the next input line is a yes.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	_, _ = fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// newLoginCmd persists the session identity.
func newLoginCmd(c *cli) *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "login <user-id>",
		Short: "Set the user identity the dashboard acts as",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := strings.TrimSpace(args[0])
			if err := config.UpsertIdentity(c.configPath, userID, admin); err != nil {
				c.logger.Error("identity update failed", "config_path", c.configPath, "err", err)
				return fmt.Errorf("persist identity config: %w", err)
			}
			c.logger.Info("identity updated", "config_path", c.configPath, "user_id", userID, "is_admin", admin)
			role := "viewer"
			if admin {
				role = "admin"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", userID, role)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "mark the identity as an admin")
	return cmd
}

// newServeCmd hosts the local project service.
func newServeCmd(c *cli) *cobra.Command {
	var (
		bind   string
		admins []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project REST routes and MCP tools from the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(bind) == "" {
				bind = c.cfg.Server.Bind
			}
			if len(admins) == 0 {
				admins = c.cfg.Server.AdminUserIDs
			}
			return c.runServe(cmd.Context(), bind, admins)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (defaults to server.bind)")
	cmd.Flags().StringSliceVar(&admins, "admin", nil, "admin user ids (defaults to server.admin_user_ids)")
	return cmd
}

// runServe opens the repository and blocks in the HTTP server until ctx ends.
func (c *cli) runServe(ctx context.Context, bind string, admins []string) error {
	svc, closeRepo, err := c.openService(admins)
	if err != nil {
		return err
	}
	defer closeRepo()

	c.logger.Info("command flow start", "command", "serve", "bind", bind, "admin_count", len(admins))
	err = server.Run(ctx, server.Config{
		HTTPBind:      bind,
		ServerVersion: version,
	}, server.Dependencies{
		Projects: common.NewAppServiceAdapter(svc),
		Logger:   c.logger,
	})
	if err != nil {
		c.logger.Error("command flow failed", "command", "serve", "err", err)
		return fmt.Errorf("run server: %w", err)
	}
	c.logger.Info("command flow complete", "command", "serve")
	return nil
}

// newSeedCmd writes sample projects into the local database.
func newSeedCmd(c *cli) *cobra.Command {
	var (
		count    int
		category string
	)
	cmd := &cobra.Command{
		Use:   "seed <user-id>",
		Short: "Insert sample projects for a user into the local database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSeed(cmd.Context(), cmd.OutOrStdout(), args[0], count, category)
		},
	}
	cmd.Flags().IntVar(&count, "count", 12, "number of projects to create")
	cmd.Flags().StringVar(&category, "category", "", "category for every seeded project")
	return cmd
}

// runSeed creates count sample projects owned by userID.
func (c *cli) runSeed(ctx context.Context, out io.Writer, userID string, count int, category string) error {
	if count <= 0 {
		return fmt.Errorf("count must be > 0")
	}
	svc, closeRepo, err := c.openService(nil)
	if err != nil {
		return err
	}
	defer closeRepo()

	for i := range count {
		_, err := svc.CreateProject(ctx, app.CreateProjectInput{
			OwnerID:  userID,
			Title:    fmt.Sprintf("Sample project %02d", i+1),
			Category: category,
			Content:  fmt.Sprintf("## Sample project %02d\n\nSeeded for local development.", i+1),
		})
		if err != nil {
			return fmt.Errorf("seed project %d: %w", i+1, err)
		}
	}
	c.logger.Info("seeded projects", "user_id", userID, "count", count, "db_path", c.cfg.Database.Path)
	_, _ = fmt.Fprintf(out, "seeded %d projects for %s\n", count, userID)
	return nil
}

// newExportCmd writes one owner's projects from the local database as a JSON snapshot.
func newExportCmd(c *cli) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <user-id>",
		Short: "Export a user's projects from the local database as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeRepo, err := c.openService(nil)
			if err != nil {
				return err
			}
			defer closeRepo()

			snap, err := svc.ExportSnapshot(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("export snapshot: %w", err)
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(outPath) != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer func() {
					_ = f.Close()
				}()
				out = f
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			c.logger.Info("snapshot exported", "user_id", snap.OwnerID, "count", len(snap.Projects), "out", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

// newImportCmd upserts projects from a JSON snapshot into the local database.
func newImportCmd(c *cli) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON project snapshot into the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return fmt.Errorf("--in is required")
			}
			content, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			var snap app.Snapshot
			if err := json.Unmarshal(content, &snap); err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}
			svc, closeRepo, err := c.openService(nil)
			if err != nil {
				return err
			}
			defer closeRepo()

			n, err := svc.ImportSnapshot(cmd.Context(), snap)
			if err != nil {
				return fmt.Errorf("import snapshot: %w", err)
			}
			c.logger.Info("snapshot imported", "path", inPath, "count", n)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d projects\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "snapshot file to import")
	return cmd
}

// openService opens the sqlite repository and wraps it in the project service.
func (c *cli) openService(admins []string) (*app.Service, func(), error) {
	c.logger.Info("opening sqlite repository", "db_path", c.cfg.Database.Path)
	repo, err := sqlite.Open(c.cfg.Database.Path)
	if err != nil {
		c.logger.Error("sqlite open failed", "db_path", c.cfg.Database.Path, "err", err)
		return nil, nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	closeRepo := func() {
		if closeErr := repo.Close(); closeErr != nil {
			c.logger.Warn("sqlite close failed", "db_path", c.cfg.Database.Path, "err", closeErr)
		}
	}
	svc := app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{AdminUserIDs: admins})
	return svc, closeRepo, nil
}

// newPathsCmd prints resolved config and data locations.
func newPathsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "paths",
		Short:       "Print resolved config, data, and log paths",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", c.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", c.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", c.paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", c.paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", c.paths.DBPath)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", c.paths.LogDir)
			return nil
		},
	}
}
