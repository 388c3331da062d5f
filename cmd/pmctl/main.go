// Command pmctl reads and edits a project-management workspace through the
// cached dashboard service and prints the results as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/TWRT/pm-dashboard/internal/appstate"
	"github.com/TWRT/pm-dashboard/internal/cache"
	"github.com/TWRT/pm-dashboard/internal/client"
	"github.com/TWRT/pm-dashboard/internal/client/pmapi"
	"github.com/TWRT/pm-dashboard/internal/config"
	"github.com/TWRT/pm-dashboard/internal/models"
	"github.com/TWRT/pm-dashboard/internal/repository"
	"github.com/TWRT/pm-dashboard/internal/service"
)

const usage = `usage: pmctl [-api URL] [-v] <command> [flags]

commands:
  projects
  tasks -project N
  user-tasks -user N
  users
  teams
  search QUERY
  me
  create-project -name NAME -description TEXT -start DATE -end DATE
  create-task -title TITLE -author N [-project N] [-status S] [-priority P] ...
  set-status -task N -status STATUS
  board -project N
  priority PRIORITY
  summary [-project N]
  timeline [-project N]
  prefs [-dark true|false] [-sidebar collapsed|expanded] [-toggle-sidebar]
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pmctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	global := flag.NewFlagSet("pmctl", flag.ContinueOnError)
	global.Usage = func() { fmt.Fprint(global.Output(), usage) }
	apiURL := global.String("api", cfg.APIURL, "base URL of the project-management API")
	verbose := global.Bool("v", false, "log cache and gateway activity to stderr")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cmd, rest := global.Arg(0), global.Args()[1:]
	if cmd == "prefs" {
		return runPrefs(cfg, rest, out, logger)
	}

	gateway := pmapi.NewPMClient(strings.TrimRight(*apiURL, "/"), cfg.Session(), &http.Client{Timeout: cfg.HTTPTimeout}, logger)
	c := cache.New(cache.Options{KeepUnusedFor: cfg.KeepUnusedFor, Logger: logger})
	defer c.Close()
	svc := service.NewDashboardService(gateway, c)

	switch cmd {
	case "projects":
		return printWatch(ctx, out, svc.Projects())
	case "tasks":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		project := fs.Int("project", 0, "project id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return printWatch(ctx, out, svc.Tasks(*project))
	case "user-tasks":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		user := fs.Int("user", 0, "user id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return printWatch(ctx, out, svc.TasksByUser(*user))
	case "users":
		return printWatch(ctx, out, svc.Users())
	case "teams":
		return printWatch(ctx, out, svc.Teams())
	case "search":
		return printWatch(ctx, out, svc.Search(strings.Join(rest, " ")))
	case "me":
		return printWatch(ctx, out, svc.AuthUser())
	case "create-project":
		return createProject(ctx, svc, rest, out)
	case "create-task":
		return createTask(ctx, svc, rest, out)
	case "set-status":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		task := fs.Int("task", 0, "task id")
		status := fs.String("status", "", "new status")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		updated, err := svc.UpdateTaskStatus(ctx, *task, models.Status(*status))
		if err != nil {
			return describe(err)
		}
		return printJSON(out, present(updated))
	case "board":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		project := fs.Int("project", 0, "project id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		columns, err := svc.Board(ctx, *project)
		if err != nil {
			return describe(err)
		}
		return printJSON(out, present(columns))
	case "priority":
		if len(rest) != 1 {
			return errors.New("priority takes one argument, e.g. urgent")
		}
		priority, err := service.ParsePriority(rest[0])
		if err != nil {
			return describe(err)
		}
		tasks, err := svc.TasksByPriority(ctx, priority)
		if err != nil {
			return describe(err)
		}
		return printJSON(out, present(tasks))
	case "summary":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		project := fs.Int("project", 1, "project whose tasks are counted")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		summary, err := svc.Summary(ctx, *project)
		if err != nil {
			return describe(err)
		}
		return printJSON(out, summary)
	case "timeline":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		project := fs.Int("project", 0, "list this project's tasks instead of all projects")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		items, err := svc.Timeline(ctx, *project)
		if err != nil {
			return describe(err)
		}
		return printJSON(out, items)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func createProject(ctx context.Context, svc *service.DashboardService, args []string, out io.Writer) error {
	var in service.CreateProjectInput
	fs := flag.NewFlagSet("create-project", flag.ContinueOnError)
	fs.StringVar(&in.Name, "name", "", "project name")
	fs.StringVar(&in.Description, "description", "", "project description")
	fs.StringVar(&in.StartDate, "start", "", "start date (YYYY-MM-DD)")
	fs.StringVar(&in.EndDate, "end", "", "end date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	project, err := svc.CreateProject(ctx, in)
	if err != nil {
		return describe(err)
	}
	return printJSON(out, project)
}

func createTask(ctx context.Context, svc *service.DashboardService, args []string, out io.Writer) error {
	var in service.CreateTaskInput
	var status, priority string
	var author, project, assignee, points int
	fs := flag.NewFlagSet("create-task", flag.ContinueOnError)
	fs.StringVar(&in.Title, "title", "", "task title")
	fs.StringVar(&in.Description, "description", "", "task description")
	fs.StringVar(&status, "status", "", "initial status")
	fs.StringVar(&priority, "priority", "", "priority")
	fs.StringVar(&in.Tags, "tags", "", "comma separated tags")
	fs.StringVar(&in.StartDate, "start", "", "start date")
	fs.StringVar(&in.DueDate, "due", "", "due date")
	fs.IntVar(&author, "author", 0, "author user id")
	fs.IntVar(&project, "project", 0, "project id")
	fs.IntVar(&assignee, "assignee", 0, "assigned user id")
	fs.IntVar(&points, "points", 0, "story points")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in.Status = models.Status(status)
	in.Priority = models.Priority(priority)
	in.AuthorUserId = optional(author)
	in.ProjectId = optional(project)
	in.AssignedUserId = optional(assignee)
	in.Points = optional(points)

	task, err := svc.CreateTask(ctx, in)
	if err != nil {
		return describe(err)
	}
	return printJSON(out, present(task))
}

func runPrefs(cfg *config.Config, args []string, out io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("prefs", flag.ContinueOnError)
	dark := fs.String("dark", "", "set dark mode (true or false)")
	sidebar := fs.String("sidebar", "", "set the sidebar to collapsed or expanded")
	toggle := fs.Bool("toggle-sidebar", false, "flip the sidebar collapse preference")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var persister appstate.Persister
	if cfg.SettingsDB != "" {
		db, err := repository.InitDB(cfg.SettingsDB)
		if err != nil {
			return err
		}
		defer db.Close()
		persister = repository.NewSettingsRepository(db)
	}

	store, err := appstate.Load(persister, logger)
	if err != nil {
		return err
	}
	switch *dark {
	case "":
	case "true", "false":
		store.SetDarkMode(*dark == "true")
	default:
		return fmt.Errorf("-dark must be true or false, got %q", *dark)
	}
	switch *sidebar {
	case "":
	case "collapsed", "expanded":
		store.SetSidebarCollapsed(*sidebar == "collapsed")
	default:
		return fmt.Errorf("-sidebar must be collapsed or expanded, got %q", *sidebar)
	}
	if *toggle {
		store.ToggleSidebar()
	}
	return printJSON(out, store.Snapshot())
}

func printWatch[T any](ctx context.Context, out io.Writer, w *cache.Watch[T]) error {
	data, err := service.Await(ctx, w)
	if err != nil {
		return describe(err)
	}
	if result, ok := any(data).(*models.SearchResult); ok && (result == nil || result.Empty()) {
		_, err := fmt.Fprintln(out, "no results")
		return err
	}
	return printJSON(out, present(data))
}

func describe(err error) error {
	var validationErr *client.ValidationError
	switch {
	case errors.Is(err, service.ErrSkipped):
		return fmt.Errorf("%w: argument not set or too short", err)
	case errors.As(err, &validationErr):
		return fmt.Errorf("invalid input: %w", err)
	case client.IsAuthError(err):
		return fmt.Errorf("not signed in or session expired: %w", err)
	default:
		return err
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func optional(v int) *int {
	if v == 0 {
		return nil
	}
	return models.IntPtr(v)
}
