package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TWRT/pm-dashboard/internal/api"
	"github.com/TWRT/pm-dashboard/internal/appstate"
	"github.com/TWRT/pm-dashboard/internal/config"
	"github.com/TWRT/pm-dashboard/internal/models"
	"github.com/TWRT/pm-dashboard/internal/repository"
)

func seededSubject(t *testing.T, db *sql.DB) string {
	t.Helper()
	var sub string
	if err := db.QueryRow(`SELECT cognito_id FROM users WHERE username = 'alice'`).Scan(&sub); err != nil {
		t.Fatalf("select seeded user: %v", err)
	}
	return sub
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, _ := testServer(t)
	return cfg
}

// testServer starts a seeded reference server and points a config at it.
func testServer(t *testing.T) (*config.Config, *sql.DB) {
	t.Helper()
	db, err := repository.InitDB(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	if err := repository.Seed(db); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	srv := httptest.NewServer(api.SetupRouter(db, "", nil))
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})

	cfg := &config.Config{
		APIURL:        srv.URL,
		AccessToken:   "unused",
		HTTPTimeout:   5 * time.Second,
		KeepUnusedFor: time.Minute,
		SettingsDB:    filepath.Join(t.TempDir(), "settings.db"),
	}
	return cfg, db
}

func runCmd(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	err := run(ctx, cfg, args, &out)
	return out.String(), err
}

func TestRunReadCommands(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"projects"}, "Apollo"},
		{[]string{"tasks", "-project", "1"}, "Design schema"},
		{[]string{"user-tasks", "-user", "1"}, "Build gateway"},
		{[]string{"users"}, "alice"},
		{[]string{"teams"}, "Platform"},
		{[]string{"search", "kanban"}, "Kanban board"},
		{[]string{"search", "zzzz"}, "no results"},
		{[]string{"users"}, "https://acme-s3-images.s3.ap-southeast-2.amazonaws.com/palice.jpeg"},
		{[]string{"tasks", "-project", "1"}, `"tagList": [`},
		{[]string{"timeline"}, `"id": "Project-1"`},
		{[]string{"timeline", "-project", "1"}, `"type": "task"`},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := runCmd(t, cfg, tt.args...)
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestRunBoard(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCmd(t, cfg, "board", "-project", "1")
	if err != nil {
		t.Fatalf("board error = %v", err)
	}
	var columns []struct {
		Status string `json:"status"`
		Count  int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &columns); err != nil {
		t.Fatalf("decode board: %v\n%s", err, out)
	}
	want := map[string]int{"To Do": 1, "Work In Progress": 1, "Under Review": 1, "Completed": 1}
	if len(columns) != len(want) {
		t.Fatalf("columns = %+v", columns)
	}
	for _, c := range columns {
		if want[c.Status] != c.Count {
			t.Errorf("column %q count = %d, want %d", c.Status, c.Count, want[c.Status])
		}
	}
}

func TestRunPriorityAndSummary(t *testing.T) {
	cfg, db := testServer(t)
	cfg.SessionSubject = seededSubject(t, db)

	out, err := runCmd(t, cfg, "priority", "urgent")
	if err != nil {
		t.Fatalf("priority error = %v", err)
	}
	var tasks []models.Task
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("decode tasks: %v\n%s", err, out)
	}
	if len(tasks) != 1 || tasks[0].Title != "Build gateway" {
		t.Errorf("urgent tasks = %+v", tasks)
	}

	if _, err := runCmd(t, cfg, "priority", "someday"); err == nil {
		t.Error("unknown priority succeeded")
	}

	out, err = runCmd(t, cfg, "summary")
	if err != nil {
		t.Fatalf("summary error = %v", err)
	}
	var summary struct {
		TaskPriorities []struct {
			Priority string `json:"priority"`
			Count    int    `json:"count"`
		} `json:"taskPriorities"`
		ProjectStatuses []struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
		} `json:"projectStatuses"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if len(summary.TaskPriorities) != 4 {
		t.Errorf("TaskPriorities = %+v, want four priorities", summary.TaskPriorities)
	}
	if len(summary.ProjectStatuses) != 1 || summary.ProjectStatuses[0].Status != "Completed" {
		t.Errorf("ProjectStatuses = %+v", summary.ProjectStatuses)
	}
}

func TestRunSkippedQueries(t *testing.T) {
	cfg := testConfig(t)

	if _, err := runCmd(t, cfg, "search", "ab"); err == nil {
		t.Error("short search succeeded, want skipped error")
	}
	if _, err := runCmd(t, cfg, "user-tasks"); err == nil {
		t.Error("user-tasks without -user succeeded, want skipped error")
	}
}

func TestRunMutations(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCmd(t, cfg, "create-task", "-title", "Ship", "-author", "1", "-project", "1", "-due", "2026-12-24")
	if err != nil {
		t.Fatalf("create-task error = %v", err)
	}
	var task models.Task
	if err := json.Unmarshal([]byte(out), &task); err != nil {
		t.Fatalf("decode task: %v\n%s", err, out)
	}
	if task.DueDate != "2026-12-24T00:00:00Z" {
		t.Errorf("DueDate = %q", task.DueDate)
	}

	if _, err := runCmd(t, cfg, "create-task", "-author", "1"); err == nil || !strings.Contains(err.Error(), "Title is required") {
		t.Errorf("create-task without title error = %v", err)
	}

	out, err = runCmd(t, cfg, "set-status", "-task", "1", "-status", "Under Review")
	if err != nil {
		t.Fatalf("set-status error = %v", err)
	}
	if !strings.Contains(out, `"Under Review"`) {
		t.Errorf("set-status output = %s", out)
	}

	if _, err := runCmd(t, cfg, "set-status", "-task", "1", "-status", "Done"); err == nil {
		t.Error("set-status with unknown status succeeded")
	}

	if _, err := runCmd(t, cfg, "create-project", "-name", "Zeus", "-description", "d", "-start", "2026-01-01", "-end", "2026-02-01"); err != nil {
		t.Errorf("create-project error = %v", err)
	}
}

func TestRunPrefs(t *testing.T) {
	cfg := testConfig(t)

	if _, err := runCmd(t, cfg, "prefs", "-dark", "true", "-toggle-sidebar"); err != nil {
		t.Fatalf("prefs error = %v", err)
	}
	out, err := runCmd(t, cfg, "prefs")
	if err != nil {
		t.Fatalf("prefs error = %v", err)
	}
	var state appstate.State
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if !state.DarkMode || !state.SidebarCollapsed {
		t.Errorf("state = %+v, want both set", state)
	}

	out, err = runCmd(t, cfg, "prefs", "-sidebar", "expanded")
	if err != nil {
		t.Fatalf("prefs -sidebar error = %v", err)
	}
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.SidebarCollapsed {
		t.Error("-sidebar expanded left the sidebar collapsed")
	}
	if _, err := runCmd(t, cfg, "prefs", "-sidebar", "sideways"); err == nil {
		t.Error("prefs -sidebar sideways succeeded")
	}

	if _, err := runCmd(t, cfg, "prefs", "-dark", "maybe"); err == nil {
		t.Error("prefs -dark maybe succeeded")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	cfg := testConfig(t)
	if _, err := runCmd(t, cfg, "frobnicate"); err == nil {
		t.Error("unknown command succeeded")
	}
	if _, err := runCmd(t, cfg); err == nil {
		t.Error("no command succeeded")
	}
}
