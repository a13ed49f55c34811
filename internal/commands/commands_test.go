package commands_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tasktrack/internal/commands"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
	"tasktrack/internal/storage"
	"tasktrack/internal/task"
	"tasktrack/internal/testutil"
)

// runCommand parses args with the command's flags, as the dispatcher does,
// and runs it against svc.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()
	return runCommandWithConfig(t, cmd, svc, args, &config.Config{Dir: t.TempDir(), Quiet: quiet})
}

func runCommandWithConfig(t *testing.T, cmd commands.Command, svc service.Service, args []string, cfg *config.Config) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("flag parse: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, svc, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "tasktrack 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "tasktrack add", "tasktrack clear --force", "(alias: toggle)", "Common flags:", "task_<prefix>"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// Tests for list command
func TestListCommand_NewestFirst(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "Buy milk", "Buy eggs")

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  [ ] Buy eggs\n   2  [ ] Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	svc, _ := testutil.NewService()

	stdout, _, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found', got %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, svc, nil, true)
	if stdout != "" {
		t.Errorf("expected no output when quiet, got %q", stdout)
	}
}

func TestListCommand_StatusFiltersKeepNumbers(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService()
	added := testutil.AddTasks(svc, "one", "two", "three")
	svc.Toggle(ctx, added[1].ID)

	stdout, _, _ := runCommand(t, &commands.ListCmd{}, svc, []string{"--done"}, false)
	if stdout != "   2  [x] two\n" {
		t.Errorf("unexpected --done output %q", stdout)
	}

	stdout, _, _ = runCommand(t, &commands.ListCmd{}, svc, []string{"--active"}, false)
	if stdout != "   1  [ ] three\n   3  [ ] one\n" {
		t.Errorf("unexpected --active output %q", stdout)
	}
}

func TestListCommand_ActiveAndDone(t *testing.T) {
	svc, _ := testutil.NewService()
	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--active", "--done"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: cannot use both --active and --done\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_Where(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "Buy milk", "Walk dog", "Buy bread")

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--where", `title startsWith "Buy"`}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	expected := "   1  [ ] Buy bread\n   3  [ ] Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_InvalidWhere(t *testing.T) {
	svc, _ := testutil.NewService()
	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--where", "title +"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid filter") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	svc, _ := testutil.NewService()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--desc", "semi-skimmed", "Buy", "milk"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}

	tasks := svc.List()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Title != "Buy milk" || tasks[0].Description != "semi-skimmed" {
		t.Errorf("unexpected task %+v", tasks[0])
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	svc, _ := testutil.NewService()
	stdout, _, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Task"}, true)
	if code != exitcode.Success || stdout != "" {
		t.Errorf("expected silent success, got %q (code %d)", stdout, code)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc, _ := testutil.NewService()
	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_ValidationErrors(t *testing.T) {
	svc, _ := testutil.NewService()
	long := strings.Repeat("d", 1001)

	_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"--desc", long, "   "}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: Title cannot be empty\n" +
		"error: Description must not exceed 1000 characters\n" +
		"hint: description is 1 over the 1000-character limit\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if len(svc.List()) != 0 {
		t.Error("invalid add must not change state")
	}
}

func TestAddCommand_StorageWarning(t *testing.T) {
	backend := storage.NewMemoryBackend(0)
	backend.SetErr = errors.New("read-only")
	svc := testutil.NewServiceWithBackend(backend)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"Task"}, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if !strings.HasPrefix(stderr, "warning: change kept in memory only:") {
		t.Errorf("expected storage warning, got %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand(t *testing.T) {
	svc, _ := testutil.NewService()
	added := testutil.AddTasks(svc, "Old title")

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--title", "New title", "1"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	got, _ := svc.Get(added[0].ID)
	if got.Title != "New title" {
		t.Errorf("expected title updated, got %q", got.Title)
	}
}

func TestEditCommand_ClearDescription(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService()
	added := testutil.AddTasks(svc, "Task")
	desc := "to be removed"
	if _, err := svc.Update(ctx, added[0].ID, task.Fields{Description: &desc}); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--desc", "", added[0].ID}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	got, _ := svc.Get(added[0].ID)
	if got.Description != "" {
		t.Errorf("expected description cleared, got %q", got.Description)
	}
}

func TestEditCommand_NothingToChange(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "Task")

	_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"1"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: nothing to change (use --title or --desc)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestEditCommand_InvalidTitle(t *testing.T) {
	svc, _ := testutil.NewService()
	added := testutil.AddTasks(svc, "Keep me")

	_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--title", "", "1"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: Title is required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	got, _ := svc.Get(added[0].ID)
	if got.Title != "Keep me" {
		t.Errorf("title changed to %q", got.Title)
	}
}

func TestEditCommand_TitleTooLong(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "Short")

	_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--title", strings.Repeat("t", 205), "1"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: Title must not exceed 200 characters\nhint: title is 5 over the 200-character limit\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

// Tests for done command
func TestDoneCommand_TogglesTwice(t *testing.T) {
	svc, _ := testutil.NewService()
	added := testutil.AddTasks(svc, "Task")

	for i, want := range []bool{true, false} {
		_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"1"}, false)
		if code != exitcode.Success {
			t.Fatalf("run %d: expected success, got %d: %s", i, code, stderr)
		}
		got, _ := svc.Get(added[0].ID)
		if got.Completed != want {
			t.Errorf("run %d: expected completed=%v, got %v", i, want, got.Completed)
		}
	}
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "Task")

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"2"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task number out of range: 2\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDoneCommand_NoRef(t *testing.T) {
	svc, _ := testutil.NewService()
	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task reference required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	svc, _ := testutil.NewService()
	added := testutil.AddTasks(svc, "Keep", "Remove")

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	tasks := svc.List()
	if len(tasks) != 1 || tasks[0].ID != added[0].ID {
		t.Errorf("expected only %q left, got %+v", added[0].Title, tasks)
	}
}

func TestRmCommand_UnknownID(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "Keep")

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"task_nope"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found: task_nope\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.List()) != 1 {
		t.Error("failed rm must not change state")
	}
}

// Tests for show command
func TestShowCommand(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "Fish & chips")

	stdout, stderr, code := runCommand(t, &commands.ShowCmd{}, svc, []string{"task_1"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "ID:       task_1\n") || !strings.Contains(stdout, "Title:    Fish & chips\n") {
		t.Errorf("unexpected output %q", stdout)
	}
}

// Tests for clear command
func TestClearCommand_RequiresForce(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "a", "b")

	_, stderr, code := runCommand(t, &commands.ClearCmd{}, svc, nil, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: this deletes all 2 tasks; run again with --force\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.List()) != 2 {
		t.Error("clear without --force must not change state")
	}
}

func TestClearCommand_Force(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "a", "b")

	stdout, _, code := runCommand(t, &commands.ClearCmd{}, svc, []string{"--force"}, false)
	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("expected ok, got %q (code %d)", stdout, code)
	}
	if len(svc.List()) != 0 {
		t.Errorf("expected no tasks, got %d", len(svc.List()))
	}
}

// Tests for export command
func TestExportCommand_CSVToStdout(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "Buy milk")

	stdout, stderr, code := runCommand(t, &commands.ExportCmd{}, svc, []string{"--format", "csv"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	expected := "id,title,description,completed,created_at,updated_at\n" +
		"task_1,Buy milk,,false,2026-01-19T10:00:00Z,2026-01-19T10:00:00Z\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestExportCommand_ToFile(t *testing.T) {
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "Buy milk")
	path := filepath.Join(t.TempDir(), "tasks.pdf")

	stdout, stderr, code := runCommand(t, &commands.ExportCmd{}, svc, []string{"--format", "pdf", "--output", path}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected export file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("expected a PDF file")
	}
}

func TestExportCommand_UnwritablePath(t *testing.T) {
	svc, _ := testutil.NewService()
	path := filepath.Join(t.TempDir(), "missing", "tasks.json")

	_, stderr, code := runCommand(t, &commands.ExportCmd{}, svc, []string{"--output", path}, false)
	if code != exitcode.StorageError {
		t.Errorf("expected exit code %d, got %d", exitcode.StorageError, code)
	}
	if !strings.HasPrefix(stderr, "error: failed to write") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestExportCommand_Where(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService()
	added := testutil.AddTasks(svc, "Buy milk", "Walk dog")
	if _, err := svc.Toggle(ctx, added[1].ID); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCommand(t, &commands.ExportCmd{}, svc, []string{"--format", "csv", "--where", "completed"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "task_2,Walk dog,") {
		t.Errorf("expected only the completed task, got %q", stdout)
	}

	_, stderr, code = runCommand(t, &commands.ExportCmd{}, svc, []string{"--where", "title"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid filter") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestExportCommand_UnknownFormat(t *testing.T) {
	svc, _ := testutil.NewService()
	_, stderr, code := runCommand(t, &commands.ExportCmd{}, svc, []string{"--format", "xml"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown format: xml (use json, csv, pdf)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for info command
func TestInfoCommand(t *testing.T) {
	ctx := context.Background()
	svc, _ := testutil.NewService()
	added := testutil.AddTasks(svc, "a", "b")
	svc.Toggle(ctx, added[0].ID)

	cfg := &config.Config{Dir: t.TempDir(), Storage: config.StorageConfig{Backend: config.BackendMemory}}
	stdout, _, code := runCommandWithConfig(t, &commands.InfoCmd{}, svc, nil, cfg)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"2 tasks, 1 active, 1 completed\n", "Backend:    memory\n", "Available:  yes\n"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

// Tests for sync and lists commands
func withMirror(t *testing.T, mirror service.Mirror) *config.Config {
	t.Helper()
	old := commands.NewMirror
	commands.NewMirror = func(ctx context.Context, cfg *config.Config) (service.Mirror, error) {
		return mirror, nil
	}
	t.Cleanup(func() { commands.NewMirror = old })

	dir := t.TempDir()
	for _, name := range []string{config.OAuthClientFile, config.TokenFile} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return &config.Config{Dir: dir}
}

func TestSyncCommand(t *testing.T) {
	mirror := testutil.NewFakeMirror()
	cfg := withMirror(t, mirror)
	svc, _ := testutil.NewService()
	testutil.AddTasks(svc, "a", "b")

	stdout, stderr, code := runCommandWithConfig(t, &commands.SyncCmd{}, svc, nil, cfg)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if stdout != "My Tasks: 2 created, 0 updated, 0 deleted, 0 unchanged\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if len(mirror.Remote("My Tasks")) != 2 {
		t.Errorf("expected 2 mirrored tasks")
	}
}

func TestSyncCommand_ListFromConfig(t *testing.T) {
	mirror := testutil.NewFakeMirror()
	cfg := withMirror(t, mirror)
	cfg.Sync.List = "Work"
	svc, _ := testutil.NewService()

	if _, stderr, code := runCommandWithConfig(t, &commands.SyncCmd{}, svc, nil, cfg); code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if _, list := mirror.Calls(); list != "Work" {
		t.Errorf("expected list from config, got %q", list)
	}

	if _, stderr, code := runCommandWithConfig(t, &commands.SyncCmd{}, svc, []string{"--list", "Home"}, cfg); code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	if _, list := mirror.Calls(); list != "Home" {
		t.Errorf("expected --list to win, got %q", list)
	}
}

func TestSyncCommand_NotLoggedIn(t *testing.T) {
	mirror := testutil.NewFakeMirror()
	cfg := withMirror(t, mirror)
	os.Remove(cfg.TokenPath())
	svc, _ := testutil.NewService()

	_, stderr, code := runCommandWithConfig(t, &commands.SyncCmd{}, svc, nil, cfg)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: tasktrack login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if n, _ := mirror.Calls(); n != 0 {
		t.Error("mirror must not be called without a token")
	}
}

func TestSyncCommand_Errors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{service.ErrUnauthorized, exitcode.AuthError},
		{errors.New("request timed out"), exitcode.BackendError},
	}
	for _, tt := range tests {
		mirror := testutil.NewFakeMirror()
		mirror.MirrorErr = tt.err
		cfg := withMirror(t, mirror)
		svc, _ := testutil.NewService()

		_, stderr, code := runCommandWithConfig(t, &commands.SyncCmd{}, svc, nil, cfg)
		if code != tt.code {
			t.Errorf("%v: expected exit code %d, got %d", tt.err, tt.code, code)
		}
		if !strings.Contains(stderr, tt.err.Error()) {
			t.Errorf("%v: unexpected stderr %q", tt.err, stderr)
		}
	}
}

func TestListsCommand(t *testing.T) {
	mirror := testutil.NewFakeMirror()
	mirror.AddList("work", "Work")
	mirror.AddList("shopping", "Shopping")
	cfg := withMirror(t, mirror)
	cfg.Sync.List = "work"

	stdout, stderr, code := runCommandWithConfig(t, &commands.ListsCmd{}, nil, nil, cfg)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d: %s", code, stderr)
	}
	expected := "My Tasks [default]\nWork [sync]\nShopping\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

// Golden output tests
func mixedService(t *testing.T) service.Service {
	t.Helper()
	svc, _ := testutil.NewService()
	added := testutil.AddTasks(svc, "Buy milk", "Fish & chips", "Walk dog")
	if _, err := svc.Toggle(context.Background(), added[1].ID); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestListCommand_Golden(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, mixedService(t), nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	testutil.GoldenString(t, "list_mixed", stdout)
}

func TestExportCommand_CSVGolden(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ExportCmd{}, mixedService(t), []string{"--format", "csv"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	testutil.GoldenString(t, "export_mixed_csv", stdout)
}
