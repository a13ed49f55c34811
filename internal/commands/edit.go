package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
	"tasktrack/internal/task"
)

func init() {
	Register(&EditCmd{})
}

// optionalString is a flag.Value that records whether it was set, so an
// explicit empty value can be told apart from an absent flag.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optionalString
	description optionalString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task's title or description" }
func (c *EditCmd) Usage() string {
	return "tasktrack edit <ref> [--title <title>] [--desc <text>]"
}
func (c *EditCmd) NeedsStore() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description = optionalString{}, optionalString{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "desc", "")
	fs.Var(&c.description, "d", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !c.title.set && !c.description.set {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --desc)")
		return exitcode.UserError
	}

	t, code := resolveRef(svc, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if _, err := svc.Update(ctx, t.ID, task.Fields{
		Title:       c.title.ptr(),
		Description: c.description.ptr(),
	}); err != nil {
		draft := t.Draft()
		if c.title.set {
			draft.Title = c.title.value
		}
		if c.description.set {
			draft.Description = c.description.value
		}
		return draftError(err, draft, errOut)
	}
	return finish(cfg, svc, out, errOut)
}
