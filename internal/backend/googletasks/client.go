// Package googletasks mirrors the local task list into Google Tasks.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasktrack/internal/config"
	"tasktrack/internal/service"
	"tasktrack/internal/task"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of items requested per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = tasks.TasksScope

	// MarkerPrefix tags the notes of every mirrored remote task.
	MarkerPrefix = "tasktrack:"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Mirror using the Google Tasks API.
type Client struct {
	svc    *tasks.Service
	logger *slog.Logger
}

var _ service.Mirror = (*Client)(nil)

// New creates a Google Tasks client from the stored OAuth client and token.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}

	// Token source refreshes the access token as needed.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	c, err := NewWithHTTPClient(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	c.logger = cfg.Log()
	return c, nil
}

// OAuthConfig loads the OAuth client credentials for the Tasks scope.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Extra options such as option.WithEndpoint are passed to the API service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, logger: config.DiscardLogger()}, nil
}

// Mirror implements service.Mirror.
func (c *Client) Mirror(ctx context.Context, listName string, local []task.Task) (service.MirrorResult, error) {
	list, err := c.ResolveList(ctx, listName)
	if err != nil {
		return service.MirrorResult{}, err
	}
	res := service.MirrorResult{ListTitle: list.Title}

	remote, err := c.markedTasks(ctx, list.Id)
	if err != nil {
		return res, err
	}

	seen := make(map[string]bool, len(local))
	for _, t := range local {
		seen[t.ID] = true
		want := remoteTask(t)

		r, ok := remote[t.ID]
		if !ok {
			if err := c.insert(ctx, list.Id, want); err != nil {
				return res, err
			}
			res.Created++
			continue
		}
		if r.Title == want.Title && r.Notes == want.Notes && r.Status == want.Status {
			res.Unchanged++
			continue
		}
		if err := c.patch(ctx, list.Id, r.Id, want); err != nil {
			return res, err
		}
		res.Updated++
	}

	for id, r := range remote {
		if seen[id] {
			continue
		}
		if err := c.delete(ctx, list.Id, r.Id); err != nil {
			return res, err
		}
		res.Deleted++
	}

	c.logger.Debug("mirrored tasks", "list", list.Title, "created", res.Created,
		"updated", res.Updated, "deleted", res.Deleted, "unchanged", res.Unchanged)
	return res, nil
}

// Lists implements service.Mirror.
func (c *Client) Lists(ctx context.Context) ([]service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// The default list's real ID is needed to flag it in the listing.
	defaultList, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	var result []service.TaskList
	err = c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, l := range resp.Items {
			result = append(result, service.TaskList{
				ID:        l.Id,
				Title:     l.Title,
				IsDefault: l.Id == defaultList.Id,
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// ResolveList finds a list by name (case-insensitive, trimmed), creating it
// when missing. An empty name selects the default list.
func (c *Client) ResolveList(ctx context.Context, name string) (*tasks.TaskList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		ctx, cancel := context.WithTimeout(ctx, APITimeout)
		defer cancel()
		list, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
		if err != nil {
			return nil, wrapError(err)
		}
		list.Id = DefaultListID
		return list, nil
	}

	var matches []*tasks.TaskList
	listCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(listCtx, func(resp *tasks.TaskLists) error {
		for _, l := range resp.Items {
			if strings.EqualFold(strings.TrimSpace(l.Title), name) {
				matches = append(matches, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	switch len(matches) {
	case 0:
		insertCtx, cancel := context.WithTimeout(ctx, APITimeout)
		defer cancel()
		list, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: name}).Context(insertCtx).Do()
		if err != nil {
			return nil, wrapError(err)
		}
		c.logger.Debug("created task list", "list", name)
		return list, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous list name: %s", name)
	}
}

// markedTasks returns the remote tasks carrying a marker, keyed by local ID.
// Duplicates beyond the first are deleted.
func (c *Client) markedTasks(ctx context.Context, listID string) (map[string]*tasks.Task, error) {
	out := make(map[string]*tasks.Task)
	var dupes []*tasks.Task

	listCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(listCtx, func(resp *tasks.Tasks) error {
			for _, r := range resp.Items {
				id, ok := MarkerID(r.Notes)
				if !ok {
					continue
				}
				if _, exists := out[id]; exists {
					dupes = append(dupes, r)
					continue
				}
				out[id] = r
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	for _, r := range dupes {
		if err := c.delete(ctx, listID, r.Id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Client) insert(ctx context.Context, listID string, t *tasks.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	_, err := c.svc.Tasks.Insert(listID, t).Context(ctx).Do()
	return wrapError(err)
}

func (c *Client) patch(ctx context.Context, listID, taskID string, t *tasks.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	_, err := c.svc.Tasks.Patch(listID, taskID, t).Context(ctx).Do()
	return wrapError(err)
}

func (c *Client) delete(ctx context.Context, listID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	return wrapError(c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do())
}

// remoteTask builds the remote representation of a local task.
func remoteTask(t task.Task) *tasks.Task {
	d := t.Draft()
	status := statusNeedsAction
	if t.Completed {
		status = statusCompleted
	}
	return &tasks.Task{
		Title:  d.Title,
		Notes:  Notes(d.Description, t.ID),
		Status: status,
	}
}

// Notes appends the marker line for id to description.
func Notes(description, id string) string {
	marker := MarkerPrefix + id
	if description == "" {
		return marker
	}
	return description + "\n\n" + marker
}

// MarkerID extracts the local task ID from the last line of notes.
func MarkerID(notes string) (string, bool) {
	notes = strings.TrimRight(notes, "\n")
	line := notes
	if i := strings.LastIndexByte(notes, '\n'); i >= 0 {
		line = notes[i+1:]
	}
	id, ok := strings.CutPrefix(strings.TrimSpace(line), MarkerPrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.ErrUnauthorized
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		}
	}

	// Token refresh failures surface as *oauth2.RetrieveError.
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return service.ErrUnauthorized
	}

	return err
}
