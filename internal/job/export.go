package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Export file formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// exportTimeLayout is the timestamp embedded in export file names.
const exportTimeLayout = "20060102150405"

// ExportUser is the exported view of a user. Credentials are never written.
type ExportUser struct {
	ID        string    `json:"id" yaml:"id"`
	Username  string    `json:"username" yaml:"username"`
	Email     string    `json:"email" yaml:"email"`
	FirstName string    `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ExportTask is the exported view of a task.
type ExportTask struct {
	ID          string     `json:"id" yaml:"id"`
	ParentID    string     `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	CategoryID  string     `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    string     `json:"priority" yaml:"priority"`
	Status      string     `json:"status" yaml:"status"`
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
}

// ExportCategory is the exported view of a category.
type ExportCategory struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string `json:"color" yaml:"color"`
}

// ExportDocument is the full export of one user's data.
type ExportDocument struct {
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	User       ExportUser       `json:"user" yaml:"user"`
	Tasks      []ExportTask     `json:"tasks" yaml:"tasks"`
	Categories []ExportCategory `json:"categories" yaml:"categories"`
	Tags       []string         `json:"tags" yaml:"tags"`
}

// ExportResult is the output of an export job.
type ExportResult struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Tasks  int    `json:"tasks"`
}

// ExportJob writes a user's data to a file in the export directory.
type ExportJob struct {
	base
	deps   *Deps
	format string
	result *ExportResult
}

// NewExportJob builds an export job from its record. The payload format
// overrides the configured default.
func NewExportJob(rec *Record, deps *Deps) (*ExportJob, error) {
	p, err := decodeUserPayload(rec)
	if err != nil {
		return nil, err
	}

	format := p.Format
	if format == "" {
		format = deps.ExportFormat
	}
	if format != FormatJSON && format != FormatYAML {
		return nil, Permanent(fmt.Errorf("unsupported export format %q", format))
	}

	b := newBase(rec)
	b.userID = p.UserID
	return &ExportJob{base: b, deps: deps, format: format}, nil
}

// Execute implements Job. The four sources are read concurrently.
func (j *ExportJob) Execute(ctx context.Context) error {
	var (
		user       *domain.User
		tasks      []*domain.Task
		categories []*domain.Category
		tags       []*domain.Tag
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		user, err = j.deps.Users.GetByID(gctx, j.userID)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = j.deps.Tasks.ListByUser(gctx, j.userID)
		return err
	})
	g.Go(func() (err error) {
		categories, err = j.deps.Categories.ListByUser(gctx, j.userID)
		return err
	})
	g.Go(func() (err error) {
		tags, err = j.deps.Tags.ListByUser(gctx, j.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		if store.IsNotFoundError(err) {
			return Permanent(fmt.Errorf("failed to gather export data: %w", err))
		}
		return fmt.Errorf("failed to gather export data: %w", err)
	}

	now := j.deps.now()
	doc := buildExportDocument(now, user, tasks, categories, tags)

	data, err := encodeExport(doc, j.format)
	if err != nil {
		return Permanent(err)
	}

	if err := os.MkdirAll(j.deps.ExportDir, 0o750); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	name := fmt.Sprintf("export_%s_%s.%s", j.userID, now.Format(exportTimeLayout), j.format)
	path := filepath.Join(j.deps.ExportDir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	j.result = &ExportResult{Path: path, Format: j.format, Tasks: len(doc.Tasks)}
	logger.FromContextOrDefault(ctx, j.deps.Logger).Info("user data exported",
		slog.String("job_id", j.id.String()),
		slog.String("user_id", j.userID.String()),
		slog.String("path", path))
	return nil
}

// Result implements Resulter.
func (j *ExportJob) Result() ([]byte, error) {
	return json.Marshal(j.result)
}

func buildExportDocument(
	now time.Time,
	user *domain.User,
	tasks []*domain.Task,
	categories []*domain.Category,
	tags []*domain.Tag,
) ExportDocument {
	doc := ExportDocument{
		ExportedAt: now,
		User: ExportUser{
			ID:        user.ID.String(),
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			CreatedAt: user.CreatedAt,
		},
		Tasks:      make([]ExportTask, 0, len(tasks)),
		Categories: make([]ExportCategory, 0, len(categories)),
		Tags:       make([]string, 0, len(tags)),
	}

	for _, t := range domain.VisibleOnly(tasks) {
		et := ExportTask{
			ID:          t.ID.String(),
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority.String(),
			Status:      t.Status.String(),
			DueDate:     t.DueDate,
			CompletedAt: t.CompletedAt,
			CreatedAt:   t.CreatedAt,
		}
		if t.ParentID != nil {
			et.ParentID = t.ParentID.String()
		}
		if t.CategoryID != nil {
			et.CategoryID = t.CategoryID.String()
		}
		doc.Tasks = append(doc.Tasks, et)
	}

	for _, c := range domain.VisibleOnly(categories) {
		doc.Categories = append(doc.Categories, ExportCategory{
			ID:          c.ID.String(),
			Name:        c.Name,
			Description: c.Description,
			Color:       c.Color,
		})
	}

	for _, t := range tags {
		doc.Tags = append(doc.Tags, t.Name)
	}
	return doc
}

func encodeExport(doc ExportDocument, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
