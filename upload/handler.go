// Package upload implements the atomic project lifecycle: validate both report
// files, upload them to object storage, persist the relational record, and
// compensate with deletes when any later step fails. No orphaned files, no
// file-less rows.
package upload

import (
	"context"
	"fmt"

	"github.com/statshare/statshare/models"
	"github.com/statshare/statshare/storage"
	"github.com/statshare/statshare/utils"
)

// The two well-known filenames every project keeps across its whole lifecycle.
const (
	DocxFilename = "findings.docx"
	HTMLFilename = "report.html"
)

// Coordinator orchestrates project creation, update, and deletion over the
// injected storage backend and relational store.
type Coordinator struct {
	store   ProjectStore
	files   storage.FileStorage
	baseURL string
}

// NewCoordinator wires the coordinator's collaborators. The storage backend is
// chosen once at startup by configuration and injected here.
func NewCoordinator(store ProjectStore, files storage.FileStorage, baseURL string) *Coordinator {
	return &Coordinator{store: store, files: files, baseURL: baseURL}
}

// CreateProjectInput carries admin-supplied project metadata. Password is
// optional; a random one is generated when empty.
type CreateProjectInput struct {
	ProjectName   string
	StudentName   string
	StudentEmail  string
	ResearchTopic string
	Password      string
}

// ProjectFiles holds the raw bytes of the two uploaded report files.
type ProjectFiles struct {
	Docx []byte
	HTML []byte
}

// CreateProjectResult is returned once per creation. Password is the plaintext
// credential, shown exactly this one time and never retrievable again.
type CreateProjectResult struct {
	ProjectID  string   `json:"project_id"`
	Password   string   `json:"password"`
	URL        string   `json:"url"`
	Warnings   []string `json:"warnings"`
	HTMLErrors []string `json:"html_errors"`
	HasPlotly  bool     `json:"has_plotly"`
}

// CreateProjectAtomic creates a project in two phases: upload both files, then
// insert the record. Any failure after the first upload rolls back whatever
// was uploaded in this call before the error propagates. HTML self-containment
// errors are recorded and returned but do not block creation; reports are
// vetted before upload and the admin sees them immediately.
func (c *Coordinator) CreateProjectAtomic(ctx context.Context, in CreateProjectInput, files ProjectFiles) (*CreateProjectResult, error) {
	if msg := ValidateRequiredFiles(files.Docx, files.HTML); msg != "" {
		return nil, &ValidationError{Message: msg}
	}
	if err := ValidateFileSize(files.Docx, MaxFileSize); err != nil {
		return nil, err
	}
	if err := ValidateFileSize(files.HTML, MaxFileSize); err != nil {
		return nil, err
	}

	password := in.Password
	if password == "" {
		var err error
		if password, err = utils.GeneratePassword(utils.PasswordLength); err != nil {
			return nil, fmt.Errorf("generate password: %w", err)
		}
	}
	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	projectID, err := utils.GenerateProjectID(utils.ProjectIDLength)
	if err != nil {
		return nil, fmt.Errorf("generate project id: %w", err)
	}

	validation := ValidateHTMLSelfContained(string(files.HTML))
	weightWarning, weightErr := HTMLWeightAdvisory(files.HTML)
	if weightErr != nil {
		validation.Errors = append(validation.Errors, weightErr.Error())
	}
	if weightWarning != "" {
		validation.Warnings = append(validation.Warnings, weightWarning)
	}

	docxURL, err := c.files.Upload(ctx, projectID, DocxFilename, files.Docx)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", DocxFilename, err)
	}
	htmlURL, err := c.files.Upload(ctx, projectID, HTMLFilename, files.HTML)
	if err != nil {
		c.rollback(ctx, projectID, DocxFilename)
		return nil, fmt.Errorf("upload %s: %w", HTMLFilename, err)
	}

	project := &models.Project{
		ProjectID:     projectID,
		ProjectName:   in.ProjectName,
		StudentName:   in.StudentName,
		StudentEmail:  in.StudentEmail,
		ResearchTopic: in.ResearchTopic,
		PasswordHash:  passwordHash,
		DocxURL:       docxURL,
		HTMLURL:       htmlURL,
	}
	if err := c.store.Create(ctx, project); err != nil {
		c.rollback(ctx, projectID, DocxFilename, HTMLFilename)
		return nil, fmt.Errorf("persist project: %w", err)
	}

	return &CreateProjectResult{
		ProjectID:  projectID,
		Password:   password,
		URL:        fmt.Sprintf("%s/preview/%s", c.baseURL, projectID),
		Warnings:   validation.Warnings,
		HTMLErrors: validation.Errors,
		HasPlotly:  validation.HasPlotly,
	}, nil
}

// rollback deletes objects uploaded earlier in the same operation. Failures
// are logged, never escalated: the record was not committed, so the database
// stays the source of truth and the orphan scan picks up leftovers.
func (c *Coordinator) rollback(ctx context.Context, projectID string, filenames ...string) {
	// Rollback must proceed even when the triggering failure was the caller's
	// context being canceled.
	ctx = context.WithoutCancel(ctx)
	for _, filename := range filenames {
		if err := c.files.Delete(ctx, projectID, filename); err != nil {
			utils.Sugar.Errorf("rollback delete %s/%s failed: %v", projectID, filename, err)
		}
	}
}

// StepStatus describes one stage of the delete saga.
type StepStatus string

const (
	StepDone          StepStatus = "done"
	StepSkipped       StepStatus = "skipped"
	StepFailedIgnored StepStatus = "failed-ignored"
)

// DeleteOutcome reports each stage of the delete saga so operators can
// reconcile storage or session leftovers later.
type DeleteOutcome struct {
	Record   StepStatus `json:"record"`
	Files    StepStatus `json:"files"`
	Sessions StepStatus `json:"sessions"`
}

// DeleteProjectWithFiles soft-deletes the record, then best-effort purges
// stored objects and sessions. The soft delete is the access-control boundary
// and the only step whose failure propagates; deleting an already-deleted
// project is a benign no-op that skips the cleanup stages.
func (c *Coordinator) DeleteProjectWithFiles(ctx context.Context, projectID string) (*DeleteOutcome, error) {
	outcome := &DeleteOutcome{Record: StepSkipped, Files: StepSkipped, Sessions: StepSkipped}

	affected, err := c.store.SoftDelete(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("soft delete project: %w", err)
	}
	if !affected {
		utils.Sugar.Infof("delete project %s: already deleted or unknown, nothing to do", projectID)
		return outcome, nil
	}
	outcome.Record = StepDone

	if err := c.files.DeleteProject(ctx, projectID); err != nil {
		outcome.Files = StepFailedIgnored
		utils.Sugar.Errorf("delete project %s: storage cleanup failed: %v", projectID, err)
	} else {
		outcome.Files = StepDone
	}

	if err := c.store.DeleteSessions(ctx, projectID); err != nil {
		outcome.Sessions = StepFailedIgnored
		utils.Sugar.Errorf("delete project %s: session cleanup failed: %v", projectID, err)
	} else {
		outcome.Sessions = StepDone
	}

	return outcome, nil
}

// UpdateProjectInput is a partial patch: nil pointer fields and nil file
// slices are left untouched.
type UpdateProjectInput struct {
	ProjectName   *string
	StudentName   *string
	StudentEmail  *string
	ResearchTopic *string
	Docx          []byte
	HTML          []byte
}

func (in UpdateProjectInput) empty() bool {
	return in.ProjectName == nil && in.StudentName == nil &&
		in.StudentEmail == nil && in.ResearchTopic == nil &&
		len(in.Docx) == 0 && len(in.HTML) == 0
}

// UpdateProjectFiles replaces one or both files and/or metadata on an existing
// project. Unlike creation, a replacement HTML with blocking self-containment
// errors is rejected outright: updates swap a file out from under students who
// already hold the link. File pointers change only after the new bytes are in
// place.
func (c *Coordinator) UpdateProjectFiles(ctx context.Context, projectID string, in UpdateProjectInput) (*models.Project, []string, error) {
	if in.empty() {
		return nil, nil, &ValidationError{Message: "nothing to update"}
	}

	if _, err := c.store.FindActive(ctx, projectID); err != nil {
		return nil, nil, err
	}

	warnings := []string{}
	fields := map[string]interface{}{}

	if len(in.HTML) > 0 {
		if err := ValidateFileSize(in.HTML, MaxFileSize); err != nil {
			return nil, nil, err
		}
		validation := ValidateHTMLSelfContained(string(in.HTML))
		if !validation.Valid() {
			return nil, nil, &ValidationError{
				Message: "HTML is not self-contained: " + validation.Errors[0],
			}
		}
		warnings = append(warnings, validation.Warnings...)
		if warning, err := HTMLWeightAdvisory(in.HTML); err != nil {
			return nil, nil, err
		} else if warning != "" {
			warnings = append(warnings, warning)
		}
	}
	if len(in.Docx) > 0 {
		if err := ValidateFileSize(in.Docx, MaxFileSize); err != nil {
			return nil, nil, err
		}
	}

	if len(in.Docx) > 0 {
		locator, err := c.replaceFile(ctx, projectID, DocxFilename, in.Docx)
		if err != nil {
			return nil, nil, err
		}
		fields["docx_url"] = locator
	}
	if len(in.HTML) > 0 {
		locator, err := c.replaceFile(ctx, projectID, HTMLFilename, in.HTML)
		if err != nil {
			return nil, nil, err
		}
		fields["html_url"] = locator
	}

	if in.ProjectName != nil {
		fields["project_name"] = *in.ProjectName
	}
	if in.StudentName != nil {
		fields["student_name"] = *in.StudentName
	}
	if in.StudentEmail != nil {
		fields["student_email"] = *in.StudentEmail
	}
	if in.ResearchTopic != nil {
		fields["research_topic"] = *in.ResearchTopic
	}

	if err := c.store.Update(ctx, projectID, fields); err != nil {
		return nil, nil, fmt.Errorf("persist update: %w", err)
	}

	project, err := c.store.FindActive(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return project, warnings, nil
}

// replaceFile swaps the stored object at a fixed filename. The delete
// tolerates absence, and upload is an upsert, so replacement needs no
// separate update API on the storage contract.
func (c *Coordinator) replaceFile(ctx context.Context, projectID, filename string, data []byte) (string, error) {
	if err := c.files.Delete(ctx, projectID, filename); err != nil {
		return "", fmt.Errorf("delete old %s: %w", filename, err)
	}
	locator, err := c.files.Upload(ctx, projectID, filename, data)
	if err != nil {
		return "", fmt.Errorf("upload new %s: %w", filename, err)
	}
	return locator, nil
}

// RegeneratePassword replaces the project's password with a fresh random one
// and returns the plaintext exactly once.
func (c *Coordinator) RegeneratePassword(ctx context.Context, projectID string) (string, error) {
	if _, err := c.store.FindActive(ctx, projectID); err != nil {
		return "", err
	}

	password, err := utils.GeneratePassword(utils.PasswordLength)
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := c.store.Update(ctx, projectID, map[string]interface{}{"password_hash": hash}); err != nil {
		return "", fmt.Errorf("persist password: %w", err)
	}
	return password, nil
}
