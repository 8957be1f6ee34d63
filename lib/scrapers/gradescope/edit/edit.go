package edit

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gradescrape-backend/lib/gstime"
	"gradescrape-backend/lib/htmlutil"
	"gradescrape-backend/lib/scrapers/gradescope/core"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/gradescope/edit")

// Course is a handle on a remote course, not a local copy of one. It
// borrows the client it is given and only ever identifies the resource.
type Course struct {
	Id   int64
	Core *core.Client
}

func NewCourse(coreClient *core.Client, id int64) Course {
	return Course{Id: id, Core: coreClient}
}

func (c Course) Path() string {
	return fmt.Sprintf("/courses/%d", c.Id)
}

// Name fetches the course's display title from its dashboard header.
func (c Course) Name(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "course:Name")
	defer span.End()

	doc, err := c.Core.GetDocument(ctx, c.Path())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch course page")
		return "", err
	}

	name := strings.TrimSpace(doc.Find("header h1").First().Text())
	if name == "" {
		err := &core.ScrapeError{Field: "course title"}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return name, nil
}

// Assignment is a handle on one assignment within a course. Use the
// PdfAssignment/AutograderAssignment constructors below to get the
// capability set matching the assignment's kind.
type Assignment struct {
	Id     int64
	Course Course
}

func (a Assignment) Path() string {
	return fmt.Sprintf("%s/assignments/%d", a.Course.Path(), a.Id)
}

// PdfAssignment accepts student-uploaded documents graded against an
// outline.
type PdfAssignment struct {
	Assignment
}

// AutograderAssignment runs an uploaded autograder package against code
// submissions.
type AutograderAssignment struct {
	Assignment
}

func (c Course) PdfAssignment(id int64) PdfAssignment {
	return PdfAssignment{Assignment{Id: id, Course: c}}
}

func (c Course) AutograderAssignment(id int64) AutograderAssignment {
	return AutograderAssignment{Assignment{Id: id, Course: c}}
}

// GetSettings scrapes the assignment's edit page back into a Settings
// value, which can be tweaked and passed straight to UpdateSettings.
func (a Assignment) GetSettings(ctx context.Context) (Settings, error) {
	ctx, span := tracer.Start(ctx, "assignment:GetSettings")
	defer span.End()

	doc, err := a.Course.Core.GetDocument(ctx, a.Path()+"/edit")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch edit page")
		return Settings{}, err
	}

	settings, err := ExtractSettings(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract settings")
		return Settings{}, err
	}
	return settings, nil
}

// UpdateSettings validates and writes the given settings in place over
// the assignment's current configuration. A ConfigurationError aborts
// before anything is sent.
func (a Assignment) UpdateSettings(ctx context.Context, s Settings) error {
	ctx, span := tracer.Start(ctx, "assignment:UpdateSettings")
	defer span.End()

	if _, err := s.validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid settings")
		return err
	}

	token, _, err := a.Course.Core.CsrfToken(ctx, a.Path()+"/edit")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read csrf token")
		return err
	}

	fields, err := s.Serialize(token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize settings")
		return err
	}

	_, err = a.Course.Core.PostForm(ctx, a.Path(), fields, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit settings")
		return err
	}
	return nil
}

// UpdateAutograderZip replaces the assignment's autograder package. The
// current image name is re-read from the configure page so the submit
// mirrors what the web UI would send.
func (a AutograderAssignment) UpdateAutograderZip(ctx context.Context, zip []byte, zipName string) error {
	ctx, span := tracer.Start(ctx, "assignment:UpdateAutograderZip")
	defer span.End()

	if zipName == "" {
		zipName = "autograder.zip"
	}

	token, page, err := a.Course.Core.CsrfToken(ctx, a.Path()+"/configure_autograder")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read csrf token")
		return err
	}

	imageName, _ := htmlutil.InputValue(page, "assignment[image_name]")
	fields := map[string]string{
		"authenticity_token":     token,
		"utf8":                   "✓",
		"_method":                "patch",
		"configuration":          "zip",
		"assignment[image_name]": imageName,
	}
	files := []core.FormFile{{
		Param:       "autograder_zip",
		Name:        zipName,
		ContentType: "application/zip",
		Data:        zip,
	}}

	_, err = a.Course.Core.PostForm(ctx, a.Path(), fields, files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload autograder")
		return err
	}
	return nil
}

// UpdateOutline replaces the assignment's question outline. The outline
// is free-form; gradescope validates it server-side.
func (p PdfAssignment) UpdateOutline(ctx context.Context, outline map[string]any) error {
	ctx, span := tracer.Start(ctx, "assignment:UpdateOutline")
	defer span.End()

	token, _, err := p.Course.Core.CsrfToken(ctx, p.Path()+"/outline/edit")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read csrf token")
		return err
	}

	body, err := json.Marshal(outline)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal outline")
		return err
	}

	res, err := p.Course.Core.Http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetHeader("x-csrf-token", token).
		SetBody(body).
		Patch(p.Path() + "/outline")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit outline")
		return err
	}
	if res.IsError() {
		err := &core.HttpError{Status: res.StatusCode(), Url: res.Request.URL}
		span.RecordError(err)
		span.SetStatus(codes.Error, "non-2xx response")
		return err
	}
	return nil
}

// PdfAssignmentOptions configures creation of a PDF assignment. The
// same pairing rules as Settings apply to the late date and group size,
// plus the time-limit pairing specific to this form.
type PdfAssignmentOptions struct {
	Title string
	// "image" lets students select pages per question, "pdf" does not
	SubmissionType string
	TemplateName   string
	TemplateData   []byte

	ReleaseDate time.Time
	DueDate     time.Time

	AllowLateSubmissions bool
	LateDueDate          *time.Time

	StudentSubmission bool
	TemplateVisible   bool

	EnforceTimeLimit bool
	TimeLimit        *int

	GroupSubmission bool
	GroupSize       *int
}

func (o PdfAssignmentOptions) build(csrfToken string) (map[string]string, []core.FormFile, error) {
	fields := map[string]string{
		"authenticity_token":                       csrfToken,
		"assignment[title]":                        o.Title,
		"assignment[student_submission]":           strconv.FormatBool(o.StudentSubmission),
		"assignment[release_date_string]":          gstime.Encode(o.ReleaseDate),
		"assignment[due_date_string]":              gstime.Encode(o.DueDate),
		"assignment[allow_late_submissions]":       boolBit(o.AllowLateSubmissions),
		"assignment[enforce_time_limit]":           boolBit(o.EnforceTimeLimit),
		"assignment[submission_type]":              o.SubmissionType,
		"assignment[group_submission]":             boolBit(o.GroupSubmission),
		"assignment[template_visible_to_students]": boolBit(o.TemplateVisible),
	}

	if o.AllowLateSubmissions {
		if o.LateDueDate == nil {
			return nil, nil, ErrLateDueDateMissing
		}
		fields["assignment[hard_due_date_string]"] = gstime.Encode(*o.LateDueDate)
	} else if o.LateDueDate != nil {
		return nil, nil, ErrLateDueDateUnexpected
	}

	if o.EnforceTimeLimit {
		if o.TimeLimit == nil || *o.TimeLimit < 1 {
			return nil, nil, ErrTimeLimitInvalid
		}
		fields["assignment[time_limit_in_minutes]"] = strconv.Itoa(*o.TimeLimit)
	}

	if o.GroupSize != nil {
		if !o.GroupSubmission {
			return nil, nil, ErrGroupSizeWithoutGroups
		}
		if *o.GroupSize <= 1 {
			return nil, nil, ErrGroupSizeTooSmall
		}
		fields["assignment[group_size]"] = strconv.Itoa(*o.GroupSize)
	}

	files := []core.FormFile{{
		Param:       "template_pdf",
		Name:        o.TemplateName,
		ContentType: "application/pdf",
		Data:        o.TemplateData,
	}}
	return fields, files, nil
}

var assignmentPathRegex = regexp.MustCompile(`/assignments/(\d+)`)

// CreatePdfAssignment creates a new PDF assignment in the course. The
// server answers a successful create with a redirect whose target path
// carries the new assignment's id, which becomes the returned handle.
func (c Course) CreatePdfAssignment(ctx context.Context, opts PdfAssignmentOptions) (PdfAssignment, error) {
	ctx, span := tracer.Start(ctx, "course:CreatePdfAssignment")
	defer span.End()

	token, _, err := c.Core.CsrfToken(ctx, c.Path()+"/assignments")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read csrf token")
		return PdfAssignment{}, err
	}

	fields, files, err := opts.build(token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid assignment options")
		return PdfAssignment{}, err
	}

	res, err := c.Core.PostForm(ctx, c.Path()+"/assignments", fields, files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit creation form")
		return PdfAssignment{}, err
	}

	groups := assignmentPathRegex.FindStringSubmatch(core.FinalPath(res))
	if groups == nil {
		err := &core.ScrapeError{Field: "assignment id"}
		span.RecordError(err)
		span.SetStatus(codes.Error, "creation did not redirect to the new assignment")
		return PdfAssignment{}, err
	}
	id, err := strconv.ParseInt(groups[1], 10, 64)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unparseable assignment id")
		return PdfAssignment{}, err
	}

	return c.PdfAssignment(id), nil
}
