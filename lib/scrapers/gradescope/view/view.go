package view

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"gradescrape-backend/lib/htmlutil"
	"gradescrape-backend/lib/scrapers/gradescope/core"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("scrapers/gradescope/view")

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) Client {
	return Client{Core: coreClient}
}

type Course struct {
	Name string
	Href string
}

var courseHrefRegex = regexp.MustCompile(`/courses/(\d+)$`)

func (c Course) Id() int64 {
	groups := courseHrefRegex.FindStringSubmatch(c.Href)
	if groups == nil {
		return 0
	}
	id, _ := strconv.ParseInt(groups[1], 10, 64)
	return id
}

// Courses lists every course on the dashboard this account can access.
func (c Client) Courses(ctx context.Context) ([]Course, error) {
	ctx, span := tracer.Start(ctx, "client:Courses")
	defer span.End()

	doc, err := c.Core.GetDocument(ctx, "/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch dashboard")
		return nil, err
	}

	var courses []Course
	for _, a := range htmlutil.GetAnchors(doc.Find("a.courseBox")) {
		if !courseHrefRegex.MatchString(a.Href) {
			continue
		}
		courses = append(courses, Course{
			Name: a.Name,
			Href: a.Href,
		})
		span.AddEvent("course", trace.WithAttributes(
			attribute.String("name", a.Name),
			attribute.String("href", a.Href),
		))
	}

	return courses, nil
}

const findCourseThreshold = 0.8

// FindCourse resolves a course by display name, tolerating the small
// spelling drift between what the dashboard renders and what a human
// types into a config file.
func (c Client) FindCourse(ctx context.Context, name string) (Course, error) {
	ctx, span := tracer.Start(ctx, "client:FindCourse")
	defer span.End()

	courses, err := c.Courses(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list courses")
		return Course{}, err
	}

	var best Course
	bestSimilarity := 0.0
	for _, course := range courses {
		similarity := matchr.JaroWinkler(course.Name, name, false)
		if similarity > bestSimilarity {
			best = course
			bestSimilarity = similarity
		}
	}

	if bestSimilarity < findCourseThreshold {
		err := fmt.Errorf("no course resembling %q was found", name)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Course{}, err
	}
	return best, nil
}
