package storage

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/devshowcase/internal/models"
)

// Prompter reads answers line by line from an interactive session.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter reads from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Line asks label and returns the trimmed answer. io.EOF is returned when
// input ends.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// Project asks for every project field. When current is non-nil its values
// are offered as defaults; an empty answer keeps them and "-" clears an
// optional field.
func (p *Prompter) Project(current *models.Project) (models.ProjectInput, error) {
	var in models.ProjectInput
	if current != nil {
		in = models.ProjectInput{
			Title:       current.Title,
			Slug:        current.Slug,
			Description: current.Description,
			Content:     current.Content,
			ImageURL:    current.ImageURL,
			LiveURL:     current.LiveURL,
			RepoURL:     current.RepoURL,
			PublishedAt: current.PublishedAt,
			Featured:    current.Featured,
		}
	}

	required := []struct {
		label string
		dst   *string
	}{
		{"Title", &in.Title},
		{"Slug", &in.Slug},
		{"Description", &in.Description},
		{"Repository URL", &in.RepoURL},
	}
	for _, f := range required {
		v, err := p.Line(withDefault(f.label, *f.dst))
		if err != nil {
			return in, err
		}
		if v != "" {
			*f.dst = v
		}
	}

	optional := []struct {
		label string
		dst   **string
	}{
		{"Content", &in.Content},
		{"Image URL", &in.ImageURL},
		{"Live URL", &in.LiveURL},
	}
	for _, f := range optional {
		cur := ""
		if *f.dst != nil {
			cur = **f.dst
		}
		v, err := p.Line(withDefault(f.label, cur))
		if err != nil {
			return in, err
		}
		switch v {
		case "":
		case "-":
			*f.dst = nil
		default:
			s := v
			*f.dst = &s
		}
	}

	v, err := p.Line(withDefault("Featured (y/n)", strconv.FormatBool(in.Featured)))
	if err != nil {
		return in, err
	}
	if v != "" {
		in.Featured = v == "y" || v == "yes" || v == "true"
	}

	cur := ""
	if in.PublishedAt != nil {
		cur = in.PublishedAt.Format(time.RFC3339)
	}
	v, err = p.Line(withDefault("Published at (RFC3339)", cur))
	if err != nil {
		return in, err
	}
	if v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return in, fmt.Errorf("published at: %w", err)
		}
		in.PublishedAt = &t
	}

	return in, nil
}

func withDefault(label, current string) string {
	if current == "" {
		return label + ": "
	}
	return fmt.Sprintf("%s [%s]: ", label, current)
}
