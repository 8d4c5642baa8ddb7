package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/justestif/go-emotion-player/internal/mood"
	"github.com/justestif/go-emotion-player/internal/player"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	partials  map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a new template manager by loading templates from the given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		partials:  make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	// Execute the "base" template which includes the page content
	return tmpl.ExecuteTemplate(w, "base", data)
}

// RenderPartial renders a partial template without the base layout.
func (t *Templates) RenderPartial(w io.Writer, partial string, data any) error {
	tmpl, ok := t.partials[partial]
	if !ok {
		return fmt.Errorf("partial %q not found", partial)
	}
	return tmpl.Execute(w, data)
}

// load parses all templates from the filesystem.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}
	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}
	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}
	if len(layouts) == 0 || len(pages) == 0 {
		return fmt.Errorf("no layouts or pages found")
	}

	common := append(layouts, partials...)

	// Each page is parsed with every layout and partial so it can execute
	// "base".
	for _, page := range pages {
		name := templateName(page)
		files := append([]string{page}, common...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	for _, partial := range partials {
		name := templateName(partial)
		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, partial)
		if err != nil {
			return fmt.Errorf("parsing partial %s: %w", name, err)
		}
		t.partials[name] = tmpl
	}

	return nil
}

func templateName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".html")
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// moodColor returns the primary colour of a mood, or its secondary
		// colour when variant is "secondary".
		"moodColor": func(m mood.Mood, variant string) string {
			a := mood.Display(m)
			if variant == "secondary" {
				return a.Secondary
			}
			return a.Primary
		},

		"moodEmoji": func(m mood.Mood) string {
			return mood.Display(m).Emoji
		},

		"moodLabel": moodLabel,

		"formatTime": player.FormatTime,

		// percent renders a [0,1] level as a whole percentage.
		"percent": func(v float64) int {
			return int(v*100 + 0.5)
		},
	}
}

var titleCase = cases.Title(language.English)

// moodLabel renders a mood for display, e.g. "Surprised".
func moodLabel(m mood.Mood) string {
	return titleCase.String(string(m))
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	CurrentPath string
}

// MoodOption is one entry of the manual mood picker.
type MoodOption struct {
	Mood  mood.Mood
	Emoji string
}

func moodOptions() []MoodOption {
	opts := make([]MoodOption, 0, len(mood.All()))
	for _, m := range mood.All() {
		opts = append(opts, MoodOption{Mood: m, Emoji: mood.Display(m).Emoji})
	}
	return opts
}

// HomePageData contains data for the player page.
type HomePageData struct {
	PageData
	Snapshot player.Snapshot
	Moods    []MoodOption
}
