// Package ui renders the HTML form page for both recommendation flows.
package ui

import (
	"embed"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"smartfarm/recommend"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const Title = "Smart Farming Assistant"

// Branding is the configurable sidebar and footer. Tagline may carry inline
// emphasis markup; anything beyond that is stripped.
type Branding struct {
	Tagline      string `yaml:"tagline"`
	SidebarImage string `yaml:"sidebar_image"`
	Footer       string `yaml:"footer"`
}

func DefaultBranding() Branding {
	return Branding{
		Tagline:      "Predict the best <strong>crop</strong> &amp; <strong>fertilizer</strong> for your farm.",
		SidebarImage: "https://www.isaaa.org/kc/cropbiotechupdate/files/images/1232019115251PM.jpg",
		Footer:       "Developed by Aryan Zende | © 2025 Smart Farming Assistant",
	}
}

// taglinePolicy keeps inline emphasis only.
func taglinePolicy() *bluemonday.Policy {
	policy := bluemonday.StrictPolicy()
	policy.AllowElements("strong", "em", "b", "i", "br")
	return policy
}

var supportedLanguages = []language.Tag{
	language.English,
	language.Hindi,
	language.German,
	language.French,
}

// Page is the view model of the whole page.
type Page struct {
	Lang         string
	Title        string
	Tagline      template.HTML
	SidebarImage string
	Footer       string
	Tabs         []*Tab
}

// Tab is one flow's form.
type Tab struct {
	Flow   recommend.Flow
	Title  string
	Header string
	Button string
	Active bool
	Fields []*FieldView
	Result *ResultView
}

type FieldView struct {
	Key     string
	Label   string
	Widget  string
	Bounded bool
	Min     string
	Max     string
	Step    string
	Value   string
	Hint    string
	Error   string
}

// ResultView holds the flow message as plain text; the template escapes it.
type ResultView struct {
	OK      bool
	Message string
}

// Renderer owns the parsed templates. It is safe for concurrent use.
type Renderer struct {
	tmpl     *template.Template
	matcher  language.Matcher
	branding Branding
	tagline  template.HTML
}

type Option func(*Renderer)

// WithBranding overrides the sidebar and footer. Empty fields keep the
// defaults.
func WithBranding(b Branding) Option {
	return func(r *Renderer) {
		if b.Tagline != "" {
			r.branding.Tagline = b.Tagline
		}
		if b.SidebarImage != "" {
			r.branding.SidebarImage = b.SidebarImage
		}
		if b.Footer != "" {
			r.branding.Footer = b.Footer
		}
	}
}

func NewRenderer(opts ...Option) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		tmpl:     tmpl,
		matcher:  language.NewMatcher(supportedLanguages),
		branding: DefaultBranding(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.tagline = template.HTML(strings.TrimSpace(taglinePolicy().Sanitize(r.branding.Tagline)))
	return r, nil
}

// NewPage builds a page with every field at its default. acceptLanguage is
// the raw Accept-Language header; it only affects number formatting in hints.
func (r *Renderer) NewPage(acceptLanguage string, active recommend.Flow) *Page {
	tag, _ := language.MatchStrings(r.matcher, acceptLanguage)
	base, _ := tag.Base()
	printer := message.NewPrinter(tag)

	if active != recommend.FlowFertilizer {
		active = recommend.FlowCrop
	}
	return &Page{
		Lang:         base.String(),
		Title:        Title,
		Tagline:      r.tagline,
		SidebarImage: r.branding.SidebarImage,
		Footer:       r.branding.Footer,
		Tabs: []*Tab{
			{
				Flow:   recommend.FlowCrop,
				Title:  "🚜 Crop Prediction",
				Header: "🚜 Crop Recommendation System",
				Button: "🌾 Predict Crop",
				Active: active == recommend.FlowCrop,
				Fields: fieldViews(printer, recommend.CropFields),
			},
			{
				Flow:   recommend.FlowFertilizer,
				Title:  "🧪 Fertilizer Recommendation",
				Header: "🧪 Fertilizer Recommendation System",
				Button: "🔬 Recommend Fertilizer",
				Active: active == recommend.FlowFertilizer,
				Fields: fieldViews(printer, recommend.FertilizerFields),
			},
		},
	}
}

func (p *Page) Tab(flow recommend.Flow) *Tab {
	for _, t := range p.Tabs {
		if t.Flow == flow {
			return t
		}
	}
	return nil
}

// SetValues keeps what the user submitted so the form is redisplayed as sent.
func (t *Tab) SetValues(raw map[string]string) {
	for _, f := range t.Fields {
		if v, ok := raw[f.Key]; ok {
			f.Value = v
		}
	}
}

func (t *Tab) SetFieldErrors(errs recommend.FieldErrors) {
	for _, f := range t.Fields {
		if msg, ok := errs[f.Key]; ok {
			f.Error = msg
		}
	}
}

// SetResult attaches a flow result. Failure text is kept verbatim.
func (r *Renderer) SetResult(t *Tab, res recommend.Result) {
	_, ok := res.(recommend.Recommended)
	t.Result = &ResultView{
		OK:      ok,
		Message: recommend.Message(res),
	}
}

func (r *Renderer) Render(w io.Writer, p *Page) error {
	return r.tmpl.ExecuteTemplate(w, "page.tmpl", p)
}

func fieldViews(printer *message.Printer, fields []recommend.Field) []*FieldView {
	views := make([]*FieldView, 0, len(fields))
	for _, f := range fields {
		view := &FieldView{
			Key:     f.Key,
			Label:   f.Label,
			Widget:  string(f.Widget),
			Bounded: f.Bounded,
			Step:    "any",
			Value:   formatFloat(f.Default),
		}
		if f.Step > 0 {
			view.Step = formatFloat(f.Step)
		}
		if f.Bounded {
			lo, hi := f.Range()
			view.Min = formatFloat(lo)
			view.Max = formatFloat(hi)
			view.Hint = printer.Sprintf("Range %v – %v", number.Decimal(f.Min), number.Decimal(f.Max))
			if f.DefaultOutsideBounds() {
				view.Hint += printer.Sprintf(" (default %v is outside this range; pending review)", number.Decimal(f.Default))
			}
		}
		views = append(views, view)
	}
	return views
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
