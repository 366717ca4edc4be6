// Package emails renders the transactional and admin emails sent for submissions.
package emails

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Branding is the institute identity printed in every email.
type Branding struct {
	InstituteName string
	DashboardURL  string
	SupportEmail  string
}

// DefaultBranding matches the production institute.
var DefaultBranding = Branding{
	InstituteName: "EduPreneurX",
	DashboardURL:  "https://access.edupreneurx.com/admin",
	SupportEmail:  "info@edupreneurx.com",
}

// Email is a rendered subject and HTML body.
type Email struct {
	Subject string
	HTML    string
}

// Renderer turns snapshots into emails. It is safe for concurrent use.
type Renderer struct {
	brand        Branding
	confirmation *template.Template
	statusUpdate *template.Template
	digest       *template.Template
}

type layout struct {
	Brand   Branding
	Title   string
	Heading string
	Tagline string
	Width   int
	Data    interface{}
}

// NewRenderer parses the embedded templates. Empty branding fields fall back
// to DefaultBranding.
func NewRenderer(brand Branding) (*Renderer, error) {
	if brand.InstituteName == "" {
		brand.InstituteName = DefaultBranding.InstituteName
	}
	if brand.DashboardURL == "" {
		brand.DashboardURL = DefaultBranding.DashboardURL
	}
	if brand.SupportEmail == "" {
		brand.SupportEmail = DefaultBranding.SupportEmail
	}

	r := &Renderer{brand: brand}
	var err error
	if r.confirmation, err = parse("confirmation.gohtml"); err != nil {
		return nil, err
	}
	if r.statusUpdate, err = parse("status_update.gohtml"); err != nil {
		return nil, err
	}
	if r.digest, err = parse("admin_digest.gohtml"); err != nil {
		return nil, err
	}
	return r, nil
}

// MustNewRenderer panics if the embedded templates fail to parse.
func MustNewRenderer(brand Branding) *Renderer {
	r, err := NewRenderer(brand)
	if err != nil {
		panic(err)
	}
	return r
}

func parse(name string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/_base.gohtml", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse email template %s: %w", name, err)
	}
	return tmpl.Option("missingkey=error"), nil
}

func (r *Renderer) execute(tmpl *template.Template, l layout) (string, error) {
	l.Brand = r.brand
	if l.Width == 0 {
		l.Width = 600
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", l); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

var funcs = template.FuncMap{
	"statusLabel":   StatusLabel,
	"statusColor":   func(s string) template.CSS { return template.CSS(StatusColor(s)) },
	"statusMessage": StatusMessage,
	"typeLabel":     TypeLabel,
	"typeColor":     func(t string) template.CSS { return template.CSS(TypeColor(t)) },
	"money":         Money,
}

// Money formats whole-dollar amounts with thousands separators, e.g. $10,000.
func Money(d decimal.Decimal) string {
	raw := d.Round(0).Abs().StringFixed(0)
	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, ch := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	return b.String()
}
