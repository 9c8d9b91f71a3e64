package document

import (
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/yungbote/certchain-backend/internal/domain/certification"
)

// Renderer turns a recipient, a topic and an issue date into a certificate
// document. It holds no mutable state and is safe for concurrent use.
type Renderer struct {
	copy *Copy
	tmpl *template.Template
}

func NewRenderer(c *Copy) *Renderer {
	if c == nil {
		c = DefaultCopy()
	}
	return &Renderer{
		copy: c,
		tmpl: template.Must(template.New("certificate").Parse(string(mustAsset("certificate.html.tmpl")))),
	}
}

func (r *Renderer) Copy() *Copy { return r.copy }

// Placeholders are the names used when a recipient or topic is unknown.
func (r *Renderer) Placeholders() (recipient, topic string) {
	return r.copy.Placeholders.Recipient, r.copy.Placeholders.Topic
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five markup metacharacters.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FormatDate renders t as a long-form day/month/year date in the copy's
// locale, e.g. "5 de marzo de 2024". The calendar day is taken in UTC.
func (r *Renderer) FormatDate(t time.Time) string {
	t = t.UTC()
	return strings.NewReplacer(
		"{day}", strconv.Itoa(t.Day()),
		"{month}", r.copy.Months[int(t.Month())-1],
		"{year}", strconv.Itoa(t.Year()),
	).Replace(r.copy.DatePattern)
}

type templateData struct {
	Lang, Title, Stylesheet       string
	Eyebrow, Heading, Badge       string
	Headline, Recipient           string
	TopicPrefix, Topic            string
	IssuedPrefix, IssuedOn        string
	SignatureName, SignatureTitle string
}

// Render never fails: the template is parsed at construction and every
// value is escaped before it is executed.
func (r *Renderer) Render(recipient, topic string, issuedAt time.Time) certification.Document {
	c := r.copy
	issuedOn := r.FormatDate(issuedAt)
	data := templateData{
		Lang:           EscapeHTML(c.Lang),
		Title:          EscapeHTML(c.Title),
		Stylesheet:     EscapeHTML(c.Stylesheet),
		Eyebrow:        EscapeHTML(c.Eyebrow),
		Heading:        EscapeHTML(c.Heading),
		Badge:          EscapeHTML(c.Badge),
		Headline:       EscapeHTML(c.Headline),
		Recipient:      EscapeHTML(recipient),
		TopicPrefix:    EscapeHTML(c.TopicPrefix),
		Topic:          EscapeHTML(topic),
		IssuedPrefix:   EscapeHTML(c.IssuedPrefix),
		IssuedOn:       EscapeHTML(issuedOn),
		SignatureName:  EscapeHTML(c.SignatureName),
		SignatureTitle: EscapeHTML(c.SignatureTitle),
	}
	var b strings.Builder
	_ = r.tmpl.Execute(&b, data)

	return certification.Document{
		HTML:      b.String(),
		Recipient: recipient,
		Topic:     topic,
		IssuedOn:  issuedOn,
		Lines: certification.DocumentLines{
			Eyebrow:        c.Eyebrow,
			Heading:        c.Heading,
			Badge:          c.Badge,
			Headline:       c.Headline + " " + recipient,
			TopicLine:      c.TopicPrefix + " “" + topic + "”",
			DateLine:       c.IssuedPrefix + " " + issuedOn,
			SignatureName:  c.SignatureName,
			SignatureTitle: c.SignatureTitle,
		},
	}
}

// ImageName and MetadataName are the advisory name hints sent to the store.
func (r *Renderer) ImageName(recipient, topic string) string {
	return fill(r.copy.Names.Image, recipient, topic)
}

func (r *Renderer) MetadataName(recipient, topic string) string {
	return fill(r.copy.Names.Metadata, recipient, topic)
}
