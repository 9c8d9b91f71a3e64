package certification

// Document is a rendered certificate. HTML is the self-contained markup
// with every caller-supplied value escaped; Lines carries the same copy as
// plain text for compositors that draw text directly.
type Document struct {
	HTML      string
	Recipient string
	Topic     string
	IssuedOn  string
	Lines     DocumentLines
}

type DocumentLines struct {
	Eyebrow        string
	Heading        string
	Badge          string
	Headline       string
	TopicLine      string
	DateLine       string
	SignatureName  string
	SignatureTitle string
}
