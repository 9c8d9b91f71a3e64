package document

import (
	"time"
)

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// Metadata is the pinned token metadata document.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image,omitempty"`
	Attributes  []Attribute `json:"attributes"`
}

// ISOTime formats t the way token metadata records issue times:
// UTC with millisecond precision, e.g. 2024-03-05T10:00:00.000Z.
func ISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// CertificateMetadata builds the metadata for a certificate issued through
// the pipeline, using the copy's locale.
func (r *Renderer) CertificateMetadata(recipient, topic, imageURI string, issuedAt time.Time) Metadata {
	c := r.copy
	return Metadata{
		Name:        fill(c.Metadata.Name, recipient, topic),
		Description: fill(c.Metadata.Description, recipient, topic),
		Image:       imageURI,
		Attributes: []Attribute{
			{TraitType: "Recipient", Value: recipient},
			{TraitType: c.Metadata.TopicTrait, Value: topic},
			{TraitType: "Issued At", Value: ISOTime(issuedAt)},
		},
	}
}

// FreeformRequest describes an ad hoc certificate whose metadata is built
// from caller fields rather than the pipeline copy.
type FreeformRequest struct {
	RecipientName string
	CourseName    string
	IssuedAt      string
	Image         string
	Description   string
	Attributes    []Attribute
}

// FreeformMetadata keeps caller attributes first, then appends Recipient,
// Course and Issued At when present.
func FreeformMetadata(req FreeformRequest) Metadata {
	desc := req.Description
	if desc == "" {
		desc = "Certificate awarded to " + req.RecipientName
		if req.CourseName != "" {
			desc += " for " + req.CourseName
		}
		desc += "."
	}
	attrs := make([]Attribute, 0, len(req.Attributes)+3)
	attrs = append(attrs, req.Attributes...)
	attrs = append(attrs, Attribute{TraitType: "Recipient", Value: req.RecipientName})
	if req.CourseName != "" {
		attrs = append(attrs, Attribute{TraitType: "Course", Value: req.CourseName})
	}
	if req.IssuedAt != "" {
		attrs = append(attrs, Attribute{TraitType: "Issued At", Value: req.IssuedAt})
	}
	return Metadata{
		Name:        "Certificate - " + req.RecipientName,
		Description: desc,
		Image:       req.Image,
		Attributes:  attrs,
	}
}
