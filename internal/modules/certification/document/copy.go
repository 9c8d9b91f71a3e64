package document

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

//go:embed certificate.yaml certificate.html.tmpl
var assets embed.FS

// Copy is every piece of locale-specific text the certificate uses.
type Copy struct {
	Lang           string   `yaml:"lang"`
	Title          string   `yaml:"title"`
	Eyebrow        string   `yaml:"eyebrow"`
	Heading        string   `yaml:"heading"`
	Badge          string   `yaml:"badge"`
	Headline       string   `yaml:"headline"`
	TopicPrefix    string   `yaml:"topic_prefix"`
	IssuedPrefix   string   `yaml:"issued_prefix"`
	SignatureName  string   `yaml:"signature_name"`
	SignatureTitle string   `yaml:"signature_title"`
	Stylesheet     string   `yaml:"stylesheet"`
	DatePattern    string   `yaml:"date_pattern"`
	Months         []string `yaml:"months"`

	Placeholders struct {
		Recipient string `yaml:"recipient"`
		Topic     string `yaml:"topic"`
	} `yaml:"placeholders"`

	Names struct {
		Image    string `yaml:"image"`
		Metadata string `yaml:"metadata"`
	} `yaml:"names"`

	Metadata struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		TopicTrait  string `yaml:"topic_trait"`
	} `yaml:"metadata"`
}

// DefaultCopy returns the embedded copy. It panics only if the embedded
// file is broken, which the package tests rule out.
func DefaultCopy() *Copy {
	c, err := parseCopy(mustAsset("certificate.yaml"))
	if err != nil {
		panic(fmt.Sprintf("embedded certificate copy: %v", err))
	}
	return c
}

// LoadCopy reads the override at path when set. An unreadable or invalid
// override falls back to the embedded copy.
func LoadCopy(path string, log *logger.Logger) *Copy {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultCopy()
	}
	data, err := os.ReadFile(path)
	if err == nil {
		var c *Copy
		if c, err = parseCopy(data); err == nil {
			return c
		}
	}
	if log != nil {
		log.Warn("certificate copy override rejected; using embedded copy", "path", path, "error", err)
	}
	return DefaultCopy()
}

func parseCopy(data []byte) (*Copy, error) {
	var c Copy
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Copy) validate() error {
	if len(c.Months) != 12 {
		return fmt.Errorf("months: expected 12 entries, got %d", len(c.Months))
	}
	required := map[string]string{
		"headline":               c.Headline,
		"date_pattern":           c.DatePattern,
		"placeholders.recipient": c.Placeholders.Recipient,
		"placeholders.topic":     c.Placeholders.Topic,
		"names.image":            c.Names.Image,
		"names.metadata":         c.Names.Metadata,
		"metadata.name":          c.Metadata.Name,
		"metadata.description":   c.Metadata.Description,
		"metadata.topic_trait":   c.Metadata.TopicTrait,
	}
	var errs []error
	for k, v := range required {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("%s is required", k))
		}
	}
	return errors.Join(errs...)
}

func mustAsset(name string) []byte {
	b, err := assets.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return b
}

// fill substitutes {recipient} and {topic} in pattern.
func fill(pattern, recipient, topic string) string {
	return strings.NewReplacer("{recipient}", recipient, "{topic}", topic).Replace(pattern)
}
