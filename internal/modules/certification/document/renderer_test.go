package document

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

var issued = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func TestRender_EscapesUntrustedNames(t *testing.T) {
	doc := NewRenderer(nil).Render("Ana & Luis", "C++ <Basics>", issued)

	assert.Contains(t, doc.HTML, "Ana &amp; Luis")
	assert.Contains(t, doc.HTML, "C++ &lt;Basics&gt;")
	assert.NotContains(t, doc.HTML, "Ana & Luis")
	assert.NotContains(t, doc.HTML, "<Basics>")
	assert.Equal(t, "Ana & Luis", doc.Recipient)
	assert.Equal(t, "Felicidades Ana & Luis", doc.Lines.Headline)
}

func TestEscapeHTML_AllFive(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&#039;", EscapeHTML(`&<>"'`))
	assert.Equal(t, "&amp;amp;", EscapeHTML("&amp;"))
}

func TestRender_Skeleton(t *testing.T) {
	doc := NewRenderer(nil).Render("Ana", "Go", issued)

	assert.Contains(t, doc.HTML, `<html lang="es">`)
	assert.Contains(t, doc.HTML, `<script src="https://cdn.tailwindcss.com"></script>`)
	assert.Contains(t, doc.HTML, "Felicidades <span")
	assert.Contains(t, doc.HTML, ">Ana</span>")
	assert.Contains(t, doc.HTML, "por completar el tema <span")
	assert.Contains(t, doc.HTML, "“Go”")
	assert.Contains(t, doc.HTML, "Otorgado el 5 de marzo de 2024")
	assert.Contains(t, doc.HTML, "Dirección del Programa")
	assert.Contains(t, doc.HTML, "Firma autorizada")
	assert.Equal(t, "5 de marzo de 2024", doc.IssuedOn)
}

func TestFormatDate(t *testing.T) {
	r := NewRenderer(nil)
	assert.Equal(t, "5 de marzo de 2024", r.FormatDate(issued))
	assert.Equal(t, "31 de diciembre de 1999", r.FormatDate(time.Date(1999, 12, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1 de enero de 2025", r.FormatDate(time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC)))
}

func TestRender_Deterministic(t *testing.T) {
	r := NewRenderer(nil)
	first := r.Render("Ana", "Go", issued)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, first, r.Render("Ana", "Go", issued))
		}()
	}
	wg.Wait()
}

func TestNameHints(t *testing.T) {
	r := NewRenderer(nil)
	assert.Equal(t, "certificate-Ana-Go.png", r.ImageName("Ana", "Go"))
	assert.Equal(t, "cert-Ana-Go", r.MetadataName("Ana", "Go"))
}

func TestCertificateMetadata(t *testing.T) {
	md := NewRenderer(nil).CertificateMetadata("Ana", "Go", "ipfs://QmImg", issued)
	raw, err := json.Marshal(md)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Certificado - Ana",
		"description": "Felicidades Ana por completar el tema Go.",
		"image": "ipfs://QmImg",
		"attributes": [
			{"trait_type": "Recipient", "value": "Ana"},
			{"trait_type": "Topic", "value": "Go"},
			{"trait_type": "Issued At", "value": "2024-03-05T10:00:00.000Z"}
		]
	}`, string(raw))
}

func TestFreeformMetadata(t *testing.T) {
	md := FreeformMetadata(FreeformRequest{
		RecipientName: "Ana",
		CourseName:    "Go 101",
		IssuedAt:      "2024-03-05",
		Attributes:    []Attribute{{TraitType: "Level", Value: 2}},
	})
	assert.Equal(t, "Certificate - Ana", md.Name)
	assert.Equal(t, "Certificate awarded to Ana for Go 101.", md.Description)
	require.Len(t, md.Attributes, 4)
	assert.Equal(t, "Level", md.Attributes[0].TraitType)
	assert.Equal(t, "Recipient", md.Attributes[1].TraitType)
	assert.Equal(t, "Course", md.Attributes[2].TraitType)
	assert.Equal(t, "Issued At", md.Attributes[3].TraitType)

	bare := FreeformMetadata(FreeformRequest{RecipientName: "Ana"})
	assert.Equal(t, "Certificate awarded to Ana.", bare.Description)
	assert.Len(t, bare.Attributes, 1)
}

func TestLoadCopy_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copy.yaml")
	override := strings.Replace(string(mustAsset("certificate.yaml")), "headline: Felicidades", "headline: Congratulations", 1)
	require.NoError(t, os.WriteFile(path, []byte(override), 0o600))

	c := LoadCopy(path, logger.NewNop())
	assert.Equal(t, "Congratulations", c.Headline)
}

func TestLoadCopy_InvalidFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("months: [a, b]\n"), 0o600))

	c := LoadCopy(path, logger.NewNop())
	assert.Equal(t, "Felicidades", c.Headline)
	assert.Len(t, c.Months, 12)

	missing := LoadCopy(filepath.Join(dir, "nope.yaml"), logger.NewNop())
	assert.Equal(t, "Usuario", missing.Placeholders.Recipient)
}
