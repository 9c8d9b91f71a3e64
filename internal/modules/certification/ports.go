package certification

import (
	"context"
	"time"

	types "github.com/yungbote/certchain-backend/internal/domain"
	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/modules/certification/document"
	"github.com/yungbote/certchain-backend/internal/modules/nft"
)

// Renderer produces the certificate document and its metadata.
// *document.Renderer is the production implementation.
type Renderer interface {
	Render(recipient, topic string, issuedAt time.Time) types.Document
	CertificateMetadata(recipient, topic, imageURI string, issuedAt time.Time) document.Metadata
	ImageName(recipient, topic string) string
	MetadataName(recipient, topic string) string
	Placeholders() (recipient, topic string)
}

// Compositor rasterizes a rendered document into PNG bytes.
type Compositor interface {
	Composite(ctx context.Context, doc types.Document) ([]byte, error)
}

// ContentStore pins content and returns its permanent URI.
type ContentStore interface {
	PinBytes(ctx context.Context, data []byte, nameHint string) (string, error)
	PinJSON(ctx context.Context, doc any, nameHint string) (string, error)
}

type Minter interface {
	Mint(ctx context.Context, to, tokenURI string) (nft.Result, error)
	ContractAddress() string
}

type disabledCompositor struct{}

// DisabledCompositor is wired where no rendering engine is available. Every
// call fails with RenderingUnavailable.
func DisabledCompositor() Compositor { return disabledCompositor{} }

func (disabledCompositor) Composite(context.Context, types.Document) ([]byte, error) {
	return nil, faults.New(faults.CodeRenderingUnavailable, faults.OpCompositorLaunch, "no rendering engine configured", nil)
}
