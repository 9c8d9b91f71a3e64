package certification

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/modules/certification/document"
	"github.com/yungbote/certchain-backend/internal/modules/nft"
	"github.com/yungbote/certchain-backend/internal/observability"
	"github.com/yungbote/certchain-backend/internal/platform/ctxutil"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

const (
	stageRender      = "render"
	stageComposite   = "composite"
	stagePinImage    = "pin_image"
	stagePinMetadata = "pin_metadata"
	stageMint        = "mint"
)

// StageTimeouts bounds each external stage. Zero leaves the stage bounded
// only by the caller's context. The chain confirmation deadline lives in
// the minter.
type StageTimeouts struct {
	Render time.Duration
	Store  time.Duration
}

// Issued is everything one pipeline run produced.
type Issued struct {
	ImageURI        string
	TokenURI        string
	Metadata        document.Metadata
	MetadataJSON    []byte
	Mint            nft.Result
	ContractAddress string
	IssuedAt        time.Time
}

type pipeline struct {
	renderer   Renderer
	compositor Compositor
	store      ContentStore
	minter     Minter
	timeouts   StageTimeouts
	log        *logger.Logger
	metrics    *observability.Metrics
}

// run drives render, composite, pin image, pin metadata and mint strictly in
// sequence. Nothing is persisted here; a failure at any stage returns that
// stage's fault and leaves no local state behind.
func (p *pipeline) run(ctx context.Context, to, recipient, topic string, issuedAt time.Time) (Issued, error) {
	ctx, span := otel.Tracer("certchain/certification").Start(ctx, "certificate.issue")
	defer span.End()

	out := Issued{IssuedAt: issuedAt}
	doc := p.renderer.Render(recipient, topic, issuedAt)
	p.metrics.ObserveStage(stageRender, nil, 0)

	var png []byte
	err := p.stage(ctx, stageComposite, faults.CodeRenderingUnavailable, faults.OpCompositorRender, p.timeouts.Render, func(ctx context.Context) error {
		b, err := p.compositor.Composite(ctx, doc)
		if err != nil {
			return err
		}
		if len(b) == 0 {
			return faults.New(faults.CodeRenderingUnavailable, faults.OpCompositorCapture, "empty image", nil)
		}
		png = b
		return nil
	})
	if err != nil {
		return Issued{}, p.fail(span, err)
	}

	err = p.stage(ctx, stagePinImage, faults.CodeStorageUnavailable, faults.OpStorePinFile, p.timeouts.Store, func(ctx context.Context) error {
		uri, err := p.store.PinBytes(ctx, png, p.renderer.ImageName(recipient, topic))
		out.ImageURI = uri
		return err
	})
	if err != nil {
		return Issued{}, p.fail(span, err)
	}

	out.Metadata = p.renderer.CertificateMetadata(recipient, topic, out.ImageURI, issuedAt)
	out.MetadataJSON, err = json.Marshal(out.Metadata)
	if err != nil {
		return Issued{}, p.fail(span, faults.New(faults.CodeInternal, faults.OpStorePinJSON, "encode metadata", err))
	}

	err = p.stage(ctx, stagePinMetadata, faults.CodeStorageUnavailable, faults.OpStorePinJSON, p.timeouts.Store, func(ctx context.Context) error {
		uri, err := p.store.PinJSON(ctx, out.Metadata, p.renderer.MetadataName(recipient, topic))
		out.TokenURI = uri
		return err
	})
	if err != nil {
		return Issued{}, p.fail(span, err)
	}

	err = p.stage(ctx, stageMint, faults.CodeChainUnavailable, faults.OpMinterSubmit, 0, func(ctx context.Context) error {
		res, err := p.minter.Mint(ctx, to, out.TokenURI)
		out.Mint = res
		return err
	})
	if err != nil {
		return Issued{}, p.fail(span, err)
	}
	out.ContractAddress = p.minter.ContractAddress()

	span.SetAttributes(
		attribute.String("image_uri", out.ImageURI),
		attribute.String("token_uri", out.TokenURI),
		attribute.String("token_id", out.Mint.TokenID),
	)
	return out, nil
}

func (p *pipeline) stage(ctx context.Context, name string, code faults.Code, op string, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, span := otel.Tracer("certchain/certification").Start(ctx, "certificate."+name)
	defer span.End()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := faults.Classify(code, op, fn(ctx))
	p.metrics.ObserveStage(name, err, time.Since(start))
	if err != nil {
		p.metrics.StageFailed(name, string(faults.CodeOf(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, faults.OpOf(err))
		p.log.Warn("issuance stage failed", append([]interface{}{
			"stage", name, "op", faults.OpOf(err), "code", faults.CodeOf(err), "error", err,
		}, ctxutil.LogFields(ctx)...)...)
	}
	return err
}

func (p *pipeline) fail(span trace.Span, err error) error {
	span.SetStatus(codes.Error, string(faults.CodeOf(err)))
	return err
}
