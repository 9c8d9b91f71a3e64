package certification

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/certchain-backend/internal/data/aggregates"
	"github.com/yungbote/certchain-backend/internal/data/repos"
	types "github.com/yungbote/certchain-backend/internal/domain"
	domaincert "github.com/yungbote/certchain-backend/internal/domain/certification"
	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/modules/certification/document"
	"github.com/yungbote/certchain-backend/internal/modules/nft"
	"github.com/yungbote/certchain-backend/internal/observability"
	"github.com/yungbote/certchain-backend/internal/platform/ctxutil"
	"github.com/yungbote/certchain-backend/internal/platform/dbctx"
	"github.com/yungbote/certchain-backend/internal/platform/evm"
	"github.com/yungbote/certchain-backend/internal/platform/lock"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

const (
	opCreate         = "certification.create"
	opGet            = "certification.get"
	opList           = "certification.list"
	opDelete         = "certification.delete"
	opUpdateProgress = "certification.update_progress"
	opMint           = "certification.mint"
	opResolveNames   = "certification.resolve_names"
)

type UsecasesDeps struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	Tx     aggregates.TxRunner
	Users  repos.UserRepo
	Topics repos.TopicRepo
	Certs  repos.CertificationRepo

	Renderer   Renderer
	Compositor Compositor
	Store      ContentStore
	Minter     Minter

	Locks   lock.Locker
	LockTTL time.Duration

	Timeouts      StageTimeouts
	DefaultMintTo string
	Explorer      Explorer

	// Now defaults to time.Now.
	Now func() time.Time
}

type Usecases struct {
	deps  UsecasesDeps
	pipe  *pipeline
	names *nameResolver
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	deps.Log = deps.Log.With("service", "CertificationUsecases")
	if deps.Compositor == nil {
		deps.Compositor = DisabledCompositor()
	}
	if deps.Locks == nil {
		deps.Locks = lock.NewLocal()
	}
	if deps.LockTTL <= 0 {
		deps.LockTTL = 5 * time.Minute
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Usecases{
		deps: deps,
		pipe: &pipeline{
			renderer:   deps.Renderer,
			compositor: deps.Compositor,
			store:      deps.Store,
			minter:     deps.Minter,
			timeouts:   deps.Timeouts,
			log:        deps.Log,
			metrics:    deps.Metrics,
		},
		names: &nameResolver{
			users:    deps.Users,
			topics:   deps.Topics,
			renderer: deps.Renderer,
			log:      deps.Log,
			metrics:  deps.Metrics,
		},
	}
}

type CreateInput struct {
	UserID             uuid.UUID
	TopicID            uuid.UUID
	ProgressPercentage int
	Status             string
	URLImage           string
}

func (u Usecases) Create(ctx context.Context, in CreateInput) (*types.Certification, error) {
	if in.UserID == uuid.Nil || in.TopicID == uuid.Nil {
		return nil, faults.Validation(opCreate, "userId and topicId are required")
	}
	if err := checkPercentage(opCreate, in.ProgressPercentage); err != nil {
		return nil, err
	}
	status := types.CertStatusPending
	if strings.TrimSpace(in.Status) != "" {
		s, ok := domaincert.ParseStatus(in.Status)
		if !ok {
			return nil, faults.Validation(opCreate, "unknown status %q", in.Status)
		}
		status = s
	}
	img, err := parseImageURI(opCreate, in.URLImage)
	if err != nil {
		return nil, err
	}

	var out *types.Certification
	err = u.deps.Tx.InTx(ctx, func(dbc dbctx.Context) error {
		users, err := u.deps.Users.GetByIDs(dbc, []uuid.UUID{in.UserID})
		if err != nil {
			return aggregates.MapError(opCreate, err)
		}
		if len(users) == 0 {
			return faults.NotFound(opCreate, "user not found")
		}
		topics, err := u.deps.Topics.GetByIDs(dbc, []uuid.UUID{in.TopicID})
		if err != nil {
			return aggregates.MapError(opCreate, err)
		}
		if len(topics) == 0 {
			return faults.NotFound(opCreate, "topic not found")
		}
		existing, err := u.deps.Certs.GetByUserTopic(dbc, in.UserID, in.TopicID)
		if err != nil {
			return aggregates.MapError(opCreate, err)
		}
		if existing != nil {
			return faults.Conflict(opCreate, "certification already exists for user and topic")
		}
		cert := &types.Certification{
			UserID:             in.UserID,
			TopicID:            in.TopicID,
			Status:             status,
			ProgressPercentage: in.ProgressPercentage,
		}
		if img != "" {
			cert.URLImage = &img
		}
		out, err = u.deps.Certs.Create(dbc, cert)
		return aggregates.MapError(opCreate, err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u Usecases) Get(ctx context.Context, id uuid.UUID) (*types.Certification, error) {
	cert, err := u.deps.Certs.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, aggregates.MapError(opGet, err)
	}
	if cert == nil {
		return nil, faults.NotFound(opGet, "certification not found")
	}
	return cert, nil
}

func (u Usecases) List(ctx context.Context) ([]*types.Certification, error) {
	out, err := u.deps.Certs.List(dbctx.Context{Ctx: ctx})
	return out, aggregates.MapError(opList, err)
}

func (u Usecases) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Certification, error) {
	out, err := u.deps.Certs.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	return out, aggregates.MapError(opList, err)
}

func (u Usecases) ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*types.Certification, error) {
	out, err := u.deps.Certs.ListByTopic(dbctx.Context{Ctx: ctx}, topicID)
	return out, aggregates.MapError(opList, err)
}

// Delete removes the row only. Pinned content and minted tokens are
// permanent and stay where they are.
func (u Usecases) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := u.deps.Certs.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return aggregates.MapError(opDelete, err)
	}
	if !ok {
		return faults.NotFound(opDelete, "certification not found")
	}
	return nil
}

type UpdateProgressInput struct {
	ID                 uuid.UUID
	ProgressPercentage int
	Status             string
	URLImage           *string
}

// UpdateProgress applies a progress update. Resolving to completed on a
// record with no image issues the certificate first; the update and the
// issuance columns are written together only after every stage succeeded,
// so a failed call leaves the record exactly as it was.
func (u Usecases) UpdateProgress(ctx context.Context, in UpdateProgressInput) (*types.Certification, error) {
	if err := checkPercentage(opUpdateProgress, in.ProgressPercentage); err != nil {
		return nil, err
	}
	status := domaincert.StatusForProgress(in.ProgressPercentage)
	if strings.TrimSpace(in.Status) != "" {
		s, ok := domaincert.ParseStatus(in.Status)
		if !ok {
			return nil, faults.Validation(opUpdateProgress, "unknown status %q", in.Status)
		}
		status = s
	}
	var img string
	if in.URLImage != nil {
		var err error
		if img, err = parseImageURI(opUpdateProgress, *in.URLImage); err != nil {
			return nil, err
		}
	}

	cert, err := u.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	log := u.deps.Log.With(append([]interface{}{
		"certification_id", cert.ID, "status", status, "progress", in.ProgressPercentage,
	}, ctxutil.LogFields(ctx)...)...)

	switch {
	case img != "":
		return u.applyImage(ctx, cert, status, in.ProgressPercentage, img)
	case status != types.CertStatusCompleted || cert.Issued():
		return u.applyProgress(ctx, cert.ID, status, in.ProgressPercentage)
	}

	release, err := u.deps.Locks.Acquire(ctx, lock.CertificationKey(cert.ID.String()), u.deps.LockTTL)
	if err != nil {
		log.Warn("issuance already running", "error", err)
		return nil, err
	}
	defer release()

	// Work under the lease has to end before the lease does, otherwise a
	// second caller can take the key and mint the same certificate.
	leaseCtx, cancel := context.WithTimeout(ctx, leaseBudget(u.deps.LockTTL))
	defer cancel()

	// Another request may have issued while we waited on the lock.
	if cert, err = u.load(leaseCtx, in.ID); err != nil {
		return nil, err
	}
	if cert.Issued() {
		return u.applyProgress(ctx, cert.ID, status, in.ProgressPercentage)
	}

	p, err := u.names.resolve(leaseCtx, cert)
	if err != nil {
		return nil, err
	}
	to, err := u.mintRecipient(p.Wallet)
	if err != nil {
		return nil, err
	}

	log.Info("issuing certificate", "lease_budget", leaseBudget(u.deps.LockTTL))
	iss, err := u.pipe.run(leaseCtx, to, p.Recipient, p.Topic, u.deps.Now().UTC())
	if err != nil {
		log.Warn("certificate issuance failed", "op", faults.OpOf(err), "code", faults.CodeOf(err))
		return nil, err
	}

	var out *types.Certification
	err = u.deps.Tx.InTx(ctx, func(dbc dbctx.Context) error {
		ok, err := u.deps.Certs.CompleteIssuance(dbc, cert.ID, status, in.ProgressPercentage, types.Issuance{
			URLImage:        iss.ImageURI,
			TokenURI:        iss.TokenURI,
			TokenID:         iss.Mint.TokenID,
			TxHash:          iss.Mint.TransactionHash,
			ContractAddress: iss.ContractAddress,
			Metadata:        datatypes.JSON(iss.MetadataJSON),
			IssuedAt:        iss.IssuedAt,
		})
		if err != nil {
			return aggregates.MapError(opUpdateProgress, err)
		}
		if err := aggregates.RequireCASSuccess(opUpdateProgress, ok, "certification was issued concurrently"); err != nil {
			return err
		}
		out, err = u.deps.Certs.GetByID(dbc, cert.ID)
		return aggregates.MapError(opUpdateProgress, err)
	})
	if err != nil {
		// The token exists on chain even though the row could not record it.
		log.Error("issued certificate could not be recorded",
			"image_uri", iss.ImageURI, "token_uri", iss.TokenURI,
			"token_id", iss.Mint.TokenID, "tx_hash", iss.Mint.TransactionHash, "error", err)
		return nil, err
	}
	log.Info("certificate issued", "image_uri", iss.ImageURI, "token_id", iss.Mint.TokenID, "tx_hash", iss.Mint.TransactionHash)
	return out, nil
}

// leaseBudget is how long an issuance may run under a lease of ttl. The
// remainder is left for recording the result.
func leaseBudget(ttl time.Duration) time.Duration {
	return ttl - ttl/10
}

func (u Usecases) load(ctx context.Context, id uuid.UUID) (*types.Certification, error) {
	cert, err := u.deps.Certs.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, aggregates.MapError(opUpdateProgress, err)
	}
	if cert == nil {
		return nil, faults.NotFound(opUpdateProgress, "certification not found")
	}
	return cert, nil
}

func (u Usecases) applyProgress(ctx context.Context, id uuid.UUID, status types.CertStatus, pct int) (*types.Certification, error) {
	var out *types.Certification
	err := u.deps.Tx.InTx(ctx, func(dbc dbctx.Context) error {
		if err := u.deps.Certs.UpdateProgress(dbc, id, status, pct); err != nil {
			return aggregates.MapError(opUpdateProgress, err)
		}
		var err error
		out, err = u.deps.Certs.GetByID(dbc, id)
		return aggregates.MapError(opUpdateProgress, err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyImage records a caller-supplied image. The image is write-once: the
// same image again is a plain progress update, a different one conflicts.
func (u Usecases) applyImage(ctx context.Context, cert *types.Certification, status types.CertStatus, pct int, img string) (*types.Certification, error) {
	if cert.Issued() {
		if strings.TrimSpace(*cert.URLImage) != img {
			return nil, faults.Conflict(opUpdateProgress, "certification already has an image")
		}
		return u.applyProgress(ctx, cert.ID, status, pct)
	}
	var out *types.Certification
	err := u.deps.Tx.InTx(ctx, func(dbc dbctx.Context) error {
		ok, err := u.deps.Certs.SetImage(dbc, cert.ID, status, pct, img)
		if err != nil {
			return aggregates.MapError(opUpdateProgress, err)
		}
		if err := aggregates.RequireCASSuccess(opUpdateProgress, ok, "certification already has an image"); err != nil {
			return err
		}
		out, err = u.deps.Certs.GetByID(dbc, cert.ID)
		return aggregates.MapError(opUpdateProgress, err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mintRecipient prefers the user's own wallet and falls back to the
// configured default address.
func (u Usecases) mintRecipient(wallet string) (string, error) {
	if evm.IsAddress(wallet) {
		return wallet, nil
	}
	if def := strings.TrimSpace(u.deps.DefaultMintTo); evm.IsAddress(def) {
		return def, nil
	}
	return "", faults.Validation(opUpdateProgress, "no valid mint recipient: user has no wallet and DEFAULT_MINT_TO is not set")
}

// RenderHTML renders the certificate markup for display. Empty names use
// the placeholders.
func (u Usecases) RenderHTML(recipient, topic string) string {
	recipientPH, topicPH := u.deps.Renderer.Placeholders()
	if strings.TrimSpace(recipient) == "" {
		recipient = recipientPH
	}
	if strings.TrimSpace(topic) == "" {
		topic = topicPH
	}
	return u.deps.Renderer.Render(recipient, topic, u.deps.Now()).HTML
}

type MintOutput struct {
	ImageURI string `json:"imageUri"`
	TokenURI string `json:"tokenURI"`
	nft.Result
}

// MintCertificateNft issues a certificate that is not tied to any
// certification record.
func (u Usecases) MintCertificateNft(ctx context.Context, to, recipient, topic string) (MintOutput, error) {
	to = strings.TrimSpace(to)
	if !evm.IsAddress(to) {
		return MintOutput{}, faults.Validation(opMint, "malformed recipient address")
	}
	recipient, topic = strings.TrimSpace(recipient), strings.TrimSpace(topic)
	if recipient == "" || topic == "" {
		return MintOutput{}, faults.Validation(opMint, "name and topic are required")
	}
	iss, err := u.pipe.run(ctx, to, recipient, topic, u.deps.Now().UTC())
	if err != nil {
		return MintOutput{}, err
	}
	u.deps.Log.Info("ad hoc certificate minted", "token_id", iss.Mint.TokenID, "tx_hash", iss.Mint.TransactionHash)
	return MintOutput{ImageURI: iss.ImageURI, TokenURI: iss.TokenURI, Result: iss.Mint}, nil
}

type DefaultMintOutput struct {
	ImageURI        string `json:"imageUri"`
	TokenURI        string `json:"tokenURI"`
	TokenID         string `json:"tokenId"`
	TxHash          string `json:"txHash"`
	ContractAddress string `json:"contractAddress"`
	TokenURL        string `json:"tokenUrl,omitempty"`
	TxURL           string `json:"txUrl,omitempty"`
}

// MintCertificateNftDefault mints to DEFAULT_MINT_TO and adds explorer links
// for whichever explorer bases are configured.
func (u Usecases) MintCertificateNftDefault(ctx context.Context, recipient, topic string) (DefaultMintOutput, error) {
	to := strings.TrimSpace(u.deps.DefaultMintTo)
	if to == "" {
		return DefaultMintOutput{}, faults.Validation(opMint, "DEFAULT_MINT_TO is not set")
	}
	res, err := u.MintCertificateNft(ctx, to, recipient, topic)
	if err != nil {
		return DefaultMintOutput{}, err
	}
	contract := u.deps.Minter.ContractAddress()
	return DefaultMintOutput{
		ImageURI:        res.ImageURI,
		TokenURI:        res.TokenURI,
		TokenID:         res.TokenID,
		TxHash:          res.TransactionHash,
		ContractAddress: contract,
		TokenURL:        u.deps.Explorer.TokenURL(contract, res.TokenID),
		TxURL:           u.deps.Explorer.TxURL(res.TransactionHash),
	}, nil
}

// MintRaw mints against an already pinned metadata URI.
func (u Usecases) MintRaw(ctx context.Context, to, tokenURI string) (nft.Result, error) {
	return u.deps.Minter.Mint(ctx, to, tokenURI)
}

type MetadataMintOutput struct {
	TokenURI string `json:"tokenURI"`
	nft.Result
}

// MintWithMetadata pins a metadata document built from caller fields and
// mints it.
func (u Usecases) MintWithMetadata(ctx context.Context, to string, req document.FreeformRequest) (MetadataMintOutput, error) {
	to = strings.TrimSpace(to)
	if !evm.IsAddress(to) {
		return MetadataMintOutput{}, faults.Validation(opMint, "malformed recipient address")
	}
	req.RecipientName = strings.TrimSpace(req.RecipientName)
	if req.RecipientName == "" {
		return MetadataMintOutput{}, faults.Validation(opMint, "recipientName is required")
	}
	meta := document.FreeformMetadata(req)
	var tokenURI string
	err := u.pipe.stage(ctx, stagePinMetadata, faults.CodeStorageUnavailable, faults.OpStorePinJSON, u.deps.Timeouts.Store, func(ctx context.Context) error {
		var err error
		tokenURI, err = u.deps.Store.PinJSON(ctx, meta, "cert-"+req.RecipientName)
		return err
	})
	if err != nil {
		return MetadataMintOutput{}, err
	}
	res, err := u.deps.Minter.Mint(ctx, to, tokenURI)
	if err != nil {
		return MetadataMintOutput{}, err
	}
	return MetadataMintOutput{TokenURI: tokenURI, Result: res}, nil
}

func checkPercentage(op string, pct int) error {
	if pct < 0 || pct > 100 {
		return faults.Validation(op, "progressPercentage must be between 0 and 100")
	}
	return nil
}

func parseImageURI(op, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return "", faults.Validation(op, "urlImage must be an absolute URI")
	}
	return raw, nil
}
