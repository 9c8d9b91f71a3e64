package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/certchain-backend/internal/domain"
	"github.com/yungbote/certchain-backend/internal/domain/faults"
	httpH "github.com/yungbote/certchain-backend/internal/http/handlers"
	"github.com/yungbote/certchain-backend/internal/modules/certification"
	"github.com/yungbote/certchain-backend/internal/modules/certification/document"
	"github.com/yungbote/certchain-backend/internal/modules/nft"
	"github.com/yungbote/certchain-backend/internal/observability"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

type fakeUsecases struct {
	lastUpdate certification.UpdateProgressInput
	lastCreate certification.CreateInput
	lastFree   document.FreeformRequest
	err        error
	cert       *types.Certification
}

func (f *fakeUsecases) Create(ctx context.Context, in certification.CreateInput) (*types.Certification, error) {
	f.lastCreate = in
	return f.cert, f.err
}

func (f *fakeUsecases) Get(ctx context.Context, id uuid.UUID) (*types.Certification, error) {
	return f.cert, f.err
}

func (f *fakeUsecases) List(ctx context.Context) ([]*types.Certification, error) {
	return nil, f.err
}

func (f *fakeUsecases) ListByUser(ctx context.Context, id uuid.UUID) ([]*types.Certification, error) {
	return []*types.Certification{f.cert}, f.err
}

func (f *fakeUsecases) ListByTopic(ctx context.Context, id uuid.UUID) ([]*types.Certification, error) {
	return []*types.Certification{f.cert}, f.err
}

func (f *fakeUsecases) Delete(ctx context.Context, id uuid.UUID) error { return f.err }

func (f *fakeUsecases) UpdateProgress(ctx context.Context, in certification.UpdateProgressInput) (*types.Certification, error) {
	f.lastUpdate = in
	return f.cert, f.err
}

func (f *fakeUsecases) RenderHTML(recipient, topic string) string {
	return "<p>" + recipient + "|" + topic + "</p>"
}

func (f *fakeUsecases) MintCertificateNft(ctx context.Context, to, recipient, topic string) (certification.MintOutput, error) {
	return certification.MintOutput{ImageURI: "ipfs://img", TokenURI: "ipfs://meta", Result: nft.Result{TokenID: "16"}}, f.err
}

func (f *fakeUsecases) MintCertificateNftDefault(ctx context.Context, recipient, topic string) (certification.DefaultMintOutput, error) {
	return certification.DefaultMintOutput{TokenID: "16", TxURL: "https://x/tx/0xabc"}, f.err
}

func (f *fakeUsecases) MintRaw(ctx context.Context, to, tokenURI string) (nft.Result, error) {
	return nft.Result{TransactionHash: "0xabc", TransactionStatus: 1, TokenID: "3"}, f.err
}

func (f *fakeUsecases) MintWithMetadata(ctx context.Context, to string, req document.FreeformRequest) (certification.MetadataMintOutput, error) {
	f.lastFree = req
	return certification.MetadataMintOutput{TokenURI: "ipfs://meta"}, f.err
}

func newTestRouter(f *fakeUsecases) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	return NewRouter(RouterConfig{
		Log:                  logger.NewNop(),
		Metrics:              observability.NewMetrics(reg),
		Gatherer:             reg,
		CertificationHandler: httpH.NewCertificationHandler(f),
		NFTHandler:           httpH.NewNFTHandler(f),
		HealthHandler:        httpH.NewHealthHandler(nil),
	})
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpdateProgressRoute(t *testing.T) {
	img := "ipfs://QmImage"
	id := uuid.New()
	f := &fakeUsecases{cert: &types.Certification{ID: id, Status: types.CertStatusCompleted, ProgressPercentage: 100, URLImage: &img}}
	r := newTestRouter(f)

	rec := do(r, http.MethodPatch, "/api/certifications/"+id.String()+"/progress", `{"progressPercentage":100,"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 100, f.lastUpdate.ProgressPercentage)
	assert.Equal(t, "completed", f.lastUpdate.Status)
	assert.Nil(t, f.lastUpdate.URLImage)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ipfs://QmImage", body["urlImage"])
	assert.Equal(t, "completed", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestUpdateProgressRoute_Errors(t *testing.T) {
	f := &fakeUsecases{}
	r := newTestRouter(f)
	id := uuid.New().String()

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, "/api/certifications/nope/progress", `{"progressPercentage":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, "/api/certifications/"+id+"/progress", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, "/api/certifications/"+id+"/progress", `{"progressPercentage":"x"}`).Code)

	f.err = faults.New(faults.CodeStorageUnavailable, faults.OpStorePinJSON, "pinata: 401 bad jwt", nil)
	rec := do(r, http.MethodPatch, "/api/certifications/"+id+"/progress", `{"progressPercentage":100}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stage":"store.pin_json"`)
	assert.NotContains(t, rec.Body.String(), "bad jwt")
}

func TestCertificateRoute(t *testing.T) {
	r := newTestRouter(&fakeUsecases{})
	rec := do(r, http.MethodGet, "/api/certifications/certificate?name=Ana&topic=Go", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<p>Ana|Go</p>", rec.Body.String())
}

func TestCreateAndListRoutes(t *testing.T) {
	f := &fakeUsecases{cert: &types.Certification{ID: uuid.New()}}
	r := newTestRouter(f)

	u, tp := uuid.New(), uuid.New()
	rec := do(r, http.MethodPost, "/api/certifications", `{"userId":"`+u.String()+`","topicId":"`+tp.String()+`","progressPercentage":20}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, u, f.lastCreate.UserID)
	assert.Equal(t, 20, f.lastCreate.ProgressPercentage)

	rec = do(r, http.MethodGet, "/api/certifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/certifications/by-user/"+u.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	f.err = faults.Conflict("certification.create", "certification already exists for user and topic")
	rec = do(r, http.MethodPost, "/api/certifications", `{"userId":"`+u.String()+`","topicId":"`+tp.String()+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestGetAndDeleteRoutes(t *testing.T) {
	f := &fakeUsecases{err: faults.NotFound("certification.get", "certification not found")}
	r := newTestRouter(f)
	id := uuid.New().String()

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/certifications/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/api/certifications/"+id, "").Code)

	f.err = nil
	rec := do(r, http.MethodDelete, "/api/certifications/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMintRoutes(t *testing.T) {
	f := &fakeUsecases{}
	r := newTestRouter(f)

	rec := do(r, http.MethodPost, "/api/certifications/certificate/mint-simple", `{"name":"Ana","topic":"Go"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"imageUri":"","tokenURI":"","tokenId":"16","txHash":"","contractAddress":"","txUrl":"https://x/tx/0xabc"}`, rec.Body.String())

	rec = do(r, http.MethodPost, "/api/nft/mint", `{"to":"0x1","tokenURI":"ipfs://meta"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"transactionHash":"0xabc","transactionStatus":1,"tokenId":"3"}`, rec.Body.String())

	rec = do(r, http.MethodPost, "/api/nft/mint-certificate", `{"to":"0x1","recipientName":"Ana","attributes":[{"trait_type":"Level","value":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ana", f.lastFree.RecipientName)
	require.Len(t, f.lastFree.Attributes, 1)
	assert.Equal(t, "Level", f.lastFree.Attributes[0].TraitType)

	f.err = faults.Validation("minter.validate", "malformed recipient address")
	rec = do(r, http.MethodPost, "/api/certifications/certificate/mint", `{"to":"not-an-address","name":"Ana","topic":"Go"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.err = faults.New(faults.CodeChainRejected, faults.OpMinterReverted, "", nil)
	rec = do(r, http.MethodPost, "/api/nft/mint", `{"to":"0x1","tokenURI":"ipfs://meta"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(&fakeUsecases{})
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthcheck", "").Code)

	rec := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "certchain_http_requests_total")
}
