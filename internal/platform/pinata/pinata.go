package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

const DefaultBaseURL = "https://api.pinata.cloud"

const (
	pathPinFile  = "/pinning/pinFileToIPFS"
	pathPinJSON  = "/pinning/pinJSONToIPFS"
	pathTestAuth = "/data/testAuthentication"
)

type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	// JWT, when set, is sent as a bearer token instead of the key pair.
	JWT     string
	Timeout time.Duration
}

// Client pins bytes and JSON documents on Pinata and returns ipfs:// URIs.
// Requests are sent once; a failed pin is left to the caller to retry.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinError struct {
	Error interface{} `json:"error"`
}

type metadata struct {
	Name string `json:"name"`
}

type jsonBody struct {
	PinataContent  any      `json:"pinataContent"`
	PinataMetadata metadata `json:"pinataMetadata"`
}

func New(cfg Config, log *logger.Logger) (*Client, error) {
	jwt := strings.TrimSpace(cfg.JWT)
	if jwt == "" && (strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "") {
		return nil, errors.New("PINATA_JWT or PINATA_API_KEY and PINATA_API_SECRET are required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout)
	if jwt != "" {
		client.SetAuthToken(jwt)
	} else {
		client.SetHeader("pinata_api_key", cfg.APIKey).
			SetHeader("pinata_secret_api_key", cfg.APISecret)
	}

	return &Client{http: client, log: log.Named("store.pinata")}, nil
}

// Authenticate checks the credentials once; callers treat a failure as fatal
// at startup.
func (c *Client) Authenticate(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get(pathTestAuth)
	if err != nil {
		return wrapTransport("store.authenticate", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return faults.New(faults.CodeStorageUnavailable, "store.authenticate", "pinata rejected credentials: "+resp.Status(), nil)
	}
	return nil
}

// PinBytes uploads data as a file named nameHint.
func (c *Client) PinBytes(ctx context.Context, data []byte, nameHint string) (string, error) {
	if len(data) == 0 {
		return "", faults.Validation(faults.OpStorePinFile, "empty payload")
	}
	meta, err := json.Marshal(metadata{Name: nameHint})
	if err != nil {
		return "", faults.Wrap(faults.CodeInternal, faults.OpStorePinFile, err)
	}
	var result pinResponse
	var failure pinError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", nameHint, bytes.NewReader(data)).
		SetFormData(map[string]string{"pinataMetadata": string(meta)}).
		SetResult(&result).
		SetError(&failure).
		Post(pathPinFile)
	return c.finish(faults.OpStorePinFile, nameHint, resp, err, result)
}

// PinJSON uploads doc as a JSON object named nameHint.
func (c *Client) PinJSON(ctx context.Context, doc any, nameHint string) (string, error) {
	if doc == nil {
		return "", faults.Validation(faults.OpStorePinJSON, "nil document")
	}
	var result pinResponse
	var failure pinError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(jsonBody{PinataContent: doc, PinataMetadata: metadata{Name: nameHint}}).
		SetResult(&result).
		SetError(&failure).
		Post(pathPinJSON)
	return c.finish(faults.OpStorePinJSON, nameHint, resp, err, result)
}

func (c *Client) finish(op, nameHint string, resp *resty.Response, err error, result pinResponse) (string, error) {
	if err != nil {
		return "", wrapTransport(op, err)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusOK:
	case code == http.StatusBadRequest:
		return "", faults.New(faults.CodeValidation, op, "pinata rejected payload", nil)
	default:
		c.log.Warn("pin failed", "op", op, "name", nameHint, "status", code)
		return "", faults.New(faults.CodeStorageUnavailable, op, "pinata returned "+resp.Status(), nil)
	}
	hash := strings.TrimSpace(result.IpfsHash)
	if hash == "" {
		return "", faults.New(faults.CodeValidation, op, "pinata response missing IpfsHash", nil)
	}
	c.log.Debug("pinned", "op", op, "name", nameHint, "cid", hash, "size", result.PinSize)
	return "ipfs://" + hash, nil
}

func wrapTransport(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return faults.New(faults.CodeStorageUnavailable, op, "pinata unreachable", err)
	}
	return faults.Classify(faults.CodeStorageUnavailable, op, err)
}
