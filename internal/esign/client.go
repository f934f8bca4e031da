package esign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/samedayramps/ramp-api/internal/domain"
	"github.com/samedayramps/ramp-api/internal/service"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://esignatures.io"
	requestTimeout = 10 * time.Second
)

// Client talks to the esignatures.io REST API. There is no official Go SDK,
// so this is a thin net/http wrapper around the two endpoints the pipeline
// needs.
type Client struct {
	baseURL    string
	token      string
	templateID string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(token, templateID string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		templateID: templateID,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

type signer struct {
	Name  string `json:"name"`
	Email string `json:"email_address"`
}

type customField struct {
	APIKey string `json:"api_key"`
	Value  string `json:"value"`
}

type createContractRequest struct {
	TemplateID   string        `json:"template_id"`
	Signers      []signer      `json:"signers"`
	CustomFields []customField `json:"placeholder_fields"`
	Metadata     string        `json:"metadata"`
}

type contractResponse struct {
	Data struct {
		Contract struct {
			ID      string `json:"id"`
			Status  string `json:"status"`
			Signers []struct {
				SignPageURL string `json:"sign_page_url"`
			} `json:"signers"`
		} `json:"contract"`
	} `json:"data"`
}

// CreateAgreement creates a contract from the rental agreement template and
// returns the first signer's signing page
func (c *Client) CreateAgreement(ctx context.Context, req service.AgreementRequest) (*service.Agreement, error) {
	body := createContractRequest{
		TemplateID: c.templateID,
		Signers: []signer{
			{Name: req.CustomerName, Email: req.CustomerEmail},
		},
		CustomFields: []customField{
			{APIKey: "date", Value: time.Now().Format("January 2, 2006")},
			{APIKey: "customerName", Value: req.CustomerName},
			{APIKey: "installAddress", Value: req.InstallAddress},
			{APIKey: "totalLength", Value: fmt.Sprintf("%.0f", req.TotalLengthFt)},
			{APIKey: "number-of-landings", Value: fmt.Sprintf("%d", req.LandingCount)},
			{APIKey: "monthlyRentalRate", Value: fmt.Sprintf("%.2f", req.MonthlyRentalRate)},
			{APIKey: "totalUpfront", Value: fmt.Sprintf("%.2f", req.TotalUpfront)},
		},
		Metadata: req.QuoteID,
	}

	var resp contractResponse
	if err := c.do(ctx, http.MethodPost, "/api/contracts", body, &resp); err != nil {
		return nil, err
	}

	contract := resp.Data.Contract
	if contract.ID == "" || len(contract.Signers) == 0 {
		return nil, fmt.Errorf("contract response missing id or signers")
	}

	c.logger.Info("agreement created",
		zap.String("contractId", contract.ID),
		zap.String("quoteId", req.QuoteID))

	return &service.Agreement{
		ID:         contract.ID,
		SigningURL: contract.Signers[0].SignPageURL,
		Status:     domain.AgreementStatusSent,
	}, nil
}

// GetAgreementStatus polls the vendor for the current contract status
func (c *Client) GetAgreementStatus(ctx context.Context, agreementID string) (domain.AgreementStatus, error) {
	var resp contractResponse
	path := "/api/contracts/" + url.PathEscape(agreementID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	status, ok := mapContractStatus(resp.Data.Contract.Status)
	if !ok {
		return "", fmt.Errorf("unknown contract status %q", resp.Data.Contract.Status)
	}
	return status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	endpoint := fmt.Sprintf("%s%s?token=%s", c.baseURL, path, url.QueryEscape(c.token))

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling esignatures api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("esignatures api returned %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func mapContractStatus(vendorStatus string) (domain.AgreementStatus, bool) {
	switch vendorStatus {
	case "contract_sent", "contract-sent", "sent":
		return domain.AgreementStatusSent, true
	case "contract_viewed", "contract-viewed", "viewed":
		return domain.AgreementStatusViewed, true
	case "contract_signed", "contract-signed", "signed":
		return domain.AgreementStatusSigned, true
	case "contract_declined", "contract-declined", "declined", "contract_withdrawn", "contract-withdrawn":
		return domain.AgreementStatusDeclined, true
	}
	return "", false
}

type webhookPayload struct {
	Status string `json:"status"`
	Data   struct {
		Contract struct {
			ID       string `json:"id"`
			Metadata string `json:"metadata"`
			Signers  []struct {
				Name string `json:"name"`
			} `json:"signers"`
		} `json:"contract"`
	} `json:"data"`
}

// ParseWebhookPayload normalizes an esignatures.io webhook body. Returns nil
// for event types the pipeline doesn't track.
func ParseWebhookPayload(payload []byte) (*service.AgreementEvent, error) {
	var body webhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decoding webhook payload: %w", err)
	}

	status, ok := mapContractStatus(body.Status)
	if !ok {
		return nil, nil
	}

	signerName := ""
	if len(body.Data.Contract.Signers) > 0 {
		signerName = body.Data.Contract.Signers[0].Name
	}

	return &service.AgreementEvent{
		AgreementID: body.Data.Contract.ID,
		QuoteID:     body.Data.Contract.Metadata,
		Status:      status,
		SignerName:  signerName,
	}, nil
}
