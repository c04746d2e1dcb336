package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stockpilot/backend/internal/domain/reconciliation"
)

// maxResponseSize is the maximum allowed response size from a channel API (1MB)
const maxResponseSize = 1 * 1024 * 1024

// HTTPQuantitySource reports channel stock levels via a JSON HTTP API.
// The endpoint contract is GET {base}/stores/{storeID}/quantities with
// product_id and warehouse_id query parameters, answering
// {"quantity": "123.5"}.
type HTTPQuantitySource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPQuantitySource creates a channel quantity source against the given
// base URL. apiKey may be empty for unauthenticated endpoints.
func NewHTTPQuantitySource(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPQuantitySource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPQuantitySource{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type quantityPayload struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// ReportedQuantity fetches the channel's available quantity for one
// product/warehouse pair. Any transport or decode failure is returned to the
// caller; reconciliation decides how to surface it.
func (s *HTTPQuantitySource) ReportedQuantity(ctx context.Context, tenantID, productID, warehouseID uuid.UUID, storeID string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/stores/%s/quantities", s.baseURL, url.PathEscape(storeID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("building channel request: %w", err)
	}

	query := req.URL.Query()
	query.Set("product_id", productID.String())
	query.Set("warehouse_id", warehouseID.String())
	req.URL.RawQuery = query.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID.String())
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("channel request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading channel response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("channel returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("store_id", storeID),
			zap.String("product_id", productID.String()))
		return decimal.Zero, fmt.Errorf("channel returned status %d", resp.StatusCode)
	}

	var payload quantityPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("decoding channel response: %w", err)
	}

	return payload.Quantity, nil
}

var _ reconciliation.ChannelQuantitySource = (*HTTPQuantitySource)(nil)
