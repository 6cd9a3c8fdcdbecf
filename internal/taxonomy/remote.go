package taxonomy

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Fetcher loads a taxonomy document from somewhere authoritative.
type Fetcher interface {
	Fetch(ctx context.Context) (*Taxonomy, error)
}

// remoteResponse 远端目录服务的统一响应格式
type remoteResponse struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Result  *Taxonomy `json:"result"`
}

// RemoteClient 远端目录服务客户端（获取 taxonomy 文档）
type RemoteClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewRemoteClient 创建远端目录服务客户端
func NewRemoteClient(baseURL string, logger *zap.Logger) *RemoteClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json")

	return &RemoteClient{httpClient: client, logger: logger}
}

// Fetch GET /directory/api/v1/taxonomy
func (c *RemoteClient) Fetch(ctx context.Context) (*Taxonomy, error) {
	var response remoteResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&response).
		Get("/directory/api/v1/taxonomy")
	if err != nil {
		return nil, fmt.Errorf("failed to call taxonomy API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("taxonomy API returned HTTP %d", resp.StatusCode())
	}
	if response.Code != 2000 || response.Result == nil {
		return nil, fmt.Errorf("taxonomy API error: %s (code: %d)", response.Message, response.Code)
	}
	if len(response.Result.Units) == 0 || len(response.Result.Districts) == 0 {
		return nil, fmt.Errorf("taxonomy API returned an empty taxonomy (version %q)", response.Result.Version)
	}

	c.logger.Debug("Fetched taxonomy from remote directory service",
		zap.String("version", response.Result.Version),
		zap.Int("unit_count", len(response.Result.Units)),
		zap.Int("district_count", len(response.Result.Districts)),
	)
	return response.Result, nil
}
