package geocode

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/storecrew/storecrew/internal/common/config"
	"github.com/storecrew/storecrew/internal/common/errorx"
)

const defaultBaseURL = "https://dapi.kakao.com"

// Result is one matched address with its coordinates
type Result struct {
	AddressName string  `json:"address_name"`
	RoadAddress string  `json:"road_address,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type kakaoResponse struct {
	Documents []struct {
		Address struct {
			AddressName string `json:"address_name"`
			X           string `json:"x"` // longitude
			Y           string `json:"y"` // latitude
		} `json:"address"`
		RoadAddress *struct {
			AddressName string `json:"address_name"`
		} `json:"road_address"`
	} `json:"documents"`
}

// Client resolves street addresses to coordinates via the Kakao local
// search API.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient creates a geocoding client
func NewClient(cfg *config.GeocodeConfig, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "KakaoAK "+cfg.APIKey)

	return &Client{httpClient: client, logger: logger.Named("geocode")}
}

// Search looks up an address and returns candidate matches
func (c *Client) Search(ctx context.Context, query string) ([]*Result, error) {
	if query == "" {
		return nil, errorx.ErrValidation.WithMessage("address query is required")
	}

	var body kakaoResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetResult(&body).
		Get("/v2/local/search/address.json")
	if err != nil {
		c.logger.Error("kakao address search failed", zap.Error(err))
		return nil, errorx.ErrTransport.WithDetail("cause", err.Error())
	}
	if resp.IsError() {
		c.logger.Error("kakao address search rejected",
			zap.Int("status", resp.StatusCode()))
		return nil, errorx.ErrTransport.WithDetail("status", resp.StatusCode())
	}

	out := make([]*Result, 0, len(body.Documents))
	for _, doc := range body.Documents {
		lng, errX := strconv.ParseFloat(doc.Address.X, 64)
		lat, errY := strconv.ParseFloat(doc.Address.Y, 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("malformed coordinates for %q", doc.Address.AddressName)
		}
		result := &Result{
			AddressName: doc.Address.AddressName,
			Latitude:    lat,
			Longitude:   lng,
		}
		if doc.RoadAddress != nil {
			result.RoadAddress = doc.RoadAddress.AddressName
		}
		out = append(out, result)
	}
	return out, nil
}
