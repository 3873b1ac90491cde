// Package coinapi fetches cryptocurrency market data from CoinAPI.
package coinapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dense-analysis/coinvault/internal/model"
	"github.com/shopspring/decimal"
)

const assetURL = "https://rest.coinapi.io/v1/assets"

// MaxQuotes caps how many assets a single fetch keeps.
const MaxQuotes = 50

var (
	ErrBadRequest   = errors.New("coinapi: there is a problem with your request")
	ErrUnauthorized = errors.New("coinapi: your API key is wrong or invalid")
	ErrRateLimited  = errors.New("coinapi: too many requests, try again later")
)

// Source is a client for quotes from one price provider.
type Source interface {
	Fetch() ([]model.Quote, time.Time, error)
}

type assetResult struct {
	AssetID  string          `json:"asset_id"`
	Name     string          `json:"name"`
	IsCrypto int             `json:"type_is_crypto"`
	PriceUSD decimal.Decimal `json:"price_usd"`
}

// Client fetches asset quotes from rest.coinapi.io.
type Client struct {
	httpClient *http.Client
	apiKey     string
	url        string
}

// NewClient creates a client with the API key from the environment.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
		apiKey:     os.Getenv("COINAPI_KEY"),
		url:        assetURL,
	}
}

// NewClientForURL creates a client against an arbitrary endpoint.
func NewClientForURL(url string, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{},
		apiKey:     apiKey,
		url:        url,
	}
}

// Fetch loads the current crypto quotes and the time they were fetched at.
//
// Assets that aren't cryptocurrencies or have no positive USD price are
// dropped, and at most MaxQuotes quotes are kept.
func (client *Client) Fetch() ([]model.Quote, time.Time, error) {
	request, err := http.NewRequest(http.MethodGet, client.url, nil)

	if err != nil {
		return nil, time.Time{}, err
	}

	request.Header.Set("X-CoinAPI-Key", client.apiKey)

	response, err := client.httpClient.Do(request)

	if err != nil {
		return nil, time.Time{}, fmt.Errorf("coinapi request failed: %w", err)
	}

	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, time.Time{}, ErrBadRequest
	case http.StatusUnauthorized:
		return nil, time.Time{}, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, time.Time{}, ErrRateLimited
	default:
		return nil, time.Time{}, fmt.Errorf("coinapi returned status %d", response.StatusCode)
	}

	content, err := io.ReadAll(response.Body)

	if err != nil {
		return nil, time.Time{}, err
	}

	var results []assetResult

	if err := json.Unmarshal(content, &results); err != nil {
		return nil, time.Time{}, fmt.Errorf("coinapi returned unexpected response: %w", err)
	}

	quotes := make([]model.Quote, 0, MaxQuotes)

	for _, result := range results {
		if result.IsCrypto != 1 || !result.PriceUSD.IsPositive() {
			continue
		}

		quotes = append(quotes, model.Quote{
			AssetID: result.AssetID,
			Name:    result.Name,
			Price:   result.PriceUSD,
		})

		if len(quotes) == MaxQuotes {
			break
		}
	}

	return quotes, time.Now(), nil
}
