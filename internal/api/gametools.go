package api

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

const baseURL = "https://api.gametools.network/bf6"

// GametoolsClient talks to the gametools.network Battlefield stats API.
type GametoolsClient struct {
	client *fasthttp.Client
}

func NewGametoolsClient() *GametoolsClient {
	return &GametoolsClient{
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// GetPlayerStats fetches the full stat sheet for a single player.
func (c *GametoolsClient) GetPlayerStats(ctx context.Context, playerID string) (*PlayerStatsResponse, error) {
	url := fmt.Sprintf("%s/stats/?playerid=%s", baseURL, playerID)
	return doRequest[PlayerStatsResponse](ctx, c, fasthttp.MethodGet, url, nil)
}

// GetMultiplePlayers fetches batch stats for up to 128 players in one call.
// The provider answers with a bare JSON array; anything else decodes as an
// error and is handled by the caller.
func (c *GametoolsClient) GetMultiplePlayers(ctx context.Context, playerIDs []string) ([]BatchPlayer, error) {
	body, err := json.Marshal(batchRequest{PlayerIDs: playerIDs})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/multiple/", baseURL)
	players, err := doRequest[[]BatchPlayer](ctx, c, fasthttp.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	return *players, nil
}

func doRequest[T any](ctx context.Context, client *GametoolsClient, method, url string, body []byte) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type batchRequest struct {
	PlayerIDs []string `json:"playerIds"`
}

// RankInfo is the nested rank object on single-player responses.
type RankInfo struct {
	Number *int64  `json:"number"`
	Name   *string `json:"name"`
}

// PlayerStatsResponse is the single-player stat sheet. Every field is
// optional on the wire; the provider also reports failures inside a 200
// response through the errors envelope.
type PlayerStatsResponse struct {
	Errors          []string  `json:"errors"`
	UserName        *string   `json:"userName"`
	Kills           *int64    `json:"kills"`
	Deaths          *int64    `json:"deaths"`
	KillDeath       *float64  `json:"killDeath"`
	Wins            *int64    `json:"wins"`
	Losses          *int64    `json:"losses"`
	WinPercent      *float64  `json:"winPercent"`
	Score           *int64    `json:"score"`
	TimePlayed      *int64    `json:"timePlayed"`
	Headshots       *int64    `json:"headshots"`
	HeadshotPercent *float64  `json:"headshotPercent"`
	Accuracy        *float64  `json:"accuracy"`
	Rank            *RankInfo `json:"rank"`
}

// HasErrors reports whether the provider returned an error envelope.
func (r *PlayerStatsResponse) HasErrors() bool {
	return r == nil || len(r.Errors) > 0
}

// BatchPlayer is one element of the batch response. Field names drift
// between provider versions, so the same concept can arrive under more
// than one key.
type BatchPlayer struct {
	PlayerID   *string   `json:"playerId"`
	ID         *string   `json:"id"`
	PlayerName *string   `json:"playerName"`
	Name       *string   `json:"name"`
	Kills      *int64    `json:"kills"`
	Deaths     *int64    `json:"deaths"`
	KillDeath  *float64  `json:"killDeath"`
	KDRatio    *float64  `json:"kdRatio"`
	Wins       *int64    `json:"wins"`
	Losses     *int64    `json:"losses"`
	WinPercent *float64  `json:"winPercent"`
	WinRate    *float64  `json:"winRate"`
	Score      *int64    `json:"score"`
	TimePlayed *int64    `json:"timePlayed"`
	Level      *int64    `json:"level"`
	RankName   *string   `json:"rankName"`
	Rank       *RankInfo `json:"rank"`
}
