// Package footballdata fetches real player data from the football data
// feed and turns it into starter cards for newly registered users.
package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fantacard/market-api/internal/config"
	"github.com/fantacard/market-api/internal/service/user"
)

const (
	defaultTimeout = 10 * time.Second

	// Fallbacks for feed records with missing or malformed fields.
	defaultAge   = 25
	defaultSkill = 5.0
)

// feedTeam mirrors the get_teams response shape of the feed.
type feedTeam struct {
	TeamName string       `json:"team_name"`
	Players  []feedPlayer `json:"players"`
}

type feedPlayer struct {
	Name   string `json:"player_name"`
	Age    string `json:"player_age"`
	Rating string `json:"player_rating"`
}

// Client talks to the football data feed over HTTP.
// It implements user.StarterCardSource.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	leagueID   string
	logger     *slog.Logger
}

var _ user.StarterCardSource = (*Client)(nil)

// NewClient creates a feed client from configuration.
func NewClient(cfg config.CardsConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    cfg.FeedURL,
		apiKey:     cfg.FeedAPIKey,
		leagueID:   cfg.FeedLeagueID,
		logger:     log.With(slog.String("component", "footballdata")),
	}
}

// FetchStarterCards returns count players sampled from a random team in
// the configured league.
func (c *Client) FetchStarterCards(ctx context.Context, count int) ([]user.StarterCard, error) {
	if count <= 0 {
		return nil, nil
	}

	teams, err := c.fetchTeams(ctx)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("feed returned no teams for league %s", c.leagueID)
	}

	team := teams[rand.Intn(len(teams))]
	if len(team.Players) == 0 {
		return nil, fmt.Errorf("feed team %q has no players", team.TeamName)
	}

	players := samplePlayers(team.Players, count)

	cards := make([]user.StarterCard, 0, len(players))
	for _, p := range players {
		cards = append(cards, user.StarterCard{
			Name:  p.Name,
			Age:   parseIntOr(p.Age, defaultAge),
			Skill: parseFloatOr(p.Rating, defaultSkill),
		})
	}

	c.logger.Debug("fetched starter cards",
		slog.String("team", team.TeamName),
		slog.Int("count", len(cards)))
	return cards, nil
}

func (c *Client) fetchTeams(ctx context.Context) ([]feedTeam, error) {
	query := url.Values{}
	query.Set("action", "get_teams")
	query.Set("league_id", c.leagueID)
	query.Set("APIkey", c.apiKey)

	base := c.baseURL
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	endpoint := fmt.Sprintf("%s/?%s", base, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}

	var teams []feedTeam
	if err := json.Unmarshal(body, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}
	return teams, nil
}

// samplePlayers picks count distinct players at random, or all of them
// when the roster is smaller than count.
func samplePlayers(players []feedPlayer, count int) []feedPlayer {
	if count >= len(players) {
		return players
	}
	indices := rand.Perm(len(players))[:count]
	sampled := make([]feedPlayer, 0, count)
	for _, i := range indices {
		sampled = append(sampled, players[i])
	}
	return sampled
}

func parseIntOr(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func parseFloatOr(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
