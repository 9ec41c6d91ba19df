package valorant

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// GameConfig is a region's current game configuration.
type GameConfig struct {
	// CompetitiveSeasonEnd is when the running competitive season's offset
	// window closes.
	CompetitiveSeasonEnd time.Time `json:"competitiveSeasonOffsetEndTime"`
}

// GetGameConfig fetches the configuration of the client's region.
func (c *Client) GetGameConfig(ctx context.Context) (GameConfig, error) {
	var config GameConfig
	url := fmt.Sprintf("%s/v1/config/%s", c.urls.Shared, c.location.Region)
	err := c.send(ctx, http.MethodGet, url, nil, &config)
	return config, err
}

// User is a player's visible identity. Field names follow the wire format.
type User struct {
	ID       uuid.UUID `json:"Subject"`
	GameName string    `json:"GameName"`
	TagLine  string    `json:"TagLine"`
}

// Name returns the full riot ID, e.g. "Player#EUW".
func (u User) Name() string {
	return u.GameName + "#" + u.TagLine
}

// GetUsers resolves player IDs to their visible identities. The result is in
// the same order as the request.
func (c *Client) GetUsers(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	var users []User
	err := c.send(ctx, http.MethodPut, c.urls.GameAPI+"/name-service/v2/players", ids, &users)
	return users, err
}
