// Package mcptools exposes the player pool, the win predictor and the
// leaderboard as Model Context Protocol tools.
package mcptools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/platform/logging"
	"github.com/riskibarqy/budget-gm/internal/usecase"
)

const serverName = "budget-gm-mcp"

type Config struct {
	Pool        *usecase.PoolService
	Predictions *usecase.PredictionService
	Leaderboard *usecase.LeaderboardService
	Version     string
	Logger      *logging.Logger
}

type PlayerPoolArgs struct {
	Position  string `json:"position,omitempty" jsonschema:"Only list this position: PG, SG, SF, PF or C"`
	MaxSalary int    `json:"max_salary,omitempty" jsonschema:"Only list players at or below this salary (0 = all)"`
}

type PredictRosterArgs struct {
	PlayerIDs []string `json:"player_ids" jsonschema:"Exactly five player ids from today's pool"`
}

type LeaderboardArgs struct {
	Date string `json:"date,omitempty" jsonschema:"Game day as YYYY-MM-DD (empty = today)"`
}

type poolPlayer struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Salary   int     `json:"salary"`
	Points   float64 `json:"points"`
	Rebounds float64 `json:"rebounds"`
	Assists  float64 `json:"assists"`
}

type predictionResult struct {
	Players      []poolPlayer `json:"players"`
	Spent        int          `json:"spent"`
	Wins         int          `json:"wins"`
	Losses       int          `json:"losses"`
	BaseScore    float64      `json:"base_score"`
	Multiplier   float64      `json:"multiplier"`
	Balance      string       `json:"balance"`
	Pattern      string       `json:"pattern,omitempty"`
	Outcome      string       `json:"outcome"`
	ModelVersion string       `json:"model_version"`
}

type leaderboardRow struct {
	Rank          int    `json:"rank"`
	Nickname      string `json:"nickname"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PredictedWins int    `json:"predicted_wins"`
}

type leaderboardResult struct {
	Date        string           `json:"date"`
	Submissions []leaderboardRow `json:"submissions"`
}

// NewServer registers the game tools on a fresh MCP server.
func NewServer(cfg Config) *mcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = "dev"
	}

	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "player_pool",
		Description: "Today's selectable players with salary ($1-$5) and per-game averages",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args PlayerPoolArgs) (*mcp.CallToolResult, any, error) {
		pool, err := cfg.Pool.Pool(ctx)
		if err != nil {
			logger.WarnContext(ctx, "mcp player_pool failed", "error", err)
			return toolError(err), nil, nil
		}

		position := player.ParsePosition(args.Position)
		if strings.TrimSpace(args.Position) != "" && position == player.PositionUnknown {
			return toolError(fmt.Errorf("unknown position %q", args.Position)), nil, nil
		}

		out := make([]poolPlayer, 0, len(pool.Players))
		for _, item := range pool.Players {
			if position != player.PositionUnknown && item.Position != position {
				continue
			}
			if args.MaxSalary > 0 && item.Salary > args.MaxSalary {
				continue
			}
			out = append(out, toPoolPlayer(item))
		}
		return toolJSON(sonic.Marshal(out))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "predict_roster",
		Description: "Predict the 82-game record for five pool players within the $15 budget",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args PredictRosterArgs) (*mcp.CallToolResult, any, error) {
		result, players, err := cfg.Predictions.PredictIDs(ctx, args.PlayerIDs)
		if err != nil {
			logger.InfoContext(ctx, "mcp predict_roster rejected", "error", err)
			return toolError(err), nil, nil
		}

		out := predictionResult{
			Players:      make([]poolPlayer, 0, len(players)),
			Wins:         result.Wins,
			Losses:       result.Losses,
			BaseScore:    result.Base,
			Multiplier:   result.Multiplier,
			Balance:      string(result.Balance),
			Pattern:      result.Pattern,
			Outcome:      result.Outcome,
			ModelVersion: result.ModelVersion,
		}
		for _, item := range players {
			out.Players = append(out.Players, toPoolPlayer(item))
			out.Spent += item.Salary
		}
		return toolJSON(sonic.Marshal(out))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "leaderboard",
		Description: "Daily leaderboard sorted by predicted wins",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args LeaderboardArgs) (*mcp.CallToolResult, any, error) {
		board, err := cfg.Leaderboard.Board(ctx, strings.TrimSpace(args.Date))
		if err != nil {
			logger.WarnContext(ctx, "mcp leaderboard failed", "date", args.Date, "error", err)
			return toolError(err), nil, nil
		}

		out := leaderboardResult{Date: board.Date, Submissions: make([]leaderboardRow, 0, len(board.Submissions))}
		for idx, row := range board.Submissions {
			out.Submissions = append(out.Submissions, leaderboardRow{
				Rank:          idx + 1,
				Nickname:      row.Nickname,
				Wins:          row.Wins,
				Losses:        row.Losses,
				PredictedWins: row.PredictedWins,
			})
		}
		return toolJSON(sonic.Marshal(out))
	})

	return server
}

// NewHandler serves server over streamable HTTP with plain JSON responses.
func NewHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func toPoolPlayer(item player.Player) poolPlayer {
	return poolPlayer{
		ID:       item.ID,
		Name:     item.Name,
		Position: string(item.Position),
		Salary:   item.Salary,
		Points:   item.Stats.Points,
		Rebounds: item.Stats.Rebounds,
		Assists:  item.Stats.Assists,
	}
}

func toolJSON(res []byte, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
