package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/budget-gm/internal/domain/player"
	"github.com/riskibarqy/budget-gm/internal/domain/prediction"
)

var (
	ErrNicknameTaken    = errors.New("nickname already taken")
	ErrSubmissionFailed = errors.New("submission failed")
)

type Results struct {
	Wins   int
	Losses int
}

// Entry is the payload sent to the game backend for one daily submission.
type Entry struct {
	Nickname string
	Players  []player.Player
	Results  Results
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Nickname) == "" {
		return fmt.Errorf("submission nickname is required")
	}
	if len(e.Players) != prediction.RosterSize {
		return fmt.Errorf("submission requires %d players, got %d", prediction.RosterSize, len(e.Players))
	}
	if e.Results.Wins < 0 || e.Results.Wins+e.Results.Losses != prediction.SeasonGames {
		return fmt.Errorf("submission results must add up to %d games", prediction.SeasonGames)
	}
	return nil
}

// Repository records submissions with the game backend. Submit is called at
// most once per user action.
type Repository interface {
	Submit(ctx context.Context, entry Entry) error
}
