package membership

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/BatmanBruc/yt-audio-bot/internal/telemetry"
	"github.com/BatmanBruc/yt-audio-bot/types"
)

// StatusChecker reports a user's status string in one channel.
type StatusChecker interface {
	MemberStatus(ctx context.Context, channel string, userID types.UserID) (string, error)
}

// Gate decides whether a user belongs to every required channel.
type Gate struct {
	checker  StatusChecker
	channels []string
	log      zerolog.Logger
}

func NewGate(checker StatusChecker, channels []string, log zerolog.Logger) *Gate {
	return &Gate{
		checker:  checker,
		channels: append([]string(nil), channels...),
		log:      log.With().Str("component", "membership").Logger(),
	}
}

func (g *Gate) Channels() []string {
	return append([]string(nil), g.channels...)
}

// IsMember walks the channels in order. A channel whose lookup fails is
// skipped; the first explicit non-member status denies.
func (g *Gate) IsMember(ctx context.Context, userID types.UserID) bool {
	for _, ch := range g.channels {
		status, err := g.checker.MemberStatus(ctx, ch, userID)
		if err != nil {
			g.log.Warn().Err(err).Str("channel", ch).Stringer("user_id", userID).Msg("membership lookup failed, skipping channel")
			continue
		}
		if !allowed(status) {
			telemetry.GateDenied.WithLabelValues("membership").Inc()
			g.log.Debug().Str("channel", ch).Str("status", status).Stringer("user_id", userID).Msg("not a member")
			return false
		}
	}
	return true
}

func allowed(status string) bool {
	switch status {
	case types.StatusMember, types.StatusAdministrator, types.StatusCreator:
		return true
	}
	return false
}
