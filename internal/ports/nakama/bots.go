package nakama

import (
	"context"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"hearts/internal/bot"
	"hearts/internal/ports"
)

// botAccounts is the part of runtime.NakamaModule bot provisioning uses.
type botAccounts interface {
	AuthenticateDevice(ctx context.Context, id, username string, create bool) (string, string, bool, error)
	AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error
}

// ProvisionBots ensures every roster bot has a Nakama account, rebinds the
// roster to the account ids and stores the bots as participants.
func ProvisionBots(ctx context.Context, nk botAccounts, logger runtime.Logger, roster *bot.Roster, repo ports.Repository) error {
	for _, identity := range roster.Identities() {
		if identity.DeviceID != "" {
			userID, _, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}

			metadata := map[string]interface{}{
				"is_bot":       true,
				"strategy":     identity.Strategy,
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}

			roster.Rebind(identity.ID, userID)
			identity.ID = userID
		}

		if err := repo.SaveParticipant(ctx, identity.Participant()); err != nil {
			return fmt.Errorf("save bot %s: %w", identity.Username, err)
		}
		logger.Info("ProvisionBots: Bot %s (%s) is ready. Strategy: %s", identity.DisplayName, identity.ID, identity.Strategy)
	}
	return nil
}
