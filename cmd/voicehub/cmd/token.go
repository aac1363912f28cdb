package cmd

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tendant/voicehub/pkg/auth"
	"github.com/tendant/voicehub/pkg/domain"
	"github.com/tendant/voicehub/pkg/repository"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Access token helpers for local development",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Sign an access token for a principal",
	Long: `Signs an access token with the configured JWT secret. With SESSION_CHECK_ENABLED=true
the token must carry a session id: pass --session for an existing row or
--new-session to create one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		rawUser, _ := flags.GetString("user")
		rawSession, _ := flags.GetString("session")
		newSession, _ := flags.GetBool("new-session")
		email, _ := flags.GetString("email")
		name, _ := flags.GetString("name")
		ttl, _ := flags.GetDuration("ttl")

		if rawSession != "" && newSession {
			return fmt.Errorf("--session and --new-session are mutually exclusive")
		}
		userID, err := uuid.Parse(rawUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		principal := &domain.Principal{ID: userID, Email: email, Name: name}
		if rawSession != "" {
			if principal.SessionID, err = uuid.Parse(rawSession); err != nil {
				return fmt.Errorf("invalid --session: %w", err)
			}
		}
		if ttl <= 0 {
			ttl = cfg.AccessTokenTTL
		}

		if newSession {
			now := time.Now().UTC()
			session := &domain.Session{ID: uuid.New(), UserID: userID, CreatedAt: now, ExpiresAt: now.Add(ttl)}
			err := withDB(func(db *sql.DB) error {
				return repository.NewSessionsRepository(db).Create(cmd.Context(), session)
			})
			if err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}
			principal.SessionID = session.ID
			logger.Info("session created", "session_id", session.ID, "user_id", userID)
		}

		sessions := auth.NewSessionService(auth.SessionConfig{
			JWTSecret:      []byte(cfg.JWTSecret),
			Issuer:         cfg.JWTIssuer,
			AccessTokenTTL: cfg.AccessTokenTTL,
		}, nil)

		token, expiresAt, err := sessions.MintAccessToken(principal, ttl)
		if err != nil {
			return fmt.Errorf("failed to mint token: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		logger.Info("token minted", "user_id", userID, "expires_at", expiresAt.Format(time.RFC3339))
		return nil
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke <session-id>",
	Short: "Revoke a session so its tokens stop validating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid session id: %w", err)
		}

		return withDB(func(db *sql.DB) error {
			if err := repository.NewSessionsRepository(db).Revoke(cmd.Context(), sessionID); err != nil {
				return fmt.Errorf("failed to revoke session: %w", err)
			}
			logger.Info("session revoked", "session_id", sessionID)
			return nil
		})
	},
}

func init() {
	tokenMintCmd.Flags().String("user", "", "Principal id (UUID)")
	tokenMintCmd.Flags().String("session", "", "Existing session id to embed as the token id")
	tokenMintCmd.Flags().Bool("new-session", false, "Create a session row and embed its id")
	tokenMintCmd.Flags().String("email", "", "Principal email claim")
	tokenMintCmd.Flags().String("name", "", "Principal name claim")
	tokenMintCmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to ACCESS_TOKEN_TTL)")
	_ = tokenMintCmd.MarkFlagRequired("user")

	tokenCmd.AddCommand(tokenMintCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
}
