package cmd

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tendant/voicehub/pkg/domain"
	"github.com/tendant/voicehub/pkg/repository"
)

var superAdminCmd = &cobra.Command{
	Use:   "superadmin",
	Short: "Platform administrator commands",
}

var superAdminGrantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant platform administrator access to a principal",
	RunE: func(cmd *cobra.Command, args []string) error {
		rawUser, _ := cmd.Flags().GetString("user")
		email, _ := cmd.Flags().GetString("email")

		userID, err := uuid.Parse(rawUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}

		admin := &domain.SuperAdmin{
			ID:        uuid.New(),
			UserID:    userID,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
		return withDB(func(db *sql.DB) error {
			if err := repository.NewSuperAdminsRepository(db).Create(cmd.Context(), admin); err != nil {
				return fmt.Errorf("failed to grant super admin: %w", err)
			}
			logger.Info("super admin granted", "super_admin_id", admin.ID, "user_id", userID)
			return nil
		})
	},
}

func init() {
	superAdminGrantCmd.Flags().String("user", "", "Principal id (UUID)")
	superAdminGrantCmd.Flags().String("email", "", "Administrator email")
	_ = superAdminGrantCmd.MarkFlagRequired("user")
	_ = superAdminGrantCmd.MarkFlagRequired("email")

	superAdminCmd.AddCommand(superAdminGrantCmd)
}
