package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/api/handler/v1/request"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/domain"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/repository"
	"github.com/yizeng/gab/gin/gorm/storefront/internal/service"
)

const operatorPasswordEnv = "STOREFRONT_OPERATOR_PASSWORD"

func NewHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "hash-password <password>",
		Short:        "Print the bcrypt hash of a password",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashPassword(args[0])
			if err != nil {
				return fmt.Errorf("service.HashPassword -> %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func NewCreateOperatorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := request.CreateOperatorRequest{}

	cmd := &cobra.Command{
		Use:   "create-operator",
		Short: "Create an operator account for the admin API",
		Long: `Create an operator account for the admin API.

The password is read from --password or, when omitted, from ` + operatorPasswordEnv + `.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Password == "" {
				opts.Password = os.Getenv(operatorPasswordEnv)
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			_, db, err := setup(rootOpts.ConfigPath)
			if err != nil {
				return err
			}

			svc := service.NewAuthService(repository.NewStore(db).Operators())
			operator, err := svc.CreateOperator(cmd.Context(), domain.Operator{
				Email:    opts.Email,
				Name:     opts.Name,
				Password: opts.Password,
			})
			if err != nil {
				return fmt.Errorf("svc.CreateOperator -> %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "operator %d created for %s\n", operator.ID, operator.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "operator email")
	cmd.Flags().StringVar(&opts.Name, "name", "", "operator display name")
	cmd.Flags().StringVar(&opts.Password, "password", "", "operator password")

	return cmd
}
