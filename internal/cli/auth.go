package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pratik-mahalle/smmpanel/internal/auth"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the API token",
	}

	cmd.AddCommand(newAuthSetTokenCmd())
	cmd.AddCommand(newAuthMintCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthSetTokenCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "set-token",
		Short: "Store a JWT issued by the panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = promptSecret("Token: ")
			}
			token = strings.TrimSpace(token)

			claims, err := inspectToken(token)
			if err != nil {
				return err
			}

			viper.Set("auth.token", token)
			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Token stored for user %d (%s)\n", claims.UserID, claims.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "JWT (prompted when omitted)")
	return cmd
}

// newAuthMintCmd signs a token locally. Only useful to operators who hold JWT_SECRET.
func newAuthMintCmd() *cobra.Command {
	var (
		userID int64
		email  string
		role   string
		ttl    time.Duration
		store  bool
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Sign a token with the server's JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				secret = promptSecret("JWT secret: ")
			}
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is required")
			}
			if role != auth.RoleUser && role != auth.RoleAdmin {
				return fmt.Errorf("role must be %q or %q", auth.RoleUser, auth.RoleAdmin)
			}

			token, err := auth.MintToken(userID, email, role, secret, ttl)
			if err != nil {
				return err
			}

			if store {
				viper.Set("auth.token", token)
				if err := writeConfig(); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
				fmt.Fprintln(os.Stderr, "Token stored")
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 1, "user id claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "role claim: user or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().BoolVar(&store, "store", false, "also save the token to the CLI config")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set("auth.token", "")

			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}

			fmt.Println("Logged out successfully")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity in the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := viper.GetString("auth.token")
			if token == "" {
				return fmt.Errorf("not authenticated. Run 'smmpanel auth set-token' first")
			}

			claims, err := inspectToken(token)
			if err != nil {
				return err
			}

			info := map[string]interface{}{
				"userId": claims.UserID,
				"email":  claims.Email,
				"role":   claims.Role,
			}
			if claims.ExpiresAt != nil {
				info["expiresAt"] = claims.ExpiresAt.Time.Format(time.RFC3339)
			}

			if getOutputFormat() != "table" {
				return printOutput(info)
			}

			fmt.Printf("User ID: %d\n", claims.UserID)
			if claims.Email != "" {
				fmt.Printf("Email:   %s\n", claims.Email)
			}
			fmt.Printf("Role:    %s\n", claims.Role)
			if exp, ok := info["expiresAt"]; ok {
				fmt.Printf("Expires: %s\n", exp)
			}
			return nil
		},
	}
}

// inspectToken decodes claims without verifying the signature. The server verifies.
func inspectToken(token string) (*auth.Claims, error) {
	claims := &auth.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("not a valid JWT: %w", err)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token expired at %s", claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return claims, nil
}

func promptSecret(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return string(secret)
}
