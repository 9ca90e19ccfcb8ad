// scholarctl is the operator CLI: schema migration, organization and admin
// provisioning, and status reports.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/datara/scholarhub/internal/auth"
	"github.com/datara/scholarhub/internal/config"
	"github.com/datara/scholarhub/internal/database"
	"github.com/datara/scholarhub/internal/model"
	"github.com/datara/scholarhub/internal/report"
	"github.com/datara/scholarhub/internal/repository"
)

const adminPasswordEnv = "SCHOLARCTL_ADMIN_PASSWORD"

var (
	verbose bool

	orgName   string
	orgClosed bool

	adminOrg       string
	adminEmail     string
	adminFirstName string
	adminLastName  string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log SQL statements")

	orgCreateCmd.Flags().StringVar(&orgName, "name", "", "Display name")
	orgCreateCmd.Flags().BoolVar(&orgClosed, "closed", false, "Create without accepting applications")
	_ = orgCreateCmd.MarkFlagRequired("name")
	orgCmd.AddCommand(orgCreateCmd, orgListCmd, orgAcceptingCmd)

	adminCreateCmd.Flags().StringVar(&adminOrg, "org", "", "Partner organization id")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Login email")
	adminCreateCmd.Flags().StringVar(&adminFirstName, "first-name", "", "First name")
	adminCreateCmd.Flags().StringVar(&adminLastName, "last-name", "", "Last name")
	for _, f := range []string{"org", "email", "first-name"} {
		_ = adminCreateCmd.MarkFlagRequired(f)
	}
	adminCmd.AddCommand(adminCreateCmd)

	reportCmd.AddCommand(reportApplicationsCmd, reportMoACmd, reportScholarsCmd)

	rootCmd.AddCommand(migrateCmd, orgCmd, adminCmd, reportCmd)
}

var rootCmd = &cobra.Command{
	Use:          "scholarctl",
	Short:        "scholarctl manages the scholarship platform",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	level := gormlogger.Silent
	if verbose {
		level = gormlogger.Info
	}
	return database.Open(ctx, cfg, level)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		if err := database.EnsureIndexes(ctx, db); err != nil {
			return err
		}

		color.Green("Schema is up to date")
		return nil
	},
}

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage partner organizations",
}

var orgCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a partner organization",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close(db)

		org := &model.PartnerOrganization{
			DisplayName: strings.TrimSpace(orgName),
			IsActive:    true,
			IsAccepting: !orgClosed,
		}
		if err := repository.NewOrganizationRepository(db).Create(ctx, org); err != nil {
			return err
		}

		color.Green("Created organization %s (%s)", org.DisplayName, org.ID)
		return nil
	},
}

var orgListCmd = &cobra.Command{
	Use:   "list",
	Short: "List partner organizations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close(db)

		orgs, err := repository.NewOrganizationRepository(db).List(ctx)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Name", "Active", "Accepting", "Created"})
		for _, org := range orgs {
			table.Append([]string{
				org.ID.String(),
				org.DisplayName,
				strconv.FormatBool(org.IsActive),
				strconv.FormatBool(org.IsAccepting),
				org.CreatedAt.Format(time.DateOnly),
			})
		}
		table.Render()
		return nil
	},
}

var orgAcceptingCmd = &cobra.Command{
	Use:   "accepting [org-id] [true|false]",
	Short: "Open or close an organization for new applications",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid organization id: %w", err)
		}
		accepting, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("expected true or false: %w", err)
		}

		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close(db)

		res := db.WithContext(ctx).Model(&model.PartnerOrganization{}).
			Where("id = ?", id).
			Update("is_accepting", accepting)
		if res.Error != nil {
			return fmt.Errorf("updating organization: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.New("organization not found")
		}

		color.Green("Organization %s accepting=%t", id, accepting)
		return nil
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage organization admins",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin with a password credential",
	Long: "Create an admin with a password credential. The password is read from " +
		adminPasswordEnv + " or, when unset, from the first line of stdin.",
	RunE: func(cmd *cobra.Command, args []string) error {
		orgID, err := uuid.Parse(adminOrg)
		if err != nil {
			return fmt.Errorf("invalid organization id: %w", err)
		}

		password, err := readPassword()
		if err != nil {
			return err
		}
		hash, err := auth.NewPasswordHasher().Hash(password)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close(db)

		store := repository.NewStore(db)
		admin := &model.Admin{
			PartnerOrgID: orgID,
			Email:        adminEmail,
			FirstName:    adminFirstName,
			LastName:     adminLastName,
			IsActive:     true,
		}
		err = store.Transaction(ctx, func(tx repository.Store) error {
			if _, err := tx.Organizations().FindByID(ctx, orgID); err != nil {
				return err
			}
			if err := tx.Admins().Create(ctx, admin); err != nil {
				return err
			}
			return tx.Admins().SaveCredential(ctx, &model.AdminCredential{AdminID: admin.ID, PasswordHash: hash})
		})
		if err != nil {
			return err
		}

		color.Green("Created admin %s (%s)", admin.Email, admin.ID)
		return nil
	},
}

func readPassword() (string, error) {
	pw := os.Getenv(adminPasswordEnv)
	if pw == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading password: %w", err)
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if len(pw) < 12 {
		return "", errors.New("password must be at least 12 characters")
	}
	return pw, nil
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print status summaries per organization",
}

var reportApplicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "Applications by status",
	RunE:  runReport("Applications by status", report.ApplicationsByStatus),
}

var reportMoACmd = &cobra.Command{
	Use:   "moa",
	Short: "MoA submissions by status",
	RunE:  runReport("MoA submissions by status", report.MoAByStatus),
}

var reportScholarsCmd = &cobra.Command{
	Use:   "scholars",
	Short: "Scholars by state",
	RunE:  runReport("Scholars by state", report.ScholarsByState),
}

// runReport queries through lib/pq directly; reports never need gorm.
func runReport(title string, query func(context.Context, *sql.DB) ([]report.StatusCount, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		db, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		counts, err := query(ctx, db)
		if err != nil {
			log.Printf("report failed: %v", err)
			return err
		}
		report.Render(os.Stdout, title, counts)
		return nil
	}
}
