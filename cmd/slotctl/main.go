// slotctl is the operator tool for the slot inventory: it applies the schema
// and provisions or inspects slots without going through the HTTP surface.
package main

import (
	"fmt"
	"os"

	"escaperoom-reservations/internal/infra/db"
	"escaperoom-reservations/internal/infra/store/postgres"
	"escaperoom-reservations/internal/pkg/clock"
	"escaperoom-reservations/internal/pkg/config"
	"escaperoom-reservations/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slotctl",
		Short: "Manage the escape room slot inventory",
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newProvisionCmd())
	root.AddCommand(newGetCmd())

	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, cleanup, err := connect()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "schema applied")
			return nil
		},
	}
}

func newProvisionCmd() *cobra.Command {
	var (
		roomID, slotKey string
		date            string
		fromHour        int
		toHour          int
	)

	c := &cobra.Command{
		Use:   "provision",
		Short: "Register slots as AVAILABLE",
		Long:  "Provision a single slot with --slot, or a whole day of hourly slots with --date and --from/--to.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := slotKeys(slotKey, date, fromHour, toHour)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, cleanup, err := connect()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				return err
			}

			admin := usecase.NewSlotAdmin(postgres.NewSlotStore(pool), clock.NewSystemClock())
			for _, key := range keys {
				sl, err := admin.Provision(ctx, roomID, key)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "provisioned %s/%s status=%s\n", sl.RoomID(), sl.SlotKey(), sl.Status())
			}
			return nil
		},
	}

	c.Flags().StringVar(&roomID, "room", "", "room identifier")
	c.Flags().StringVar(&slotKey, "slot", "", "single slot key, e.g. 2025-11-19#10")
	c.Flags().StringVar(&date, "date", "", "date for hourly slots, e.g. 2025-11-19")
	c.Flags().IntVar(&fromHour, "from", 10, "first hour when using --date")
	c.Flags().IntVar(&toHour, "to", 18, "last hour when using --date")
	_ = c.MarkFlagRequired("room")
	return c
}

func slotKeys(slotKey, date string, fromHour, toHour int) ([]string, error) {
	if slotKey != "" {
		return []string{slotKey}, nil
	}
	if date == "" {
		return nil, fmt.Errorf("either --slot or --date is required")
	}
	if fromHour < 0 || toHour > 23 || fromHour > toHour {
		return nil, fmt.Errorf("invalid hour range %d-%d", fromHour, toHour)
	}
	keys := make([]string, 0, toHour-fromHour+1)
	for h := fromHour; h <= toHour; h++ {
		keys = append(keys, fmt.Sprintf("%s#%d", date, h))
	}
	return keys, nil
}

func newGetCmd() *cobra.Command {
	var roomID, slotKey string

	c := &cobra.Command{
		Use:   "get",
		Short: "Show the current state of a slot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, cleanup, err := connect()
			if err != nil {
				return err
			}
			defer cleanup()

			admin := usecase.NewSlotAdmin(postgres.NewSlotStore(pool), clock.NewSystemClock())
			sl, err := admin.Get(ctx, roomID, slotKey)
			if err != nil {
				return err
			}

			occupant := "<none>"
			if id := sl.OccupyingReservationID(); id != nil {
				occupant = id.String()
			}
			fmt.Fprintf(os.Stdout, "%s/%s status=%s occupant=%s updated=%s\n",
				sl.RoomID(), sl.SlotKey(), sl.Status(), occupant, sl.UpdatedAt().Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	c.Flags().StringVar(&roomID, "room", "", "room identifier")
	c.Flags().StringVar(&slotKey, "slot", "", "slot key, e.g. 2025-11-19#10")
	_ = c.MarkFlagRequired("room")
	_ = c.MarkFlagRequired("slot")
	return c
}

func connect() (*pgxpool.Pool, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return db.Connect(cfg.DB)
}
