package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"flashwash/internal/domain"
	"flashwash/internal/lock"
	"flashwash/internal/modules/catalog"
	"flashwash/internal/repository"
)

func newProviderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Manage providers",
	}
	cmd.AddCommand(newProviderAddCmd())
	return cmd
}

func newProviderAddCmd() *cobra.Command {
	var req catalog.CreateProviderRequest

	c := &cobra.Command{
		Use:   "add",
		Short: "Add a provider with its operating windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg, true)
			if err != nil {
				return err
			}
			defer closeDB(db)

			p, err := newCatalogService(db).CreateProvider(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created provider %d %q\n", p.ID, p.Name)
			return nil
		},
	}

	c.Flags().StringVar(&req.Name, "name", "", "provider name")
	c.Flags().StringVar(&req.Timezone, "timezone", "", "IANA timezone (defaults to APP_TIMEZONE)")
	c.Flags().StringVar(&req.MorningStart, "morning-start", "08:00", "morning window start (HH:MM)")
	c.Flags().StringVar(&req.MorningEnd, "morning-end", "12:00", "morning window end (HH:MM)")
	c.Flags().StringVar(&req.EveningStart, "evening-start", "14:00", "evening window start (HH:MM)")
	c.Flags().StringVar(&req.EveningEnd, "evening-end", "18:00", "evening window end (HH:MM)")
	_ = c.MarkFlagRequired("name")
	return c
}

func newOfferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Manage offers",
	}
	cmd.AddCommand(newOfferAddCmd(), newOfferTypeAddCmd())
	return cmd
}

func newOfferTypeAddCmd() *cobra.Command {
	var req catalog.CreateOfferTypeRequest

	c := &cobra.Command{
		Use:   "add-type",
		Short: "Add an offer type",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg, true)
			if err != nil {
				return err
			}
			defer closeDB(db)

			// Offer types are not owned by a provider.
			t, err := newCatalogService(db).CreateOfferType(cmd.Context(), domain.Actor{ID: 1, Role: domain.RoleProvider}, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created offer type %d %q\n", t.ID, t.Title)
			return nil
		},
	}

	c.Flags().StringVar(&req.Title, "title", "", "offer type title")
	_ = c.MarkFlagRequired("title")
	return c
}

// newCatalogService serves one-shot admin commands, which never race an
// admission, so the in-process lock suffices.
func newCatalogService(db *gorm.DB) *catalog.Service {
	return catalog.NewService(
		repository.NewProviderRepository(db),
		repository.NewOfferRepository(db),
		repository.NewOfferTypeRepository(db),
		repository.NewReservationRepository(db),
		lock.NewLocal(),
	)
}

func newOfferAddCmd() *cobra.Command {
	var (
		providerID int64
		typeID     int64
		duration   int
		req        catalog.CreateOfferRequest
	)

	c := &cobra.Command{
		Use:   "add",
		Short: "Add an offer to a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg, true)
			if err != nil {
				return err
			}
			defer closeDB(db)

			req.DurationMinutes = &duration
			if typeID > 0 {
				req.OfferTypeID = &typeID
			}
			o, err := newCatalogService(db).CreateOffer(cmd.Context(), domain.Actor{ID: providerID, Role: domain.RoleProvider}, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created offer %d %q (%d min) for provider %d\n", o.ID, o.Title, o.DurationMinutes, o.ProviderID)
			return nil
		},
	}

	c.Flags().Int64Var(&providerID, "provider", 0, "provider id")
	c.Flags().StringVar(&req.Title, "title", "", "offer title")
	c.Flags().StringVar(&req.Description, "description", "", "offer description")
	c.Flags().IntVar(&duration, "duration", 30, "duration in minutes (0-1440)")
	c.Flags().Int64Var(&typeID, "type", 0, "offer type id")
	_ = c.MarkFlagRequired("provider")
	_ = c.MarkFlagRequired("title")
	return c
}
