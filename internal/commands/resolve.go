package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/campaign-data/donagg/internal/config"
	"github.com/campaign-data/donagg/internal/donations"
	"github.com/campaign-data/donagg/internal/entity"
	"github.com/campaign-data/donagg/internal/model"
)

func newResolveCommand() *cobra.Command {
	var rec model.DonationRecord

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one donation's names and show whether it would be aggregated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Entities == "" {
				return errors.New("an entity alias map is required (--entities or entities in the config file)")
			}
			entities, err := entity.Load(cfg.Entities)
			if err != nil {
				return fmt.Errorf("loading entities: %w", err)
			}
			r := entity.NewResolver(entities, cfg.Matching.Threshold)
			return printResolution(cmd.OutOrStdout(), r, cleanRecord(rec))
		},
	}

	f := cmd.Flags()
	f.String(config.FlagEntities, "", "entity alias map (.json, .yaml or .yml)")
	f.Int(config.FlagThreshold, entity.DefaultThreshold, "minimum donor/organization score, exclusive (0-100)")
	f.StringVar(&rec.Organization, "org", "", "organization name")
	f.StringVar(&rec.ParentOrganization, "parent", "", "parent organization name")
	f.StringVar(&rec.Recipient, "recipient", "", "recipient name")
	f.StringVar(&rec.DonorName, "donor", "", "donor (contributor) name")

	return cmd
}

// cleanRecord applies the parser's field cleaning to the flag values.
func cleanRecord(rec model.DonationRecord) model.DonationRecord {
	rec.Organization = donations.Clean(rec.Organization)
	rec.ParentOrganization = donations.Clean(rec.ParentOrganization)
	rec.Recipient = donations.Clean(rec.Recipient)
	rec.DonorName = donations.Clean(rec.DonorName)
	return rec
}

func printResolution(w io.Writer, r *entity.Resolver, rec model.DonationRecord) error {
	res, score, reason := r.Accept(rec)

	org := res.Organization
	switch {
	case !res.OrganizationResolved:
		org += " (unresolved)"
	case res.ViaParent:
		org += " (via parent)"
	}
	recipient := res.Recipient
	if !res.RecipientResolved {
		recipient = rec.Recipient + " (unresolved)"
	}

	fmt.Fprintf(w, "organization: %s\n", org)
	fmt.Fprintf(w, "recipient:    %s\n", recipient)
	fmt.Fprintf(w, "score:        %d (threshold %d)\n", score, r.Threshold())
	if reason == model.SkipNone {
		fmt.Fprintln(w, "verdict:      accepted")
	} else {
		fmt.Fprintf(w, "verdict:      rejected (%s)\n", reason)
	}
	return nil
}
