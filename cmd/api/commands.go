package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seogyeonga/auction-radar/internal/domain"
	"github.com/seogyeonga/auction-radar/internal/report"
	"github.com/seogyeonga/auction-radar/internal/risk"
	"github.com/seogyeonga/auction-radar/internal/scheduler"
	"github.com/seogyeonga/auction-radar/internal/scoring"
	"github.com/seogyeonga/auction-radar/internal/storage"
)

// seedListings loads a JSON listing file, classifies every record, upserts
// it by case number and drops cached views of the touched rows.
func seedListings(ctx context.Context, store *storage.SQLiteStore, path string, views scheduler.Invalidator, log *zap.Logger) (int, error) {
	listings, err := storage.LoadListingsFromFile(path)
	if err != nil {
		return 0, err
	}
	caseNos := make([]string, 0, len(listings))
	for i := range listings {
		a := risk.Classify(listings[i].Facts())
		listings[i].RiskLevel, listings[i].RiskReason = a.Level, a.Reason
		caseNos = append(caseNos, listings[i].CaseNo)
	}
	n, err := store.UpsertMany(ctx, listings)
	if err != nil {
		return 0, err
	}

	if views != nil {
		ids, err := store.IDsByCaseNo(ctx, caseNos)
		if err != nil {
			return n, fmt.Errorf("resolve seeded ids: %w", err)
		}
		if err := views.Invalidate(ctx, ids...); err != nil {
			log.Warn("view cache invalidation failed", zap.Error(err))
		}
	}
	return n, nil
}

func newSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load listings from a JSON file into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, store, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			defer store.Close()

			views := openViewCache(ctx, cfg.Redis, log)
			defer views.Close()

			if file == "" {
				file = cfg.Data.ListingsPath
			}
			n, err := seedListings(ctx, store, file, views, log)
			if err != nil {
				return err
			}
			log.Info("listings seeded", zap.String("path", file), zap.Int("count", n))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "listings JSON file (default: data.listings_path)")
	return cmd
}

func newAssessCommand() *cobra.Command {
	var (
		facts     domain.ListingFacts
		rulesPath string
	)
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Classify and score a single listing given on the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := scoring.DefaultRules()
			if rulesPath != "" {
				r, err := scoring.LoadRulesFromFile(rulesPath)
				if err != nil {
					return err
				}
				rules = r
			}

			v := scoring.NewEngine(rules).Evaluate(domain.Listing{
				Address:         facts.Address,
				AppraisalPrice:  facts.AppraisalPrice,
				MinimumBidPrice: facts.MinimumBidPrice,
				AuctionRound:    facts.AuctionRound,
				Remarks:         facts.Remarks,
				HasTenant:       facts.HasOccupyingTenant,
				HasSeniorRights: facts.HasSeniorEncumbrance,
			})

			out := struct {
				Assessment domain.RiskAssessment   `json:"assessment"`
				Scores     domain.CategoryScoreSet `json:"scores"`
				Average    float64                 `json:"average"`
				Grade      domain.Grade            `json:"grade"`
				GradeLabel string                  `json:"grade_label"`
				Pricing    domain.PriceMetrics     `json:"pricing"`
			}{v.Assessment, v.Scores, v.Average, v.Grade, v.GradeLabel, v.Pricing}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&facts.AppraisalPrice, "appraisal", 0, "appraisal price in won")
	f.Int64Var(&facts.MinimumBidPrice, "min-price", 0, "minimum bid price in won")
	f.IntVar(&facts.AuctionRound, "round", 1, "auction round")
	f.StringVar(&facts.Remarks, "remarks", "", "court remarks text")
	f.StringVar(&facts.Address, "address", "", "street address")
	f.BoolVar(&facts.HasOccupyingTenant, "tenant", false, "occupying tenant present")
	f.BoolVar(&facts.HasSeniorEncumbrance, "senior", false, "senior rights registered")
	f.StringVar(&rulesPath, "rules", "", "district rules JSON file")
	return cmd
}

// writeReminders prints the reminder of every listing whose auction is a
// reminder day away from today and returns how many were written.
func writeReminders(w io.Writer, listings []domain.Listing, today time.Time, log *zap.Logger) int {
	n := 0
	for _, l := range listings {
		if l.AuctionDate == "" {
			continue
		}
		d, err := report.DaysUntil(l.AuctionDate, today)
		if err != nil {
			log.Warn("bad auction date", zap.String("case_no", l.CaseNo), zap.Error(err))
			continue
		}
		if !report.ReminderDue(d) {
			continue
		}
		fmt.Fprintln(w, report.Reminder(l, d))
		n++
	}
	return n
}

func newRemindCommand() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Print D-3 and D-1 bid-date reminders for a user's watched listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, log, store, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			defer store.Close()

			favorites, err := store.Favorites(ctx, user)
			if err != nil {
				return fmt.Errorf("list favorites: %w", err)
			}
			n := writeReminders(cmd.OutOrStdout(), favorites, time.Now(), log)
			log.Info("reminders written", zap.String("user", user), zap.Int("count", n))
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id whose watched listings are checked")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
