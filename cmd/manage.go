package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/apprenticeship-matcher/internal/apprenticeship"
	"github.com/spigell/apprenticeship-matcher/internal/logger"
	"github.com/spigell/apprenticeship-matcher/internal/profile"
	"github.com/spigell/apprenticeship-matcher/internal/report"
	"github.com/spigell/apprenticeship-matcher/internal/store"
)

var (
	candidatesCmd = &cobra.Command{Use: "candidates", Short: "Register and update candidates"}
	companiesCmd  = &cobra.Command{Use: "companies", Short: "Register, update and list companies"}
	openingsCmd   = &cobra.Command{Use: "openings", Short: "Post and remove openings"}
)

var candidateAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a candidate",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, s *store.Store, log *zap.Logger) {
			flags := cmd.Flags()
			id, _ := flags.GetString("id")
			name, _ := flags.GetString("name")
			email, _ := flags.GetString("email")
			gpa, _ := flags.GetFloat64("gpa")
			specialization, _ := flags.GetString("specialization")
			locations, _ := flags.GetString("locations")
			skills, _ := flags.GetString("skills")

			c := apprenticeship.Candidate{
				ID:                 id,
				Name:               name,
				Email:              email,
				GPA:                gpa,
				Specialization:     specialization,
				PreferredLocations: profile.SplitList(locations),
				Skills:             profile.SplitList(skills),
			}
			if err := s.AddCandidate(ctx, c); err != nil {
				log.Fatal("adding candidate", zap.Error(err))
			}
			log.Info("candidate registered", zap.String(logger.FieldCandidateID, c.ID))
		})
	},
}

var candidateUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a candidate profile; only the given flags change",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, s *store.Store, log *zap.Logger) {
			flags := cmd.Flags()
			id, _ := flags.GetString("id")

			var u store.CandidateUpdate
			if flags.Changed("name") {
				v, _ := flags.GetString("name")
				u.Name = &v
			}
			if flags.Changed("email") {
				v, _ := flags.GetString("email")
				u.Email = &v
			}
			if flags.Changed("gpa") {
				v, _ := flags.GetFloat64("gpa")
				u.GPA = &v
			}
			if flags.Changed("specialization") {
				v, _ := flags.GetString("specialization")
				u.Specialization = &v
			}
			if flags.Changed("locations") {
				v, _ := flags.GetString("locations")
				list := profile.SplitList(v)
				u.PreferredLocations = &list
			}
			if flags.Changed("skills") {
				v, _ := flags.GetString("skills")
				list := profile.SplitList(v)
				u.Skills = &list
			}

			if err := s.UpdateCandidate(ctx, id, u); err != nil {
				log.Fatal("updating candidate", zap.String(logger.FieldCandidateID, id), zap.Error(err))
			}
			log.Info("candidate updated", zap.String(logger.FieldCandidateID, id))
		})
	},
}

var companyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a company",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, s *store.Store, log *zap.Logger) {
			flags := cmd.Flags()
			id, _ := flags.GetString("id")
			name, _ := flags.GetString("name")
			email, _ := flags.GetString("email")

			company, err := s.AddCompany(ctx, apprenticeship.Company{ID: id, Name: name, Email: email})
			if err != nil {
				log.Fatal("adding company", zap.Error(err))
			}
			log.Info("company registered", zap.String("company_id", company.ID))
		})
	},
}

var companyUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a company; only the given flags change",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, s *store.Store, log *zap.Logger) {
			flags := cmd.Flags()
			id, _ := flags.GetString("id")

			var u store.CompanyUpdate
			if flags.Changed("name") {
				v, _ := flags.GetString("name")
				u.Name = &v
			}
			if flags.Changed("email") {
				v, _ := flags.GetString("email")
				u.Email = &v
			}

			if err := s.UpdateCompany(ctx, id, u); err != nil {
				log.Fatal("updating company", zap.String("company_id", id), zap.Error(err))
			}
			log.Info("company updated", zap.String("company_id", id))
		})
	},
}

var companyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a company and its openings",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, s *store.Store, log *zap.Logger) {
			id, _ := cmd.Flags().GetString("id")

			company, err := s.GetCompany(ctx, id)
			if err != nil {
				log.Fatal("getting company", zap.String("company_id", id), zap.Error(err))
			}
			all, err := s.FetchOpenings(ctx)
			if err != nil {
				log.Fatal("fetching openings", zap.Error(err))
			}
			openings := apprenticeship.NewOpenings(all)
			openings.Keep(func(o *apprenticeship.Opening) bool { return o.CompanyID == company.ID })
			posted := openings.Values()

			if err := report.WriteCompanies(os.Stdout, []apprenticeship.Company{*company}, posted); err != nil {
				log.Fatal("printing company", zap.Error(err))
			}
			if len(posted) == 0 {
				log.Info("company has no openings", zap.String("company_id", id))
				return
			}
			if err := report.WriteOpenings(os.Stdout, posted, nil); err != nil {
				log.Fatal("printing openings", zap.Error(err))
			}
		})
	},
}

var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered companies",
	Run: func(_ *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, s *store.Store, log *zap.Logger) {
			companies, err := s.ListCompanies(ctx)
			if err != nil {
				log.Fatal("listing companies", zap.Error(err))
			}
			if len(companies) == 0 {
				log.Info("no companies registered")
				return
			}
			openings, err := s.FetchOpenings(ctx)
			if err != nil {
				log.Fatal("fetching openings", zap.Error(err))
			}
			if err := report.WriteCompanies(os.Stdout, companies, openings); err != nil {
				log.Fatal("printing companies", zap.Error(err))
			}
		})
	},
}

var openingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Post an opening",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, s *store.Store, log *zap.Logger) {
			flags := cmd.Flags()
			id, _ := flags.GetString("id")
			company, _ := flags.GetString("company")
			specialization, _ := flags.GetString("specialization")
			location, _ := flags.GetString("location")
			stipend, _ := flags.GetInt("stipend")
			skills, _ := flags.GetString("skills")

			opening, err := s.AddOpening(ctx, apprenticeship.Opening{
				ID:             id,
				CompanyID:      company,
				Specialization: specialization,
				Location:       location,
				Stipend:        stipend,
				RequiredSkills: profile.SplitList(skills),
			})
			if err != nil {
				log.Fatal("adding opening", zap.Error(err))
			}
			log.Info("opening posted", zap.String(logger.FieldOpeningID, opening.ID))
		})
	},
}

var openingDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove an opening and its applications",
	Run: func(cmd *cobra.Command, _ []string) {
		withStore(func(ctx context.Context, s *store.Store, log *zap.Logger) {
			flags := cmd.Flags()
			id, _ := flags.GetString("id")
			company, _ := flags.GetString("company")

			if err := s.DeleteOpening(ctx, company, id); err != nil {
				log.Fatal("deleting opening", zap.Error(err))
			}
			log.Info("opening removed", zap.String(logger.FieldOpeningID, id))
		})
	},
}

func init() {
	rootCmd.AddCommand(candidatesCmd, companiesCmd, openingsCmd)
	candidatesCmd.AddCommand(candidateAddCmd, candidateUpdateCmd)
	companiesCmd.AddCommand(companyAddCmd, companyUpdateCmd, companyShowCmd, companyListCmd)
	openingsCmd.AddCommand(openingAddCmd, openingDeleteCmd)

	for _, c := range []*cobra.Command{candidateAddCmd, candidateUpdateCmd} {
		c.Flags().String("id", "", "candidate id")
		c.Flags().String("name", "", "full name")
		c.Flags().String("email", "", "contact email")
		c.Flags().Float64("gpa", 0, "GPA on a 0-5 scale")
		c.Flags().String("specialization", "", "specialization")
		c.Flags().String("locations", "", "preferred locations, most preferred first, comma separated")
		c.Flags().String("skills", "", "skills, comma separated")
		c.MarkFlagRequired("id")
	}

	companyAddCmd.Flags().String("id", "", "company id (generated when empty)")
	companyAddCmd.Flags().String("name", "", "company name")
	companyAddCmd.Flags().String("email", "", "contact email")
	companyAddCmd.MarkFlagRequired("name")
	companyAddCmd.MarkFlagRequired("email")

	companyUpdateCmd.Flags().String("id", "", "company id")
	companyUpdateCmd.Flags().String("name", "", "company name")
	companyUpdateCmd.Flags().String("email", "", "contact email")
	companyUpdateCmd.MarkFlagRequired("id")
	companyUpdateCmd.MarkFlagsOneRequired("name", "email")

	companyShowCmd.Flags().String("id", "", "company id")
	companyShowCmd.MarkFlagRequired("id")

	openingAddCmd.Flags().String("id", "", "opening id (generated when empty)")
	openingAddCmd.Flags().String("company", "", "company id")
	openingAddCmd.Flags().String("specialization", "", "specialization")
	openingAddCmd.Flags().String("location", "", "location")
	openingAddCmd.Flags().Int("stipend", 0, "monthly stipend")
	openingAddCmd.Flags().String("skills", "", "required skills, comma separated")
	for _, name := range []string{"company", "specialization", "location", "stipend"} {
		openingAddCmd.MarkFlagRequired(name)
	}

	openingDeleteCmd.Flags().String("id", "", "opening id")
	openingDeleteCmd.Flags().String("company", "", "company id owning the opening")
	openingDeleteCmd.MarkFlagRequired("id")
	openingDeleteCmd.MarkFlagRequired("company")
}

func withStore(fn func(ctx context.Context, s *store.Store, log *zap.Logger)) {
	ctx := context.Background()
	log, config := setup()

	s, err := openStore(ctx, config)
	if err != nil {
		log.Fatal("opening database", zap.Error(err))
	}
	defer s.Close()

	fn(ctx, s, log)
}
