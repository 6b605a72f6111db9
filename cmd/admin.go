package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Leganyst/clinic-booking/internal/calendar"
	"github.com/Leganyst/clinic-booking/internal/model"
	"github.com/Leganyst/clinic-booking/internal/repository"
	"github.com/Leganyst/clinic-booking/internal/scheduling"
	"github.com/Leganyst/clinic-booking/internal/service"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Expire active bookings whose slots have already ended",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			count, err := a.engine.ExpirePast(cmd.Context(), systemPrincipal)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expired %d booking(s).\n", count)
			return nil
		},
	}
}

func generateSlotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-slots",
		Short: "Generate slots for a doctor from the weekly availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			rawID, _ := cmd.Flags().GetString("doctor")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			minutes, _ := cmd.Flags().GetInt("minutes")
			tz, _ := cmd.Flags().GetString("tz")

			doctorID, err := uuid.Parse(rawID)
			if err != nil {
				return fmt.Errorf("invalid --doctor: %w", err)
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.slots.Generate(cmd.Context(), systemPrincipal, scheduling.GenerateParams{
				DoctorID:            doctorID,
				StartDate:           from,
				EndDate:             to,
				SlotDurationMinutes: minutes,
				TimeZone:            tz,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d slot(s).\n", created)
			return nil
		},
	}
	cmd.Flags().String("doctor", "", "Doctor ID")
	cmd.Flags().String("from", "", "First date, YYYY-MM-DD")
	cmd.Flags().String("to", "", "Last date, YYYY-MM-DD")
	cmd.Flags().Int("minutes", 0, "Slot duration in minutes (0 uses SLOT_DEFAULT_MINUTES)")
	cmd.Flags().String("tz", "", "Time zone label stored on slots (empty uses SLOT_TIMEZONE)")
	_ = cmd.MarkFlagRequired("doctor")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func doctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Manage the doctor directory",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Add a doctor with weekly availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			spec, _ := cmd.Flags().GetString("specialization")
			rawAvail, _ := cmd.Flags().GetString("availability")

			windows, err := parseAvailability(rawAvail)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			d := &model.Doctor{Name: name, Specialization: spec, Availability: windows}
			if err := a.doctors.Create(cmd.Context(), d); err != nil {
				return fmt.Errorf("create doctor: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.ID.String())
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Doctor name")
	createCmd.Flags().String("specialization", "", "Specialization")
	createCmd.Flags().String("availability", "", `Weekly windows, e.g. "1:09:00-12:00,3:14:00-18:00" (0 = Sunday)`)
	_ = createCmd.MarkFlagRequired("name")
	cmd.AddCommand(createCmd)

	return cmd
}

// parseAvailability разбирает "день:HH:MM-HH:MM,..." в окна доступности.
func parseAvailability(raw string) ([]model.AvailabilityWindow, error) {
	var out []model.AvailabilityWindow
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, window, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("availability %q: expected day:HH:MM-HH:MM", part)
		}
		dow, err := strconv.Atoi(day)
		if err != nil || dow < 0 || dow > 6 {
			return nil, fmt.Errorf("availability %q: day must be 0..6", part)
		}
		start, end, ok := strings.Cut(window, "-")
		if !ok {
			return nil, fmt.Errorf("availability %q: expected HH:MM-HH:MM", part)
		}
		if _, err := calendar.ParseClockRange(start, end); err != nil {
			return nil, fmt.Errorf("availability %q: %w", part, err)
		}
		out = append(out, model.AvailabilityWindow{DayOfWeek: dow, StartTime: start, EndTime: end})
	}
	return out, nil
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token, registering the user if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			rawRole, _ := cmd.Flags().GetString("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			role, err := calendar.ParseRole(rawRole)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			user, err := a.users.FindByEmail(ctx, email)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				user = &model.User{Name: name, Email: email, Role: role}
				if err := a.users.Create(ctx, user); err != nil {
					return fmt.Errorf("create user: %w", err)
				}
			case err != nil:
				return fmt.Errorf("find user: %w", err)
			}

			// роль в токене берём из справочника, флаг влияет только на новых
			token, err := service.IssueToken([]byte(a.cfg.JWTSecret),
				calendar.Principal{UserID: user.ID, Role: user.Role}, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("email", "", "User email")
	cmd.Flags().String("name", "", "User name (for new users)")
	cmd.Flags().String("role", string(calendar.RoleUser), "Role for new users: user|admin")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
