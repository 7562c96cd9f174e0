package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/api"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/apperrors"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/client"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/config"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/predictor"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
)

const (
	PromptMale   = profile.GenderMale
	PromptFemale = profile.GenderFemale
	PromptYes    = "Yes"
	PromptNo     = "No"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict career aspirations for one student profile",
	Run: func(cmd *cobra.Command, _ []string) {
		predict(cmd)
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	d := profile.Default()
	f := predictCmd.Flags()
	f.String("gender", d.Gender, "male or female")
	f.Bool("part-time-job", d.PartTimeJob, "has a part-time job")
	f.Int("absence-days", d.AbsenceDays, "absence days (0-365)")
	f.Bool("extracurricular", d.ExtracurricularActivities, "takes part in extracurricular activities")
	f.Float64("study-hours", d.WeeklySelfStudyHours, "weekly self-study hours")
	for _, s := range profile.Subjects {
		score, _ := d.Score(s.Key)
		f.Int(flagName(s.Key), score, s.Label+" (0-100)")
	}
	f.IntP("top", "n", 5, "number of careers to print")
	f.BoolP("interactive", "i", false, "ask for every field interactively")
	f.String("server", "", "score on a running server instead of loading the model locally")
}

// flagName turns math_score into math.
func flagName(key string) string {
	return strings.TrimSuffix(key, "_score")
}

func predict(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log, cfg := setup()

	sp, err := profileFromFlags(cmd)
	if err != nil {
		log.Fatal("reading profile flags", zap.Error(err))
	}
	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		if sp, err = promptProfile(sp); err != nil {
			log.Fatal("exiting", zap.Error(err))
		}
	}

	top, _ := cmd.Flags().GetInt("top")
	server, _ := cmd.Flags().GetString("server")

	var careers []api.Career
	if server != "" {
		careers, err = predictRemote(ctx, server, sp)
	} else {
		careers, err = predictLocal(ctx, cfg, sp)
	}
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && len(appErr.Fields) > 0 {
			for _, f := range appErr.Fields {
				log.Error("invalid input", zap.String("field", f.Field), zap.String("reason", f.Message))
			}
		}
		log.Fatal("prediction failed", zap.Error(err))
	}

	printCareers(cmd.OutOrStdout(), careers, top)
}

func predictLocal(ctx context.Context, cfg *config.Config, sp profile.StudentProfile) ([]api.Career, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p, err := predictor.Load(ctx, store, cfg.Model.Location)
	if err != nil {
		return nil, err
	}
	res, _, err := p.PredictProfile(sp)
	if err != nil {
		return nil, err
	}
	return api.Careers(res.Ranked()), nil
}

func predictRemote(ctx context.Context, server string, sp profile.StudentProfile) ([]api.Career, error) {
	c, err := client.New(server, 30*time.Second)
	if err != nil {
		return nil, err
	}
	out, err := c.Predict(ctx, sp)
	if err != nil {
		return nil, err
	}
	return out.Careers, nil
}

func printCareers(w io.Writer, careers []api.Career, top int) {
	if top <= 0 || top > len(careers) {
		top = len(careers)
	}
	fmt.Fprintln(w, "Top recommendations")
	for _, c := range careers[:top] {
		fmt.Fprintf(w, "%2d. %-24s %8s\n", c.Rank, c.Label, c.Percent)
	}
}

func profileFromFlags(cmd *cobra.Command) (profile.StudentProfile, error) {
	f := cmd.Flags()

	gender, _ := f.GetString("gender")
	partTime, _ := f.GetBool("part-time-job")
	absence, _ := f.GetInt("absence-days")
	extracurricular, _ := f.GetBool("extracurricular")
	study, _ := f.GetFloat64("study-hours")

	input := map[string]any{
		"gender":                     gender,
		"part_time_job":              partTime,
		"absence_days":               absence,
		"extracurricular_activities": extracurricular,
		"weekly_self_study_hours":    study,
	}
	for _, s := range profile.Subjects {
		score, _ := f.GetInt(flagName(s.Key))
		input[s.Key] = score
	}
	return profile.Decode(input)
}

// promptProfile asks for every field, starting from sp.
func promptProfile(sp profile.StudentProfile) (profile.StudentProfile, error) {
	genderPrompt := promptui.Select{Label: "Gender", Items: []string{PromptMale, PromptFemale}}
	_, gender, err := genderPrompt.Run()
	if err != nil {
		return sp, err
	}

	input := map[string]any{"gender": gender}

	yesNo := func(label, key string) error {
		p := promptui.Select{Label: label, Items: []string{PromptNo, PromptYes}}
		_, answer, err := p.Run()
		if err != nil {
			return err
		}
		input[key] = answer == PromptYes
		return nil
	}
	number := func(label, key, def string, limit float64) error {
		p := promptui.Prompt{
			Label:   label,
			Default: def,
			Validate: func(s string) error {
				v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return errors.New("enter a number")
				}
				if v < 0 || v > limit {
					return fmt.Errorf("must be between 0 and %g", limit)
				}
				return nil
			},
		}
		answer, err := p.Run()
		if err != nil {
			return err
		}
		input[key] = strings.TrimSpace(answer)
		return nil
	}

	if err := yesNo("Part-time job", "part_time_job"); err != nil {
		return sp, err
	}
	if err := number("Absence days", "absence_days", strconv.Itoa(sp.AbsenceDays), profile.MaxAbsenceDays); err != nil {
		return sp, err
	}
	if err := yesNo("Extracurricular activities", "extracurricular_activities"); err != nil {
		return sp, err
	}
	if err := number("Weekly self-study hours", "weekly_self_study_hours", strconv.FormatFloat(sp.WeeklySelfStudyHours, 'f', -1, 64), profile.MaxStudyHours); err != nil {
		return sp, err
	}
	for _, s := range profile.Subjects {
		score, _ := sp.Score(s.Key)
		if err := number(s.Label, s.Key, strconv.Itoa(score), profile.MaxScore); err != nil {
			return sp, err
		}
	}

	return profile.Decode(input)
}
